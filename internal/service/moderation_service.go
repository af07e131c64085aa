package service

import (
	"time"

	"github.com/jasobih/gigboard/internal/apperrors"
	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/repository"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModerationService owns report counters and the flag/approve/remove
// transitions. It shares GigService's lock registry, so a report, an
// approve and a completion on the same gig can never interleave.
type ModerationService struct {
	gigRepo   *repository.GigRepository
	locks     *GigLocks
	threshold int
}

func NewModerationService(gigRepo *repository.GigRepository, locks *GigLocks, threshold int) *ModerationService {
	return &ModerationService{
		gigRepo:   gigRepo,
		locks:     locks,
		threshold: threshold,
	}
}

// Report files an anonymous report against a gig. The report row, the
// counter increment and the threshold crossing are one atomic unit:
// the gig's lock serializes concurrent reporters and the repository
// persists row+counter in a single transaction.
func (s *ModerationService) Report(gigID uuid.UUID) (*models.Gig, error) {
	unlock := s.locks.Lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return nil, apperrors.NotFound("gig")
	}

	if gig.Status != models.GigStatusOpen && gig.Status != models.GigStatusFlagged {
		return nil, apperrors.Conflict(string(gig.Status), "report gig")
	}

	gig.ReportCount++
	crossed := gig.Status == models.GigStatusOpen && gig.ReportCount >= s.threshold
	if crossed {
		gig.Status = models.GigStatusFlagged
	}

	if err := s.gigRepo.SaveGigWithReport(gig, time.Now()); err != nil {
		logger.Log.Error("Failed to record report",
			zap.String("gig_id", gigID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if crossed {
		logger.Log.Warn("Gig flagged for moderation",
			zap.String("gig_id", gigID.String()),
			zap.Int("report_count", gig.ReportCount),
		)
	} else {
		logger.Log.Info("Gig reported",
			zap.String("gig_id", gigID.String()),
			zap.Int("report_count", gig.ReportCount),
		)
	}

	return gig, nil
}

// ListFlagged returns the moderation queue, most-reported first.
func (s *ModerationService) ListFlagged() ([]models.Gig, error) {
	return s.gigRepo.ListFlagged()
}

// Approve clears a FLAGGED gig back to OPEN: counter reset to zero and
// every accumulated report row dropped, in one transaction. A
// subsequent report starts counting from 1 again.
func (s *ModerationService) Approve(gigID uuid.UUID) (*models.Gig, error) {
	unlock := s.locks.Lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return nil, apperrors.NotFound("gig")
	}

	if gig.Status != models.GigStatusFlagged {
		return nil, apperrors.Conflict(string(gig.Status), "approve gig")
	}

	gig.Status = models.GigStatusOpen
	gig.ReportCount = 0

	if err := s.gigRepo.SaveGigClearingReports(gig); err != nil {
		logger.Log.Error("Failed to approve gig",
			zap.String("gig_id", gigID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Gig approved",
		zap.String("gig_id", gigID.String()),
	)

	return gig, nil
}

// Remove is the unconditional admin override: it retires a gig from
// any non-REMOVED status and cascades deletion of its messages,
// reviews and reports in a single transaction. Afterwards the gig
// behaves everywhere as if it never existed.
func (s *ModerationService) Remove(gigID uuid.UUID) error {
	unlock := s.locks.Lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return apperrors.NotFound("gig")
	}

	previous := gig.Status
	gig.Status = models.GigStatusRemoved

	if err := s.gigRepo.RemoveGigCascade(gig); err != nil {
		logger.Log.Error("Failed to remove gig",
			zap.String("gig_id", gigID.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Gig removed by admin",
		zap.String("gig_id", gigID.String()),
		zap.String("previous_status", string(previous)),
	)

	return nil
}
