package service

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jasobih/gigboard/internal/apperrors"
	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/repository"
	"github.com/jasobih/gigboard/internal/storage"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Listings containing any of these words are rejected at creation.
var blacklistedWords = []string{"pills", "gun", "drugs", "escort", "gambling"}

// GigService owns gig records and their lifecycle. All status and
// report_count mutations funnel through here (or ModerationService,
// which shares the same lock registry), so no two components can hold
// divergent views of a gig's state.
type GigService struct {
	gigRepo     *repository.GigRepository
	blobs       storage.BlobStore
	locks       *GigLocks
	maxPageSize int
}

func NewGigService(
	gigRepo *repository.GigRepository,
	blobs storage.BlobStore,
	locks *GigLocks,
	maxPageSize int,
) *GigService {
	return &GigService{
		gigRepo:     gigRepo,
		blobs:       blobs,
		locks:       locks,
		maxPageSize: maxPageSize,
	}
}

// GigInput carries the client-supplied fields of a new listing.
type GigInput struct {
	Title   string
	GigType models.GigType
	Suburb  string
	Details string
}

// CreateGig validates the input and stores a new OPEN gig. Image
// attachment is a separate, later step: a gig with no image is a
// valid, visible state.
func (s *GigService) CreateGig(ownerID uuid.UUID, input GigInput) (*models.Gig, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.Invalid("title", "must not be empty")
	}
	if len(input.Title) > 120 {
		return nil, apperrors.Invalid("title", "must be at most 120 characters")
	}
	if !models.KnownGigType(input.GigType) {
		return nil, apperrors.Invalid("gig_type", "unknown gig type")
	}
	if strings.TrimSpace(input.Suburb) == "" {
		return nil, apperrors.Invalid("suburb", "must not be empty")
	}
	if strings.TrimSpace(input.Details) == "" {
		return nil, apperrors.Invalid("details", "must not be empty")
	}

	lowerTitle := strings.ToLower(input.Title)
	lowerDetails := strings.ToLower(input.Details)
	for _, word := range blacklistedWords {
		if strings.Contains(lowerTitle, word) || strings.Contains(lowerDetails, word) {
			return nil, apperrors.Invalid("details", "post contains blacklisted words")
		}
	}

	gig := &models.Gig{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       input.Title,
		GigType:     input.GigType,
		Suburb:      input.Suburb,
		Details:     input.Details,
		Status:      models.GigStatusOpen,
		ReportCount: 0,
		CreatedAt:   time.Now(),
	}

	if err := s.gigRepo.CreateGig(gig); err != nil {
		logger.Log.Error("Failed to create gig",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Gig created",
		zap.String("gig_id", gig.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("gig_type", string(gig.GigType)),
		zap.String("suburb", gig.Suburb),
	)

	return gig, nil
}

// ListGigs returns current non-removed gigs newest-first. Each call
// re-evaluates committed state; there is no cursor to go stale.
func (s *GigService) ListGigs(filters repository.GigFilters) ([]models.Gig, error) {
	if filters.Limit <= 0 || filters.Limit > s.maxPageSize {
		filters.Limit = s.maxPageSize
	}
	return s.gigRepo.ListGigs(filters)
}

// ListGigsByOwner returns a user's own non-removed gigs.
func (s *GigService) ListGigsByOwner(ownerID uuid.UUID) ([]models.Gig, error) {
	return s.gigRepo.ListGigsByOwner(ownerID)
}

// GetGig returns a gig, treating REMOVED exactly like absent.
func (s *GigService) GetGig(gigID uuid.UUID) (*models.Gig, error) {
	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return nil, apperrors.NotFound("gig")
	}
	return gig, nil
}

// MarkComplete transitions an OPEN or FLAGGED gig to COMPLETED. Only
// the owner may complete, and a repeat completion is a conflict, not
// a no-op.
func (s *GigService) MarkComplete(gigID, requesterID uuid.UUID) (*models.Gig, error) {
	unlock := s.locks.Lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return nil, apperrors.NotFound("gig")
	}

	if gig.OwnerID != requesterID {
		logger.Log.Warn("Completion denied: not the owner",
			zap.String("gig_id", gigID.String()),
			zap.String("requester_id", requesterID.String()),
		)
		return nil, apperrors.NotOwner()
	}

	if gig.Status != models.GigStatusOpen && gig.Status != models.GigStatusFlagged {
		return nil, apperrors.Conflict(string(gig.Status), "complete gig")
	}

	gig.Status = models.GigStatusCompleted
	if err := s.gigRepo.SaveGig(gig); err != nil {
		logger.Log.Error("Failed to mark gig complete",
			zap.String("gig_id", gigID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Gig completed",
		zap.String("gig_id", gigID.String()),
		zap.String("owner_id", gig.OwnerID.String()),
	)

	return gig, nil
}

// AttachImage stores the uploaded blob and points the gig at it.
// Calling again replaces the previous reference, so a failed or
// repeated upload is always safe to retry.
func (s *GigService) AttachImage(gigID, requesterID uuid.UUID, filename string, data io.Reader) (*models.Gig, error) {
	unlock := s.locks.Lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return nil, apperrors.NotFound("gig")
	}

	if gig.OwnerID != requesterID {
		logger.Log.Warn("Image upload denied: not the owner",
			zap.String("gig_id", gigID.String()),
			zap.String("requester_id", requesterID.String()),
		)
		return nil, apperrors.NotOwner()
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return nil, apperrors.Invalid("image", "unsupported file type")
	}

	// One blob per gig: the name is derived from the gig id, so a
	// re-upload overwrites in place
	ref, err := s.blobs.Save(gig.ID.String()+ext, data)
	if err != nil {
		logger.Log.Error("Failed to store gig image",
			zap.String("gig_id", gigID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	gig.ImageURL = ref
	if err := s.gigRepo.SaveGig(gig); err != nil {
		logger.Log.Error("Failed to save image reference",
			zap.String("gig_id", gigID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Gig image attached",
		zap.String("gig_id", gigID.String()),
		zap.String("image_url", ref),
	)

	return gig, nil
}
