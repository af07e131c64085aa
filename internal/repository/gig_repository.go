package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/jasobih/gigboard/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GigFilters narrows down a listing query. Zero values mean "no filter".
type GigFilters struct {
	Search  string // case-insensitive substring over title OR details
	GigType models.GigType
	Suburb  string // case-insensitive substring
	Limit   int
}

type GigRepository struct {
	db *gorm.DB
}

func NewGigRepository(db *gorm.DB) *GigRepository {
	return &GigRepository{db: db}
}

func (r *GigRepository) CreateGig(gig *models.Gig) error {
	return r.db.Create(gig).Error
}

// GetGigByID returns a gig in any status, or nil when absent.
// Callers decide how REMOVED gigs are surfaced.
func (r *GigRepository) GetGigByID(id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	err := r.db.Where("id = ?", id).First(&gig).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gig, nil
}

// ListGigs returns non-removed gigs newest-first, applying the filters.
func (r *GigRepository) ListGigs(filters GigFilters) ([]models.Gig, error) {
	query := r.db.Where("status <> ?", models.GigStatusRemoved)

	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(details) LIKE ?", pattern, pattern)
	}
	if filters.GigType != "" {
		query = query.Where("gig_type = ?", filters.GigType)
	}
	if filters.Suburb != "" {
		query = query.Where("LOWER(suburb) LIKE ?", "%"+strings.ToLower(filters.Suburb)+"%")
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var gigs []models.Gig
	err := query.Order("created_at DESC").Find(&gigs).Error
	return gigs, err
}

// ListGigsByOwner returns every non-removed gig posted by a user.
func (r *GigRepository) ListGigsByOwner(ownerID uuid.UUID) ([]models.Gig, error) {
	var gigs []models.Gig
	err := r.db.
		Where("owner_id = ? AND status <> ?", ownerID, models.GigStatusRemoved).
		Order("created_at DESC").
		Find(&gigs).Error
	return gigs, err
}

// ListFlagged returns the moderation queue: flagged gigs ordered by
// report count descending, then oldest first.
func (r *GigRepository) ListFlagged() ([]models.Gig, error) {
	var gigs []models.Gig
	err := r.db.
		Where("status = ?", models.GigStatusFlagged).
		Order("report_count DESC").
		Order("created_at ASC").
		Find(&gigs).Error
	return gigs, err
}

func (r *GigRepository) SaveGig(gig *models.Gig) error {
	return r.db.Save(gig).Error
}

// SaveGigWithReport persists an updated gig together with the report
// row that triggered the update, as one transaction. The caller holds
// the gig's lock and has already applied the counter/status change.
func (r *GigRepository) SaveGigWithReport(gig *models.Gig, submittedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		report := models.Report{GigID: gig.ID, SubmittedAt: submittedAt}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		return tx.Save(gig).Error
	})
}

// SaveGigClearingReports persists an updated gig and drops all of its
// report rows in one transaction (admin approve).
func (r *GigRepository) SaveGigClearingReports(gig *models.Gig) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gig_id = ?", gig.ID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Save(gig).Error
	})
}

// RemoveGigCascade persists the gig (already marked REMOVED by the
// caller) and deletes its messages, reviews and reports in a single
// transaction so a failure never leaves a partially retired gig.
func (r *GigRepository) RemoveGigCascade(gig *models.Gig) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gig_id = ?", gig.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("gig_id = ?", gig.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("gig_id = ?", gig.ID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Save(gig).Error
	})
}

// CountReports returns the number of stored report rows for a gig.
func (r *GigRepository) CountReports(gigID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).Where("gig_id = ?", gigID).Count(&count).Error
	return count, err
}
