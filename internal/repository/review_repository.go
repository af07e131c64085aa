package repository

import (
	"errors"

	"github.com/jasobih/gigboard/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewAggregate is the recomputed read-side summary for a reviewee.
type ReviewAggregate struct {
	Count      int64   `json:"count"`
	MeanRating float64 `json:"mean_rating"`
}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) CreateReview(review *models.Review) error {
	return r.db.Create(review).Error
}

// GetByGigAndReviewer returns the reviewer's review for a gig, or nil.
func (r *ReviewRepository) GetByGigAndReviewer(gigID, reviewerID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.
		Where("gig_id = ? AND reviewer_id = ?", gigID, reviewerID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// ListByReviewee returns all reviews received by a user, newest-first.
func (r *ReviewRepository) ListByReviewee(revieweeID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.
		Where("reviewee_id = ?", revieweeID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// AggregateByReviewee recomputes count and mean rating from the stored
// rows. No denormalised aggregate is kept, so there is nothing to go
// stale.
func (r *ReviewRepository) AggregateByReviewee(revieweeID uuid.UUID) (*ReviewAggregate, error) {
	var agg ReviewAggregate
	err := r.db.Model(&models.Review{}).
		Where("reviewee_id = ?", revieweeID).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS mean_rating").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// AggregateByGig recomputes count and mean rating for one gig.
func (r *ReviewRepository) AggregateByGig(gigID uuid.UUID) (*ReviewAggregate, error) {
	var agg ReviewAggregate
	err := r.db.Model(&models.Review{}).
		Where("gig_id = ?", gigID).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS mean_rating").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}
