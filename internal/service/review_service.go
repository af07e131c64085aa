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

// ReviewService owns reviews, gated on gig completion. A reviewer
// gets exactly one review per gig; a duplicate submission is rejected
// and never overwrites the stored one.
type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	gigRepo    *repository.GigRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, gigRepo *repository.GigRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		gigRepo:    gigRepo,
	}
}

// Submit stores a review for a COMPLETED gig. The reviewee is the gig
// owner.
func (s *ReviewService) Submit(gigID, reviewerID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.Invalid("rating", "must be between 1 and 5")
	}

	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return nil, apperrors.NotFound("gig")
	}

	if gig.Status != models.GigStatusCompleted {
		return nil, apperrors.Conflict(string(gig.Status), "submit review")
	}

	existing, err := s.reviewRepo.GetByGigAndReviewer(gigID, reviewerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Invalid("review", "you have already reviewed this gig")
	}

	review := &models.Review{
		ID:         uuid.New(),
		GigID:      gigID,
		ReviewerID: reviewerID,
		RevieweeID: gig.OwnerID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now(),
	}

	if err := s.reviewRepo.CreateReview(review); err != nil {
		logger.Log.Error("Failed to store review",
			zap.String("gig_id", gigID.String()),
			zap.String("reviewer_id", reviewerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Review submitted",
		zap.String("gig_id", gigID.String()),
		zap.String("reviewer_id", reviewerID.String()),
		zap.Int("rating", rating),
	)

	return review, nil
}

// ListForUser returns all reviews a user has received.
func (s *ReviewService) ListForUser(revieweeID uuid.UUID) ([]models.Review, error) {
	return s.reviewRepo.ListByReviewee(revieweeID)
}

// AggregateForUser recomputes {count, meanRating} over the user's
// stored reviews.
func (s *ReviewService) AggregateForUser(revieweeID uuid.UUID) (*repository.ReviewAggregate, error) {
	return s.reviewRepo.AggregateByReviewee(revieweeID)
}

// AggregateForGig recomputes {count, meanRating} for one gig.
func (s *ReviewService) AggregateForGig(gigID uuid.UUID) (*repository.ReviewAggregate, error) {
	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return nil, apperrors.NotFound("gig")
	}

	return s.reviewRepo.AggregateByGig(gigID)
}
