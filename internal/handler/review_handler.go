package handler

import (
	"net/http"

	"github.com/jasobih/gigboard/internal/apperrors"
	"github.com/jasobih/gigboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// Submit stores a review for a completed gig.
// POST /api/gigs/:id/reviews
func (h *ReviewHandler) Submit(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	reviewerID := c.MustGet("user_id").(uuid.UUID)

	review, err := h.reviewService.Submit(gigID, reviewerID, req.Rating, req.Comment)
	if err != nil {
		// Bad ratings and duplicate submissions are 422 on this route
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GigAggregate returns the recomputed rating summary for one gig.
// GET /api/gigs/:id/reviews
func (h *ReviewHandler) GigAggregate(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	aggregate, err := h.reviewService.AggregateForGig(gigID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, aggregate)
}
