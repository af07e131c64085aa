package handler

import (
	"net/http"

	"github.com/jasobih/gigboard/internal/service"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService    *service.AuthService
	gigService     *service.GigService
	messageService *service.MessageService
	reviewService  *service.ReviewService
}

func NewUserHandler(
	authService *service.AuthService,
	gigService *service.GigService,
	messageService *service.MessageService,
	reviewService *service.ReviewService,
) *UserHandler {
	return &UserHandler{
		authService:    authService,
		gigService:     gigService,
		messageService: messageService,
		reviewService:  reviewService,
	}
}

type UpdateMeRequest struct {
	Bio string `json:"bio"`
}

// GetUser returns a public profile.
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"bio":      user.Bio,
	})
}

// UpdateMe updates the calling user's bio.
// PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)

	user, err := h.authService.UpdateBio(userID, req.Bio)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"bio":      user.Bio,
	})
}

// MyGigs returns the calling user's own listings.
// GET /api/gigs/me
func (h *UserHandler) MyGigs(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	gigs, err := h.gigService.ListGigsByOwner(userID)
	if err != nil {
		logger.Log.Error("Failed to list own gigs",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gigs)
}

// MyMessages returns every message the calling user has sent.
// GET /api/messages/me
func (h *UserHandler) MyMessages(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	messages, err := h.messageService.ListBySender(userID)
	if err != nil {
		logger.Log.Error("Failed to list own messages",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// UserReviews returns the reviews a user has received, with the
// recomputed aggregate.
// GET /api/users/:id/reviews
func (h *UserHandler) UserReviews(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	reviews, err := h.reviewService.ListForUser(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	aggregate, err := h.reviewService.AggregateForUser(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":   reviews,
		"aggregate": aggregate,
	})
}
