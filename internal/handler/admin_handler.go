package handler

import (
	"net/http"

	"github.com/jasobih/gigboard/internal/service"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminHandler exposes the moderation queue. Every route is behind
// AdminKeyMiddleware.
type AdminHandler struct {
	moderationService *service.ModerationService
}

func NewAdminHandler(moderationService *service.ModerationService) *AdminHandler {
	return &AdminHandler{
		moderationService: moderationService,
	}
}

// Flagged returns the moderation queue, most-reported first.
// GET /api/admin/flagged
func (h *AdminHandler) Flagged(c *gin.Context) {
	gigs, err := h.moderationService.ListFlagged()
	if err != nil {
		logger.Log.Error("Failed to fetch flagged gigs", zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gigs)
}

// Approve puts a flagged gig back to OPEN and clears its reports.
// POST /api/admin/gigs/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	logger.Log.Info("Admin approving gig",
		zap.String("gig_id", gigID.String()),
	)

	gig, err := h.moderationService.Approve(gigID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// Remove retires a gig and everything hanging off it.
// DELETE /api/admin/gigs/:id
func (h *AdminHandler) Remove(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	logger.Log.Info("Admin removing gig",
		zap.String("gig_id", gigID.String()),
	)

	if err := h.moderationService.Remove(gigID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "gig deleted successfully"})
}
