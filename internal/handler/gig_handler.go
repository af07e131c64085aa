package handler

import (
	"net/http"

	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/repository"
	"github.com/jasobih/gigboard/internal/service"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GigHandler struct {
	gigService        *service.GigService
	moderationService *service.ModerationService
}

func NewGigHandler(gigService *service.GigService, moderationService *service.ModerationService) *GigHandler {
	return &GigHandler{
		gigService:        gigService,
		moderationService: moderationService,
	}
}

type CreateGigRequest struct {
	Title   string `json:"title" binding:"required"`
	GigType string `json:"gig_type" binding:"required"`
	Suburb  string `json:"suburb" binding:"required"`
	Details string `json:"details" binding:"required"`
}

// Create posts a new listing. Image attachment is a separate call;
// the gig is valid and visible without one.
// POST /api/gigs
func (h *GigHandler) Create(c *gin.Context) {
	var req CreateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ownerID := c.MustGet("user_id").(uuid.UUID)

	gig, err := h.gigService.CreateGig(ownerID, service.GigInput{
		Title:   req.Title,
		GigType: models.GigType(req.GigType),
		Suburb:  req.Suburb,
		Details: req.Details,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gig)
}

// List returns current listings, optionally filtered.
// GET /api/gigs?search=&gig_type=&suburb=
func (h *GigHandler) List(c *gin.Context) {
	filters := repository.GigFilters{
		Search:  c.Query("search"),
		GigType: models.GigType(c.Query("gig_type")),
		Suburb:  c.Query("suburb"),
	}

	gigs, err := h.gigService.ListGigs(filters)
	if err != nil {
		logger.Log.Error("Failed to list gigs", zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gigs)
}

// Get returns a single listing.
// GET /api/gigs/:id
func (h *GigHandler) Get(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	gig, err := h.gigService.GetGig(gigID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// Complete marks the caller's gig as COMPLETED.
// POST /api/gigs/:id/complete
func (h *GigHandler) Complete(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	requesterID := c.MustGet("user_id").(uuid.UUID)

	gig, err := h.gigService.MarkComplete(gigID, requesterID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// UploadImage attaches (or replaces) the gig's image.
// POST /api/gigs/:id/upload-image
func (h *GigHandler) UploadImage(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	requesterID := c.MustGet("user_id").(uuid.UUID)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image file"})
		return
	}
	defer file.Close()

	gig, err := h.gigService.AttachImage(gigID, requesterID, fileHeader.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// Report files an anonymous report against a gig.
// POST /api/gigs/:id/report
func (h *GigHandler) Report(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	if _, err := h.moderationService.Report(gigID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "gig reported successfully"})
}
