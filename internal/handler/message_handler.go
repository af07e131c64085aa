package handler

import (
	"net/http"

	"github.com/jasobih/gigboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Post appends a message to a gig's thread.
// POST /api/gigs/:id/messages
func (h *MessageHandler) Post(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	senderID := c.MustGet("user_id").(uuid.UUID)
	username := c.GetString("username")

	msg, err := h.messageService.Append(gigID, senderID, username, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// List returns a gig's full thread, oldest first.
// GET /api/gigs/:id/messages
func (h *MessageHandler) List(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	messages, err := h.messageService.ListByGig(gigID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}
