package handler

import (
	"net/http"
	"time"

	"github.com/jasobih/gigboard/internal/broker"
	"github.com/jasobih/gigboard/internal/service"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // add origin check in production
	},
}

// WebSocketHandler streams a gig's thread appends live. One
// connection watches exactly one gig; appends still go through the
// HTTP endpoint, the socket is read-only.
type WebSocketHandler struct {
	gigService *service.GigService
	broker     broker.ThreadBroker
}

func NewWebSocketHandler(gigService *service.GigService, threadBroker broker.ThreadBroker) *WebSocketHandler {
	return &WebSocketHandler{
		gigService: gigService,
		broker:     threadBroker,
	}
}

// Watch upgrades the connection and relays the gig's thread events.
// GET /api/gigs/:id/ws
func (h *WebSocketHandler) Watch(c *gin.Context) {
	gigID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig not found"})
		return
	}

	// Subscribing to a removed/absent gig would stream nothing forever
	if _, err := h.gigService.GetGig(gigID); err != nil {
		writeError(c, err)
		return
	}

	username := c.GetString("username")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	events, cancel, err := h.broker.Subscribe(ctx, gigID.String())
	if err != nil {
		logger.Log.Error("Failed to subscribe to thread",
			zap.String("gig_id", gigID.String()),
			zap.Error(err),
		)
		return
	}
	defer cancel()

	logger.Log.Debug("Thread watcher connected",
		zap.String("gig_id", gigID.String()),
		zap.String("username", username),
	)

	// Reader goroutine only consumes control frames and detects close
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxFrameSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.Log.Debug("Failed to write thread event", zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
