package service

import (
	"strings"
	"time"

	"github.com/jasobih/gigboard/internal/apperrors"
	"github.com/jasobih/gigboard/internal/broker"
	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/repository"
	"github.com/jasobih/gigboard/internal/wal"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLength = 5000

// MessageService owns per-gig conversation threads. Appends to one
// gig serialize under the gig's lock and receive a dense, strictly
// increasing sequence number; appends to different gigs are fully
// independent. COMPLETED gigs still accept messages, REMOVED gigs
// accept nothing.
type MessageService struct {
	messageRepo *repository.MessageRepository
	gigRepo     *repository.GigRepository
	broker      broker.ThreadBroker
	wal         *wal.WAL
	locks       *GigLocks
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	gigRepo *repository.GigRepository,
	threadBroker broker.ThreadBroker,
	walInstance *wal.WAL,
	locks *GigLocks,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		gigRepo:     gigRepo,
		broker:      threadBroker,
		wal:         walInstance,
		locks:       locks,
	}
}

// Append adds a message to a gig's thread: journal to the WAL first,
// publish for live listeners, then insert. The per-gig lock makes the
// seq assignment race-free.
func (s *MessageService) Append(gigID, senderID uuid.UUID, senderUsername, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Invalid("content", "message cannot be empty")
	}
	if len(content) > maxMessageLength {
		return nil, apperrors.Invalid("content", "message too long")
	}

	unlock := s.locks.Lock(gigID)
	defer unlock()

	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil {
		return nil, apperrors.NotFound("gig")
	}
	if gig.Status == models.GigStatusRemoved {
		return nil, &apperrors.PermissionError{Reason: "gig has been removed"}
	}

	maxSeq, err := s.messageRepo.MaxSeq(gigID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg := &models.Message{
		ID:        uuid.New(),
		GigID:     gigID,
		SenderID:  senderID,
		Seq:       maxSeq + 1,
		Content:   content,
		CreatedAt: now,
	}

	entry := wal.Entry{
		MessageID: msg.ID.String(),
		GigID:     gigID.String(),
		SenderID:  senderID.String(),
		Seq:       msg.Seq,
		Content:   content,
		Timestamp: now,
	}
	if err := s.wal.Write(entry); err != nil {
		return nil, err
	}

	event := broker.ThreadEvent{
		MessageID: msg.ID.String(),
		GigID:     gigID.String(),
		SenderID:  senderID.String(),
		Username:  senderUsername,
		Seq:       msg.Seq,
		Content:   content,
		Timestamp: now.Format(time.RFC3339),
	}
	if err := s.broker.Publish(event); err != nil {
		logger.Log.Warn("Failed to publish thread event",
			zap.String("gig_id", gigID.String()),
			zap.Error(err),
		)
		// Live fan-out is best-effort; the append itself still counts
	}

	if err := s.messageRepo.CreateMessage(msg); err != nil {
		logger.Log.Error("Failed to persist message",
			zap.String("gig_id", gigID.String()),
			zap.Uint64("seq", msg.Seq),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Debug("Message appended",
		zap.String("gig_id", gigID.String()),
		zap.String("sender_id", senderID.String()),
		zap.Uint64("seq", msg.Seq),
	)

	return msg, nil
}

// ListByGig returns a gig's full thread in append order. Any
// authenticated user may read any thread.
func (s *MessageService) ListByGig(gigID uuid.UUID) ([]models.Message, error) {
	gig, err := s.gigRepo.GetGigByID(gigID)
	if err != nil {
		return nil, err
	}
	if gig == nil || gig.Status == models.GigStatusRemoved {
		return nil, apperrors.NotFound("gig")
	}

	return s.messageRepo.ListByGig(gigID)
}

// ListBySender returns all messages the user has sent across gigs.
func (s *MessageService) ListBySender(senderID uuid.UUID) ([]models.Message, error) {
	return s.messageRepo.ListBySender(senderID)
}
