package repository

import (
	"github.com/jasobih/gigboard/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByGig returns a gig's full thread oldest-first. Seq is the
// thread's total order, so the result is the exact append order.
func (r *MessageRepository) ListByGig(gigID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("gig_id = ?", gigID).
		Order("seq ASC").
		Find(&messages).Error
	return messages, err
}

// ListBySender returns every message a user has sent, newest-first.
func (r *MessageRepository) ListBySender(senderID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

// MaxSeq returns the highest sequence number in a gig's thread, or 0
// for an empty thread. Only meaningful while the caller holds the
// gig's append lock.
func (r *MessageRepository) MaxSeq(gigID uuid.UUID) (uint64, error) {
	var maxSeq *uint64
	err := r.db.Model(&models.Message{}).
		Where("gig_id = ?", gigID).
		Select("MAX(seq)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	if maxSeq == nil {
		return 0, nil
	}
	return *maxSeq, nil
}
