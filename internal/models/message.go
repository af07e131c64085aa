package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a gig's conversation thread. Seq is the
// position within the thread: unique per gig, assigned under the
// gig's append lock, never reused.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GigID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_messages_gig_seq" json:"gig_id"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	Seq       uint64    `gorm:"not null;uniqueIndex:idx_messages_gig_seq" json:"seq"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}
