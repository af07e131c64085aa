package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is an anonymous moderation signal against a gig. Rows are
// purely additive and only ever deleted in bulk, on admin approve or
// gig removal.
type Report struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	GigID       uuid.UUID `gorm:"type:uuid;not null;index" json:"gig_id"`
	SubmittedAt time.Time `gorm:"index" json:"submitted_at"`
}
