package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is immutable once created. At most one review exists per
// (gig, reviewer) pair; the reviewee is always the gig owner.
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GigID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_gig_reviewer" json:"gig_id"`
	ReviewerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_gig_reviewer" json:"reviewer_id"`
	RevieweeID uuid.UUID `gorm:"type:uuid;not null;index" json:"reviewee_id"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
