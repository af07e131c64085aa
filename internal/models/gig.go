package models

import (
	"time"

	"github.com/google/uuid"
)

type GigType string

const (
	GigTypeOddJob     GigType = "ODD_JOB"
	GigTypeMarketSpot GigType = "MARKET_SPOT"
)

// KnownGigType reports whether t is a recognised listing type.
func KnownGigType(t GigType) bool {
	return t == GigTypeOddJob || t == GigTypeMarketSpot
}

type GigStatus string

const (
	GigStatusOpen      GigStatus = "OPEN"
	GigStatusFlagged   GigStatus = "FLAGGED"
	GigStatusCompleted GigStatus = "COMPLETED"
	GigStatusRemoved   GigStatus = "REMOVED"
)

// Gig is a marketplace listing. Status and ReportCount are only ever
// mutated through GigService/ModerationService under the gig's lock.
type Gig struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title       string    `gorm:"type:varchar(120);not null" json:"title"`
	GigType     GigType   `gorm:"type:varchar(20);not null;index" json:"gig_type"`
	Suburb      string    `gorm:"type:varchar(80);not null;index" json:"suburb"`
	Details     string    `gorm:"type:text;not null" json:"details"`
	ImageURL    string    `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	Status      GigStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ReportCount int       `gorm:"not null;default:0" json:"report_count"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}
