package testutil

import (
	"time"

	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/utils"

	"github.com/google/uuid"
)

// CreateTestUser creates a user with a hashed password.
func CreateTestUser(username, email, password string, role models.Role) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

// DefaultTestUser returns a default member user.
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "test@example.com", "Test123456", models.RoleMember)
}

// DefaultAdminUser returns a default admin user.
func DefaultAdminUser() (*models.User, error) {
	return CreateTestUser("admin", "admin@example.com", "Admin123456", models.RoleAdmin)
}

// CreateTestGig creates an OPEN gig owned by the given user.
func CreateTestGig(ownerID uuid.UUID, title string) *models.Gig {
	return &models.Gig{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		GigType:   models.GigTypeOddJob,
		Suburb:    "Marrickville",
		Details:   "Some details about " + title,
		Status:    models.GigStatusOpen,
		CreatedAt: time.Now(),
	}
}

// CreateTestGigWithStatus creates a gig in a specific status.
func CreateTestGigWithStatus(ownerID uuid.UUID, title string, status models.GigStatus) *models.Gig {
	gig := CreateTestGig(ownerID, title)
	gig.Status = status
	return gig
}

// CreateTestMessage creates a thread message with an explicit seq.
func CreateTestMessage(gigID, senderID uuid.UUID, seq uint64, content string) *models.Message {
	return &models.Message{
		ID:        uuid.New(),
		GigID:     gigID,
		SenderID:  senderID,
		Seq:       seq,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
