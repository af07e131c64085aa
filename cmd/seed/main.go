package main

import (
	"log"
	"os"
	"time"

	"github.com/jasobih/gigboard/internal/config"
	"github.com/jasobih/gigboard/internal/database"
	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/utils"

	"github.com/google/uuid"
)

// Seeds an admin account plus a couple of sample listings for local
// development. Safe to run repeatedly.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	var admin models.User
	result := database.DB.Where("username = ?", adminUsername).First(&admin)
	if result.Error == nil {
		log.Println("Admin user already exists:", admin.Username)
		return
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin = models.User{
		ID:           uuid.New(),
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}
	log.Println("Admin user created:", admin.Username)

	samples := []models.Gig{
		{
			ID:        uuid.New(),
			OwnerID:   admin.ID,
			Title:     "Lawn mowing, front and back yard",
			GigType:   models.GigTypeOddJob,
			Suburb:    "Marrickville",
			Details:   "Standard quarter-acre block, mower provided.",
			Status:    models.GigStatusOpen,
			CreatedAt: time.Now(),
		},
		{
			ID:        uuid.New(),
			OwnerID:   admin.ID,
			Title:     "Saturday market stall spot available",
			GigType:   models.GigTypeMarketSpot,
			Suburb:    "Newtown",
			Details:   "3x3m covered spot near the main entrance.",
			Status:    models.GigStatusOpen,
			CreatedAt: time.Now(),
		},
	}
	for _, gig := range samples {
		if err := database.DB.Create(&gig).Error; err != nil {
			log.Fatal("Failed to seed gig:", err)
		}
	}
	log.Printf("Seeded %d sample gigs", len(samples))
}
