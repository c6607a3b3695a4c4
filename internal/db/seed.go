package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scene-studio/internal/models"
)

// SeedAdminUser guarantees a default admin exists so a fresh install is
// reachable. The password comes from config; if it is empty we still create
// the row with a well-known default and nag in the log.
func SeedAdminUser(db *gorm.DB, password string) {
	if password == "" {
		password = "studio-admin"
		log.Println("⚠️ STUDIO_AUTH_ADMIN_PASSWORD not set, default admin password in effect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("❌ Failed to hash admin password: %v", err)
		return
	}

	admin := models.Users{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}

	// UPSERT based on 'Username' to prevent duplicates on restart
	db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true, // If it exists, leave it alone.
	}).Create(&admin)

	log.Println("🌱 Admin user ensured")
}
