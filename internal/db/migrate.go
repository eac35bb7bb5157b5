package db

import (
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Email normalization

	"yamdb/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate creates or updates tables, foreign keys, constraints and indexes
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Genre{},
		&domain.Title{},
		&domain.Review{},
		&domain.Comment{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logrus.Info("Migration completed.")
	return nil
}

// EnsureSuperuser creates the bootstrap superuser if it does not exist yet
func EnsureSuperuser(db *gorm.DB, username, email string) error {
	if username == "" || email == "" {
		return nil // Seeding not configured
	}
	email = strings.ToLower(email) // Stored emails are lowercase, lookups depend on it
	var user domain.User
	err := db.Where("username = ?", username).First(&user).Error
	if err == nil {
		return nil // Already present
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup superuser: %w", err)
	}
	user = domain.User{
		Username:    username,
		Email:       email,
		Role:        domain.RoleAdmin,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"username": username,
		"user_id":  user.ID,
	}).Info("Superuser created")
	return nil
}
