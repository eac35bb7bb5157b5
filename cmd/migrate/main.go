package main

import (
	"github.com/sirupsen/logrus" // Logrus for structured logging

	"yamdb/internal/config" // Custom import path (Config)
	"yamdb/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	if err := db.EnsureSuperuser(gdb, cfg.SuperuserUsername, cfg.SuperuserEmail); err != nil {
		logrus.Fatalf("failed to seed superuser: %v", err)
	}
}
