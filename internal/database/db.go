package database

import (
	"log"

	"construction-backend/internal/config"
	"construction-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	// Issue rows from before batch correlation existed carry no batch_id.
	// Backfill before AutoMigrate tightens the column to NOT NULL.
	if DB.Migrator().HasTable(&models.MaterialIssue{}) &&
		DB.Migrator().HasColumn(&models.MaterialIssue{}, "batch_id") {
		var nullCount int64
		DB.Raw("SELECT COUNT(*) FROM material_issues WHERE batch_id IS NULL OR batch_id = ''").Scan(&nullCount)
		if nullCount > 0 {
			log.Printf("Backfilling batch_id on %d legacy material_issues rows", nullCount)
			DB.Exec("UPDATE material_issues SET batch_id = gen_random_uuid()::text WHERE batch_id IS NULL OR batch_id = ''")
		}
	}

	err = DB.AutoMigrate(
		&models.Project{},
		&models.User{},
		&models.Item{},
		&models.Warehouse{},
		&models.Material{},
		&models.MaterialRequirementRequest{},
		&models.MrrItem{},
		&models.MaterialIssue{},
		&models.SiteTransfer{},
		&models.MaterialReturn{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connected, migration complete")
}
