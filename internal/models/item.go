package models

import "time"

// Item: catalog entry (item master), independent of any stock location.
type Item struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:150;not null;index"`
	Category      string `gorm:"size:100;index"`
	Brand         string `gorm:"size:100"`
	Unit          string `gorm:"size:20;not null"` // e.g. "bag", "kg", "m3", "nos"
	Specification string `gorm:"size:255"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
