package models

import "time"

type Warehouse struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;not null"`
	Location  string `gorm:"size:255"`
	ProjectID *uint  `gorm:"index"`
	Project   *Project
	CreatedAt time.Time
	UpdatedAt time.Time
}
