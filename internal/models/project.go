package models

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

type Project struct {
	ID        uint          `gorm:"primaryKey"`
	Name      string        `gorm:"size:150;not null"`
	Code      string        `gorm:"size:30;uniqueIndex;not null"`
	Location  string        `gorm:"size:255"`
	Status    ProjectStatus `gorm:"size:20;not null;default:active"`
	StartDate *time.Time
	EndDate   *time.Time
	// Default warehouse used when the inventory check auto-creates materials.
	DefaultWarehouseID *uint
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
