package models

import "time"

type TransferStatus string

const (
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// SiteTransfer: movement of previously issued material between projects.
type SiteTransfer struct {
	ID uint `gorm:"primaryKey"`

	FromProjectID uint    `gorm:"index;not null"`
	FromProject   Project `gorm:"foreignKey:FromProjectID"`
	ToProjectID   uint    `gorm:"index;not null"`
	ToProject     Project `gorm:"foreignKey:ToProjectID"`

	MaterialID uint `gorm:"index;not null"`
	Material   Material

	Quantity     float64   `gorm:"not null"`
	TransferDate time.Time `gorm:"not null"`
	Notes        string    `gorm:"size:500"`

	TransferredByID uint           `gorm:"not null"`
	Status          TransferStatus `gorm:"size:10;not null;default:COMPLETED"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaterialReturn: previously issued stock handed back to the warehouse.
type MaterialReturn struct {
	ID uint `gorm:"primaryKey"`

	ProjectID  uint `gorm:"index;not null"`
	MaterialID uint `gorm:"index;not null"`
	Material   Material

	Quantity   float64   `gorm:"not null"`
	ReturnDate time.Time `gorm:"not null"`
	Notes      string    `gorm:"size:500"`

	ReturnedByID uint `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
