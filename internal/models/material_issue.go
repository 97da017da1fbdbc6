package models

import "time"

type IssueStatus string

const (
	IssuePending   IssueStatus = "PENDING"
	IssueIssued    IssueStatus = "ISSUED"
	IssueCancelled IssueStatus = "CANCELLED"
)

// MaterialIssue: one row per issued line item, NOT one per MRR. Rows created
// through a single bulk call share a BatchID.
type MaterialIssue struct {
	ID uint `gorm:"primaryKey"`

	ProjectID  uint `gorm:"index;not null"`
	Project    Project
	MaterialID uint `gorm:"index;not null"`
	Material   Material

	Quantity  float64   `gorm:"not null"`
	IssueDate time.Time `gorm:"index;not null"`
	Purpose   string    `gorm:"size:255"`
	Location  string    `gorm:"size:255"`

	IssuedByID   uint `gorm:"not null"`
	ReceivedByID *uint

	MrrID           *uint                       `gorm:"index"`
	Mrr             *MaterialRequirementRequest `gorm:"foreignKey:MrrID"`
	ComponentID     *uint
	SubcontractorID *uint
	WarehouseID     *uint
	Warehouse       *Warehouse

	BatchID string      `gorm:"size:36;index;not null"`
	Status  IssueStatus `gorm:"size:10;not null;default:ISSUED"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
