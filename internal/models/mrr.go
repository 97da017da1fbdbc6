package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MrrStatus string

const (
	MrrDraft       MrrStatus = "DRAFT"
	MrrSubmitted   MrrStatus = "SUBMITTED"
	MrrUnderReview MrrStatus = "UNDER_REVIEW"
	MrrApproved    MrrStatus = "APPROVED"
	MrrRejected    MrrStatus = "REJECTED"
	MrrProcessing  MrrStatus = "PROCESSING"
	MrrCompleted   MrrStatus = "COMPLETED"
	MrrCancelled   MrrStatus = "CANCELLED"
)

type MrrPriority string

const (
	PriorityLow    MrrPriority = "LOW"
	PriorityMedium MrrPriority = "MEDIUM"
	PriorityHigh   MrrPriority = "HIGH"
	PriorityUrgent MrrPriority = "URGENT"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// MaterialRequirementRequest: a project's ask for specific items/quantities.
// TotalEstimatedCost is always recomputed from the items, never taken from
// the client.
type MaterialRequirementRequest struct {
	ID              uint   `gorm:"primaryKey"`
	ReferenceNumber string `gorm:"size:40;uniqueIndex;not null"`

	ProjectID     uint `gorm:"index;not null"`
	Project       Project
	RequestedByID uint `gorm:"not null"`
	RequestedBy   User `gorm:"foreignKey:RequestedByID"`

	RequestDate time.Time `gorm:"not null"`
	RequiredBy  *time.Time
	Priority    MrrPriority    `gorm:"size:10;not null;default:MEDIUM"`
	Status      MrrStatus      `gorm:"size:20;not null;default:DRAFT;index"`
	Approval    ApprovalStatus `gorm:"size:10;not null;default:PENDING"`
	Notes       string         `gorm:"size:1000"`

	TotalEstimatedCost decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	ApprovedByID *uint
	ApprovedAt   *time.Time

	ComponentID     *uint
	SubcontractorID *uint

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []MrrItem `gorm:"foreignKey:MrrID;constraint:OnDelete:CASCADE"`
}

// MrrItem: one requested line within an MRR.
type MrrItem struct {
	ID     uint `gorm:"primaryKey"`
	MrrID  uint `gorm:"index;not null"`
	ItemID uint `gorm:"index;not null"`
	Item   Item

	Quantity      float64     `gorm:"not null"`
	Unit          string      `gorm:"size:20;not null"`
	Specification string      `gorm:"size:255"`
	Purpose       string      `gorm:"size:255"`
	Priority      MrrPriority `gorm:"size:10;not null;default:MEDIUM"`

	EstimatedUnitCost decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
