package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material: a stock record tied to an item master, warehouse and project.
// StockQty is only mutated inside transactions that lock the row; it never
// goes negative.
type Material struct {
	ID     uint  `gorm:"primaryKey"`
	ItemID *uint `gorm:"index"`
	Item   *Item
	Name   string `gorm:"size:150;not null;index"`

	StockQty          float64 `gorm:"not null;default:0"`
	MinimumStockLevel float64 `gorm:"not null;default:0"`
	MaximumStockLevel float64 `gorm:"not null;default:0"`
	ReorderPoint      float64 `gorm:"not null;default:0"`

	WarehouseID uint `gorm:"index;not null"`
	Warehouse   Warehouse
	ProjectID   uint `gorm:"index;not null"`
	Project     Project

	CostPerUnit decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockTier: low-stock severity. Reorder point is the warning threshold,
// minimum stock level the critical one (reorder_point >= minimum_stock_level).
type StockTier string

const (
	StockOK       StockTier = "ok"
	StockWarning  StockTier = "warning"
	StockCritical StockTier = "critical"
)

func (m *Material) Tier() StockTier {
	switch {
	case m.StockQty <= m.MinimumStockLevel:
		return StockCritical
	case m.StockQty <= m.ReorderPoint:
		return StockWarning
	default:
		return StockOK
	}
}
