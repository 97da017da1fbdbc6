package inventory

import (
	"github.com/shopspring/decimal"
)

// LineStatus: four-way classification of one MRR line against stock. The four
// cases partition (exists, created, available vs required) with no overlap.
type LineStatus string

const (
	LineAvailable         LineStatus = "AVAILABLE"
	LineInsufficientStock LineStatus = "INSUFFICIENT_STOCK"
	LineNotInInventory    LineStatus = "NOT_IN_INVENTORY"
	LineCreatedNoStock    LineStatus = "CREATED_NO_STOCK"
)

// InventoryStatus: rollup over all lines of a check.
type InventoryStatus string

const (
	StatusReadyForIssue      InventoryStatus = "READY_FOR_ISSUE"
	StatusNeedsPurchase      InventoryStatus = "NEEDS_PURCHASE"
	StatusInsufficientStock  InventoryStatus = "INSUFFICIENT_STOCK"
	StatusPartiallyAvailable InventoryStatus = "PARTIALLY_AVAILABLE"
)

// StockRef: one stock record backing a line, so a requirement spanning
// several warehouses can be split into separate issue rows.
type StockRef struct {
	MaterialID  uint    `json:"material_id"`
	WarehouseID uint    `json:"warehouse_id"`
	StockQty    float64 `json:"stock_qty"`
}

// CheckLine: per-line result of an inventory check. Ephemeral, recomputed on
// every check, never persisted.
type CheckLine struct {
	MrrItemID  uint   `json:"mrr_item_id"`
	ItemID     uint   `json:"item_id"`
	ItemName   string `json:"item_name"`
	MaterialID *uint  `json:"material_id"` // nil when no stock record matches

	RequiredQuantity  float64    `json:"required_quantity"`
	AvailableStock    float64    `json:"available_stock"`
	Status            LineStatus `json:"status"`
	SuggestedQuantity float64    `json:"suggested_quantity"`

	// Every stock record behind AvailableStock. More than one entry means the
	// requirement may need splitting across materials at issue time.
	Breakdown []StockRef `json:"stock_breakdown,omitempty"`

	WarehouseID *uint `json:"warehouse_id"`
	ProjectID   *uint `json:"project_id"`

	CostPerUnit  *decimal.Decimal `json:"cost_per_unit"`
	ReorderPoint *float64         `json:"reorder_point"`
	MinimumStock *float64         `json:"minimum_stock_level"`
}

type CheckSummary struct {
	Total          int `json:"total"`
	Available      int `json:"available"`
	Insufficient   int `json:"insufficient"`
	NotInInventory int `json:"not_in_inventory"`
	Created        int `json:"created"`
}

// ClassifyLine maps one line onto the four-way partition:
//
//	AVAILABLE           material exists, available >= required
//	INSUFFICIENT_STOCK  material exists, available < required
//	CREATED_NO_STOCK    no material existed, auto-create made a zero-stock one
//	NOT_IN_INVENTORY    no material exists, auto-create off
func ClassifyLine(exists, created bool, available, required float64) LineStatus {
	if !exists {
		if created {
			return LineCreatedNoStock
		}
		return LineNotInInventory
	}
	if available >= required {
		return LineAvailable
	}
	return LineInsufficientStock
}

// TotalStock sums the stock behind a line across all its records.
func TotalStock(refs []StockRef) float64 {
	var total float64
	for _, r := range refs {
		total += r.StockQty
	}
	return total
}

// BestSource picks the record the issue form should draw from first: the one
// holding the most stock. Returns -1 for an empty slice.
func BestSource(refs []StockRef) int {
	best := -1
	for i, r := range refs {
		if best < 0 || r.StockQty > refs[best].StockQty {
			best = i
		}
	}
	return best
}

// SuggestedQuantity is the issue-form pre-population policy: never more than
// was requested, never more than issuable is. The cap is the stock of the
// single record the suggestion points at, not the aggregate over warehouses,
// so the pre-filled row can never fail the issue-time stock guard. Lines
// without a usable material record (including freshly auto-created zero-stock
// ones) suggest nothing.
func SuggestedQuantity(status LineStatus, required, issuable float64) float64 {
	switch status {
	case LineAvailable, LineInsufficientStock:
		if issuable < required {
			return issuable
		}
		return required
	default:
		return 0
	}
}

func Summarize(lines []CheckLine) CheckSummary {
	s := CheckSummary{Total: len(lines)}
	for _, l := range lines {
		switch l.Status {
		case LineAvailable:
			s.Available++
		case LineInsufficientStock:
			s.Insufficient++
		case LineNotInInventory:
			s.NotInInventory++
		case LineCreatedNoStock:
			s.Created++
		}
	}
	return s
}

// Rollup derives the overall inventory status. Missing materials dominate
// shortages: a line absent from inventory always forces purchasing, so
// NEEDS_PURCHASE wins when both conditions occur. Auto-created zero-stock
// lines still need purchasing and count the same as missing ones.
func Rollup(lines []CheckLine) InventoryStatus {
	if len(lines) == 0 {
		return StatusReadyForIssue
	}
	allAvailable := true
	anyMissing := false
	anyShort := false
	for _, l := range lines {
		switch l.Status {
		case LineAvailable:
		case LineNotInInventory, LineCreatedNoStock:
			anyMissing = true
			allAvailable = false
		case LineInsufficientStock:
			anyShort = true
			allAvailable = false
		}
	}
	switch {
	case allAvailable:
		return StatusReadyForIssue
	case anyMissing:
		return StatusNeedsPurchase
	case anyShort:
		return StatusInsufficientStock
	default:
		return StatusPartiallyAvailable
	}
}
