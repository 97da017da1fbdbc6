package issue

import "fmt"

// IssueRow: one (material, warehouse, quantity) tuple of a bulk issue.
type IssueRow struct {
	MaterialID  uint    `json:"material_id"`
	WarehouseID *uint   `json:"warehouse_id"`
	Quantity    float64 `json:"quantity"`
}

// touched: a row the user actually filled in. Forms pre-populate more rows
// than get used; rows with neither field set are dropped, not errored.
func (r IssueRow) touched() bool {
	return r.MaterialID != 0 || r.Quantity != 0
}

// RowError: a validation failure attributable to one row and one field, so
// the caller knows whether to pick a material or fix a quantity.
type RowError struct {
	Index      int    `json:"index"`
	MaterialID uint   `json:"material_id"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Index+1, e.Message)
}

// ValidatedRow keeps the original row index through filtering so later
// failures stay attributable to the submitted position.
type ValidatedRow struct {
	Index int
	Row   IssueRow
}

// ValidateRows filters and validates the submitted rows. Untouched rows are
// silently dropped. A touched row must have both a material and a positive
// quantity; each miss produces its own field-specific error. Any error means
// nothing may be committed.
func ValidateRows(rows []IssueRow) ([]ValidatedRow, []RowError) {
	valid := make([]ValidatedRow, 0, len(rows))
	var errs []RowError

	for i, r := range rows {
		if !r.touched() {
			continue
		}
		if r.MaterialID == 0 {
			errs = append(errs, RowError{
				Index:      i,
				MaterialID: r.MaterialID,
				Field:      "material_id",
				Message:    fmt.Sprintf("row %d: select a material", i+1),
			})
			continue
		}
		if r.Quantity <= 0 {
			errs = append(errs, RowError{
				Index:      i,
				MaterialID: r.MaterialID,
				Field:      "quantity",
				Message:    fmt.Sprintf("row %d: quantity must be greater than zero", i+1),
			})
			continue
		}
		valid = append(valid, ValidatedRow{Index: i, Row: r})
	}

	return valid, errs
}
