package issue

import (
	"strings"
	"testing"
)

func TestValidateRows_DistinctAttributableErrors(t *testing.T) {
	rows := []IssueRow{
		{MaterialID: 5, Quantity: 0}, // material picked, quantity missing
		{MaterialID: 0, Quantity: 3}, // quantity entered, material missing
	}

	valid, errs := ValidateRows(rows)

	if len(valid) != 0 {
		t.Fatalf("no rows should validate, got %d", len(valid))
	}
	if len(errs) != 2 {
		t.Fatalf("want two distinct errors, got %d: %v", len(errs), errs)
	}

	if errs[0].Index != 0 || errs[0].Field != "quantity" {
		t.Errorf("first error = %+v, want index 0 on field quantity", errs[0])
	}
	if errs[1].Index != 1 || errs[1].Field != "material_id" {
		t.Errorf("second error = %+v, want index 1 on field material_id", errs[1])
	}

	// Messages must tell the user which fix applies, not a generic complaint.
	if !strings.Contains(errs[0].Message, "quantity") {
		t.Errorf("quantity error message should name the quantity: %q", errs[0].Message)
	}
	if !strings.Contains(errs[1].Message, "material") {
		t.Errorf("material error message should name the material: %q", errs[1].Message)
	}
}

func TestValidateRows_UntouchedRowsDroppedSilently(t *testing.T) {
	rows := []IssueRow{
		{MaterialID: 3, Quantity: 12},
		{}, // pre-populated but never touched
		{},
		{MaterialID: 9, Quantity: 1},
	}

	valid, errs := ValidateRows(rows)

	if len(errs) != 0 {
		t.Fatalf("untouched rows must not error: %v", errs)
	}
	if len(valid) != 2 {
		t.Fatalf("want 2 valid rows, got %d", len(valid))
	}
	// Original positions survive filtering.
	if valid[0].Index != 0 || valid[1].Index != 3 {
		t.Errorf("indices = %d, %d, want 0 and 3", valid[0].Index, valid[1].Index)
	}
}

func TestValidateRows_NegativeQuantity(t *testing.T) {
	_, errs := ValidateRows([]IssueRow{{MaterialID: 4, Quantity: -2}})
	if len(errs) != 1 || errs[0].Field != "quantity" {
		t.Errorf("negative quantity must produce a quantity error, got %v", errs)
	}
}

func TestValidateRows_AllValid(t *testing.T) {
	rows := []IssueRow{
		{MaterialID: 1, Quantity: 5},
		{MaterialID: 2, Quantity: 0.5},
	}
	valid, errs := ValidateRows(rows)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(valid) != 2 {
		t.Fatalf("want 2 valid rows, got %d", len(valid))
	}
}

func TestRowError_Error(t *testing.T) {
	e := RowError{Index: 2, Field: "quantity", Message: "row 3: quantity must be greater than zero"}
	if got := e.Error(); !strings.HasPrefix(got, "row 3:") {
		t.Errorf("Error() = %q, want row-attributed message", got)
	}
}
