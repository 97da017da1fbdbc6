package mrr

import (
	"testing"

	"construction-backend/internal/models"

	"github.com/shopspring/decimal"
)

func item(qty float64, unitCost string) models.MrrItem {
	return models.MrrItem{
		Quantity:          qty,
		EstimatedUnitCost: decimal.RequireFromString(unitCost),
	}
}

func TestTotalEstimatedCost(t *testing.T) {
	tests := []struct {
		name  string
		items []models.MrrItem
		want  string
	}{
		{"no items", nil, "0"},
		{"single item", []models.MrrItem{item(10, "350")}, "3500"},
		{"multiple items", []models.MrrItem{item(10, "350"), item(2.5, "1200")}, "6500"},
		{"fractional costs stay exact", []models.MrrItem{item(3, "0.10"), item(3, "0.20")}, "0.90"},
		{"zero cost line contributes nothing", []models.MrrItem{item(100, "0"), item(1, "42")}, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalEstimatedCost(tt.items)
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("TotalEstimatedCost = %s, want %s", got, want)
			}
		})
	}
}

func TestTotalEstimatedCost_RecomputedAfterEdit(t *testing.T) {
	items := []models.MrrItem{item(10, "350"), item(5, "100")}
	before := TotalEstimatedCost(items)
	if !before.Equal(decimal.RequireFromString("4000")) {
		t.Fatalf("initial total = %s, want 4000", before)
	}

	// Edit a quantity and remove a line; the total must follow the items.
	items[0].Quantity = 4
	items = items[:1]
	after := TotalEstimatedCost(items)
	if !after.Equal(decimal.RequireFromString("1400")) {
		t.Errorf("total after edit = %s, want 1400", after)
	}
}
