package mrr

import (
	"github.com/shopspring/decimal"

	"construction-backend/internal/models"
)

// TotalEstimatedCost computes Σ quantity × estimated unit cost over the items.
// The stored total is always this value, never a client-supplied one.
func TotalEstimatedCost(items []models.MrrItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		line := it.EstimatedUnitCost.Mul(decimal.NewFromFloat(it.Quantity))
		total = total.Add(line)
	}
	return total.Round(2)
}
