// Package calculator implements the bill-splitting core: normalizing raw
// parser output into line items, managing the item-to-person partition,
// and computing proportional tax/tip shares.
package calculator

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitr/splitr/internal/models"
)

// placeholderName labels parser records that arrived without a name.
const placeholderName = "Unknown Item"

// RawItem is one uncleaned record from the receipt parser. Numeric fields
// have already been coerced from their wire form (string or number); zero
// values stand in for anything missing or unparseable.
type RawItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int64
}

// NormalizeItems converts parser records into clean line items.
//
// Malformed input never produces an error: a blank name becomes a
// placeholder, a negative price becomes 0, and a quantity below 1 becomes
// 1. Records sharing a normalized name are merged by summing quantities
// and taking the quantity-weighted average unit price, which keeps
// per-unit economics intact for proportional splitting downstream. Output
// order is the first-occurrence order of distinct names, and every item
// gets a fresh synthetic ID.
func NormalizeItems(raw []RawItem) []models.LineItem {
	items := make([]models.LineItem, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = placeholderName
		}
		price := r.Price
		if price.IsNegative() {
			price = decimal.Zero
		}
		qty := r.Quantity
		if qty < 1 {
			qty = 1
		}

		if i, ok := index[name]; ok {
			merged := &items[i]
			oldTotal := merged.UnitPrice.Mul(decimal.NewFromInt(merged.Quantity))
			newTotal := price.Mul(decimal.NewFromInt(qty))
			combined := merged.Quantity + qty
			merged.UnitPrice = oldTotal.Add(newTotal).Div(decimal.NewFromInt(combined))
			merged.Quantity = combined
			continue
		}

		index[name] = len(items)
		items = append(items, models.LineItem{
			ID:        uuid.New().String(),
			Name:      name,
			UnitPrice: price,
			Quantity:  qty,
		})
	}

	return items
}

// ItemsSubtotal sums the line totals of all items.
func ItemsSubtotal(items []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}
