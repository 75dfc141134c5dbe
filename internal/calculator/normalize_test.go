package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNormalizeItems(t *testing.T) {
	tests := []struct {
		name string
		raw  []RawItem
		want []struct {
			name      string
			unitPrice string
			quantity  int64
		}
	}{
		{
			name: "duplicate records merge by summing quantities",
			raw: []RawItem{
				{Name: "Soda", Price: d("2.00"), Quantity: 1},
				{Name: "Soda", Price: d("2.00"), Quantity: 1},
			},
			want: []struct {
				name      string
				unitPrice string
				quantity  int64
			}{
				{"Soda", "2", 2},
			},
		},
		{
			name: "merge takes quantity-weighted average unit price",
			raw: []RawItem{
				{Name: "Wine", Price: d("10"), Quantity: 1},
				{Name: "Wine", Price: d("20"), Quantity: 1},
			},
			want: []struct {
				name      string
				unitPrice string
				quantity  int64
			}{
				{"Wine", "15", 2},
			},
		},
		{
			name: "weighted average respects quantities",
			raw: []RawItem{
				{Name: "Beer", Price: d("6"), Quantity: 3},
				{Name: "Beer", Price: d("8"), Quantity: 1},
			},
			want: []struct {
				name      string
				unitPrice string
				quantity  int64
			}{
				{"Beer", "6.5", 4},
			},
		},
		{
			name: "malformed fields degrade to defaults",
			raw: []RawItem{
				{Name: "  ", Price: d("-3"), Quantity: 0},
			},
			want: []struct {
				name      string
				unitPrice string
				quantity  int64
			}{
				{"Unknown Item", "0", 1},
			},
		},
		{
			name: "distinct names keep first-occurrence order",
			raw: []RawItem{
				{Name: "Burger", Price: d("8.99"), Quantity: 1},
				{Name: "Fries", Price: d("3.49"), Quantity: 1},
				{Name: "Burger", Price: d("8.99"), Quantity: 1},
				{Name: "Soda", Price: d("2.00"), Quantity: 1},
			},
			want: []struct {
				name      string
				unitPrice string
				quantity  int64
			}{
				{"Burger", "8.99", 2},
				{"Fries", "3.49", 1},
				{"Soda", "2", 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := NormalizeItems(tt.raw)
			if len(items) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.want))
			}
			for i, want := range tt.want {
				got := items[i]
				if got.ID == "" {
					t.Errorf("item %d has no synthetic ID", i)
				}
				if got.Name != want.name {
					t.Errorf("item %d name = %q, want %q", i, got.Name, want.name)
				}
				if !got.UnitPrice.Equal(d(want.unitPrice)) {
					t.Errorf("item %d unit price = %s, want %s", i, got.UnitPrice, want.unitPrice)
				}
				if got.Quantity != want.quantity {
					t.Errorf("item %d quantity = %d, want %d", i, got.Quantity, want.quantity)
				}
			}
		})
	}
}

func TestItemsSubtotal(t *testing.T) {
	items := NormalizeItems([]RawItem{
		{Name: "Burger", Price: d("8.99"), Quantity: 1},
		{Name: "Fries", Price: d("3.49"), Quantity: 1},
	})
	if got := ItemsSubtotal(items); !got.Equal(d("12.48")) {
		t.Errorf("subtotal = %s, want 12.48", got)
	}
	if got := ItemsSubtotal(nil); !got.IsZero() {
		t.Errorf("empty subtotal = %s, want 0", got)
	}
}
