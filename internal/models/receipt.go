package models

import "github.com/shopspring/decimal"

// LineItem represents one distinct purchasable item on a receipt.
// Items are created once from normalized parser output and are immutable;
// only their assignment within a split session changes.
type LineItem struct {
	// ID is the synthetic identifier assigned at normalization time (UUID
	// format). All assignment and removal operations use it.
	ID string `json:"id"`

	// Name is the normalized item label. Never empty; unlabeled parser
	// records get a placeholder name.
	Name string `json:"name"`

	// UnitPrice is the per-unit price. When duplicate parser records are
	// merged this is the quantity-weighted average.
	UnitPrice decimal.Decimal `json:"unit_price"`

	// Quantity is the number of units, always >= 1.
	Quantity int64 `json:"quantity"`
}

// LineTotal returns UnitPrice * Quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Receipt represents a parsed receipt owned by a user.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string `json:"id"`

	// UserID is the account that uploaded the receipt.
	UserID string `json:"user_id"`

	// StoreName and Date are whatever the parser reported; both may be
	// empty.
	StoreName string `json:"store_name"`
	Date      string `json:"date"`

	// ImageURL points at the stored receipt image. Empty when image
	// storage is disabled or the upload failed.
	ImageURL string `json:"image_url,omitempty"`

	// Items are the normalized line items, in first-occurrence order.
	Items []LineItem `json:"items"`

	// Subtotal is the sum of all line totals, recomputed locally rather
	// than trusted from the parser.
	Subtotal decimal.Decimal `json:"subtotal"`

	// Tax and Total are the amounts the parser reported, kept for
	// reference.
	Tax   decimal.Decimal `json:"tax"`
	Total decimal.Decimal `json:"total"`

	// SubtotalMismatch is set when the parser's subtotal disagreed with
	// the recomputed item sum by more than a cent.
	SubtotalMismatch bool `json:"subtotal_mismatch,omitempty"`

	// CreatedAt is the Unix timestamp when the receipt was stored.
	CreatedAt int64 `json:"created_at"`
}

// Item returns the line item with the given ID, or nil.
func (r *Receipt) Item(id string) *LineItem {
	for idx := range r.Items {
		if r.Items[idx].ID == id {
			return &r.Items[idx]
		}
	}
	return nil
}
