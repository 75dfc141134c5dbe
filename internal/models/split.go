package models

import "github.com/shopspring/decimal"

// TipKind discriminates the two tip policies.
type TipKind string

const (
	// TipPercentage tips a percentage of the receipt subtotal.
	TipPercentage TipKind = "percentage"
	// TipFixed tips a fixed dollar amount. The amount is still distributed
	// across people proportionally by spend, not split evenly.
	TipFixed TipKind = "fixed"
)

// TipPolicy is the rule determining the whole-bill tip. Exactly one of
// Rate or Amount is meaningful, selected by Kind.
type TipPolicy struct {
	Kind TipKind `json:"kind"`

	// Rate is the tip percentage when Kind is TipPercentage.
	Rate decimal.Decimal `json:"rate"`

	// Amount is the tip in dollars when Kind is TipFixed.
	Amount decimal.Decimal `json:"amount"`
}

// Person is a participant in a split session. The name may be empty while
// the session is being edited; finalization rejects empty names.
type Person struct {
	// ID is the unique identifier for the person within a session (UUID
	// format).
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SplitSession is the editable state of splitting one receipt: who is
// involved, which item belongs to whom, and the tax/tip configuration.
type SplitSession struct {
	// ID is the unique identifier for the session (UUID format).
	ID string `json:"id"`

	// ReceiptID is the receipt being split.
	ReceiptID string `json:"receipt_id"`

	// UserID is the account that owns the session (same as the receipt
	// owner).
	UserID string `json:"user_id"`

	// TaxRate is the tax percentage applied to the receipt subtotal.
	TaxRate decimal.Decimal `json:"tax_rate"`

	// Tip is the active tip policy.
	Tip TipPolicy `json:"tip"`

	// People are the participants, in creation order. The first person is
	// the fallback that inherits items when another person is removed.
	People []Person `json:"people"`

	// Assignments maps line item ID to the owning person ID. An item
	// appears at most once, so exclusive assignment holds by construction.
	Assignments map[string]string `json:"assignments"`

	// Finalized marks the session as closed to edits. Result holds the
	// reconciled allocation once finalized.
	Finalized bool        `json:"finalized"`
	Result    *Allocation `json:"result,omitempty"`

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64 `json:"created_at"`
}

// PersonShare is one person's computed portion of the bill.
type PersonShare struct {
	PersonID string          `json:"person_id"`
	Name     string          `json:"name"`
	Items    []LineItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxShare decimal.Decimal `json:"tax_share"`
	TipShare decimal.Decimal `json:"tip_share"`
	Total    decimal.Decimal `json:"total"`
}

// Allocation is the computed split result: one share per person plus the
// receipt-level totals the shares were derived from.
type Allocation struct {
	Shares []PersonShare `json:"shares"`

	// Subtotal is the full receipt subtotal (all items, assigned or not).
	Subtotal decimal.Decimal `json:"subtotal"`

	// Tax and Tip are the whole-bill amounts implied by the session's tax
	// rate and tip policy.
	Tax decimal.Decimal `json:"tax"`
	Tip decimal.Decimal `json:"tip"`

	// GrandTotal is Subtotal + Tax + Tip.
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Rounded returns a copy of the allocation with every monetary value
// rounded to cents, for presentation. Per-share totals are rounded
// independently, so their sum may drift a cent or two from GrandTotal;
// finalization reconciles that, display does not.
func (a Allocation) Rounded() Allocation {
	out := a
	out.Subtotal = a.Subtotal.Round(2)
	out.Tax = a.Tax.Round(2)
	out.Tip = a.Tip.Round(2)
	out.GrandTotal = a.GrandTotal.Round(2)
	out.Shares = make([]PersonShare, len(a.Shares))
	for i, s := range a.Shares {
		s.Subtotal = s.Subtotal.Round(2)
		s.TaxShare = s.TaxShare.Round(2)
		s.TipShare = s.TipShare.Round(2)
		s.Total = s.Total.Round(2)
		out.Shares[i] = s
	}
	return out
}
