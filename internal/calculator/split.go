package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/splitr/splitr/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Share is one person's computed portion before it is attached to a name.
type Share struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Total    decimal.Decimal
}

// TaxTotal returns the whole-bill tax implied by a subtotal and a
// percentage rate.
func TaxTotal(subtotal, taxRate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Div(hundred)
}

// TipTotal returns the whole-bill tip for the given policy.
func TipTotal(subtotal decimal.Decimal, tip models.TipPolicy) decimal.Decimal {
	if tip.Kind == models.TipFixed {
		return tip.Amount
	}
	return subtotal.Mul(tip.Rate).Div(hundred)
}

// ComputeShare computes one person's tax and tip shares from their
// subtotal. Both are proportional to the person's fraction of the receipt
// subtotal; a fixed-amount tip is distributed the same way. A zero receipt
// subtotal yields a zero proportion for everyone rather than a division
// fault.
func ComputeShare(personSubtotal, receiptSubtotal, taxRate decimal.Decimal, tip models.TipPolicy) Share {
	proportion := decimal.Zero
	if receiptSubtotal.IsPositive() {
		proportion = personSubtotal.Div(receiptSubtotal)
	}

	tax := TaxTotal(receiptSubtotal, taxRate).Mul(proportion)
	tipShare := TipTotal(receiptSubtotal, tip).Mul(proportion)

	return Share{
		Subtotal: personSubtotal,
		Tax:      tax,
		Tip:      tipShare,
		Total:    personSubtotal.Add(tax).Add(tipShare),
	}
}
