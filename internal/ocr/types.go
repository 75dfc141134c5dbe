package ocr

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Number decodes a JSON field that may arrive as a number, a numeric
// string (optionally with a currency prefix), null, or garbage. Anything
// unparseable decodes as zero; the parser's sloppiness is recovered from,
// never surfaced.
type Number struct {
	decimal.Decimal
}

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		n.Decimal = decimal.Zero
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	s = strings.ReplaceAll(s, ",", "")
	dec, err := decimal.NewFromString(s)
	if err != nil {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = dec
	return nil
}

// Integer decodes a count that may arrive as a number, a numeric string,
// or garbage. Unparseable input decodes as zero; callers treat zero as
// "missing" and substitute their own default.
type Integer int64

func (i *Integer) UnmarshalJSON(data []byte) error {
	var n Number
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = Integer(n.Round(0).IntPart())
	return nil
}

// Item is one raw line item as reported by the parse service.
type Item struct {
	Name     string  `json:"name"`
	Price    Number  `json:"price"`
	Quantity Integer `json:"quantity"`
}

// Receipt is the parse service's response for one receipt image.
type Receipt struct {
	StoreName string `json:"store_name"`
	Date      string `json:"date"`
	Items     []Item `json:"items"`
	Subtotal  Number `json:"subtotal"`
	Tax       Number `json:"tax"`
	Tip       Number `json:"tip"`
	Total     Number `json:"total"`
}
