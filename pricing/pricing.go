// Package pricing is the single place where product, cart and order prices are
// computed. Money arithmetic is done with decimals and converted back to
// float64 at the boundary.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Variant is the price-relevant view of a product.
type Variant struct {
	BasePrice         float64
	HasTypeChoices    bool
	HasProteinChoices bool
	Prices            Matrix
	Discount          float64
}

// Selection is what the customer picked for one line.
type Selection struct {
	Protein   string
	Type      string
	Additions []float64
	Quantity  int
}

type LineBreakdown struct {
	BasePrice      float64 `json:"base_price"`
	DiscountedBase float64 `json:"discounted_base"`
	AdditionsTotal float64 `json:"additions_total"`
	UnitPrice      float64 `json:"unit_price"`
	Quantity       int     `json:"quantity"`
	LineTotal      float64 `json:"line_total"`
}

type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	DeliveryCost float64 `json:"delivery_cost"`
	Total        float64 `json:"total"`
}

// ResolveBasePrice returns the unit base price for the given selections.
// Missing selections or matrix entries fall back to BasePrice; callers rely
// on this never failing.
func ResolveBasePrice(v Variant, protein, typ string) float64 {
	switch {
	case v.HasProteinChoices && v.HasTypeChoices:
		if protein == "" || typ == "" {
			return v.BasePrice
		}
		if price, ok := v.Prices.Nested(protein, typ); ok {
			return price
		}
	case v.HasProteinChoices:
		if price, ok := v.Prices.Flat(protein); ok {
			return price
		}
	case v.HasTypeChoices:
		if price, ok := v.Prices.Flat(typ); ok {
			return price
		}
	}
	return v.BasePrice
}

// Line applies the discount to base only, then adds the additions.
func Line(base, discount float64, additions []float64, qty int) LineBreakdown {
	if discount < 0 {
		discount = 0
	}
	if discount > 100 {
		discount = 100
	}

	b := decimal.NewFromFloat(base)
	discounted := b.Sub(b.Mul(decimal.NewFromFloat(discount)).Div(hundred))

	adds := decimal.Zero
	for _, a := range additions {
		adds = adds.Add(decimal.NewFromFloat(a))
	}

	unit := discounted.Add(adds)
	total := unit.Mul(decimal.NewFromInt(int64(qty)))

	return LineBreakdown{
		BasePrice:      base,
		DiscountedBase: discounted.InexactFloat64(),
		AdditionsTotal: adds.InexactFloat64(),
		UnitPrice:      unit.InexactFloat64(),
		Quantity:       qty,
		LineTotal:      total.InexactFloat64(),
	}
}

// PriceLine resolves the variant price and prices the line in one step.
func PriceLine(v Variant, sel Selection) LineBreakdown {
	base := ResolveBasePrice(v, sel.Protein, sel.Type)
	return Line(base, v.Discount, sel.Additions, sel.Quantity)
}

// RoundLine rounds the unit price to the stored precision and recomputes the
// line total from it, so quantity x stored unit price always equals the
// line total that feeds the subtotal.
func RoundLine(l LineBreakdown) LineBreakdown {
	unit := decimal.NewFromFloat(l.UnitPrice).Round(3)
	l.DiscountedBase = Round(l.DiscountedBase)
	l.AdditionsTotal = Round(l.AdditionsTotal)
	l.UnitPrice = unit.InexactFloat64()
	l.LineTotal = unit.Mul(decimal.NewFromInt(int64(l.Quantity))).InexactFloat64()
	return l
}

// Aggregate sums line totals and adds the delivery cost once.
func Aggregate(lines []LineBreakdown, deliveryCost float64) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.LineTotal))
	}
	delivery := decimal.NewFromFloat(deliveryCost)
	return Totals{
		Subtotal:     subtotal.InexactFloat64(),
		DeliveryCost: delivery.InexactFloat64(),
		Total:        subtotal.Add(delivery).InexactFloat64(),
	}
}

// MinorUnits converts an amount to the payment gateway's integer unit
// (1000 fils per dinar, 100 cents per euro, ...).
func MinorUnits(amount float64, unitsPerMajor int64) int64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromInt(unitsPerMajor)).
		Round(0).
		IntPart()
}

// Round rounds an amount to the 3 decimal places used for dinar prices.
func Round(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(3).InexactFloat64()
}
