package billing

import (
	"math"
	"sort"
)

// Config carries the session-level settings that affect totals computation.
type Config struct {
	// GlobalDiscountPercent is applied once to the post-item-discount
	// subtotal, distinct from any per-item discount.
	GlobalDiscountPercent float64 `json:"globalDiscountPercent"`
	// RoundOff rounds the grand total to the nearest whole currency unit
	// and reports the difference as a signed adjustment.
	RoundOff bool `json:"roundOff"`
}

// TaxLine is the accumulated tax amount for one distinct tax rate across all
// items sharing that rate. Zero-rate items never produce a line.
type TaxLine struct {
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// Half returns one presentation half of the line (the CGST/SGST split),
// rounded to two decimals. The unsplit Amount is what feeds the grand total.
func (t TaxLine) Half() float64 {
	return Round2(t.Amount / 2)
}

// Totals is the full breakdown derived from a list of line items and a Config.
type Totals struct {
	Subtotal       float64   `json:"subtotal"`
	ItemDiscounts  float64   `json:"itemDiscounts"`
	GlobalDiscount float64   `json:"globalDiscount"`
	TaxLines       []TaxLine `json:"taxLines"`
	TotalTax       float64   `json:"totalTax"`
	// GrandTotalRaw is the grand total before any round-off adjustment.
	GrandTotalRaw float64 `json:"grandTotalRaw"`
	// RoundOff is the signed adjustment applied to reach GrandTotal.
	// Zero when rounding is disabled.
	RoundOff   float64 `json:"roundOff"`
	GrandTotal float64 `json:"grandTotal"`
}

// Compute derives the totals breakdown for the given items and config. It is
// pure and never fails: an empty item list yields all-zero totals. Summation
// runs left to right in item order so repeated evaluations of an unchanged
// draft produce bit-identical results.
func Compute(items []LineItem, cfg Config) Totals {
	var (
		subtotal      float64
		itemDiscounts float64
		buckets       = map[float64]float64{}
	)
	for _, it := range items {
		itemSubtotal := it.Qty * it.Price
		subtotal += itemSubtotal

		discountAmt := itemSubtotal * (it.Discount / 100)
		itemDiscounts += discountAmt

		afterDiscount := itemSubtotal - discountAmt
		if it.TaxRate > 0 {
			buckets[it.TaxRate] += afterDiscount * (it.TaxRate / 100)
		}
	}

	globalPercent := cfg.GlobalDiscountPercent
	if globalPercent < 0 {
		globalPercent = 0
	}
	globalDiscount := (subtotal - itemDiscounts) * (globalPercent / 100)

	rates := make([]float64, 0, len(buckets))
	for rate := range buckets {
		rates = append(rates, rate)
	}
	sort.Float64s(rates)

	var totalTax float64
	taxLines := make([]TaxLine, 0, len(rates))
	for _, rate := range rates {
		taxLines = append(taxLines, TaxLine{Rate: rate, Amount: buckets[rate]})
		totalTax += buckets[rate]
	}

	raw := subtotal - itemDiscounts - globalDiscount + totalTax
	grand := raw
	var adjustment float64
	if cfg.RoundOff {
		grand = math.Round(raw)
		adjustment = grand - raw
	}

	return Totals{
		Subtotal:       subtotal,
		ItemDiscounts:  itemDiscounts,
		GlobalDiscount: globalDiscount,
		TaxLines:       taxLines,
		TotalTax:       totalTax,
		GrandTotalRaw:  raw,
		RoundOff:       adjustment,
		GrandTotal:     grand,
	}
}

// LineTotal returns the display total for a single item: the discounted
// subtotal plus that item's own tax.
func LineTotal(it LineItem) float64 {
	itemSubtotal := it.Qty * it.Price
	afterDiscount := itemSubtotal - itemSubtotal*(it.Discount/100)
	return afterDiscount + afterDiscount*(it.TaxRate/100)
}

// Round2 rounds a value to two decimal places for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
