package billing

import (
	"math"
	"reflect"
	"testing"
)

func TestComputeSubtotalInsertionOrder(t *testing.T) {
	items := []LineItem{
		{Name: "Pen", Qty: 10, Price: 5},
		{Name: "Notebook", Qty: 3, Price: 42.5},
		{Name: "Stapler", Qty: 1, Price: 199.99},
	}
	totals := Compute(items, Config{})
	want := 10*5.0 + 3*42.5 + 1*199.99
	if totals.Subtotal != want {
		t.Fatalf("expected subtotal %v, got %v", want, totals.Subtotal)
	}
}

func TestComputeGlobalDiscountAppliesAfterItemDiscounts(t *testing.T) {
	// subtotal 1000, item discounts 100, global 10% -> 90, not 100.
	items := []LineItem{
		{Name: "A", Qty: 1, Price: 500, Discount: 20}, // subtotal 500, discount 100
		{Name: "B", Qty: 1, Price: 500},
	}
	totals := Compute(items, Config{GlobalDiscountPercent: 10})
	if totals.Subtotal != 1000 {
		t.Fatalf("expected subtotal 1000, got %v", totals.Subtotal)
	}
	if totals.ItemDiscounts != 100 {
		t.Fatalf("expected item discounts 100, got %v", totals.ItemDiscounts)
	}
	if totals.GlobalDiscount != 90 {
		t.Fatalf("expected global discount 90, got %v", totals.GlobalDiscount)
	}
}

func TestComputeZeroRateItemsProduceNoBucket(t *testing.T) {
	items := []LineItem{{Name: "Exempt", Qty: 1, Price: 100, TaxRate: 0}}
	totals := Compute(items, Config{})
	if totals.TotalTax != 0 {
		t.Fatalf("expected zero tax, got %v", totals.TotalTax)
	}
	if len(totals.TaxLines) != 0 {
		t.Fatalf("expected no tax lines, got %d", len(totals.TaxLines))
	}
}

func TestComputeBucketsGroupByRate(t *testing.T) {
	items := []LineItem{
		{Name: "A", Qty: 1, Price: 100, TaxRate: 18},
		{Name: "B", Qty: 1, Price: 200, TaxRate: 5},
		{Name: "C", Qty: 1, Price: 300, TaxRate: 18},
	}
	totals := Compute(items, Config{})
	if len(totals.TaxLines) != 2 {
		t.Fatalf("expected 2 tax lines, got %d", len(totals.TaxLines))
	}
	// Lines are ordered by ascending rate.
	if totals.TaxLines[0].Rate != 5 || totals.TaxLines[0].Amount != 10 {
		t.Fatalf("unexpected first line: %+v", totals.TaxLines[0])
	}
	if totals.TaxLines[1].Rate != 18 || totals.TaxLines[1].Amount != 72 {
		t.Fatalf("unexpected second line: %+v", totals.TaxLines[1])
	}
	if totals.TotalTax != 82 {
		t.Fatalf("expected total tax 82, got %v", totals.TotalTax)
	}
}

func TestComputeRoundOff(t *testing.T) {
	// 1 x 199.60 with no discounts or tax.
	items := []LineItem{{Name: "Bundle", Qty: 1, Price: 199.60}}

	on := Compute(items, Config{RoundOff: true})
	if on.GrandTotal != 200 {
		t.Fatalf("expected rounded total 200, got %v", on.GrandTotal)
	}
	if math.Abs(on.RoundOff-0.40) > 1e-9 {
		t.Fatalf("expected adjustment 0.40, got %v", on.RoundOff)
	}

	off := Compute(items, Config{RoundOff: false})
	if off.GrandTotal != 199.60 {
		t.Fatalf("expected unrounded total 199.60, got %v", off.GrandTotal)
	}
	if off.RoundOff != 0 {
		t.Fatalf("expected no adjustment, got %v", off.RoundOff)
	}
}

func TestComputeRoundOffNegativeAdjustment(t *testing.T) {
	items := []LineItem{{Name: "Widget", Qty: 1, Price: 100.30}}
	totals := Compute(items, Config{RoundOff: true})
	if totals.GrandTotal != 100 {
		t.Fatalf("expected rounded total 100, got %v", totals.GrandTotal)
	}
	if math.Abs(totals.RoundOff+0.30) > 1e-9 {
		t.Fatalf("expected adjustment -0.30, got %v", totals.RoundOff)
	}
}

func TestComputeEmptyItems(t *testing.T) {
	totals := Compute(nil, Config{GlobalDiscountPercent: 25, RoundOff: true})
	if totals.Subtotal != 0 || totals.TotalTax != 0 || totals.GrandTotal != 0 {
		t.Fatalf("expected all-zero totals, got %+v", totals)
	}
	if totals.RoundOff != 0 {
		t.Fatalf("expected zero adjustment for empty list, got %v", totals.RoundOff)
	}
}

func TestComputeIdempotent(t *testing.T) {
	items := []LineItem{
		{Name: "A", Qty: 3, Price: 33.33, Discount: 7.5, TaxRate: 18},
		{Name: "B", Qty: 2, Price: 0.99, TaxRate: 5},
	}
	cfg := Config{GlobalDiscountPercent: 12.5, RoundOff: true}
	first := Compute(items, cfg)
	second := Compute(items, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical totals, got %+v vs %+v", first, second)
	}
}

func TestComputeEndToEndPen(t *testing.T) {
	// Single pen line: 10 x 5 at 18% tax, no discounts.
	items := []LineItem{{Name: "Pen", Qty: 10, Price: 5, TaxRate: 18}}
	totals := Compute(items, Config{RoundOff: true})
	if totals.Subtotal != 50 {
		t.Fatalf("expected subtotal 50, got %v", totals.Subtotal)
	}
	if len(totals.TaxLines) != 1 || totals.TaxLines[0].Amount != 9 {
		t.Fatalf("expected one 9.00 tax line, got %+v", totals.TaxLines)
	}
	if half := totals.TaxLines[0].Half(); half != 4.5 {
		t.Fatalf("expected half line 4.5, got %v", half)
	}
	if totals.GrandTotalRaw != 59 || totals.GrandTotal != 59 {
		t.Fatalf("expected grand total 59, got raw %v final %v", totals.GrandTotalRaw, totals.GrandTotal)
	}
	if totals.RoundOff != 0 {
		t.Fatalf("expected zero adjustment on whole total, got %v", totals.RoundOff)
	}
}

func TestComputeDiscountNeverIncreasesLineValue(t *testing.T) {
	items := []LineItem{
		{Name: "A", Qty: 2, Price: 75, Discount: 0},
		{Name: "B", Qty: 1, Price: 100, Discount: 35},
		{Name: "C", Qty: 4, Price: 12.5, Discount: 100},
	}
	for _, it := range items {
		itemSubtotal := it.Qty * it.Price
		afterDiscount := itemSubtotal - itemSubtotal*(it.Discount/100)
		if afterDiscount > itemSubtotal {
			t.Fatalf("discount increased line value for %s: %v > %v", it.Name, afterDiscount, itemSubtotal)
		}
	}
}

func TestLineTotal(t *testing.T) {
	it := LineItem{Name: "Pen", Qty: 10, Price: 5, TaxRate: 18}
	if got := LineTotal(it); got != 59 {
		t.Fatalf("expected line total 59, got %v", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(4.506); got != 4.51 {
		t.Fatalf("expected 4.51, got %v", got)
	}
	if got := Round2(4.5); got != 4.5 {
		t.Fatalf("expected 4.5, got %v", got)
	}
}
