package export

import (
	"strings"
	"testing"
	"time"

	"github.com/dukaanbill/backend-billing/internal/billing"
	"github.com/dukaanbill/backend-billing/internal/store"
)

func sampleReceipt() Receipt {
	items := []billing.LineItem{{Name: "Pen", Qty: 10, Price: 5, TaxRate: 18}}
	cfg := billing.Config{RoundOff: true}
	return Receipt{
		Shop:     store.ShopProfile{Name: "Sharma General Store", City: "Pune", Phone: "020-555", Email: "shop@example.com", GSTIN: "27ABCDE1234F1Z5"},
		Customer: Customer{Name: "Asha", Phone: "98765"},
		Payment:  Payment{Method: "UPI"},
		Number:   1001,
		Date:     time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
		Items:    items,
		Config:   cfg,
		Totals:   billing.Compute(items, cfg),
		Currency: "Rs.",
	}
}

func TestTextReceiptUsesCalculatorFigures(t *testing.T) {
	text := Text(sampleReceipt())

	for _, want := range []string{
		"Invoice No : 1001",
		"Date       : 15/03/2025",
		"Sharma General Store",
		"GSTIN: 27ABCDE1234F1Z5",
		"Asha",
		"Subtotal         : Rs.50.00",
		"CGST 9%        : Rs.4.50",
		"SGST 9%        : Rs.4.50",
		"Round Off        : Rs.0.00",
		"GRAND TOTAL      : Rs.59.00",
		"Method: UPI",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("receipt missing %q:\n%s", want, text)
		}
	}
}

func TestTextReceiptHidesEmptySections(t *testing.T) {
	r := sampleReceipt()
	r.Payment = Payment{}
	r.Config = billing.Config{}
	r.Totals = billing.Compute(r.Items, r.Config)

	text := Text(r)
	if strings.Contains(text, "PAYMENT DETAILS") {
		t.Fatal("expected payment section to be omitted")
	}
	if strings.Contains(text, "Round Off") {
		t.Fatal("expected round-off line to be omitted when disabled")
	}
	if strings.Contains(text, "Item Discounts") {
		t.Fatal("expected item discount line to be omitted when zero")
	}
}

func TestPDFReceiptProducesDocument(t *testing.T) {
	data, err := PDF(sampleReceipt())
	if err != nil {
		t.Fatalf("pdf render: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatalf("expected a PDF document, got %d bytes", len(data))
	}
}
