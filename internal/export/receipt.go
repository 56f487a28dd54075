package export

import (
	"time"

	"github.com/dukaanbill/backend-billing/internal/billing"
	"github.com/dukaanbill/backend-billing/internal/store"
)

// Customer is the bill-to block printed on a receipt.
type Customer struct {
	Name    string
	Address string
	Phone   string
}

// Payment is the payment block printed on a receipt.
type Payment struct {
	Method      string
	BankDetails string
}

// Receipt bundles everything an export needs. Totals carry the exact figures
// produced by the calculator; exporters format them but never re-derive.
type Receipt struct {
	Shop     store.ShopProfile
	Customer Customer
	Payment  Payment
	Number   int64
	Date     time.Time
	Items    []billing.LineItem
	Config   billing.Config
	Totals   billing.Totals
	Currency string
}

func (r Receipt) currency() string {
	if r.Currency == "" {
		return "₹"
	}
	return r.Currency
}

func (r Receipt) dateString() string {
	return r.Date.Format("02/01/2006")
}
