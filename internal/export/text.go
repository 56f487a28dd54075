package export

import (
	"fmt"
	"strings"

	"github.com/dukaanbill/backend-billing/internal/billing"
)

const rule = "-----------------------------"

// Text renders the receipt as a plain-text artifact suitable for download or
// thermal printing.
func Text(r Receipt) string {
	cur := r.currency()
	var b strings.Builder

	b.WriteString("=============================\n")
	b.WriteString("        INVOICE\n")
	b.WriteString("=============================\n\n")

	fmt.Fprintf(&b, "Invoice No : %d\n", r.Number)
	fmt.Fprintf(&b, "Date       : %s\n\n", r.dateString())

	b.WriteString("SHOP DETAILS\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%s\n", valueOr(r.Shop.Name, "Shop Name"))
	fmt.Fprintf(&b, "%s\n", r.Shop.Address)
	fmt.Fprintf(&b, "%s\n", r.Shop.City)
	fmt.Fprintf(&b, "Phone: %s\n", r.Shop.Phone)
	fmt.Fprintf(&b, "Email: %s\n", r.Shop.Email)
	if r.Shop.GSTIN != "" {
		fmt.Fprintf(&b, "GSTIN: %s\n", r.Shop.GSTIN)
	}

	b.WriteString("\nCUSTOMER\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%s\n", valueOr(r.Customer.Name, "N/A"))
	fmt.Fprintf(&b, "%s\n", r.Customer.Address)
	fmt.Fprintf(&b, "%s\n", r.Customer.Phone)

	b.WriteString("\nITEMS\n")
	b.WriteString(rule + "\n")
	b.WriteString("Name         | Qty | Price   | Disc% | Tax%  | Total\n")
	b.WriteString(rule + "\n")
	for _, it := range r.Items {
		fmt.Fprintf(&b, "%-12s | %-3v | %s%-6.2f | %v%% | %v%% | %s%.2f\n",
			it.Name, it.Qty, cur, it.Price, it.Discount, it.TaxRate, cur, billing.LineTotal(it))
	}

	b.WriteString("\n=============================\n")
	b.WriteString("SUMMARY\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Subtotal         : %s%.2f\n", cur, r.Totals.Subtotal)
	if r.Totals.ItemDiscounts > 0 {
		fmt.Fprintf(&b, "Item Discounts   : -%s%.2f\n", cur, r.Totals.ItemDiscounts)
	}
	if r.Config.GlobalDiscountPercent > 0 {
		fmt.Fprintf(&b, "Global Discount  : -%s%.2f\n", cur, r.Totals.GlobalDiscount)
	}
	for _, line := range r.Totals.TaxLines {
		fmt.Fprintf(&b, "CGST %v%%        : %s%.2f\n", line.Rate/2, cur, line.Half())
		fmt.Fprintf(&b, "SGST %v%%        : %s%.2f\n", line.Rate/2, cur, line.Half())
	}
	if r.Config.RoundOff {
		fmt.Fprintf(&b, "Round Off        : %s%.2f\n", cur, r.Totals.RoundOff)
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "GRAND TOTAL      : %s%.2f\n", cur, r.Totals.GrandTotal)
	b.WriteString("=============================\n\n")

	if r.Payment.Method != "" || r.Payment.BankDetails != "" {
		b.WriteString("PAYMENT DETAILS\n")
		b.WriteString(rule + "\n")
		if r.Payment.Method != "" {
			fmt.Fprintf(&b, "Method: %s\n", r.Payment.Method)
		}
		if r.Payment.BankDetails != "" {
			fmt.Fprintf(&b, "%s\n", r.Payment.BankDetails)
		}
		b.WriteString("\n")
	}

	b.WriteString("Thank you for your business!\n")
	return b.String()
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
