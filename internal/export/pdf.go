package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/dukaanbill/backend-billing/internal/billing"
)

// PDF renders the receipt as an A4 PDF document. The figures come verbatim
// from the Totals on the receipt.
func PDF(r Receipt) ([]byte, error) {
	cur := r.currency()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(v float64) string { return tr(fmt.Sprintf("%s%.2f", cur, v)) }

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Invoice No: %d", r.Number), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+r.dateString(), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 6, "Shop", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{r.Shop.Name, r.Shop.Address, r.Shop.City, r.Shop.Phone, r.Shop.Email} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	if r.Shop.GSTIN != "" {
		pdf.CellFormat(0, 5, "GSTIN: "+r.Shop.GSTIN, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{r.Customer.Name, r.Customer.Address, r.Customer.Phone} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	// Item table.
	pdf.SetFont("Arial", "B", 10)
	widths := []float64{60, 18, 28, 20, 20, 44}
	headers := []string{"Item", "Qty", "Price", "Disc%", "Tax%", "Total"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, it := range r.Items {
		pdf.CellFormat(widths[0], 6, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%v", it.Qty), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%v%%", it.Discount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%v%%", it.TaxRate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, money(billing.LineTotal(it)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	summary := func(label string, value string) {
		pdf.CellFormat(130, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, value, "", 1, "R", false, 0, "")
	}
	summary("Subtotal", money(r.Totals.Subtotal))
	if r.Totals.ItemDiscounts > 0 {
		summary("Item Discounts", "-"+money(r.Totals.ItemDiscounts))
	}
	if r.Config.GlobalDiscountPercent > 0 {
		summary("Global Discount", "-"+money(r.Totals.GlobalDiscount))
	}
	for _, line := range r.Totals.TaxLines {
		summary(fmt.Sprintf("CGST %v%%", line.Rate/2), money(line.Half()))
		summary(fmt.Sprintf("SGST %v%%", line.Rate/2), money(line.Half()))
	}
	if r.Config.RoundOff {
		summary("Round Off", money(r.Totals.RoundOff))
	}
	pdf.SetFont("Arial", "B", 11)
	summary("GRAND TOTAL", money(r.Totals.GrandTotal))

	if r.Payment.Method != "" || r.Payment.BankDetails != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 6, "Payment Details", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		if r.Payment.Method != "" {
			pdf.CellFormat(0, 5, "Method: "+tr(r.Payment.Method), "", 1, "L", false, 0, "")
		}
		if r.Payment.BankDetails != "" {
			pdf.CellFormat(0, 5, tr(r.Payment.BankDetails), "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 6, "Thank you for your business!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
