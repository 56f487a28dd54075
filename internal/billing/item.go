package billing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidItem is returned when a candidate line item fails validation.
	ErrInvalidItem = errors.New("invalid line item")
	// ErrIndexOutOfRange is returned when a position does not address a stored item.
	ErrIndexOutOfRange = errors.New("item position out of range")
)

// LineItem is one priced, quantified entry on the invoice being drafted.
// Discount and TaxRate are percentages; both may be zero.
type LineItem struct {
	Name     string  `json:"name"`
	Qty      float64 `json:"qty"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
	TaxRate  float64 `json:"taxRate"`
}

// ItemList holds the ordered line items for the invoice in progress.
// Insertion order is display and computation order.
type ItemList struct {
	items []LineItem
}

// Add validates the candidate and appends it to the list. On failure the list
// is left untouched and the error names the offending field.
func (l *ItemList) Add(item LineItem) (LineItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return LineItem{}, fmt.Errorf("name is required: %w", ErrInvalidItem)
	}
	if item.Qty <= 0 {
		return LineItem{}, fmt.Errorf("qty must be positive: %w", ErrInvalidItem)
	}
	if item.Price <= 0 {
		return LineItem{}, fmt.Errorf("price must be positive: %w", ErrInvalidItem)
	}
	if item.Discount < 0 {
		item.Discount = 0
	}
	if item.TaxRate < 0 {
		item.TaxRate = 0
	}
	l.items = append(l.items, item)
	return item, nil
}

// RemoveAt deletes the item at the given position. Positions of subsequent
// items shift down by one, so callers must not reuse stale positions.
func (l *ItemList) RemoveAt(pos int) error {
	if pos < 0 || pos >= len(l.items) {
		return fmt.Errorf("position %d: %w", pos, ErrIndexOutOfRange)
	}
	l.items = append(l.items[:pos], l.items[pos+1:]...)
	return nil
}

// Clear empties the list. Used at finalize and reset boundaries.
func (l *ItemList) Clear() {
	l.items = nil
}

// Len reports the number of stored items.
func (l *ItemList) Len() int {
	return len(l.items)
}

// Snapshot returns a copy of the current items. Mutating the returned slice
// does not affect the list, which keeps archived invoices independent of the
// live draft.
func (l *ItemList) Snapshot() []LineItem {
	if len(l.items) == 0 {
		return nil
	}
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}
