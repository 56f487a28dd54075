package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukaanbill/backend-billing/internal/billing"
	"github.com/dukaanbill/backend-billing/internal/events"
	"github.com/dukaanbill/backend-billing/internal/store"
)

var (
	// ErrNotFound indicates the requested draft does not exist.
	ErrNotFound = errors.New("draft not found")
	// ErrEmptyDraft is returned when print or export is requested on a
	// draft with no line items.
	ErrEmptyDraft = errors.New("draft has no line items")
	// ErrInvalidInput is returned when the provided payload is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Reason identifies what triggered a finalize.
type Reason string

// Finalize triggers. Print and export require at least one line item; reset
// archives when items exist and clears regardless.
const (
	ReasonPrint  Reason = "print"
	ReasonExport Reason = "export"
	ReasonReset  Reason = "reset"
)

// Customer holds the buyer details printed on the invoice.
type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Payment holds the optional payment section of the invoice.
type Payment struct {
	Method      string `json:"method"`
	BankDetails string `json:"bankDetails"`
}

// Snapshot is the read-only view of a draft handed to renderers and exports.
type Snapshot struct {
	ID       string             `json:"id"`
	Customer Customer           `json:"customer"`
	Payment  Payment            `json:"payment"`
	Items    []billing.LineItem `json:"items"`
	Config   billing.Config     `json:"config"`
}

// FinalizeResult captures everything archived by a finalize, taken before the
// live item list was cleared.
type FinalizeResult struct {
	Archived bool
	Entry    store.HistoryEntry
	Totals   billing.Totals
	Customer Customer
	Payment  Payment
}

type state struct {
	id       string
	customer Customer
	payment  Payment
	items    billing.ItemList
	config   billing.Config
}

// Service owns every draft session in the process. It replaces the ambient
// globals of the original tool: all mutations flow through here, and each one
// is followed by a recomputation and a renderer notification.
type Service struct {
	Store *store.Store
	Bus   *events.Bus
	Now   func() time.Time

	mu     sync.Mutex
	drafts map[string]*state
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create starts a new empty draft session and returns its snapshot.
func (s *Service) Create(ctx context.Context) (Snapshot, billing.Totals, error) {
	if s == nil {
		return Snapshot{}, billing.Totals{}, errors.New("draft service not configured")
	}
	id := uuid.NewString()
	s.mu.Lock()
	if s.drafts == nil {
		s.drafts = map[string]*state{}
	}
	s.drafts[id] = &state{id: id}
	s.mu.Unlock()
	return s.publish(ctx, id)
}

// Get returns the current snapshot and freshly computed totals.
func (s *Service) Get(_ context.Context, id string) (Snapshot, billing.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.locked(id)
	if err != nil {
		return Snapshot{}, billing.Totals{}, err
	}
	snap := snapshotOf(st)
	return snap, billing.Compute(snap.Items, snap.Config), nil
}

// AddItem validates and appends a line item. With saveToCatalog set the item
// is also added to the persisted saved-item catalog.
func (s *Service) AddItem(ctx context.Context, id string, item billing.LineItem, saveToCatalog bool) (billing.LineItem, error) {
	s.mu.Lock()
	st, err := s.locked(id)
	if err != nil {
		s.mu.Unlock()
		return billing.LineItem{}, err
	}
	stored, err := st.items.Add(item)
	s.mu.Unlock()
	if err != nil {
		return billing.LineItem{}, err
	}
	if saveToCatalog && s.Store != nil {
		if err := s.Store.AddSavedItem(ctx, stored); err != nil {
			return billing.LineItem{}, fmt.Errorf("save item to catalog: %w", err)
		}
	}
	if _, _, err := s.publish(ctx, id); err != nil {
		return billing.LineItem{}, err
	}
	return stored, nil
}

// RemoveItem deletes the item at the given position. Positions above it shift
// down by one.
func (s *Service) RemoveItem(ctx context.Context, id string, pos int) error {
	s.mu.Lock()
	st, err := s.locked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	err = st.items.RemoveAt(pos)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	_, _, err = s.publish(ctx, id)
	return err
}

// SetCustomer replaces the customer details.
func (s *Service) SetCustomer(ctx context.Context, id string, customer Customer) error {
	s.mu.Lock()
	st, err := s.locked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	st.customer = customer
	s.mu.Unlock()
	_, _, err = s.publish(ctx, id)
	return err
}

// SetPayment replaces the payment details.
func (s *Service) SetPayment(ctx context.Context, id string, payment Payment) error {
	s.mu.Lock()
	st, err := s.locked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	st.payment = payment
	s.mu.Unlock()
	_, _, err = s.publish(ctx, id)
	return err
}

// SetConfig replaces the computation config. A negative global discount is
// rejected rather than clamped so the caller learns about the bad input.
func (s *Service) SetConfig(ctx context.Context, id string, cfg billing.Config) error {
	if cfg.GlobalDiscountPercent < 0 {
		return fmt.Errorf("global discount must not be negative: %w", ErrInvalidInput)
	}
	s.mu.Lock()
	st, err := s.locked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	st.config = cfg
	s.mu.Unlock()
	_, _, err = s.publish(ctx, id)
	return err
}

// Finalize archives the draft to history and clears the working item list.
// Print and export paths fail on an empty draft; reset never archives an
// empty draft but still clears customer, payment, and config.
func (s *Service) Finalize(ctx context.Context, id string, reason Reason) (FinalizeResult, error) {
	switch reason {
	case ReasonPrint, ReasonExport, ReasonReset:
	default:
		return FinalizeResult{}, fmt.Errorf("unknown finalize reason %q: %w", reason, ErrInvalidInput)
	}

	s.mu.Lock()
	st, err := s.locked(id)
	if err != nil {
		s.mu.Unlock()
		return FinalizeResult{}, err
	}
	snap := snapshotOf(st)
	s.mu.Unlock()

	if len(snap.Items) == 0 {
		if reason != ReasonReset {
			return FinalizeResult{}, ErrEmptyDraft
		}
		s.reset(id)
		_, _, err = s.publish(ctx, id)
		return FinalizeResult{Customer: snap.Customer, Payment: snap.Payment}, err
	}

	totals := billing.Compute(snap.Items, snap.Config)
	if s.Store == nil {
		return FinalizeResult{}, errors.New("draft store not configured")
	}
	number, err := s.Store.NextInvoiceNumber(ctx)
	if err != nil {
		return FinalizeResult{}, err
	}
	entry := store.HistoryEntry{
		Number:     number,
		Date:       s.now(),
		Customer:   snap.Customer.Name,
		GrandTotal: totals.GrandTotal,
		Items:      snap.Items,
	}
	if err := s.Store.AppendHistory(ctx, entry); err != nil {
		return FinalizeResult{}, err
	}

	s.mu.Lock()
	if current, ok := s.drafts[id]; ok {
		current.items.Clear()
		if reason == ReasonReset {
			current.customer = Customer{}
			current.payment = Payment{}
			current.config = billing.Config{}
		}
	}
	s.mu.Unlock()

	result := FinalizeResult{
		Archived: true,
		Entry:    entry,
		Totals:   totals,
		Customer: snap.Customer,
		Payment:  snap.Payment,
	}
	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicInvoiceFinalized, id, map[string]any{
			"number":     entry.Number,
			"grandTotal": entry.GrandTotal,
			"items":      len(entry.Items),
		})
	}
	if _, _, err := s.publish(ctx, id); err != nil {
		return FinalizeResult{}, err
	}
	return result, nil
}

// NextNumber reports the invoice number the draft will receive when
// finalized, for display on the invoice in progress.
func (s *Service) NextNumber(ctx context.Context) (int64, error) {
	if s == nil || s.Store == nil {
		return 0, errors.New("draft store not configured")
	}
	return s.Store.PeekInvoiceNumber(ctx)
}

func (s *Service) reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.drafts[id]; ok {
		st.items.Clear()
		st.customer = Customer{}
		st.payment = Payment{}
		st.config = billing.Config{}
	}
}

// publish recomputes totals and notifies renderers. Every mutation path ends
// here, which is what keeps any rendered view consistent with the state.
func (s *Service) publish(ctx context.Context, id string) (Snapshot, billing.Totals, error) {
	s.mu.Lock()
	st, err := s.locked(id)
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, billing.Totals{}, err
	}
	snap := snapshotOf(st)
	s.mu.Unlock()

	totals := billing.Compute(snap.Items, snap.Config)
	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicDraftUpdated, id, map[string]any{
			"snapshot": snap,
			"totals":   totals,
		})
	}
	return snap, totals, nil
}

func (s *Service) locked(id string) (*state, error) {
	st, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}

func snapshotOf(st *state) Snapshot {
	return Snapshot{
		ID:       st.id,
		Customer: st.customer,
		Payment:  st.payment,
		Items:    st.items.Snapshot(),
		Config:   st.config,
	}
}
