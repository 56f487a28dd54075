package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukaanbill/backend-billing/internal/billing"
)

// Record keys. Each named record type owns exactly one key, so the shape of
// everything persisted is known at compile time.
const (
	keyShopProfile = "shop:profile"
	keyTheme       = "shop:theme"
	keySavedItems  = "catalog:items"
	keyHistory     = "invoice:history"
	keyLastNumber  = "invoice:last_number"
)

// ErrNotFound indicates the requested record does not exist yet.
var ErrNotFound = errors.New("record not found")

// ShopProfile holds the shopkeeper's own details printed on every invoice.
type ShopProfile struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	GSTIN   string `json:"gstin"`
}

// HistoryEntry is the archival record of one finalized invoice. Items are a
// deep copy taken at finalize time; later draft mutations never reach it.
type HistoryEntry struct {
	Number     int64              `json:"number"`
	Date       time.Time          `json:"date"`
	Customer   string             `json:"customer"`
	GrandTotal float64            `json:"grandTotal"`
	Items      []billing.LineItem `json:"items"`
}

// Store persists the named records in Redis as JSON blobs, mirroring the
// key-value cache the drafting tool was designed around.
type Store struct {
	R *redis.Client
	// StartNumber seeds the invoice counter when no invoice has been
	// finalized yet.
	StartNumber int64
	// HistoryLimit caps the archived invoice list; oldest entries are
	// trimmed on append. Zero or negative means unbounded.
	HistoryLimit int
	// SavedItemsMax caps the saved-item catalog.
	SavedItemsMax int
}

// ShopProfile loads the persisted shop details.
func (s *Store) ShopProfile(ctx context.Context) (ShopProfile, error) {
	var profile ShopProfile
	ok, err := s.getJSON(ctx, keyShopProfile, &profile)
	if err != nil {
		return ShopProfile{}, fmt.Errorf("load shop profile: %w", err)
	}
	if !ok {
		return ShopProfile{}, ErrNotFound
	}
	return profile, nil
}

// SaveShopProfile overwrites the shop details record.
func (s *Store) SaveShopProfile(ctx context.Context, profile ShopProfile) error {
	if err := s.setJSON(ctx, keyShopProfile, profile); err != nil {
		return fmt.Errorf("save shop profile: %w", err)
	}
	return nil
}

// Theme returns the persisted theme preference, defaulting to "light".
func (s *Store) Theme(ctx context.Context) (string, error) {
	if s == nil || s.R == nil {
		return "light", nil
	}
	theme, err := s.R.Get(ctx, keyTheme).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "light", nil
		}
		return "", fmt.Errorf("load theme: %w", err)
	}
	return theme, nil
}

// SaveTheme stores the theme preference.
func (s *Store) SaveTheme(ctx context.Context, theme string) error {
	if s == nil || s.R == nil {
		return errors.New("store not configured")
	}
	theme = strings.TrimSpace(theme)
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.R.Set(ctx, keyTheme, theme, 0).Err()
}

// SavedItems lists the saved-item catalog in insertion order.
func (s *Store) SavedItems(ctx context.Context) ([]billing.LineItem, error) {
	var items []billing.LineItem
	if _, err := s.getJSON(ctx, keySavedItems, &items); err != nil {
		return nil, fmt.Errorf("load saved items: %w", err)
	}
	return items, nil
}

// AddSavedItem appends the item to the catalog unless an item with the same
// name already exists. The catalog is capped at SavedItemsMax.
func (s *Store) AddSavedItem(ctx context.Context, item billing.LineItem) error {
	items, err := s.SavedItems(ctx)
	if err != nil {
		return err
	}
	for _, existing := range items {
		if existing.Name == item.Name {
			return nil
		}
	}
	items = append(items, item)
	if s.SavedItemsMax > 0 && len(items) > s.SavedItemsMax {
		items = items[len(items)-s.SavedItemsMax:]
	}
	if err := s.setJSON(ctx, keySavedItems, items); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// DeleteSavedItem removes the catalog entry with the given name. Name is the
// catalog's uniqueness key, so at most one entry matches.
func (s *Store) DeleteSavedItem(ctx context.Context, name string) (bool, error) {
	items, err := s.SavedItems(ctx)
	if err != nil {
		return false, err
	}
	kept := items[:0]
	removed := false
	for _, item := range items {
		if item.Name == name {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return false, nil
	}
	if err := s.setJSON(ctx, keySavedItems, kept); err != nil {
		return false, fmt.Errorf("save catalog: %w", err)
	}
	return true, nil
}

// AppendHistory archives a finalized invoice, trimming the list to the
// configured retention cap.
func (s *Store) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	if s == nil || s.R == nil {
		return errors.New("store not configured")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	pipe := s.R.TxPipeline()
	pipe.RPush(ctx, keyHistory, data)
	if s.HistoryLimit > 0 {
		pipe.LTrim(ctx, keyHistory, int64(-s.HistoryLimit), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// History returns the archived invoices, oldest first.
func (s *Store) History(ctx context.Context) ([]HistoryEntry, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("store not configured")
	}
	raw, err := s.R.LRange(ctx, keyHistory, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	entries := make([]HistoryEntry, 0, len(raw))
	for _, blob := range raw {
		var entry HistoryEntry
		if err := json.Unmarshal([]byte(blob), &entry); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SearchHistory filters archived invoices by invoice number or customer name
// substring, case-insensitively. An empty query returns everything.
func (s *Store) SearchHistory(ctx context.Context, query string) ([]HistoryEntry, error) {
	entries, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries, nil
	}
	matched := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		number := fmt.Sprintf("%d", entry.Number)
		if strings.Contains(number, query) || strings.Contains(strings.ToLower(entry.Customer), query) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// NextInvoiceNumber reserves and returns the next invoice number. The counter
// is seeded from StartNumber on first use.
func (s *Store) NextInvoiceNumber(ctx context.Context) (int64, error) {
	if s == nil || s.R == nil {
		return 0, errors.New("store not configured")
	}
	// Seed so the first INCR lands exactly on StartNumber.
	if s.StartNumber > 0 {
		if err := s.R.SetNX(ctx, keyLastNumber, s.StartNumber-1, 0).Err(); err != nil {
			return 0, fmt.Errorf("seed invoice counter: %w", err)
		}
	}
	n, err := s.R.Incr(ctx, keyLastNumber).Result()
	if err != nil {
		return 0, fmt.Errorf("advance invoice counter: %w", err)
	}
	return n, nil
}

// PeekInvoiceNumber returns the number the next finalized invoice will get,
// without reserving it. Used for display on the draft in progress.
func (s *Store) PeekInvoiceNumber(ctx context.Context) (int64, error) {
	if s == nil || s.R == nil {
		return 0, errors.New("store not configured")
	}
	raw, err := s.R.Get(ctx, keyLastNumber).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if s.StartNumber > 0 {
				return s.StartNumber, nil
			}
			return 1, nil
		}
		return 0, fmt.Errorf("peek invoice counter: %w", err)
	}
	return raw + 1, nil
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	if s == nil || s.R == nil {
		return false, errors.New("store not configured")
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	if s == nil || s.R == nil {
		return errors.New("store not configured")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, key, data, 0).Err()
}
