package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/dukaanbill/backend-billing/internal/billing"
	"github.com/dukaanbill/backend-billing/internal/common"
	"github.com/dukaanbill/backend-billing/internal/export"
	"github.com/dukaanbill/backend-billing/internal/obs"
	"github.com/dukaanbill/backend-billing/internal/store"
)

// Handler wires the draft service to HTTP.
type Handler struct {
	Svc      *Service
	Store    *store.Store
	Validate *validator.Validate
	Currency string
}

// Routes mounts the draft endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Delete("/items/{pos}", h.RemoveItem)
		r.Patch("/config", h.SetConfig)
		r.Patch("/customer", h.SetCustomer)
		r.Patch("/payment", h.SetPayment)
		r.Post("/finalize", h.Finalize)
		r.Get("/receipt.txt", h.ReceiptText)
		r.Get("/receipt.pdf", h.ReceiptPDF)
	})
	return r
}

// Create opens a new draft session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	snap, totals, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.render(w, r, http.StatusCreated, snap, totals)
}

// Get returns the draft snapshot and freshly computed totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	snap, totals, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.render(w, r, http.StatusOK, snap, totals)
}

type addItemPayload struct {
	Name     string  `json:"name" validate:"required"`
	Qty      float64 `json:"qty" validate:"gt=0"`
	Price    float64 `json:"price" validate:"gt=0"`
	Discount float64 `json:"discount"`
	TaxRate  float64 `json:"taxRate"`
	Save     bool    `json:"save"`
}

// AddItem validates and appends a line item to the draft.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "item rejected", fieldErrors(err))
		return
	}
	item := billing.LineItem{
		Name:     payload.Name,
		Qty:      payload.Qty,
		Price:    payload.Price,
		Discount: payload.Discount,
		TaxRate:  payload.TaxRate,
	}
	if _, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), item, payload.Save); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// RemoveItem deletes the item at the path position.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	pos, err := strconv.Atoi(chi.URLParam(r, "pos"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item position", nil)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), pos); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

type configPayload struct {
	GlobalDiscountPercent float64 `json:"globalDiscountPercent" validate:"gte=0"`
	RoundOff              bool    `json:"roundOff"`
}

// SetConfig updates the global discount and round-off settings.
func (h *Handler) SetConfig(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	var payload configPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "config rejected", fieldErrors(err))
		return
	}
	cfg := billing.Config{GlobalDiscountPercent: payload.GlobalDiscountPercent, RoundOff: payload.RoundOff}
	if err := h.Svc.SetConfig(r.Context(), chi.URLParam(r, "id"), cfg); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// SetCustomer updates the customer block of the draft.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	var payload Customer
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.SetCustomer(r.Context(), chi.URLParam(r, "id"), payload); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// SetPayment updates the payment block of the draft.
func (h *Handler) SetPayment(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	var payload Payment
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.SetPayment(r.Context(), chi.URLParam(r, "id"), payload); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

type finalizePayload struct {
	Reason string `json:"reason" validate:"required,oneof=print export reset"`
}

// Finalize archives the draft (print/export/reset semantics).
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	var payload finalizePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "finalize rejected", fieldErrors(err))
		return
	}
	result, err := h.Svc.Finalize(r.Context(), chi.URLParam(r, "id"), Reason(payload.Reason))
	if err != nil {
		h.writeError(w, err)
		return
	}
	body := map[string]any{"archived": result.Archived}
	if result.Archived {
		body["entry"] = result.Entry
		body["totals"] = result.Totals
	}
	common.Data(w, http.StatusOK, body)
}

// ReceiptText streams a plain-text receipt and archives the invoice, the
// download-then-save flow of the original tool.
func (h *Handler) ReceiptText(w http.ResponseWriter, r *http.Request) {
	receipt, ok := h.exportReceipt(w, r)
	if !ok {
		return
	}
	body := export.Text(receipt)
	if obs.ReceiptExportTotal != nil {
		obs.ReceiptExportTotal.WithLabelValues("txt").Inc()
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=Invoice_%d.txt", receipt.Number))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// ReceiptPDF streams a PDF receipt and archives the invoice.
func (h *Handler) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	receipt, ok := h.exportReceipt(w, r)
	if !ok {
		return
	}
	body, err := export.PDF(receipt)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to render pdf", nil)
		return
	}
	if obs.ReceiptExportTotal != nil {
		obs.ReceiptExportTotal.WithLabelValues("pdf").Inc()
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=Invoice_%d.pdf", receipt.Number))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) exportReceipt(w http.ResponseWriter, r *http.Request) (export.Receipt, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return export.Receipt{}, false
	}
	id := chi.URLParam(r, "id")
	snap, _, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return export.Receipt{}, false
	}
	result, err := h.Svc.Finalize(r.Context(), id, ReasonExport)
	if err != nil {
		h.writeError(w, err)
		return export.Receipt{}, false
	}

	var profile store.ShopProfile
	if h.Store != nil {
		profile, err = h.Store.ShopProfile(r.Context())
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load shop profile", nil)
			return export.Receipt{}, false
		}
	}
	return export.Receipt{
		Shop:     profile,
		Customer: export.Customer{Name: result.Customer.Name, Address: result.Customer.Address, Phone: result.Customer.Phone},
		Payment:  export.Payment{Method: result.Payment.Method, BankDetails: result.Payment.BankDetails},
		Number:   result.Entry.Number,
		Date:     result.Entry.Date,
		Items:    result.Entry.Items,
		Config:   snap.Config,
		Totals:   result.Totals,
		Currency: h.Currency,
	}, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, snap Snapshot, totals billing.Totals) {
	number, err := h.Svc.NextNumber(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load invoice number", nil)
		return
	}
	items := make([]map[string]any, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, map[string]any{
			"name":     it.Name,
			"qty":      it.Qty,
			"price":    it.Price,
			"discount": it.Discount,
			"taxRate":  it.TaxRate,
			"total":    billing.LineTotal(it),
		})
	}
	common.Data(w, status, map[string]any{
		"id":       snap.ID,
		"number":   number,
		"customer": snap.Customer,
		"payment":  snap.Payment,
		"config":   snap.Config,
		"items":    items,
		"totals":   totals,
		"currency": h.Currency,
	})
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func fieldErrors(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]any{"error": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrEmptyDraft):
		common.JSONError(w, http.StatusBadRequest, "EMPTY_DRAFT", "add at least one item before printing or exporting", nil)
	case errors.Is(err, billing.ErrInvalidItem), errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, billing.ErrIndexOutOfRange):
		// Stale position: the caller's view is out of sync with the draft.
		common.JSONError(w, http.StatusConflict, "STALE_POSITION", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}
