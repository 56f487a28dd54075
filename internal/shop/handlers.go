package shop

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/dukaanbill/backend-billing/internal/billing"
	"github.com/dukaanbill/backend-billing/internal/common"
	"github.com/dukaanbill/backend-billing/internal/store"
)

// Handler serves the shop profile, theme, and saved-item catalog.
type Handler struct {
	Store    *store.Store
	Validate *validator.Validate
}

// Routes mounts the shop endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.PutProfile)
	r.Get("/theme", h.GetTheme)
	r.Put("/theme", h.PutTheme)
	r.Get("/items", h.ListSavedItems)
	r.Post("/items", h.AddSavedItem)
	r.Delete("/items/{name}", h.DeleteSavedItem)
	return r
}

// GetProfile returns the stored shop profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Store.ShopProfile(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "shop profile not set", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load shop profile", nil)
		return
	}
	common.Data(w, http.StatusOK, profile)
}

type profilePayload struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	GSTIN   string `json:"gstin" validate:"omitempty,len=15"`
}

// PutProfile validates and stores the shop profile.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var payload profilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "profile rejected", err.Error())
			return
		}
	}
	profile := store.ShopProfile{
		Name:    payload.Name,
		Address: payload.Address,
		City:    payload.City,
		Phone:   payload.Phone,
		Email:   payload.Email,
		GSTIN:   payload.GSTIN,
	}
	if err := h.Store.SaveShopProfile(r.Context(), profile); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to save shop profile", nil)
		return
	}
	common.Data(w, http.StatusOK, profile)
}

// GetTheme returns the stored display theme, defaulting to light.
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.Store.Theme(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load theme", nil)
		return
	}
	common.Data(w, http.StatusOK, map[string]string{"theme": theme})
}

type themePayload struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// PutTheme stores the display theme.
func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var payload themePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "theme must be light or dark", nil)
			return
		}
	}
	if err := h.Store.SaveTheme(r.Context(), payload.Theme); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to save theme", nil)
		return
	}
	common.Data(w, http.StatusOK, map[string]string{"theme": payload.Theme})
}

// ListSavedItems returns the saved-item catalog.
func (h *Handler) ListSavedItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.SavedItems(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load saved items", nil)
		return
	}
	common.Data(w, http.StatusOK, items)
}

type savedItemPayload struct {
	Name     string  `json:"name" validate:"required"`
	Qty      float64 `json:"qty" validate:"gt=0"`
	Price    float64 `json:"price" validate:"gt=0"`
	Discount float64 `json:"discount" validate:"gte=0"`
	TaxRate  float64 `json:"taxRate" validate:"gte=0"`
}

// AddSavedItem stores an item preset for one-tap reuse.
func (h *Handler) AddSavedItem(w http.ResponseWriter, r *http.Request) {
	var payload savedItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "saved item rejected", err.Error())
			return
		}
	}
	item := billing.LineItem{
		Name:     payload.Name,
		Qty:      payload.Qty,
		Price:    payload.Price,
		Discount: payload.Discount,
		TaxRate:  payload.TaxRate,
	}
	if err := h.Store.AddSavedItem(r.Context(), item); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to save item", nil)
		return
	}
	common.Data(w, http.StatusCreated, item)
}

// DeleteSavedItem removes a preset by name.
func (h *Handler) DeleteSavedItem(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item name", nil)
		return
	}
	removed, err := h.Store.DeleteSavedItem(r.Context(), name)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to delete item", nil)
		return
	}
	if !removed {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "saved item not found", nil)
		return
	}
	common.Data(w, http.StatusOK, map[string]string{"deleted": name})
}
