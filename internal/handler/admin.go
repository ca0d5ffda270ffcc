package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gamergoods/storefront/internal/domain/coupon"
	"github.com/gamergoods/storefront/internal/domain/currency"
)

type upsertCouponRequest struct {
	Code         string          `json:"code"`
	DiscountType string          `json:"discountType"`
	Value        decimal.Decimal `json:"value"`
	MinPurchase  decimal.Decimal `json:"minPurchase"`
	MaxDiscount  decimal.Decimal `json:"maxDiscount"`
	FreeShipping bool            `json:"freeShipping"`
	Description  string          `json:"description"`
	ValidFrom    *time.Time      `json:"validFrom"`
	ValidUntil   *time.Time      `json:"validUntil"`
	MaxUses      int             `json:"maxUses"`
}

func (h *Handler) upsertCoupon(w http.ResponseWriter, r *http.Request) {
	var req upsertCouponRequest
	if !h.decode(w, r, &req) {
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		h.writeError(w, http.StatusBadRequest, "code required")
		return
	}
	dt := coupon.DiscountType(req.DiscountType)
	if dt != coupon.DiscountPercentage && dt != coupon.DiscountFixed {
		h.writeError(w, http.StatusBadRequest, "discountType must be percentage or fixed")
		return
	}
	if req.Value.IsNegative() {
		h.writeError(w, http.StatusBadRequest, "value must not be negative")
		return
	}

	rule := &coupon.Rule{
		Code:         code,
		DiscountType: dt,
		Value:        req.Value,
		MinPurchase:  req.MinPurchase,
		MaxDiscount:  req.MaxDiscount,
		FreeShipping: req.FreeShipping,
		Description:  req.Description,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
		MaxUses:      req.MaxUses,
	}
	if err := h.couponAdm.Upsert(r.Context(), rule); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (h *Handler) deactivateCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.couponAdm.Deactivate(r.Context(), code); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type upsertCurrencyRequest struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	RateToUSD decimal.Decimal `json:"rateToUsd"`
	IsDefault bool            `json:"isDefault"`
	Active    bool            `json:"active"`
}

func (h *Handler) upsertCurrency(w http.ResponseWriter, r *http.Request) {
	var req upsertCurrencyRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.saveCurrency(w, r, req)
}

// updateCurrency is the per-code variant: the path segment names the
// currency and wins over any code in the body.
func (h *Handler) updateCurrency(w http.ResponseWriter, r *http.Request) {
	var req upsertCurrencyRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Code = chi.URLParam(r, "code")
	h.saveCurrency(w, r, req)
}

func (h *Handler) saveCurrency(w http.ResponseWriter, r *http.Request, req upsertCurrencyRequest) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if len(code) != 3 {
		h.writeError(w, http.StatusBadRequest, "code must be a three-letter identifier")
		return
	}
	if !req.RateToUSD.IsPositive() {
		h.writeError(w, http.StatusBadRequest, "rateToUsd must be positive")
		return
	}

	err := h.currencyAdm.Upsert(r.Context(), &currency.Currency{
		Code:      code,
		Name:      req.Name,
		RateToUSD: req.RateToUSD,
		IsDefault: req.IsDefault,
		Active:    req.Active,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	// The converter caches the set; a back-office change must show up on the
	// next storefront read.
	h.converter.Invalidate()

	h.writeJSON(w, http.StatusOK, map[string]string{"code": code})
}
