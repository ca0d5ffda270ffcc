package handler

import (
	"net/http"
)

type currencyResponse struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	RateToUSD string `json:"rateToUsd"`
	IsDefault bool   `json:"isDefault"`
	Selected  bool   `json:"selected"`
}

// listCurrencies returns the available set. A backend failure upstream is
// invisible here: the converter degrades to its fallback set instead of
// erroring, so this endpoint always answers.
func (h *Handler) listCurrencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	active := h.converter.Active(ctx)

	var out []currencyResponse
	for _, c := range h.converter.Currencies(ctx) {
		out = append(out, currencyResponse{
			Code:      c.Code,
			Name:      c.Name,
			RateToUSD: c.RateToUSD.String(),
			IsDefault: c.IsDefault,
			Selected:  c.Code == active.Code,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

type selectCurrencyRequest struct {
	Code string `json:"code"`
}

// selectCurrency switches the display currency. Unknown codes are a silent
// no-op; the response reflects whatever ended up active.
func (h *Handler) selectCurrency(w http.ResponseWriter, r *http.Request) {
	var req selectCurrencyRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	h.converter.Select(ctx, req.Code)
	active := h.converter.Active(ctx)

	h.writeJSON(w, http.StatusOK, currencyResponse{
		Code:      active.Code,
		Name:      active.Name,
		RateToUSD: active.RateToUSD.String(),
		IsDefault: active.IsDefault,
		Selected:  true,
	})
}
