package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gamergoods/storefront/internal/domain/currency"
	"github.com/gamergoods/storefront/internal/domain/order"
)

type checkoutRequest struct {
	Email    string `json:"email"`
	Currency string `json:"currency"`
}

type checkoutResponse struct {
	OrderID     string `json:"orderId"`
	Total       string `json:"total"`
	RedirectURL string `json:"redirectUrl"`
}

func (h *Handler) doCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !strings.Contains(req.Email, "@") {
		h.writeError(w, http.StatusBadRequest, "valid email required")
		return
	}
	if req.Currency == "" {
		req.Currency = currency.CanonicalCode
	}

	result, err := h.checkout.Checkout(r.Context(), order.CheckoutRequest{
		CartID:   chi.URLParam(r, "cartID"),
		Email:    req.Email,
		Currency: req.Currency,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:     result.Order.ID,
		Total:       result.Order.Total.String(),
		RedirectURL: result.RedirectURL,
	})
}

type orderItemResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

type orderResponse struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	Items        []orderItemResponse `json:"items"`
	Subtotal     string              `json:"subtotal"`
	Discount     string              `json:"discount"`
	Total        string              `json:"total"`
	CouponCode   string              `json:"couponCode,omitempty"`
	FreeShipping bool                `json:"freeShipping"`
	Currency     string              `json:"currency"`
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp := orderResponse{
		ID:           o.ID,
		Email:        o.Email,
		Subtotal:     o.Subtotal.String(),
		Discount:     o.Discount.String(),
		Total:        o.Total.String(),
		CouponCode:   o.CouponCode,
		FreeShipping: o.FreeShipping,
		Currency:     o.Currency,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.String(),
			Quantity:  it.Quantity,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}
