package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gamergoods/storefront/internal/domain/cart"
)

type cartLineResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type cartCouponResponse struct {
	Code           string `json:"code"`
	DiscountAmount string `json:"discountAmount"`
	FreeShipping   bool   `json:"freeShipping"`
	Description    string `json:"description"`
}

type cartResponse struct {
	ID              string              `json:"id"`
	Lines           []cartLineResponse  `json:"lines"`
	Coupon          *cartCouponResponse `json:"coupon,omitempty"`
	Subtotal        string              `json:"subtotal"`
	Total           string              `json:"total"`
	SubtotalDisplay string              `json:"subtotalDisplay"`
	TotalDisplay    string              `json:"totalDisplay"`
}

func (h *Handler) cartResponse(r *http.Request, snap cart.Cart) cartResponse {
	ctx := r.Context()
	resp := cartResponse{
		ID:              snap.ID,
		Lines:           make([]cartLineResponse, 0, len(snap.Lines)),
		Subtotal:        snap.Subtotal().String(),
		Total:           snap.Total().String(),
		SubtotalDisplay: h.converter.Format(ctx, snap.Subtotal()),
		TotalDisplay:    h.converter.Format(ctx, snap.Total()),
	}
	for _, l := range snap.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.String(),
			Quantity:  l.Quantity,
			LineTotal: l.Total().String(),
		})
	}
	if snap.Coupon != nil {
		resp.Coupon = &cartCouponResponse{
			Code:           snap.Coupon.Code,
			DiscountAmount: snap.Coupon.DiscountAmount.String(),
			FreeShipping:   snap.Coupon.FreeShipping,
			Description:    snap.Coupon.Description,
		}
	}
	return resp
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	snap := h.carts.Create()
	h.writeJSON(w, http.StatusCreated, h.cartResponse(r, snap))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.carts.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.cartResponse(r, snap))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.carts.Clear(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.cartResponse(r, snap))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// addItem adds the product to the cart, one unit unless a quantity is given.
// The catalog price is copied into the line at add time.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "productId required")
		return
	}
	if req.Quantity < 0 {
		h.writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	snap, err := h.carts.AddItem(chi.URLParam(r, "id"), p.ID, p.Name, p.Price, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.cartResponse(r, snap))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, err := h.carts.SetQuantity(chi.URLParam(r, "id"), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.cartResponse(r, snap))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	snap, err := h.carts.RemoveItem(chi.URLParam(r, "id"), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.cartResponse(r, snap))
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// applyCoupon validates the code against the cart subtotal and applies the
// resolved coupon. Codes are upper-cased at the boundary; rejection reasons
// propagate verbatim as 422s.
func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if !h.decode(w, r, &req) {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		h.writeError(w, http.StatusBadRequest, "code required")
		return
	}

	snap, err := h.carts.ApplyCoupon(r.Context(), chi.URLParam(r, "id"), code)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.cartResponse(r, snap))
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	snap, err := h.carts.RemoveCoupon(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.cartResponse(r, snap))
}
