package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamergoods/storefront/internal/domain/product"
)

type productResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Price        string `json:"price"`
	PriceDisplay string `json:"priceDisplay"`
	Category     string `json:"category"`
	Image        string `json:"image"`
}

func (h *Handler) productResponse(r *http.Request, p product.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Kind:         string(p.Kind),
		Price:        p.Price.String(),
		PriceDisplay: h.converter.Format(r.Context(), p.Price),
		Category:     p.Category,
		Image:        p.Image,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, h.productResponse(r, p))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.productResponse(r, *p))
}
