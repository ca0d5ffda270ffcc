package handler

import "net/http"

// fortniteShop serves the transformed third-party item shop. The service
// degrades to mock items internally, so this endpoint never fails on feed
// trouble.
func (h *Handler) fortniteShop(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.shop.Shop(r.Context()))
}
