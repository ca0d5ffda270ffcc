// Package handler exposes the storefront REST API.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gamergoods/storefront/internal/domain/cart"
	"github.com/gamergoods/storefront/internal/domain/coupon"
	"github.com/gamergoods/storefront/internal/domain/currency"
	"github.com/gamergoods/storefront/internal/domain/order"
	"github.com/gamergoods/storefront/internal/domain/product"
	"github.com/gamergoods/storefront/internal/fortnite"
)

// CouponAdmin covers the back-office coupon operations.
type CouponAdmin interface {
	Upsert(ctx context.Context, rule *coupon.Rule) error
	Deactivate(ctx context.Context, code string) error
}

// CurrencyAdmin covers the back-office currency operations.
type CurrencyAdmin interface {
	Upsert(ctx context.Context, c *currency.Currency) error
}

// Handler holds the API dependencies and implements every route.
type Handler struct {
	products    product.Repository
	carts       *cart.Store
	converter   *currency.Converter
	shop        *fortnite.Service
	checkout    *order.Service
	orders      order.Repository
	couponAdm   CouponAdmin
	currencyAdm CurrencyAdmin
	lg          *zap.Logger
}

// New constructs a Handler with the required dependencies.
func New(
	products product.Repository,
	carts *cart.Store,
	converter *currency.Converter,
	shop *fortnite.Service,
	checkout *order.Service,
	orders order.Repository,
	couponAdm CouponAdmin,
	currencyAdm CurrencyAdmin,
	lg *zap.Logger,
) *Handler {
	return &Handler{
		products:    products,
		carts:       carts,
		converter:   converter,
		shop:        shop,
		checkout:    checkout,
		orders:      orders,
		couponAdm:   couponAdm,
		currencyAdm: currencyAdm,
		lg:          lg,
	}
}

// Routes mounts every API route on a chi router. Admin routes sit behind the
// given API-key middleware.
func (h *Handler) Routes(apiKeyAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/currencies", h.listCurrencies)
	r.Put("/currencies/selected", h.selectCurrency)
	r.Get("/shop/fortnite", h.fortniteShop)

	r.Route("/cart", func(r chi.Router) {
		r.Post("/", h.createCart)
		r.Get("/{id}", h.getCart)
		r.Delete("/{id}", h.clearCart)
		r.Post("/{id}/items", h.addItem)
		r.Put("/{id}/items/{productID}", h.setQuantity)
		r.Delete("/{id}/items/{productID}", h.removeItem)
		r.Post("/{id}/coupon", h.applyCoupon)
		r.Delete("/{id}/coupon", h.removeCoupon)
	})

	r.Post("/checkout/{cartID}", h.doCheckout)
	r.Get("/orders/{id}", h.getOrder)

	r.Route("/admin", func(r chi.Router) {
		r.Use(apiKeyAuth)
		r.Post("/coupons", h.upsertCoupon)
		r.Delete("/coupons/{code}", h.deactivateCoupon)
		r.Post("/currencies", h.upsertCurrency)
		r.Put("/currencies/{code}", h.updateCurrency)
	})

	return r
}
