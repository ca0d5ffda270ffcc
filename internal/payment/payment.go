// Package payment talks to the hosted-checkout payment provider. Only the
// preference-creation contract is consumed; provider internals stay opaque.
package payment

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/gamergoods/storefront/internal/domain/order"
	"github.com/gamergoods/storefront/pkg/httpclient"
)

var _ order.PaymentGateway = (*Client)(nil)

// Client creates payment preferences over HTTP.
type Client struct {
	http *httpclient.Client
}

// NewClient wraps the shared HTTP client for the payment provider API.
func NewClient(http *httpclient.Client) *Client {
	return &Client{http: http}
}

type preferenceItem struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type preferenceRequest struct {
	ExternalReference string           `json:"external_reference"`
	PayerEmail        string           `json:"payer_email"`
	Items             []preferenceItem `json:"items"`
	Total             string           `json:"total"`
	Currency          string           `json:"currency"`
}

type preferenceResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// CreatePreference registers the order with the payment provider and returns
// the hosted-checkout URL the shopper is redirected to.
func (c *Client) CreatePreference(ctx context.Context, o *order.Order) (string, error) {
	req := preferenceRequest{
		ExternalReference: o.ID,
		PayerEmail:        o.Email,
		Total:             o.Total.StringFixed(2),
		Currency:          o.Currency,
	}
	for _, it := range o.Items {
		req.Items = append(req.Items, preferenceItem{
			Title:     it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		})
	}

	var resp preferenceResponse
	if err := c.http.Post(ctx, "/checkout/preferences", req, &resp); err != nil {
		return "", errors.Wrap(err, "create preference")
	}
	if resp.RedirectURL == "" {
		return "", errors.New("payment provider returned no redirect URL")
	}
	return resp.RedirectURL, nil
}
