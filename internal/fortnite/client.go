package fortnite

import (
	"context"

	"go.uber.org/zap"

	"github.com/gamergoods/storefront/pkg/httpclient"
)

// Service fetches and transforms the third-party item shop.
type Service struct {
	http   *httpclient.Client
	apiKey string
	lg     *zap.Logger
}

// NewService creates a Service on top of the shared HTTP client. apiKey is
// the third-party API key, sent in the provider's own header.
func NewService(http *httpclient.Client, apiKey string, lg *zap.Logger) *Service {
	return &Service{http: http, apiKey: apiKey, lg: lg}
}

// Shop returns the transformed item shop. A fetch or parse failure degrades
// to a small hardcoded item list rather than an empty shop; the shop page
// must stay usable when the feed is down.
func (s *Service) Shop(ctx context.Context) *Shop {
	var resp feedResponse
	err := s.http.Get(ctx, "/v2/shop", &resp,
		httpclient.WithoutAuth(),
		httpclient.WithHeader("x-api-key", s.apiKey),
	)
	if err != nil {
		s.lg.Warn("item shop feed unavailable, serving mock items", zap.Error(err))
		return mockShop()
	}
	return transform(&resp)
}

// mockShop is the degraded-fallback shop served when the feed fails.
func mockShop() *Shop {
	items := []Item{
		{
			ID:          "mock-outfit-1",
			Name:        "Midnight Drift",
			Description: "Leave a trail they can't follow.",
			Type:        "outfit",
			Rarity:      "Epic",
			Price:       1500,
			Image:       placeholderImage("outfit"),
		},
		{
			ID:          "mock-pickaxe-1",
			Name:        "Starsplitter",
			Description: "Cuts through the quiet.",
			Type:        "pickaxe",
			Rarity:      "Rare",
			Price:       800,
			Image:       placeholderImage("pickaxe"),
		},
		{
			ID:          "mock-emote-1",
			Name:        "Victory Shuffle",
			Description: "Earned, not given.",
			Type:        "emote",
			Rarity:      "Uncommon",
			Price:       500,
			Image:       placeholderImage("emote"),
		},
	}
	return &Shop{
		All:      items,
		Featured: items[:1],
		Daily:    items[1:],
	}
}
