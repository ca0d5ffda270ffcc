package currency

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// fallbackCanonicalRate is used when the canonical currency row is missing
// from the fetched set. Pricing display must never hard-fail, so a stale
// constant beats an error here.
var fallbackCanonicalRate = decimal.NewFromInt(900)

// fallback is the synthetic currency substituted when the source cannot be
// reached at all. The rest of the application always sees a non-nil active
// currency.
var fallback = Currency{
	Code:      CanonicalCode,
	Name:      "Chilean Peso",
	RateToUSD: fallbackCanonicalRate,
	IsDefault: true,
	Active:    true,
}

// Converter tracks the available currency set and the shopper's active
// selection, and converts canonical-currency amounts for display.
//
// The currency set is cached with a TTL and can be invalidated manually; it
// is an owned cache object rather than ambient package state so tests control
// its lifecycle.
type Converter struct {
	source Source
	prefs  Preferences
	lg     *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	set       []Currency
	active    Currency
	fetchedAt time.Time
	loaded    bool
}

// NewConverter creates a Converter. The set is fetched lazily on first use
// and refetched after ttl elapses.
func NewConverter(source Source, prefs Preferences, ttl time.Duration, lg *zap.Logger) *Converter {
	return &Converter{
		source: source,
		prefs:  prefs,
		lg:     lg,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Load fetches the currency set immediately. A fetch failure is recovered
// locally with the synthetic fallback and never surfaces as an error;
// currency display is best-effort and must degrade rather than block.
func (c *Converter) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh(ctx)
}

// Invalidate drops the cached set so the next call refetches.
func (c *Converter) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

// Currencies returns the available currency set.
func (c *Converter) Currencies(ctx context.Context) []Currency {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(ctx)

	out := make([]Currency, len(c.set))
	copy(out, c.set)
	return out
}

// Active returns the currently selected currency.
func (c *Converter) Active(ctx context.Context) Currency {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(ctx)
	return c.active
}

// Select makes the currency with the given code active and persists the
// choice for future sessions. Unknown codes are a no-op.
func (c *Converter) Select(ctx context.Context, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(ctx)

	for _, cur := range c.set {
		if cur.Code == code {
			c.active = cur
			if err := c.prefs.Save(ctx, code); err != nil {
				c.lg.Warn("persisting currency preference failed",
					zap.String("code", code), zap.Error(err))
			}
			return
		}
	}
}

// Convert converts an amount in the canonical currency to the active one.
// It is the identity when the active currency is the canonical currency;
// otherwise the amount goes through USD using the canonical entry's rate.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(ctx)

	if c.active.Code == CanonicalCode {
		return amount
	}

	canonicalRate := fallbackCanonicalRate
	for _, cur := range c.set {
		if cur.Code == CanonicalCode {
			canonicalRate = cur.RateToUSD
			break
		}
	}

	usd := amount.Div(canonicalRate)
	return usd.Mul(c.active.RateToUSD)
}

// Format converts the amount and renders it with grouped thousands, zero
// decimal places for the canonical currency and two otherwise, suffixed with
// the currency code.
func (c *Converter) Format(ctx context.Context, amount decimal.Decimal) string {
	converted := c.Convert(ctx, amount)
	active := c.Active(ctx)

	digits := 2
	if active.Code == CanonicalCode {
		digits = 0
	}

	p := message.NewPrinter(language.English)
	return p.Sprintf("%v %s",
		number.Decimal(converted.Round(int32(digits)).InexactFloat64(),
			number.MinFractionDigits(digits),
			number.MaxFractionDigits(digits),
		),
		active.Code,
	)
}

// ensure refreshes the cached set when it is missing or older than the TTL.
// Callers must hold c.mu.
func (c *Converter) ensure(ctx context.Context) {
	if c.loaded && c.now().Sub(c.fetchedAt) < c.ttl {
		return
	}
	c.refresh(ctx)
}

// refresh fetches the set and resolves the active currency: a stored
// preference wins when it matches a fetched entry, then the default-flagged
// entry, then the first entry. Callers must hold c.mu.
func (c *Converter) refresh(ctx context.Context) {
	set, err := c.source.List(ctx)
	if err != nil || len(set) == 0 {
		if c.loaded {
			// Keep serving the stale set rather than degrading further.
			c.fetchedAt = c.now()
			c.lg.Warn("currency refresh failed, serving stale set", zap.Error(err))
			return
		}
		c.set = []Currency{fallback}
		c.active = fallback
		c.loaded = true
		c.fetchedAt = c.now()
		c.lg.Warn("currency load failed, using fallback", zap.Error(err))
		return
	}

	c.set = set
	c.loaded = true
	c.fetchedAt = c.now()
	c.active = c.resolveActive(ctx, set)
}

func (c *Converter) resolveActive(ctx context.Context, set []Currency) Currency {
	if pref, err := c.prefs.Load(ctx); err == nil && pref != "" {
		for _, cur := range set {
			if cur.Code == pref {
				return cur
			}
		}
	}
	for _, cur := range set {
		if cur.IsDefault {
			return cur
		}
	}
	return set[0]
}
