package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/gamergoods/storefront/internal/domain/cart"
	"github.com/gamergoods/storefront/internal/domain/coupon"
	"github.com/gamergoods/storefront/internal/domain/currency"
	"github.com/gamergoods/storefront/internal/domain/order"
	"github.com/gamergoods/storefront/internal/fortnite"
	"github.com/gamergoods/storefront/internal/handler"
	"github.com/gamergoods/storefront/internal/payment"
	"github.com/gamergoods/storefront/internal/storage/postgres"
	"github.com/gamergoods/storefront/pkg/health"
	"github.com/gamergoods/storefront/pkg/httpclient"
	"github.com/gamergoods/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	couponRepo := postgres.NewCouponRepository(pool)
	currencyRepo := postgres.NewCurrencyRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	// Domain services.
	couponValidator := coupon.NewRepoValidator(couponRepo)
	cartStore := cart.NewStore(couponValidator, couponValidator, lg.Named("cart"))

	converter := currency.NewConverter(currencyRepo, settingsRepo, cfg.Currency.TTL, lg.Named("currency"))
	converter.Load(ctx)

	// Outbound collaborators on the shared HTTP client.
	paymentClient := payment.NewClient(httpclient.New(cfg.Payment.BaseURL,
		httpclient.WithToken(cfg.Payment.Token),
	))
	shopSvc := fortnite.NewService(httpclient.New(cfg.Fortnite.BaseURL),
		cfg.Fortnite.APIKey, lg.Named("fortnite"))

	checkoutSvc := order.NewService(cartStore, orderRepo, paymentClient, lg.Named("checkout"))

	// HTTP handlers.
	h := handler.New(
		productRepo,
		cartStore,
		converter,
		shopSvc,
		checkoutSvc,
		orderRepo,
		couponRepo,
		currencyRepo,
		lg.Named("api"),
	)
	apiKeyAuth := handler.APIKeyAuth(apikeyRepo, []byte(cfg.APIKeyPepper))

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes(apiKeyAuth)))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "api_key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
