package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/maisonnoire/storefront/internal/cart"
	"github.com/maisonnoire/storefront/internal/checkout"
	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/event"
	"github.com/maisonnoire/storefront/internal/handler"
	"github.com/maisonnoire/storefront/internal/order"
	"github.com/maisonnoire/storefront/internal/payment"
	"github.com/maisonnoire/storefront/internal/storage/postgres"
	redisstore "github.com/maisonnoire/storefront/internal/storage/redis"
	"github.com/maisonnoire/storefront/pkg/health"
	"github.com/maisonnoire/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
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

	// Redis for cart persistence.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return errors.Wrap(err, "parse redis URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	// Event stream. Without brokers events are dropped.
	var events event.Publisher = event.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := event.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = kp.Close() }()
		events = kp
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	couponRepo := postgres.NewCouponRepository(pool)
	shippingRepo := postgres.NewShippingRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	cartStore := redisstore.NewCartStore(redisClient, cfg.Cart.TTL)

	// Domain services.
	pricing := cart.Pricing{
		TaxRate:               decimal.NewFromFloat(cfg.Pricing.TaxRate),
		FreeShippingThreshold: decimal.NewFromFloat(cfg.Pricing.FreeShippingThreshold),
	}
	couponValidator := coupon.NewRepoValidator(couponRepo)
	engine := cart.NewEngine(cartStore, productRepo, couponValidator, shippingRepo, events, pricing)
	factory := order.NewFactory(pricing)
	lifecycle := order.NewLifecycle(orderRepo, events)
	gateway := payment.NewSimulator(cfg.Payment.Latency, payment.RandomFailure(cfg.Payment.FailureRate))
	checkoutSvc := checkout.NewService(
		engine, cartStore, shippingRepo, factory, orderRepo, lifecycle, gateway, events, cfg.Currency,
	)

	// HTTP handlers.
	h := handler.New(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		productRepo,
		engine,
		shippingRepo,
		checkoutSvc,
		orderRepo,
		lifecycle,
	)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

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
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-Cart-ID"},
				ExposeHeaders:    []string{"X-Cart-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
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
