package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garud-store/internal/cache"
	"garud-store/internal/config"
	"garud-store/internal/db"
	"garud-store/internal/domain"
	"garud-store/internal/httpserver"
	"garud-store/internal/logging"
	"garud-store/internal/metrics"
	"garud-store/internal/migrate"
	"garud-store/internal/payment/razorpay"
	cartrepo "garud-store/internal/repository/cart"
	orderrepo "garud-store/internal/repository/order"
	productrepo "garud-store/internal/repository/product"
	tokenrepo "garud-store/internal/repository/token"
	userrepo "garud-store/internal/repository/user"
	accountsvc "garud-store/internal/service/account"
	adminsvc "garud-store/internal/service/admin"
	cartsvc "garud-store/internal/service/cart"
	catalogsvc "garud-store/internal/service/catalog"
	checkoutsvc "garud-store/internal/service/checkout"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).Named("api")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	var catalogService *catalogsvc.Service
	if homeCache := connectCache(ctx, cfg, logger); homeCache != nil {
		catalogService = catalogsvc.New(productRepo, homeCache, logger)
	} else {
		catalogService = catalogsvc.New(productRepo, nil, logger)
	}

	accountService := accountsvc.New(userRepo, tokenRepo, cfg.TokenTTL, logger)
	if _, err := accountService.EnsureAdmin(ctx, accountsvc.AdminSeed{
		Email:    cfg.AdminEmail,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}); err != nil {
		logger.Fatal("ensure admin", zap.Error(err))
	}

	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		logger.Warn("razorpay credentials not configured; checkout will fail at the gateway")
	}
	recorder := metrics.New()
	checkoutService := checkoutsvc.New(
		cartRepo,
		orderRepo,
		razorpay.New(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger),
		razorpay.NewVerifier(cfg.RazorpayKeySecret),
		checkoutsvc.Options{
			Currency:    cfg.PaymentCurrency,
			StockPolicy: domain.ParseStockPolicy(cfg.StockPolicy),
			Metrics:     recorder,
		},
		logger,
	)

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		DB:            dbpool,
		Accounts:      accountService,
		Catalog:       catalogService,
		Carts:         cartsvc.New(cartRepo, productRepo),
		Checkout:      checkoutService,
		Admin:         adminsvc.New(productRepo, userRepo, orderRepo, logger),
		Metrics:       recorder,
		CORSOrigins:   cfg.CORSAllowOrigins,
		AuthPerMinute: cfg.AuthRateLimitPerMinute,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// connectCache returns nil when Redis is not configured or not reachable;
// the storefront then reads straight from Postgres.
func connectCache(ctx context.Context, cfg config.Config, logger *zap.Logger) *cache.RedisCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	rc := cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.HomeCacheTTL)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, home page cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return nil
	}
	logger.Info("home page cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.HomeCacheTTL))
	return rc
}
