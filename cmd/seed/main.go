package main

import (
	"context"
	"flag"

	"garud-store/internal/config"
	"garud-store/internal/db"
	"garud-store/internal/logging"
	"garud-store/internal/migrate"
	productrepo "garud-store/internal/repository/product"
	tokenrepo "garud-store/internal/repository/token"
	userrepo "garud-store/internal/repository/user"
	accountsvc "garud-store/internal/service/account"
	"garud-store/internal/seed"
	"go.uber.org/zap"
)

func main() {
	var (
		fake     int
		fakeSeed uint64
	)
	flag.IntVar(&fake, "fake", 0, "Also generate this many fake products")
	flag.Uint64Var(&fakeSeed, "fake-seed", 0, "Seed for fake products (0 = random)")
	flag.Parse()

	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).Named("seed")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	products := productrepo.NewPostgres(pool, logger)
	if _, err := seed.Apply(ctx, products, logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
	if fake > 0 {
		if _, err := seed.Fake(ctx, products, fake, fakeSeed, logger); err != nil {
			logger.Fatal("seed fake products", zap.Error(err))
		}
	}

	accounts := accountsvc.New(userrepo.NewPostgres(pool, logger), tokenrepo.NewPostgres(pool), cfg.TokenTTL, logger)
	if _, err := accounts.EnsureAdmin(ctx, accountsvc.AdminSeed{
		Email:    cfg.AdminEmail,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}); err != nil {
		logger.Fatal("ensure admin", zap.Error(err))
	}

	logger.Info("seed applied")
}
