package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/localpop/localpop-backend/api/routes"
	"github.com/localpop/localpop-backend/internal/auth"
	"github.com/localpop/localpop-backend/internal/mail"
	"github.com/localpop/localpop-backend/internal/payfast"
	"github.com/localpop/localpop-backend/internal/products"
	"github.com/localpop/localpop-backend/internal/purchases"
	"github.com/localpop/localpop-backend/internal/reviews"
	"github.com/localpop/localpop-backend/internal/stats"
	"github.com/localpop/localpop-backend/internal/users"
	"github.com/localpop/localpop-backend/internal/wishlist"
	"github.com/localpop/localpop-backend/pkg/auth/session"
	"github.com/localpop/localpop-backend/pkg/config"
	"github.com/localpop/localpop-backend/pkg/db"
	"github.com/localpop/localpop-backend/pkg/logger"
	"github.com/localpop/localpop-backend/pkg/metrics"
	"github.com/localpop/localpop-backend/pkg/migrate"
	"github.com/localpop/localpop-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(registry)
	mailMetrics := metrics.NewMailMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	purchaseRepo := purchases.NewRepository(dbClient.DB())
	reviewRepo := reviews.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	mailRepo := mail.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.ServiceParams{Repo: productRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	purchaseService, err := purchases.NewService(purchases.ServiceParams{
		Repo:              purchaseRepo,
		MailRepo:          mailRepo,
		Products:          productRepo,
		Users:             userRepo,
		TransactionRunner: dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create purchases service", err)
		os.Exit(1)
	}

	replayGuard, err := payfast.NewRedisReplayGuard(redisClient, payfast.NewReplayGuardTTL())
	if err != nil {
		logg.Error(context.Background(), "failed to create replay guard", err)
		os.Exit(1)
	}

	paymentService, err := payfast.NewService(payfast.ServiceParams{
		Purchases: purchaseService,
		Codec:     payfast.NewCodec(cfg.PayFast.Passphrase),
		Config:    cfg.PayFast,
		Guard:     replayGuard,
		Metrics:   paymentMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Repo:     reviewRepo,
		Products: productRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:     wishlistRepo,
		Products: productRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(stats.ServiceParams{
		Products:  productRepo,
		Purchases: purchaseRepo,
		Users:     userRepo,
		Wishlist:  wishlistRepo,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	sender, err := mail.NewSendGridSender(cfg.Mail)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail sender", err)
		os.Exit(1)
	}
	dispatcher, err := mail.NewDispatcher(mail.DispatcherParamsFromConfig(cfg.Mail, mailRepo, sender, logg, mailMetrics))
	if err != nil {
		logg.Error(context.Background(), "failed to create mail dispatcher", err)
		os.Exit(1)
	}

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go func() {
		if err := dispatcher.Run(dispatcherCtx); err != nil && err != context.Canceled {
			logg.Error(dispatcherCtx, "mail dispatcher stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DBPinger:       dbClient,
			RedisPinger:    redisClient,
			Sessions:       sessionManager,
			Registry:       registry,
			AuthService:    authService,
			Register:       registerService,
			Products:       productService,
			Purchases:      purchaseService,
			Payments:       paymentService,
			Reviews:        reviewService,
			Wishlist:       wishlistService,
			Stats:          statsService,
			UserRepository: userRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
