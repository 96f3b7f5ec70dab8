package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/plant_shop/internal/catalog"
	"github.com/Skotchmaster/plant_shop/internal/guestcache"
	"github.com/Skotchmaster/plant_shop/internal/httpserver"
	"github.com/Skotchmaster/plant_shop/internal/notify"
	"github.com/Skotchmaster/plant_shop/internal/repo"
	"github.com/Skotchmaster/plant_shop/internal/service"
	"github.com/Skotchmaster/plant_shop/pkg/config"
	"github.com/Skotchmaster/plant_shop/pkg/db"
	"github.com/Skotchmaster/plant_shop/pkg/events"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
	"github.com/Skotchmaster/plant_shop/pkg/metrics"
	loggingmw "github.com/Skotchmaster/plant_shop/pkg/middleware/logging"
	"github.com/Skotchmaster/plant_shop/pkg/paymentclient"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("db init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("db close failed", "error", err)
		}
	}()

	store := repo.New(gdb)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.Discard{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Warn("kafka producer close failed", "error", err)
			}
		}()
		publisher = prod
	} else {
		logger.Warn("KAFKA_BROKERS not set, events are discarded")
	}

	var lookup catalog.Lookup = &catalog.SQLLookup{Products: store}
	if cfg.ESURL != "" {
		es, err := catalog.NewESClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("elasticsearch unavailable, using database for product display", "error", err)
		} else {
			lookup = &catalog.ESLookup{ES: es, Index: cfg.ESProductIndex, Fallback: lookup}
		}
	}

	guests := &service.GuestService{
		Repo:   store,
		TTL:    cfg.GuestSessionTTL,
		Events: publisher,
	}
	if cfg.RedisAddr != "" {
		rdb, err := guestcache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, guest sessions are read from the database", "error", err)
		} else {
			defer rdb.Close()
			guests.Cache = guestcache.New(rdb)
		}
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.NotifyFromAddress != "" {
		notifier = &notify.EmailNotifier{Pub: publisher, From: cfg.NotifyFromAddress}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(reg)
	guests.Metrics = m

	payments := &service.PaymentService{
		Repo:          store,
		ReturnURL:     cfg.PaymentReturnURL,
		AdvanceOrders: cfg.AdvanceOnPayment,
		Notifier:      notifier,
		Events:        publisher,
		Metrics:       m,
	}
	if cfg.PaymentShopID != "" {
		payments.Provider = paymentclient.NewClient(cfg.PaymentAPIURL, cfg.PaymentShopID, cfg.PaymentSecretKey)
	} else {
		logger.Warn("PAYMENT_SHOP_ID not set, payment creation is disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, httpserver.HeaderGuestID},
		AllowCredentials: true,
	}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())

	httpserver.Register(e, &httpserver.Deps{
		Identity: &httpserver.Identity{JWTSecret: cfg.JWTAccessSecret, Guests: guests},
		Metrics:  m,
		Health:   &httpserver.HealthHTTP{DB: gdb},
		Guest:    &httpserver.GuestHTTP{Svc: guests},
		Cart:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: store, Catalog: lookup, Events: publisher}},
		Orders: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo: store, Notifier: notifier, Events: publisher, Metrics: m,
		}},
		Favorites: &httpserver.FavoriteHTTP{Svc: &service.FavoriteService{Repo: store, Catalog: lookup}},
		Payments: &httpserver.PaymentHTTP{
			Svc:                 payments,
			WebhookUser:         cfg.WebhookUser,
			WebhookPasswordHash: cfg.WebhookPassHash,
		},
	})

	go guests.RunJanitor(ctx, cfg.GuestCleanupInterval)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
