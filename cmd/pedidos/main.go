package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/distrisur/pedidos-go/internal/config"
	"github.com/distrisur/pedidos-go/internal/dialogue"
	"github.com/distrisur/pedidos-go/internal/handler"
	"github.com/distrisur/pedidos-go/internal/infra/memstore"
	"github.com/distrisur/pedidos-go/internal/infra/observability"
	"github.com/distrisur/pedidos-go/internal/infra/resilience"
	"github.com/distrisur/pedidos-go/internal/infra/sheets"
	"github.com/distrisur/pedidos-go/internal/port"
	"github.com/distrisur/pedidos-go/internal/service"
	"github.com/distrisur/pedidos-go/internal/transport/telegram"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_sheets", cfg.UseSheets),
		zap.String("pricing_mode", string(cfg.PricingMode)),
		zap.String("order_id_format", cfg.OrderIDFormat),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "pedidos")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// --- Stores ---
	var catalog port.CatalogStore
	var orderSink port.OrderSink
	var orderReader port.OrderReader

	if cfg.UseSheets && cfg.SpreadsheetID != "" {
		logger.Info("using spreadsheet as data backend",
			zap.String("spreadsheet_id", cfg.SpreadsheetID),
		)
		sheetsCB := resilience.NewCircuitBreaker("sheets")
		sheetsClient := sheets.NewClient(
			httpClient,
			cfg.SheetsBaseURL,
			cfg.SheetsAPIKey,
			cfg.SpreadsheetID,
			sheetsCB,
			resilienceCfg,
			logger,
		)

		catalogStore := sheets.NewCatalogStore(sheetsClient, cfg.PricingMode, cfg.CacheTTL, metrics, logger)
		warmCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		if err := catalogStore.Warm(warmCtx); err != nil {
			logger.Warn("catalog warm-up failed, will fetch lazily", zap.Error(err))
		}
		cancel()
		catalog = catalogStore

		sink := sheets.NewOrderSink(sheetsClient, cfg.OrderIDFormat, logger)
		orderSink = sink
		orderReader = sink
	} else {
		logger.Info("using in-memory demo data backend")
		catalog = memstore.NewDemoCatalog(cfg.PricingMode)
		sink := memstore.NewOrderSink(cfg.OrderIDFormat)
		orderSink = sink
		orderReader = sink
	}

	sessions := memstore.NewSessionStore()

	// --- Dialogue engine ---
	engine := dialogue.NewEngine(catalog, orderSink, sessions, dialogue.Options{
		QuantityMax:             cfg.QuantityMax,
		RetainClientAfterOrder:  cfg.RetainClientAfterOrder,
		ZeroQuantityRemovesLine: cfg.ZeroQuantityRemovesLine,
		MaxSearchResults:        cfg.MaxSearchResults,
		MinSearchTermLen:        cfg.MinSearchTermLen,
	}, metrics, logger)

	// --- Services ---
	authSvc := service.NewAuthService(cfg.AdminUser, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	adminSvc := service.NewAdminService(catalog, orderReader, sessions, metrics, logger)

	// --- Handlers ---
	var webhookHandler *handler.WebhookHandler
	if cfg.TelegramBotToken != "" {
		telegramCB := resilience.NewCircuitBreaker("telegram")
		sender := telegram.NewClient(httpClient, cfg.TelegramAPIURL, cfg.TelegramBotToken, telegramCB, resilienceCfg)
		webhookHandler = handler.NewWebhookHandler(engine, sender, logger)
		logger.Info("telegram webhook transport enabled")
	} else {
		logger.Warn("telegram transport: bot token not configured, webhook route unavailable")
	}

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Chat:    handler.NewChatHandler(engine, logger),
		Webhook: webhookHandler,
		Auth:    handler.NewAuthHandler(authSvc, logger),
		Admin:   handler.NewAdminHandler(adminSvc, catalog, logger),
		AuthMW:  handler.JWTAuthMiddleware(authSvc, logger),
		Catalog: catalog,
		Metrics: metrics,
		Logger:  logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
