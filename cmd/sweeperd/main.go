package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"golang.org/x/time/rate"

	"token_sweeper/internal/app/service"
	"token_sweeper/internal/client"
	"token_sweeper/internal/infrastructure/configloader"
	"token_sweeper/internal/infrastructure/restapi"
	applogger "token_sweeper/internal/pkg/logger"
	"token_sweeper/internal/pkg/metrics"
)

func main() {
	// Bootstrap logger for everything that can fail before the config and
	// the structured logger are ready.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to load .env file: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	slogHandler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Sweep.WalletAddress == "" {
		cfg.Sweep.WalletAddress = os.Getenv("WALLET_ADDRESS")
	}
	if cfg.Sweep.WalletAddress == "" {
		log.Fatal("Wallet address is required (sweep.walletAddress or WALLET_ADDRESS)")
	}

	applogger.InitSlog(cfg.Logging.Level)
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	liteTimeout := time.Duration(cfg.LiteAPI.RequestTimeoutMillis) * time.Millisecond
	limiter := rate.NewLimiter(rate.Limit(cfg.LiteAPI.RateLimitPerSecond), int(cfg.LiteAPI.RateLimitPerSecond)+1)

	balanceClient := client.NewUltraBalanceClient(cfg.LiteAPI.BaseURL, liteTimeout, limiter, zapLogger)
	marketClient := client.NewMarketDataClient(
		cfg.LiteAPI.BaseURL,
		liteTimeout,
		limiter,
		zapLogger,
		cfg.LiteAPI.MaxIDsPerPriceRequest,
		cfg.LiteAPI.MaxConcurrentLookups,
		time.Duration(cfg.LiteAPI.MetadataCacheTTLMinutes)*time.Minute,
	)
	shieldClient := client.NewShieldClient(
		cfg.LiteAPI.BaseURL,
		liteTimeout,
		limiter,
		zapLogger,
		cfg.Sweep.ShieldChunkSize,
		cfg.LiteAPI.MaxConcurrentLookups,
	)
	executionClient := client.NewUltraExecutionClient(cfg.LiteAPI.BaseURL, liteTimeout, limiter, zapLogger)
	signer := client.NewRemoteSigner(
		cfg.Signer.BaseURL,
		time.Duration(cfg.Signer.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	zapLogger.Info("Lite-API clients initialized", zap.String("baseURL", cfg.LiteAPI.BaseURL))

	portLogger := applogger.NewSlogAdapter()
	holdingsSvc := service.NewHoldingsService(balanceClient, shieldClient, marketClient, portLogger, cfg.Sweep)
	conversionSvc := service.NewConversionService(executionClient, signer, portLogger, cfg.Sweep.TargetAssetID)
	session := service.NewSweepSession(
		cfg.Sweep.WalletAddress,
		holdingsSvc,
		conversionSvc,
		portLogger,
		cfg.Sweep.DefaultSelectionPolicy,
		cfg.Sweep.ProtectedAssetIDs()...,
	)
	zapLogger.Info("Sweep session initialized",
		zap.String("walletAddress", cfg.Sweep.WalletAddress),
		zap.String("targetAsset", cfg.Sweep.TargetAssetID))

	sessionHandler := restapi.NewSessionHandler(session)
	router := restapi.SetupRouter(sessionHandler, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Populate the initial snapshot in the background; the API serves an
	// empty session until the first refresh lands.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := session.Refresh(ctx); err != nil {
			zapLogger.Error("Initial snapshot refresh failed", zap.Error(err))
		} else {
			zapLogger.Info("Initial snapshot refresh completed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
