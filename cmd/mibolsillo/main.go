package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mibolsillo/internal/apiclient"
	"mibolsillo/internal/cache"
	"mibolsillo/internal/config"
	apphttp "mibolsillo/internal/http"
	applog "mibolsillo/internal/log"
	"mibolsillo/internal/metrics"
	"mibolsillo/internal/session"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	m := metrics.New()

	api, err := apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(logger),
		apiclient.WithMetrics(m),
	)
	if err != nil {
		logger.Error("Failed to initialize API client", applog.FieldError, err, "api_url", cfg.APIURL)
		os.Exit(1)
	}

	caches := cache.NewManager(logger)
	var verifier session.Verifier
	if cfg.ClerkJWKSURL != "" {
		jwks := session.NewJWKSVerifier(cfg.ClerkJWKSURL,
			session.WithJWKSLogger(logger),
			session.WithJWKSMetrics(m),
		)
		caches.Register(jwks.Cache())
		verifier = jwks
		logger.Info("Verifying session tokens against JWKS", "jwks_url", cfg.ClerkJWKSURL)
	} else {
		logger.Warn("CLERK_JWKS_URL not set, session token signatures are not checked locally")
	}
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	clerkHost := cfg.ClerkFrontendAPI()
	if clerkHost == "" {
		logger.Warn("CLERK_PUBLISHABLE_KEY not set, sign-in is disabled")
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:                ":" + cfg.Port,
		API:                 api,
		Verifier:            verifier,
		Logger:              logger,
		Metrics:             m,
		ClerkPublishableKey: cfg.ClerkPublishableKey,
		ClerkFrontendAPI:    clerkHost,
		TelegramBotUsername: cfg.TelegramBotUsername,
		DefaultLanguage:     cfg.DefaultLanguage,
		RateLimitPerMinute:  cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting mibolsillo web",
		"port", cfg.Port,
		"api_url", cfg.APIURL,
		"default_language", cfg.DefaultLanguage)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
