package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/lockbox/internal/auth"
	"github.com/BradenHooton/lockbox/internal/config"
	"github.com/BradenHooton/lockbox/internal/handlers"
	middlewareCustom "github.com/BradenHooton/lockbox/internal/middleware"
	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/repositories"
	"github.com/BradenHooton/lockbox/internal/routes"
	"github.com/BradenHooton/lockbox/internal/services"
	pkgauth "github.com/BradenHooton/lockbox/pkg/auth"
	pkglogger "github.com/BradenHooton/lockbox/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(os.Getenv("LOG_LEVEL"))}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("store_driver", cfg.Storage.Driver),
		slog.String("biometric_simulator", cfg.Biometric.Simulator),
	)

	// Open the key-value backend
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	kv, closeStore, err := repositories.Open(ctx, &cfg.Storage, logger)
	cancel()
	if err != nil {
		logger.Error("failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	secretKey, err := loadSecureStoreKey(cfg, logger)
	if err != nil {
		logger.Error("failed to load secure store key", slog.Any("error", err))
		os.Exit(1)
	}

	secureStore, err := auth.NewSealedItemStore(kv, secretKey)
	if err != nil {
		logger.Error("failed to initialize secure store", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	credentialStore := services.NewCredentialStore(kv, logger)
	lockoutService := services.NewLockoutService(credentialStore, logger)

	sensor := auth.NewSoftwareSensor(auth.SimulatorMode(cfg.Biometric.Simulator), models.BiometryType(cfg.Biometric.BiometryType))
	biometricService := services.NewBiometricService(sensor, credentialStore, secureStore, lockoutService, logger, auditLogger)

	// Timing delay for credential checks
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	sessionService := services.NewSessionService(
		credentialStore,
		biometricService,
		secureStore,
		pkgauth.NewHasher(cfg.Auth.BcryptCost),
		timingDelay,
		services.SessionConfig{
			RegisterRedirectDelay: cfg.Auth.RegisterRedirectDelay,
			RegistrationPersist:   cfg.Auth.RegistrationPersist,
		},
		logger,
		auditLogger,
	)
	defer sessionService.Close()

	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 10*time.Second)
	sessionService.Restore(restoreCtx)
	restoreCancel()

	themeService := services.NewThemeService(models.ThemeMode(cfg.UI.ThemeMode))

	// Initialize handlers
	h := routes.Handlers{
		Session:   handlers.NewSessionHandler(sessionService),
		Auth:      handlers.NewAuthHandler(sessionService, logger),
		Biometric: handlers.NewBiometricHandler(biometricService, logger),
		Theme:     handlers.NewThemeHandler(themeService),
		Health:    handlers.NewHealthHandler(credentialStore, cfg.Storage.Driver, logger),
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, h, middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Auth.AuthRequestsPerMinute,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", slog.Any("error", err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped gracefully")
}

// loadSecureStoreKey decodes SECURE_STORE_KEY. Development runs without one get an
// ephemeral key, so sealed credentials do not survive a restart.
func loadSecureStoreKey(cfg *config.Config, logger *slog.Logger) ([]byte, error) {
	if cfg.Biometric.SecureStoreKey != "" {
		return pkgauth.DecodeSecretKey(cfg.Biometric.SecureStoreKey)
	}

	hexKey, err := pkgauth.GenerateSecretKey()
	if err != nil {
		return nil, err
	}
	logger.Warn("SECURE_STORE_KEY not set, using an ephemeral key")
	return pkgauth.DecodeSecretKey(hexKey)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
