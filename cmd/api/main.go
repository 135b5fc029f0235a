package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genzfits/internal/config"
	"genzfits/internal/database"
	"genzfits/internal/handlers"
	"genzfits/internal/logger"
	"genzfits/internal/monitoring"
	"genzfits/internal/server"
	"genzfits/internal/session"
	"genzfits/internal/store"
	"genzfits/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(logger.Options{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting GenZFits API", cfg.LogFields()...)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.InitDB(cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.CloseDB()
	log.Info("Database connection established")

	if err := database.CreateTables(database.DB); err != nil {
		log.Fatal("Failed to create tables", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seeded, err := store.EnsureAdmin(ctx, database.DB, store.AdminSeed{
		FullName: cfg.Admin.FullName,
		Username: cfg.Admin.Username,
		Mobile:   cfg.Admin.Mobile,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		log.Fatal("Failed to seed admin account", zap.Error(err))
	}
	if seeded {
		log.Info("Admin account created", zap.String("username", cfg.Admin.Username))
	} else if cfg.Admin.Password == "" {
		log.Warn("ADMIN_PASSWORD not set, admin seeding skipped")
	}

	signer, err := utils.NewTokenSigner(cfg.Session.Secret)
	if err != nil {
		log.Fatal("Failed to initialize session signer", zap.Error(err))
	}
	sessions := session.NewStore(signer, cfg.Session.TTL)
	sessions.Start(ctx, cfg.Session.SweepInterval, func(removed int) {
		if removed > 0 {
			log.Debug("Expired sessions swept", zap.Int("removed", removed))
		}
	})
	monitoring.RegisterSessionGauge(sessions.Len)

	if err := os.MkdirAll(cfg.Upload.BasePath, 0o755); err != nil {
		log.Fatal("Failed to create uploads directory", zap.String("path", cfg.Upload.BasePath), zap.Error(err))
	}

	handlers.Configure(handlers.Options{
		Sessions:            sessions,
		UploadsBasePath:     cfg.Upload.BasePath,
		MaxImageUploadBytes: cfg.Upload.MaxImageUploadBytes,
		MaxParallelUploads:  cfg.Upload.MaxParallelUploads,
		CookieSecure:        cfg.Session.CookieSecure,
		MonitoringAPIKey:    cfg.Monitoring.APIKey,
	})
	handlers.SetMonitoringService(monitoring.NewService(startedAt, cfg.Upload.BasePath, sessions.Len))

	router := server.NewRouter(server.RouterConfig{
		AllowedOrigin:   cfg.Server.AllowedOrigin,
		UploadsBasePath: cfg.Upload.BasePath,
	}, sessions)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal("Server error", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
		return
	}
	log.Info("Server stopped")
}
