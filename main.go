package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vendas-backend/config"
	"vendas-backend/routes"
	"vendas-backend/services"
	"vendas-backend/utils"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, logCloser := utils.NewLogger(cfg.Log.Settings())
	defer logCloser.Close()
	slog.SetDefault(logger)

	utils.BcryptCost = cfg.Auth.BcryptCost
	utils.ConfigureJWT(cfg.Auth.JWT())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing, err := config.SetupTelemetry(ctx, cfg.App, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer tracing.Shutdown(context.Background())

	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer config.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if err := config.Migrate(db); err != nil {
			return err
		}
	}

	rdb := config.ConnectRedis(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}
	tokens := services.NewTokenStore(db, rdb)

	var storage services.FileStorage
	s3, err := services.NewS3Storage(ctx, services.S3Options{
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	switch {
	case err == nil:
		storage = s3
	case errors.Is(err, services.ErrStorageNotConfigured):
		logger.Info("document uploads disabled, no storage bucket configured")
	default:
		return err
	}

	var reminders *services.ReminderService
	if cfg.Reminders.Enabled {
		var notifier services.Notifier = services.LogNotifier{Logger: logger}
		if cfg.Twilio.Configured() {
			notifier = services.NewTwilioNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
		}
		reminders = services.NewReminderService(db, notifier, logger)
		reminders.OnResult = func(r services.DispatchResult) {
			config.RemindersDispatched.WithLabelValues("sent").Add(float64(r.Sent))
			config.RemindersDispatched.WithLabelValues("skipped").Add(float64(r.Skipped))
			config.RemindersDispatched.WithLabelValues("failed").Add(float64(r.Failed))
		}
		if err := reminders.StartScheduler(cfg.Reminders.Schedule); err != nil {
			return err
		}
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := routes.Dependencies{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SlowRequest:    cfg.Server.SlowRequest,
		Tokens:         tokens,
		Storage:        storage,
	}
	if tracing.Enabled() {
		deps.TracingService = cfg.Telemetry.ServiceName
	}
	r := routes.SetupRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "environment", cfg.App.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if reminders != nil {
		reminders.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
