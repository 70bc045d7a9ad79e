package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/prashanttechie/portfolio-project/internal/auth"
	"github.com/prashanttechie/portfolio-project/internal/config"
	"github.com/prashanttechie/portfolio-project/internal/database"
	"github.com/prashanttechie/portfolio-project/internal/events"
	apphttp "github.com/prashanttechie/portfolio-project/internal/http"
	"github.com/prashanttechie/portfolio-project/internal/mailer"
	"github.com/prashanttechie/portfolio-project/internal/modules/email"
	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
	"github.com/prashanttechie/portfolio-project/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Info("config loaded", "config", cfg.String())

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	gw := payments.NewRazorpay(payments.RazorpayConfig{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		Timeout:       cfg.Razorpay.Timeout,
	})

	var notifiers payments.Notifiers
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		pub := events.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger)
		defer pub.Close()
		notifiers = append(notifiers, pub)
		logger.Info("kafka publisher enabled", "topic", cfg.Kafka.Topic)
	}
	if cfg.SMTP.Enabled() {
		notifiers = append(notifiers, email.NewEnrollmentNotifier(mailer.NewSMTPMailer(cfg.SMTP), cfg.SMTP.From, cfg.SMTP.FromName))
		logger.Info("email notifications enabled", "smtp_host", cfg.SMTP.Host)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	archive, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("webhook archive", "driver", archive.Driver)

	tokens := auth.NewTokens(cfg.AdminJWTSecret, 24*time.Hour)
	if !tokens.Enabled() {
		logger.Warn("ADMIN_JWT_SECRET is not set; admin routes will reject every request")
	}

	gin.SetMode(gin.ReleaseMode)
	r := apphttp.NewRouter(apphttp.Deps{
		Logger:   logger,
		DB:       db,
		SQLDB:    sqlDB,
		Gateway:  gw,
		Currency: cfg.Currency,
		Notifier: notifiers,
		Archive:  archive.Storage,
		Tokens:   tokens,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", payments.HeaderSignature},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
