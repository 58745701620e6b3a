package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecodeli/cmd"
	"ecodeli/internal/adapters/out/kafka"
	"ecodeli/internal/adapters/out/logsink"
	"ecodeli/internal/adapters/out/postgres"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:          "ecodeli",
		Short:        "Delivery tracking, ETA and courier matching service",
		SilenceUsage: true,
	}
	cmd.RegisterFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled jobs",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.LoadConfig(c.Flags())
			if err != nil {
				return err
			}
			return serve(c.Context(), cfg)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.LoadConfig(c.Flags())
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			newLogger(cfg).Info("migrating schema", "database", cfg.DBName)
			return postgres.Migrate(c.Context(), db)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatalf("ecodeli: %v", err)
	}
}

func serve(ctx context.Context, cfg cmd.Config) error {
	logger := newLogger(cfg)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	producer, err := kafka.Dial(cfg.KafkaBrokers, kafka.Topics{
		Events:        cfg.KafkaEventsTopic,
		Notifications: cfg.KafkaNotificationsTopic,
	})
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error("closing kafka producer", "error", err)
		}
	}()

	var sink cmd.Sink = logsink.New(logger)
	if producer != nil {
		sink = producer
	} else {
		logger.Warn("no kafka brokers configured, events are only logged")
	}

	app, err := cmd.NewCompositionRoot(cfg, db, sink, logger)
	if err != nil {
		return err
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}
	defer jobManager.StopAll()

	e := app.CreateEcho()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "port", cfg.HTTPPort)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openDB(cfg cmd.Config) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func newLogger(cfg cmd.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
}
