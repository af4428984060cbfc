package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/Skotchmaster/silkroad/internal/account"
	"github.com/Skotchmaster/silkroad/internal/cart"
	"github.com/Skotchmaster/silkroad/internal/catalog"
	"github.com/Skotchmaster/silkroad/internal/events"
	"github.com/Skotchmaster/silkroad/internal/httpserver"
	"github.com/Skotchmaster/silkroad/internal/observability"
	"github.com/Skotchmaster/silkroad/internal/order"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/config"
	pkgdb "github.com/Skotchmaster/silkroad/pkg/db"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	loggingmw "github.com/Skotchmaster/silkroad/pkg/middleware/logging"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "listen port, overrides SERVER_PORT"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if p := c.Int("port"); p > 0 {
				cfg.ServerPort = p
			}
			return serve(c.Context, cfg)
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	if pkgdb.IsSQLite(cfg.DatabaseURL) {
		if err := repo.AutoMigrate(db); err != nil {
			return err
		}
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("kafka_publisher_enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	e := newEcho(logger, cfg, db, pub)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           otelhttp.NewHandler(e, "http-server"),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_server_starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("http_server_error", "error", err)
		}
	}
	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("publisher_close_error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing_shutdown_error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}

	logger.Info("shutdown_complete")
	return nil
}

func newEcho(logger *slog.Logger, cfg config.Config, db *gorm.DB, pub events.Publisher) *echo.Echo {
	r := &repo.GormRepo{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		CartHandler:    &httpserver.CartHTTP{Svc: &cart.Service{Repo: r}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &order.Service{Repo: r, Publisher: pub}},
		AccountHandler: &httpserver.AccountHTTP{Svc: &account.Service{Repo: r, JWTSecret: cfg.JWTAccessSecret}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &catalog.Service{Repo: r}},
		JWTSecret:      cfg.JWTAccessSecret,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})
	return e
}
