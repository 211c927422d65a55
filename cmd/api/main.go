package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go-chi-widgets/internal/calculator"
	"go-chi-widgets/internal/config"
	"go-chi-widgets/internal/notify"
	"go-chi-widgets/internal/observability"
	"go-chi-widgets/internal/server"
	"go-chi-widgets/internal/storage"
	"go-chi-widgets/internal/theme"
	"go-chi-widgets/internal/todo"
)

func main() {

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logger
	if err := observability.InitLogger(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	if cfg.Otel.Enabled {
		shutdown, err := initTelemetry(ctx, cfg.Otel)
		if err != nil {
			panic(err)
		}
		defer shutdown(context.Background())
	}
	logger := observability.Logger

	// Domain services
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}

	hub := notify.NewQueue(64)
	notifier := notify.Multi(hub, notify.LogNotifier{Logger: logger})

	todos, err := todo.Open(store, notifier)
	if err != nil {
		logger.Fatal("opening to-do list", zap.Error(err))
	}

	sessions := calculator.NewStore(cfg.Calculator.SessionTTL, cfg.Calculator.MaxSessions)
	if err := calculator.RegisterSessionGauge(prometheus.DefaultRegisterer, sessions); err != nil {
		logger.Fatal("registering session gauge", zap.Error(err))
	}
	go sessions.RunJanitor(ctx, cfg.Calculator.SweepInterval, func(n int) {
		logger.Info("expired calculator sessions", zap.Int("removed", n))
	})

	// Router
	router := server.NewRouter(server.Deps{
		Sessions:      sessions,
		Theme:         theme.Load(store, logger),
		Todos:         todos,
		Notifications: hub,
		Notifier:      notifier,
		Metrics:       prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("server started",
			zap.String("addr", cfg.Server.Addr),
			zap.String("storage", store.Path()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(ctx, srv, cfg.Server.ShutdownTimeout)
}

func waitForShutdown(ctx context.Context, srv *http.Server, timeout time.Duration) {

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}
}
