package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/game-catalog/internal/config"
	"github.com/pribylovaa/game-catalog/internal/history"
	"github.com/pribylovaa/game-catalog/internal/rawg"
	"github.com/pribylovaa/game-catalog/internal/service"
	"github.com/pribylovaa/game-catalog/internal/storage"
	badgerstore "github.com/pribylovaa/game-catalog/internal/storage/badger"
	filestore "github.com/pribylovaa/game-catalog/internal/storage/file"
	"github.com/pribylovaa/game-catalog/internal/storage/memory"
	redisstore "github.com/pribylovaa/game-catalog/internal/storage/redis"
	"github.com/pribylovaa/game-catalog/pkg/log"
)

// app — зависимости одной сессии CLI.
type app struct {
	cfg     config.Config
	client  *rawg.Client
	svc     *service.Service
	store   storage.Store
	history *history.Cache
	out     io.Writer
	now     func() time.Time

	metrics *http.Server
}

// newApp собирает клиент каталога, хранилище истории и (при cfg.Metrics.Addr)
// HTTP-листенер /metrics.
func newApp(ctx context.Context, cfg config.Config, out io.Writer) (*app, error) {
	const op = "main.newApp"

	lg := log.From(ctx)

	var (
		reg     *prometheus.Registry
		metrics *rawg.Metrics
	)
	if cfg.Metrics.Addr != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics = rawg.NewMetrics(reg)
	}

	client, err := rawg.New(&http.Client{Timeout: cfg.Timeouts.Request}, rawg.Config{
		BaseURL: cfg.RAWG.BaseURL,
		APIKey:  cfg.RAWG.APIKey,
		Locale:  cfg.RAWG.Locale,
		RPS:     cfg.RAWG.RPS,
		Burst:   cfg.RAWG.Burst,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store, err := openStore(ctx, cfg.History)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lg.Debug("history_store_opened", slog.String("backend", cfg.History.Backend))

	hist, err := history.New(ctx, store, client, history.WithKey(cfg.History.Key))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &app{
		cfg:     cfg,
		client:  client,
		svc:     service.New(client, cfg),
		store:   store,
		history: hist,
		out:     out,
		now:     time.Now,
	}

	if reg != nil {
		if err := a.serveMetrics(ctx, reg); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return a, nil
}

// openStore открывает хранилище истории выбранного бэкенда.
func openStore(ctx context.Context, cfg config.HistoryConfig) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return filestore.New(cfg.Path)
	case config.BackendBadger:
		return badgerstore.Open(cfg.Path)
	case config.BackendRedis:
		connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return redisstore.Connect(connCtx, cfg.RedisURL, redisstore.DefaultPrefix)
	case config.BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// serveMetrics поднимает /metrics на cfg.Metrics.Addr до закрытия app.
func (a *app) serveMetrics(ctx context.Context, reg *prometheus.Registry) error {
	lg := log.From(ctx)

	lis, err := net.Listen("tcp", a.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	a.metrics = &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metrics.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("metrics_serve_failed", slog.String("err", err.Error()))
		}
	}()

	lg.Info("metrics_listen_start", slog.String("addr", lis.Addr().String()))
	return nil
}

// close освобождает ресурсы сессии.
func (a *app) close(ctx context.Context) {
	lg := log.From(ctx)

	if a.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.metrics.Shutdown(shutdownCtx); err != nil {
			lg.Warn("metrics_shutdown_failed", slog.String("err", err.Error()))
		}
		cancel()
	}

	if err := a.store.Close(); err != nil {
		lg.Warn("history_store_close_failed", slog.String("err", err.Error()))
	}
}
