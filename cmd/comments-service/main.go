package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/bragboard/internal/auth"
	"github.com/pribylovaa/bragboard/internal/config"
	"github.com/pribylovaa/bragboard/internal/metrics"
	"github.com/pribylovaa/bragboard/internal/service"
	"github.com/pribylovaa/bragboard/internal/storage"
	csmongo "github.com/pribylovaa/bragboard/internal/storage/mongo"
	csredis "github.com/pribylovaa/bragboard/internal/storage/redis"
	"github.com/pribylovaa/bragboard/internal/transport/rest"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting comments-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	mongoStore, err := csmongo.New(dbCtx, cfg)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("mongo_connected")

	var store storage.Storage = mongoStore
	if cfg.Redis.Enabled() {
		redisCtx, redisCancel := context.WithTimeout(rootCtx, 5*time.Second)
		rdb, err := csredis.Connect(redisCtx, cfg.Redis)
		redisCancel()
		if err != nil {
			log.Error("redis_connect_failed", slog.String("addr", cfg.Redis.Addr), slog.String("err", err.Error()))
			rootCancel()
			_ = mongoStore.Close(context.Background())
			os.Exit(1)
		}

		store = csredis.New(mongoStore, rdb, cfg.Redis.TTL)
		log.Info("redis_connected", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	svc := service.New(store, *cfg)
	log.Info("service_initialized")

	// HTTP readiness/liveness/metrics
	var ready int32 // 0 — not ready; 1 — ready
	opsAddr := cfg.Metrics.Addr()

	ops := http.NewServeMux()
	ops.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	ops.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) != 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := mongoStore.Ping(ctx); err != nil {
			http.Error(w, "mongo unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	ops.Handle("/metrics", promhttp.Handler())

	opsSrv := &http.Server{
		Addr:              opsAddr,
		Handler:           ops,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("ops_listen_start", "addr", opsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops_serve_failed", slog.String("err", err.Error()))
		}
	}()

	router := rest.NewRouter(svc, auth.New(cfg.Auth.Secret, cfg.Auth.Issuer), rest.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		Metrics:  metrics.NewHTTP(nil),
		BasePath: cfg.HTTP.BasePath,
	})

	apiAddr := cfg.HTTP.Addr()
	apiSrv := &http.Server{
		Addr:              apiAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Timeouts.Service + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", apiAddr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = apiSrv.Close()
	} else {
		log.Info("http_stopped")
	}
	shutdownCancel()

	_ = opsSrv.Shutdown(context.Background())

	rootCancel()
	if err := store.Close(context.Background()); err != nil {
		log.Warn("storage_close_failed", slog.String("err", err.Error()))
	}

	log.Info("service_stopped")
	os.Exit(0)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
