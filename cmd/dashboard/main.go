package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/cache"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/config"
	httpserver "github.com/maikl88/geo-monitoring-ver3.0/internal/http"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/refresh"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/telemetry"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := telemetry.NewClient(cfg.BackendBaseURL, &http.Client{Timeout: cfg.RequestTimeout})

	var store *cache.Cache
	if cfg.RedisAddr != "" {
		store, err = cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer store.Close()
		log.Printf("catalog cache connected (%s)", cfg.RedisAddr)
	} else {
		log.Printf("REDIS_ADDR not set, catalog cache disabled")
	}

	hub := ws.NewHub()
	go hub.Run()

	manager := refresh.NewManager(client, hub, refresh.Defaults{
		TimeRangeHours:  cfg.DefaultHours,
		IntervalSeconds: cfg.DefaultInterval,
		CycleTimeout:    cfg.RequestTimeout,
	})
	defer manager.Shutdown()

	srv := httpserver.New(cfg, client, store, manager, hub)
	log.Printf("dashboard API listening on %s (backend=%s)", cfg.ListenAddr(), cfg.BackendBaseURL)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
