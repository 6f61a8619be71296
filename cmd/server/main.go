package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ryandielhenn/lrucache/internal/logging"
	"github.com/ryandielhenn/lrucache/internal/telemetry"
	"github.com/ryandielhenn/lrucache/pkg/cache"
	"github.com/ryandielhenn/lrucache/pkg/server"
)

func main() {
	log := logging.New(os.Getenv("CACHE_ENV") == "development")
	defer log.Sync()

	cfg := cache.Config[string, []byte]{
		Capacity:        envInt("CACHE_CAPACITY", 10_000),
		TTL:             envMillis("CACHE_TTL_MS", 5*time.Minute),
		CleanupInterval: envMillis("CACHE_CLEANUP_INTERVAL_MS", 30*time.Second),
		RecordStats:     true,
		Logger:          log,
	}

	c, err := cache.New(cfg)
	if err != nil {
		log.Fatal("invalid cache configuration", zap.Error(err))
	}
	defer c.Shutdown()

	metrics := telemetry.New()
	if err := metrics.RegisterCache(c.Stats(), c.Size); err != nil {
		log.Fatal("failed to register cache metrics", zap.Error(err))
	}

	srv := server.New(c, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.Healthz)
	mux.HandleFunc("/info", srv.Info)
	mux.HandleFunc("/stats", metrics.Instrument("stats", http.HandlerFunc(srv.Stats)).ServeHTTP)
	mux.HandleFunc("/cache", metrics.Instrument("keys", http.HandlerFunc(srv.Keys)).ServeHTTP)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/cache/", func(w http.ResponseWriter, req *http.Request) {
		metrics.Instrument(methodToOp(req.Method), http.HandlerFunc(srv.Entry)).ServeHTTP(w, req)
	})

	addr := envString("CACHE_ADDR", ":8080")
	fmt.Println("lrucache server listening on", addr)
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func methodToOp(m string) string {
	switch m {
	case http.MethodGet:
		return "get"
	case http.MethodPut:
		return "put"
	case http.MethodDelete:
		return "delete"
	default:
		return "other"
	}
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envMillis(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Millisecond
		}
	}
	return def
}
