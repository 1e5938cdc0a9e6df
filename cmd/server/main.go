package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"transvalia/dispatch/internal/common"
	"transvalia/dispatch/internal/logging"
	"transvalia/dispatch/internal/metrics"
	"transvalia/dispatch/internal/routes"
	"transvalia/dispatch/internal/services"
	"transvalia/dispatch/internal/store"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Dispatch backend starting up",
		"environment", appEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = store.BackendPostgres
	}

	// The Postgres backend connects lazily; a missing DATABASE_URL only
	// surfaces on the first remote operation.
	st, err := store.New(backend, store.Options{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LocalPath:   os.Getenv("LOCAL_STORE_PATH"),
	})
	if err != nil {
		logging.Error("Failed to construct store", "backend", backend, "error", err.Error())
		log.Fatalf("failed to construct store: %v", err)
	}
	logging.Info("Store configured", "backend", backend)

	var cache common.CacheInterface
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache, err := common.NewRedisCacheService(addr)
		if err != nil {
			logging.Error("Failed to connect to Redis, falling back to in-memory cache", "error", err.Error())
			cache = common.NewCacheService(300, 600)
		} else {
			logging.Info("Using Redis cache", "addr", addr)
			cache = redisCache
		}
	} else {
		cache = common.NewCacheService(300, 600)
	}
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry()
	svc := services.NewDispatchService(st, cache, metricsReg)

	upSince := time.Now()
	router := routes.RegisterRoutes(svc, st, backend, metricsReg, upSince)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logging.Info("Server starting",
		"port", port,
		"environment", appEnv,
	)

	log.Fatal(http.ListenAndServe(":"+port, mux))
}
