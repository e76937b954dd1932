// cmd/advisor/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"property-advisor/internal/common/config"
	"property-advisor/internal/common/database"
	"property-advisor/internal/common/logger"
	"property-advisor/internal/common/observability"
	"property-advisor/internal/engine"
	"property-advisor/internal/engine/cache"
	"property-advisor/internal/repository"
	esrepo "property-advisor/internal/repository/elasticsearch"
	pgrepo "property-advisor/internal/repository/postgres"
	"property-advisor/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting property advisor...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Criteria catalog for explainability output ---
	criteria := registry.Default()
	if cfg.App.CriteriaRegistryPath != "" {
		criteria, err = registry.LoadRegistry(cfg.App.CriteriaRegistryPath)
		if err != nil {
			zapLog.Fatal("criteria registry load failed",
				zap.String("path", cfg.App.CriteriaRegistryPath),
				zap.Error(err))
		}
	}
	zapLog.Info("Criteria catalog loaded",
		zap.String("version", criteria.Version),
		zap.Int("criteria", len(criteria.Criteria)))

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Property backend: Elasticsearch when configured, PostgreSQL otherwise ---
	propertyRepo := repository.PropertyRepository(pgrepo.NewPropertyRepo(pg.DB, log))
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		propertyRepo = esrepo.NewPropertyRepo(esClient.Client, cfg.Database.Elasticsearch.PropertiesIndex, log)
		zapLog.Info("Elasticsearch connected successfully, serving property candidates")
	}

	serviceRepo := pgrepo.NewServiceRepo(pg.DB, log)

	// --- Optional Redis second-level cache ---
	engineOpts := []engine.Option{engine.WithObservability(obs)}
	if cfg.Database.Redis.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		engineOpts = append(engineOpts, engine.WithCacheStore(cache.NewRedisStore(rdb.Client)))
		zapLog.Info("Redis connected successfully, second-level cache enabled")
	}

	eng := engine.New(cfg.Engine, propertyRepo, serviceRepo, log, engineOpts...)

	// --- Build the spatial index before serving anything ---
	err = retryWithBackoff(func() error {
		return eng.RefreshServices(ctx)
	}, 10, 2*time.Second, zapLog, "Spatial index build")
	if err != nil {
		zapLog.Fatal("spatial index build failed after retries", zap.Error(err))
	}
	zapLog.Info("Spatial index ready", zap.Int("services", eng.IndexedServiceCount()))

	// --- Periodic cache sweep ---
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Engine.CacheSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if removed := eng.SweepCache(now); removed > 0 {
					zapLog.Debug("cache sweep", zap.Int("removed", removed))
				}
			case <-sweepDone:
				return
			}
		}
	}()

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":   "ready",
				"services": eng.IndexedServiceCount(),
				"time":     time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/criteria", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(criteria)
		})
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping advisor...")
	close(sweepDone)

	zapLog.Info("Property advisor stopped gracefully")
}
