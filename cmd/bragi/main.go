// Package main is the entry point for the bragi geocoding gateway.
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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geocoding-gateway/internal/config"
	httpDelivery "github.com/geocoding-gateway/internal/delivery/http"
	"github.com/geocoding-gateway/internal/delivery/http/handler"
	"github.com/geocoding-gateway/internal/domain/repository"
	"github.com/geocoding-gateway/internal/infrastructure/elasticsearch"
	"github.com/geocoding-gateway/internal/pkg/logger"
	"github.com/geocoding-gateway/internal/pkg/metrics"
	"github.com/geocoding-gateway/internal/repository/cache"
	"github.com/geocoding-gateway/internal/usecase"
)

// Overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bragi",
	Short: "Bragi - geocoding gateway over Elasticsearch",
	Long: `Bragi exposes forward and reverse geocoding over a remote
Elasticsearch document index. It validates the backend version once at
startup and then serves autocomplete, reverse and status endpoints.`,
	RunE: runServe,
}

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Print the resolved settings, whole or by section",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		raw, err := json.Marshal(cfg)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			var sections map[string]json.RawMessage
			if err := json.Unmarshal(raw, &sections); err != nil {
				return err
			}
			section, ok := sections[args[0]]
			if !ok {
				return fmt.Errorf("could not find key %q", args[0])
			}
			raw = section
		}

		var pretty map[string]interface{}
		if err := json.Unmarshal(raw, &pretty); err != nil {
			return err
		}
		out, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("bragi %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// runServe performs the strictly sequential startup: settings, logger,
// backend connection with version check, optional cache, pipeline,
// listen. Any failure aborts before the gateway serves a single
// request.
func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting bragi",
		zap.String("version", version),
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Blocking, no retry. The version requirement is enforced here and
	// never re-checked for the lifetime of the process.
	esClient, err := elasticsearch.Connect(ctx, &cfg.Elasticsearch, log)
	if err != nil {
		log.Error("Failed to connect to Elasticsearch", zap.Error(err))
		return err
	}

	cacheRepo := newCacheRepository(cfg, log)

	geocodeUC := usecase.NewGeocodeUseCase(
		esClient,
		cacheRepo,
		cfg.Query,
		log,
		cfg.Cache.SearchCacheTTL,
	)
	statusUC := usecase.NewStatusUseCase(esClient, version, log)

	geocodeHandler := handler.NewGeocodeHandler(geocodeUC, log)
	statusHandler := handler.NewStatusHandler(statusUC, log)

	var provider *metrics.Provider
	if cfg.Metrics.Enabled {
		provider = metrics.New(version)
		go serveMetrics(cfg, provider, log)
	}

	server := httpDelivery.NewServer(cfg, log, provider, geocodeHandler, statusHandler)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Serving bragi", zap.String("address", cfg.GetServerAddr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped")
	return nil
}

// newCacheRepository wires the optional Redis response cache. A cache
// connection failure is fatal only when a cache was actually
// configured.
func newCacheRepository(cfg *config.Config, log *zap.Logger) repository.CacheRepository {
	if !cfg.Redis.Enabled() {
		log.Info("No Redis configured, serving without response cache")
		return nil
	}
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	return cache.NewCacheRepository(redisClient)
}

func serveMetrics(cfg *config.Config, provider *metrics.Provider, log *zap.Logger) {
	addr := cfg.GetMetricsAddr()
	log.Info("Serving metrics", zap.String("address", addr))

	mux := http.NewServeMux()
	mux.Handle("/metrics", provider.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("Metrics listener failed", zap.Error(err))
	}
}
