package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mediguard/internal/config"
	"mediguard/internal/flows"
	"mediguard/internal/genai"
	"mediguard/internal/logger"
	"mediguard/internal/metrics"
	"mediguard/internal/notify"
	"mediguard/internal/repository"
	"mediguard/internal/service"
	v1 "mediguard/internal/transport/http/v1"
	"mediguard/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "mediguard")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting mediguard",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("database", cfg.DatabaseURL),
		zap.String("genai_url", cfg.GenAIURL),
	)

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	// Optional Redis mirror for notifications
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zlog.Warn("redis unreachable, notifications stay in-memory only", zap.Error(err))
			rdb = nil
		}
	}
	notifier := notify.New(rdb, zlog)

	// Capability client. MEDIGUARD_MODE=MOCK swaps in a scripted client for
	// local development without a model endpoint.
	var client genai.Client
	if os.Getenv("MEDIGUARD_MODE") == "MOCK" {
		zlog.Warn("running with the mock capability client")
		client = mockClient()
	} else {
		client = genai.NewHTTPClient(cfg.GenAIURL, cfg.GenAIAPIKey, cfg.GenAITimeout, zlog)
	}

	invoker := genai.NewInvoker(client, zlog, m)
	safety := flows.NewSafetyScorer(invoker)
	extract := flows.NewDetailExtractor(invoker)
	guidance := flows.NewGuidanceAssistant(invoker)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		zlog.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	// Initialize service
	svc := service.New(db, safety, extract, guidance, policyEngine, notifier, m, cfg, zlog)

	// Initialize handler
	h := v1.NewHandler(svc)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	zlog.Info("mediguard started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down mediguard")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("failed to shutdown server gracefully", zap.Error(err))
	}

	zlog.Info("mediguard stopped")
}

// mockClient scripts plausible responses for each capability so the whole
// pipeline runs end to end without a model.
func mockClient() *genai.MockClient {
	mock := genai.NewMockClient()
	mock.Script(flows.SafetyScoreCapability.Name, map[string]interface{}{
		"safetyScore": 85,
		"issues":      []string{},
	})
	mock.Script(flows.ExtractDetailsCapability.Name, map[string]interface{}{
		"name":     "Lisinopril",
		"provider": "Dr. Mock",
		"isFake":   false,
	})
	mock.Script(flows.GuidanceCapability.Name, map[string]interface{}{
		"response": "This is a mock guidance response. Configure GENAI_URL for real answers.",
	})
	return mock
}
