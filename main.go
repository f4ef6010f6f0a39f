package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tably-ai/tably-engine/pkg/config"
	"github.com/tably-ai/tably-engine/pkg/handlers"
	"github.com/tably-ai/tably-engine/pkg/llm"
	"github.com/tably-ai/tably-engine/pkg/logging"
	"github.com/tably-ai/tably-engine/pkg/metrics"
	"github.com/tably-ai/tably-engine/pkg/middleware"
	"github.com/tably-ai/tably-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Int("session_ttl_minutes", cfg.Session.TTLMinutes))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	engineMetrics := metrics.New(registry)

	store := services.NewSessionStore(engineMetrics, logger)
	if interval := cfg.Session.ReaperInterval(); interval > 0 {
		services.StartReaper(store, cfg.Session.TTL(), interval)
	}

	client, err := llm.NewClient(cfg.LLM.Provider, &llm.Config{
		Endpoint:    cfg.LLM.Endpoint,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	chat := services.NewChatService(store, client, cfg, engineMetrics, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSessionHandler(chat, logger).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting tably-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
