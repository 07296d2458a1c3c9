package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mouthwatch/platform/pkg/analysis"
	"github.com/mouthwatch/platform/pkg/assistant"
	"github.com/mouthwatch/platform/pkg/clinics"
	"github.com/mouthwatch/platform/pkg/common/config"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/companion"
	"github.com/mouthwatch/platform/pkg/dlp"
	"github.com/mouthwatch/platform/pkg/gateway/middleware"
	"github.com/mouthwatch/platform/pkg/observability/metrics"
)

const serviceName = "companion-service"

func main() {
	logger.Init()
	cfg := config.Load()
	log := logger.WithService(serviceName)

	catalog, err := clinics.Load(cfg.ClinicCatalogPath)
	if err != nil {
		log.WithError(err).Warn("Failed to load clinic catalog, using defaults")
		if len(catalog.Clinics) == 0 {
			catalog = clinics.DefaultCatalog()
		}
	}
	if cfg.ChatAPIKey == "" {
		log.Warn("CHAT_API_KEY not set, chat replies will fall back")
	}

	rules, err := dlp.LoadRules(cfg.ChatRedactRulesPath)
	if err != nil {
		log.WithError(err).Warn("Failed to load redaction rules, using defaults")
		rules = dlp.DefaultRules()
	}
	redactor, err := dlp.NewRedactor(rules)
	if err != nil {
		log.WithError(err).Fatal("Failed to compile redaction rules")
	}

	handler := companion.NewHandler(
		analysis.NewClient(cfg),
		assistant.NewClient(cfg, redactor),
		catalog,
	)

	router := mux.NewRouter()
	router.Use(middleware.Logging(serviceName))
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	handler.Register(router.PathPrefix("/api/v1/companion").Subrouter())

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.CompanionServicePort),
		Handler: router,
		// Analysis calls can run close to the upstream timeout.
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout + cfg.AnalysisTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"host":     cfg.ServerHost,
			"port":     cfg.CompanionServicePort,
			"analysis": cfg.AnalysisBaseURL,
		}).Info("Companion service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down companion service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Companion service stopped")
}
