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
	"github.com/mouthwatch/platform/pkg/calendar"
	"github.com/mouthwatch/platform/pkg/common/config"
	"github.com/mouthwatch/platform/pkg/common/database"
	"github.com/mouthwatch/platform/pkg/common/kafka"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/dashboard"
	"github.com/mouthwatch/platform/pkg/gateway/middleware"
	"github.com/mouthwatch/platform/pkg/observability/metrics"
	"github.com/mouthwatch/platform/pkg/roster"
)

const serviceName = "dashboard-service"

func main() {
	logger.Init()
	cfg := config.Load()
	log := logger.WithService(serviceName)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	patients, err := roster.Load(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to load roster")
	}
	store, err := dashboard.NewMemoryStore(patients)
	if err != nil {
		log.WithError(err).Fatal("Failed to build dashboard store")
	}

	var publisher dashboard.Publisher
	var producer *kafka.Producer
	if cfg.PublishEvents {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.DashboardTopic)
		publisher = producer
		log.WithField("topic", cfg.DashboardTopic).Info("Publishing dashboard events")
	}

	picks := dashboard.NewPickRegistry(cfg.PickTTL)
	service := dashboard.NewService(store, dashboard.NewResolver(nil), picks, publisher)
	go sweepPicks(ctx, service, cfg.PickTTL)

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

	apiRouter := router.PathPrefix("/api/v1/dashboard").Subrouter()
	dashboard.NewHandler(service, calendar.DefaultWeek()).Register(apiRouter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.DashboardServicePort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"host":     cfg.ServerHost,
			"port":     cfg.DashboardServicePort,
			"patients": len(patients),
		}).Info("Dashboard service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down dashboard service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.WithError(err).Warn("Failed to close event producer")
		}
	}
	if err := database.ClosePostgres(); err != nil {
		log.WithError(err).Warn("Failed to close database")
	}

	log.Info("Dashboard service stopped")
}

func sweepPicks(ctx context.Context, service *dashboard.Service, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := service.SweepPicks(); removed > 0 {
				logger.Log.WithField("removed", removed).Debug("expired picks swept")
			}
		}
	}
}
