package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mouthwatch/platform/pkg/archive"
	"github.com/mouthwatch/platform/pkg/common/config"
	"github.com/mouthwatch/platform/pkg/common/database"
	"github.com/mouthwatch/platform/pkg/common/kafka"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/observability/metrics"
)

const serviceName = "notes-archiver"

func main() {
	logger.Init()
	cfg := config.Load()
	log := logger.WithService(serviceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := database.NewRedis(ctx, cfg)
	if err != nil {
		log.Warn("Redis unreachable at startup, archiving will retry per event")
	}
	notes := archive.NewNotesArchive(redisClient, cfg.NotesHistorySize)
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.DashboardTopic, cfg.KafkaGroupID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.WithFields(map[string]interface{}{
			"topic": cfg.DashboardTopic,
			"group": cfg.KafkaGroupID,
		}).Info("Consuming dashboard events")
		if err := consumer.Consume(ctx, archive.NewEventHandler(notes)); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Consumer stopped")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.PingRedis(r.Context(), redisClient); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded","redis":"unreachable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		current, err := notes.Get(r.Context(), id)
		if errors.Is(err, archive.ErrNotArchived) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			log.WithError(err).Error("Failed to read archived notes")
			http.Error(w, "failed to read archive", http.StatusInternalServerError)
			return
		}
		history, err := notes.History(r.Context(), id)
		if err != nil {
			log.WithError(err).Error("Failed to read notes history")
			http.Error(w, "failed to read archive", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"current": current, "history": history})
	}).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ArchiverServicePort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notes archiver...")
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := consumer.Close(); err != nil {
		log.WithError(err).Warn("Failed to close consumer")
	}
	if err := redisClient.Close(); err != nil {
		log.WithError(err).Warn("Failed to close redis")
	}

	log.Info("Notes archiver stopped")
}
