package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/driftlab-studio/studio-cms/internal/config"
	"github.com/driftlab-studio/studio-cms/internal/db"
	"github.com/driftlab-studio/studio-cms/internal/events"
	"github.com/driftlab-studio/studio-cms/internal/gelf"
	"github.com/driftlab-studio/studio-cms/internal/handler"
	"github.com/driftlab-studio/studio-cms/internal/repository"
	"github.com/driftlab-studio/studio-cms/internal/router"
	"github.com/driftlab-studio/studio-cms/internal/service"
)

func main() {
	cfg := config.Load()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.JSONFormatter{})

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		hook, err := gelf.NewHook(cfg.GelfAddr)
		if err != nil {
			log.Warnf("GELF init failed: %v", err)
		} else {
			log.AddHook(hook)
			log.Infof("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}

	// Database
	conn, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Connected to database")

	// Repositories
	userRepo := repository.NewUserRepo(conn)
	formRepo := repository.NewFormRepo(conn)
	subRepo := repository.NewSubmissionRepo(conn)
	docRepo := repository.NewDocumentRepo(conn)

	// Submission events are optional; without brokers the producer is a no-op.
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = events.NewProducer(events.ProducerConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			ClientID: "studio-cms",
		})
		if err != nil {
			log.Fatalf("Failed to create event producer: %v", err)
		}
		defer producer.Close()
		log.Infof("Submission events: enabled (topic %s)", cfg.KafkaTopic)
	}

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	formSvc := service.NewFormService(formRepo)
	docSvc, err := service.NewDocumentService(docRepo, cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}
	subSvc := service.NewSubmissionService(subRepo, formSvc, docSvc, producer)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	formH := handler.NewFormHandler(formSvc, subSvc)
	subH := handler.NewSubmissionHandler(subSvc, docSvc)
	docH := handler.NewDocumentHandler(docSvc)
	pubH := handler.NewPublicHandler(formSvc, subSvc)
	dashH := handler.NewDashboardHandler(formSvc, subSvc, docSvc)

	r := router.New(cfg.JWTSecret, authH, formH, subH, docH, pubH, dashH)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := authSvc.SeedAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPass); err != nil {
		log.Warnf("Failed to seed admin: %v", err)
	}
	cancel()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("studio-cms server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown: %v", err)
	}
}
