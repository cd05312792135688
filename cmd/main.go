package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"compliancehub/internal/api"
	"compliancehub/internal/auth"
	"compliancehub/internal/config"
	"compliancehub/internal/fiken"
	"compliancehub/internal/gate"
	"compliancehub/internal/messaging"
	"compliancehub/internal/metrics"
	"compliancehub/internal/notifier"
	"compliancehub/internal/reconcile"
	"compliancehub/internal/scheduler"
	"compliancehub/internal/storage"
)

// @title ComplianceHub Billing API
// @version 1.0
// @description Billing reconciliation and tenant lifecycle service
// @host localhost:8080
// @BasePath /
// @schemes http

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// Init Metrics
	metrics.Init()

	// Load Configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded")

	// Setup JWT Secret
	auth.SetSecret(cfg.Auth.JWTSecret)

	// Init PostgreSQL
	db, err := storage.NewStorage(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.DB.Close()
	log.Println("PostgreSQL connected")

	// Init RabbitMQ
	rabbitClient, err := messaging.NewRabbitClient(cfg.RabbitMQ.URL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitClient.Close()
	log.Println("RabbitMQ connected")

	if err := rabbitClient.DeclareQueues(); err != nil {
		log.Fatalf("Failed to declare queues: %v", err)
	}

	// Billing authority client. Missing credentials must not crash the
	// scheduler; sync jobs no-op until a token is configured.
	fikenClient := fiken.NewClient(cfg.Fiken.BaseURL, cfg.Fiken.APIToken)
	if !fikenClient.Configured() {
		log.Println("⚠️ Fiken credentials not configured, authority sync will be skipped")
	}

	// Init Reconciliation Engine
	engine := reconcile.NewEngine(db, fikenClient, notifier.NewQueueNotifier(rabbitClient))

	// Init Scheduler + Worker
	sched := scheduler.NewScheduler(db, rabbitClient)
	if err := sched.ScheduleAll(); err != nil {
		log.Fatalf("Failed to register schedules: %v", err)
	}
	sched.Start()

	worker := scheduler.NewWorker(rabbitClient, engine)
	if err := worker.Start(); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	// Start background loop for updating queue depth metrics
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rabbitClient.UpdateQueueDepth(messaging.JobsQueue)
				rabbitClient.UpdateQueueDepth(messaging.JobsDLQ)
				rabbitClient.UpdateQueueDepth(messaging.NotificationsQueue)
			}
		}
	}()

	// Init API
	apiHandler := api.NewAPI(db, gate.NewGate(db), sched, cfg)
	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: apiHandler.Router(),
	}

	// Graceful Shutdown Setup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("🚀 Starting API server on %s", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done() // Wait for interrupt signal
	log.Println("Shutdown initiated...")

	// Shutdown sequence
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	// Stop firing new jobs, then let the in-flight job finish
	sched.Stop()
	worker.Stop()

	log.Println("Graceful shutdown complete")
}
