package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/vetlink-systems/vetlink-triage/internal/casestore"
	"github.com/vetlink-systems/vetlink-triage/internal/config"
	"github.com/vetlink-systems/vetlink-triage/internal/escalation"
	"github.com/vetlink-systems/vetlink-triage/internal/evaluator"
	"github.com/vetlink-systems/vetlink-triage/internal/handlers"
	"github.com/vetlink-systems/vetlink-triage/internal/logging"
	"github.com/vetlink-systems/vetlink-triage/internal/metrics"
	"github.com/vetlink-systems/vetlink-triage/internal/notify"
	"github.com/vetlink-systems/vetlink-triage/internal/queue"
	"github.com/vetlink-systems/vetlink-triage/internal/repository"
	"github.com/vetlink-systems/vetlink-triage/internal/server"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	logging.SetDefault(logger)

	// Initialize repository
	var repo repository.Repository
	switch cfg.Database.Driver {
	case "memory":
		repo = repository.NewMemoryRepository()
	default:
		connString := cfg.Database.Postgres.ConnString()

		// Run database migrations
		log.Println("Running database migrations...")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")

		pg, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pg.Close()
		repo = pg
	}

	// Connect to NATS for queue and alert events
	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = nats.Connect(cfg.NATS.URL, nats.Name(cfg.NATS.Name))
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsConn.Close()
	}

	// Connect to Redis for evaluator open-instance state
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
	}

	// Register Prometheus metrics
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	// Case store and triage queue
	store := casestore.NewStore(repo)
	hub := queue.NewHub()
	vets := queue.NewHTTPVetDirectory(cfg.Services.VetsURL)

	var queueEvents queue.EventPublisher
	if natsConn != nil {
		queueEvents = queue.NewPublisher(natsConn)
	}

	policy := queue.Policy{
		AlertAllOnRed: cfg.Queue.AlertAllOnRed,
		AutoAssign:    cfg.Queue.AutoAssign,
	}
	manager := queue.NewManager(store, hub, queueEvents, vets, policy, logger)

	// Notification dispatcher
	dispatcher := notify.NewDispatcher(cfg.Escalation.DispatchTimeout, logger)
	dispatcher.RegisterTransport("webhook", notify.NewWebhookTransport())
	dispatcher.RegisterTransport("email", notify.NewGatewayTransport(cfg.Services.GatewayURL))
	dispatcher.RegisterTransport("sms", notify.NewGatewayTransport(cfg.Services.GatewayURL))
	if natsConn != nil {
		dispatcher.RegisterTransport("push", notify.NewPushTransport(natsConn))
	}

	// Escalation engine
	var alertEvents escalation.EventPublisher
	if natsConn != nil {
		alertEvents = escalation.NewPublisher(natsConn)
	}
	engine := escalation.NewEngine(repo, dispatcher, alertEvents, logger)
	defer engine.Stop()

	// Alert evaluation loop
	provider := evaluator.NewHTTPProvider(cfg.Services.ConfigURL)
	source := evaluator.MetricsSource(evaluator.NewQueueMetricsSource(store))
	if cfg.Services.MetricsURL != "" {
		source = evaluator.NewChainSource(
			evaluator.NewQueueMetricsSource(store),
			evaluator.NewHTTPMetricsSource(cfg.Services.MetricsURL),
		)
	}
	state := evaluator.NewStateManager(redisClient, cfg.Redis.Enabled)
	eval := evaluator.NewEvaluator(provider, source, engine, state, cfg.Evaluator.SampleTimeout, logger)

	evalCtx, evalCancel := context.WithCancel(context.Background())
	defer evalCancel()
	go eval.Run(evalCtx, cfg.Evaluator.Interval)

	// Initialize handlers
	handler := handlers.NewHandler(manager, engine, vets, cfg.Queue.AvgConsultMinutes, logger)

	// Setup HTTP router
	router := server.NewRouter(handler)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Triage service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
