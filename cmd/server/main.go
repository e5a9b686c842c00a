package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightwatch-service/internal/infrastructure/config"
	"flightwatch-service/internal/infrastructure/oauth"
	"flightwatch-service/internal/infrastructure/persistence"
	"flightwatch-service/internal/interface/gmail"
	"flightwatch-service/internal/interface/provider"
	mongoRepo "flightwatch-service/internal/interface/repository"
	"flightwatch-service/internal/usecase"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Flightwatch Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up reference-data repositories
	airlineRepository := mongoRepo.NewGormAirlineRepository(gormDB)
	airportRepository := mongoRepo.NewGormAirportRepository(gormDB)

	// Set up engine repositories
	taskRepo := mongoRepo.NewMongoTaskRepository(db)
	alertRepo := mongoRepo.NewMongoAlertRepository(db)

	// Metrics
	m := metrics.NewMetrics("flightwatch")

	// Provider chain: highest quality and most generous free quota first
	aviationStack := provider.NewAviationStackProvider(cfg.AviationStackAPIKey, log)
	chain := usecase.NewProviderChain(cfg.BudgetReserveMargin, log, m)
	chain.Register(provider.NewAeroDataBoxProvider(cfg.AeroDataBoxAPIKey, log), cfg.AeroDataBoxDailyLimit)
	chain.Register(aviationStack, cfg.AviationStackDailyLimit)
	chain.Register(provider.NewFlightRadarProvider(log), cfg.FlightRadarDailyLimit)

	// Set up Gmail OAuth and the notification channel
	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		cfg.GmailRefreshToken,
		log,
	)
	tokenSource := gmailOAuth.GetTokenSource(ctx)

	notifier, err := gmail.NewGmailNotifier(ctx, tokenSource, airportRepository, cfg.GmailSender, log)
	if err != nil {
		log.Fatal("Failed to create Gmail notifier", "error", err)
	}

	// Assemble the monitoring engine
	monitor := usecase.NewFlightMonitor(
		taskRepo,
		alertRepo,
		notifier,
		airlineRepository,
		chain,
		usecase.NewChangeDetector(cfg.DelayJitterMinutes),
		usecase.NewDisruptionClassifier(cfg.DelayThresholdMinutes),
		usecase.NewAlternativeFinder(aviationStack, cfg.SearchWindow, log),
		usecase.NewRecommendationRanker(cfg.RecommendationTTL),
		log,
		m,
		usecase.MonitorConfig{
			CycleInterval:       cfg.PollCycleInterval,
			DefaultPollInterval: cfg.DefaultPollInterval,
			InterTaskDelay:      cfg.InterTaskDelay,
			GracePeriod:         cfg.ShutdownGracePeriod,
		},
	)
	monitor.Start(ctx)

	// Log provider budget usage periodically
	go func() {
		usageTicker := time.NewTicker(time.Hour)
		defer usageTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-usageTicker.C:
				for _, usage := range chain.Usage() {
					log.Info("Provider budget",
						"provider", usage.Provider,
						"used", usage.CallsUsed,
						"limit", usage.DailyLimit,
						"remaining", usage.Remaining)
				}
			}
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	monitor.Stop()
	cancel() // Cancel the context to stop remaining goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Flightwatch Service stopped")
}
