package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HenryGill4/OpCentrix-sub007/internal/api/handlers"
	"github.com/HenryGill4/OpCentrix-sub007/internal/application"
	"github.com/HenryGill4/OpCentrix-sub007/internal/config"
	mongoRepo "github.com/HenryGill4/OpCentrix-sub007/internal/infrastructure/mongodb"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/cloudevents"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/kafka"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/metrics"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/middleware"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/mongodb"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/outbox"
	outboxMongo "github.com/HenryGill4/OpCentrix-sub007/pkg/outbox/mongodb"
)

const serviceName = "workflow-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(cfg.LogLevel)
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting workflow-service API")

	ctx := context.Background()

	// Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoConfig())
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)

	// Kafka producer behind a circuit breaker
	producer := kafka.NewProducer(cfg.KafkaConfig())
	breakerProducer := kafka.NewCircuitBreakerProducer(producer, logger)
	defer breakerProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", cfg.Kafka.Brokers)

	// CloudEvents factory
	eventFactory := cloudevents.NewEventFactory("/workflow-service")

	// Repositories
	db := mongoClient.Database()
	stageRepo := mongoRepo.NewStageRepository(db, eventFactory)
	edgeRepo := mongoRepo.NewDependencyEdgeRepository(db)
	requirementRepo := mongoRepo.NewRequirementRepository(db)
	executionRepo := mongoRepo.NewExecutionRepository(db, eventFactory)
	jobRepo := mongoRepo.NewJobRepository(db, eventFactory)
	cohortRepo := mongoRepo.NewCohortRepository(db, eventFactory)
	poolRepo := mongoRepo.NewResourcePoolRepository(db)
	templateRepo := mongoRepo.NewTemplateRepository(db)

	// Outbox publisher drains what the repositories wrote
	outboxRepo := outboxMongo.NewOutboxRepository(db)
	outboxPublisher := outbox.NewPublisher(outboxRepo, breakerProducer, logger, &outbox.PublisherConfig{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
	})
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Application services share the Mongo client as transaction runner
	capabilities := cfg.CapabilityChecker()
	progression := application.NewCohortProgressionEngine(
		jobRepo, cohortRepo, executionRepo, requirementRepo, stageRepo,
		application.PassthroughRouter{}, m, logger,
	)
	stageService := application.NewStageApplicationService(stageRepo, logger)
	dependencyService := application.NewDependencyApplicationService(edgeRepo, stageRepo, mongoClient, m, logger)
	requirementService := application.NewRequirementApplicationService(requirementRepo, stageRepo, templateRepo, mongoClient, logger)
	jobService := application.NewJobApplicationService(jobRepo, cohortRepo, mongoClient, logger)
	poolService := application.NewPoolApplicationService(poolRepo, logger)
	workflowService := application.NewWorkflowApplicationService(
		executionRepo, jobRepo, stageRepo, requirementRepo, edgeRepo, poolRepo,
		progression, mongoClient, capabilities, m, logger,
	)

	// Router
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	apiV1 := router.Group("/api/v1")
	handlers.NewCatalogHandlers(stageService, dependencyService, logger).RegisterRoutes(apiV1)
	handlers.NewRequirementHandlers(requirementService, logger).RegisterRoutes(apiV1)
	handlers.NewJobHandlers(jobService, logger).RegisterRoutes(apiV1)
	handlers.NewWorkflowHandlers(workflowService, logger).RegisterRoutes(apiV1)
	handlers.NewPoolHandlers(poolService, logger).RegisterRoutes(apiV1)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
