package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/floodgatehq/floodgate/pkg/admission"
	"github.com/floodgatehq/floodgate/pkg/admission/analytics"
	"github.com/floodgatehq/floodgate/pkg/admission/registry"
	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/admission/sweeper"
	"github.com/floodgatehq/floodgate/pkg/config"
	handlers "github.com/floodgatehq/floodgate/pkg/handlers/http"
	infraLogger "github.com/floodgatehq/floodgate/pkg/infra/logger"
	"github.com/floodgatehq/floodgate/pkg/infra/prometheus"
	"github.com/floodgatehq/floodgate/pkg/middleware"
	"github.com/floodgatehq/floodgate/pkg/server"
)

func main() {
	serverType := getServerType()
	envFile := os.Getenv("ENV_FILE")

	if envFile == "" {
		envFile = ".env"
	}
	err := godotenv.Load(envFile)
	if err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger(serverType)

	// Load configuration
	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Warn("running with default configuration")
	}
	cfg := config.GetConfig()

	prometheus.Initialize()

	counterStore := initializeStore(cfg, logger)

	reg := registry.NewRegistry()
	if !cfg.Engine.DisableDefaultRules {
		if err := registry.SeedDefaults(reg); err != nil {
			logger.Fatalf("Failed to seed default rules: %v", err)
		}
	}
	if err := registry.SeedFromSettings(reg, cfg.Engine.Rules); err != nil {
		logger.Fatalf("Failed to load configured rules: %v", err)
	}

	engine := admission.NewEngine(logger, counterStore, reg, &admission.EngineOpts{
		DefaultLimit:  cfg.Engine.DefaultLimit,
		DefaultWindow: cfg.Engine.DefaultWindow,
	})

	aggregator := analytics.NewAggregator(counterStore, reg, cfg.Engine.AnalyticsTopN)

	swp := sweeper.NewSweeper(logger, counterStore, cfg.Engine.SweepInterval)
	if err := swp.Start(); err != nil {
		logger.Fatalf("Failed to start usage sweeper: %v", err)
	}
	defer swp.Stop()

	//middleware
	middlewareTransport := middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		AdmissionMiddleware:    middleware.NewAdmissionMiddleware(logger, engine),
	}

	// Handler Transport
	handlerTransport := handlers.HandlerTransport{
		// Rules
		CreateRuleHandler: handlers.NewCreateRuleHandler(logger, engine),
		ListRulesHandler:  handlers.NewListRulesHandler(logger, engine),
		DeleteRuleHandler: handlers.NewDeleteRuleHandler(logger, engine),
		// Usage
		GetUsageHandler:   handlers.NewGetUsageHandler(logger, engine),
		ResetLimitHandler: handlers.NewResetLimitHandler(logger, engine),
		// Analytics
		GetAnalyticsHandler: handlers.NewGetAnalyticsHandler(logger, aggregator),
		// Version
		GetVersionHandler: handlers.NewGetVersionHandler(logger),
		// Gate
		AdmittedHandler: handlers.NewAdmittedHandler(logger),
	}

	adminServerDI := server.AdminServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		Config:              cfg,
		Logger:              logger,
	}

	gateServerDI := server.GateServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		Config:              cfg,
		Logger:              logger,
	}

	srv := initializeServer(gateServerDI, adminServerDI)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

func initializeStore(cfg *config.Config, logger *logrus.Logger) store.Store {
	switch cfg.Engine.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewBreakerStore(store.NewRedisStore(client), logger)
	default:
		return store.NewMemoryStore()
	}
}

func getServerType() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return "gate"
}

func initializeServer(
	gateServerDi server.GateServerDI,
	adminServerDi server.AdminServerDI,
) server.Server {
	switch getServerType() {
	case "admin":
		return server.NewAdminServer(adminServerDi)
	case "all":
		return &serverGroup{servers: []server.Server{
			server.NewAdminServer(adminServerDi),
			server.NewGateServer(gateServerDi),
		}}
	default:
		return server.NewGateServer(gateServerDi)
	}
}

// serverGroup runs the admin and gate servers in one process.
type serverGroup struct {
	servers []server.Server
}

func (g *serverGroup) Run() error {
	var eg errgroup.Group
	for _, s := range g.servers {
		s := s
		eg.Go(s.Run)
	}
	return eg.Wait()
}

func (g *serverGroup) Shutdown() error {
	var eg errgroup.Group
	for _, s := range g.servers {
		s := s
		eg.Go(s.Shutdown)
	}
	return eg.Wait()
}
