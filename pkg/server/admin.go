package server

import (
	"fmt"

	"github.com/floodgatehq/floodgate/pkg/config"
	handlers "github.com/floodgatehq/floodgate/pkg/handlers/http"
	"github.com/floodgatehq/floodgate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	AdminServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	AdminServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewAdminServer(di AdminServerDI) *AdminServer {
	return &AdminServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
}

func (s *AdminServer) Run() error {
	s.setupRoutes()
	s.setupHealthCheck()
	s.setupMetricsEndpoint()
	addr := fmt.Sprintf(":%d", s.Config.Server.AdminPort)
	s.Logger.WithField("addr", addr).Info("Starting admin server")
	return s.Router.Listen(addr)
}

func (s *AdminServer) setupRoutes() {
	baseRouter := s.Router.Group("", s.middlewareTransport.PanicRecoverMiddleware.Middleware())
	s.addRoutes(baseRouter)
}

func (s *AdminServer) addRoutes(router fiber.Router) {
	router.Get("/version", s.handlerTransport.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		rules := v1.Group("/rules")
		{
			rules.Post("", s.handlerTransport.CreateRuleHandler.Handle)
			rules.Get("", s.handlerTransport.ListRulesHandler.Handle)
			rules.Delete("/:rule_id", s.handlerTransport.DeleteRuleHandler.Handle)
		}

		usage := v1.Group("/usage")
		{
			usage.Get("", s.handlerTransport.GetUsageHandler.Handle)
			usage.Delete("", s.handlerTransport.ResetLimitHandler.Handle)
		}

		v1.Get("/analytics", s.handlerTransport.GetAnalyticsHandler.Handle)
	}
}

func (s *AdminServer) Shutdown() error {
	return s.Router.Shutdown()
}
