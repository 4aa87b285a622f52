package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/floodgatehq/floodgate/pkg/config"
	handlers "github.com/floodgatehq/floodgate/pkg/handlers/http"
	"github.com/floodgatehq/floodgate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	GateServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
	}
	GateServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

const (
	HealthPath = "/health"
	PingPath   = "/__/ping"
)

func NewGateServer(di GateServerDI) *GateServer {
	s := &GateServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
	return s
}

func (s *GateServer) Run() error {

	s.Router.Get(HealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	s.Router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"message": "pong",
		})
	})

	// Every non-system route goes through admission control
	s.Router.Use(
		s.middlewareTransport.PanicRecoverMiddleware.Middleware(),
		s.middlewareTransport.AdmissionMiddleware.Middleware(),
		s.handlerTransport.AdmittedHandler.Handle,
	)

	s.Logger.WithField("addr", s.Config.Server.GatePort).Info("Starting gate server")
	return s.Router.Listen(fmt.Sprintf(":%d", s.Config.Server.GatePort))
}

func (s *GateServer) Shutdown() error {
	return s.Router.Shutdown()
}
