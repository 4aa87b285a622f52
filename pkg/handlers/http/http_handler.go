package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Rules
	CreateRuleHandler Handler
	ListRulesHandler  Handler
	DeleteRuleHandler Handler

	// Usage
	GetUsageHandler   Handler
	ResetLimitHandler Handler

	// Analytics
	GetAnalyticsHandler Handler

	// Version
	GetVersionHandler Handler

	// Gate
	AdmittedHandler Handler
}
