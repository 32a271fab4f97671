package router

import (
	"venue-booking/core/middleware"
	"venue-booking/modules/risk/controller"

	"github.com/labstack/echo/v4"
)

type RiskRouter struct {
	controller *controller.RiskController
}

func NewRiskRouter(controller *controller.RiskController) *RiskRouter {
	return &RiskRouter{controller: controller}
}

func (r *RiskRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/private/risk", mw.AuthMiddleware())
	group.POST("/validate", r.controller.ValidateLimits)
}
