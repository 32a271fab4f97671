package router

import (
	"venue-booking/core/middleware"
	"venue-booking/modules/conversion/controller"

	"github.com/labstack/echo/v4"
)

type ConversionRouter struct {
	controller *controller.ConversionController
}

func NewConversionRouter(controller *controller.ConversionController) *ConversionRouter {
	return &ConversionRouter{controller: controller}
}

func (r *ConversionRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/private/waitlist", mw.AuthMiddleware())
	group.POST("/:id/convert", r.controller.Convert)
	group.POST("/:id/cancel", r.controller.Cancel)
}
