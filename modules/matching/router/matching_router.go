package router

import (
	"venue-booking/core/middleware"
	"venue-booking/modules/matching/controller"

	"github.com/labstack/echo/v4"
)

type MatchingRouter struct {
	controller *controller.MatchingController
}

func NewMatchingRouter(controller *controller.MatchingController) *MatchingRouter {
	return &MatchingRouter{controller: controller}
}

func (r *MatchingRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	admin := e.Group("/admin/slots", mw.AuthMiddleware(), mw.AdminMiddleware())
	admin.POST("/freed", r.controller.SlotFreed)
}
