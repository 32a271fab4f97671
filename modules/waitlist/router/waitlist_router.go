package router

import (
	"venue-booking/core/middleware"
	"venue-booking/modules/waitlist/controller"

	"github.com/labstack/echo/v4"
)

type WaitlistRouter struct {
	controller *controller.WaitlistController
}

func NewWaitlistRouter(controller *controller.WaitlistController) *WaitlistRouter {
	return &WaitlistRouter{controller: controller}
}

func (r *WaitlistRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/private/waitlist", mw.AuthMiddleware())
	group.POST("", r.controller.Enroll)
	group.GET("", r.controller.ListMine)
	group.GET("/:id", r.controller.GetEntry)
}
