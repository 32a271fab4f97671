package router

import (
	"venue-booking/core/middleware"
	"venue-booking/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(controller *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: controller}
}

func (r *BookingRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/private/bookings", mw.AuthMiddleware())
	group.POST("", r.controller.Create)
	group.GET("", r.controller.ListMine)
	group.GET("/:id", r.controller.Get)
	group.POST("/:id/cancel", r.controller.Cancel)
}
