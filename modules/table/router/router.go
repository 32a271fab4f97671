package router

import (
	"venue-booking/core/middleware"
	"venue-booking/modules/table/controller"

	"github.com/labstack/echo/v4"
)

type TableRouter struct {
	controller *controller.TableController
}

func NewTableRouter(controller *controller.TableController) *TableRouter {
	return &TableRouter{controller: controller}
}

func (r *TableRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	e.GET("/public/availability", r.controller.GetAvailability)

	admin := e.Group("/admin/tables", mw.AuthMiddleware(), mw.AdminMiddleware())
	admin.POST("", r.controller.CreateTable)
	admin.GET("", r.controller.ListTables)
	admin.PUT("/:id/status", r.controller.UpdateStatus)
}
