package matching

import (
	"venue-booking/core/middleware"
	"venue-booking/modules/matching/controller"
	"venue-booking/modules/matching/router"
	"venue-booking/modules/matching/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, engine *service.Engine, mw *middleware.Middleware) {
	ctrl := controller.NewMatchingController(engine)
	router.NewMatchingRouter(ctrl).Register(e, mw)
}
