package conversion

import (
	"venue-booking/core/config"
	"venue-booking/core/middleware"
	"venue-booking/modules/conversion/controller"
	"venue-booking/modules/conversion/router"
	"venue-booking/modules/conversion/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, coordinator *service.Coordinator, mw *middleware.Middleware) {
	ctrl := controller.NewConversionController(coordinator)
	router.NewConversionRouter(ctrl).Register(e, mw)
}

func GetCoordinator(waitlist service.Waitlist, booker service.Booker, tables service.TableReleaser, matcher service.SlotMatcher, cfg config.WaitlistConfig) *service.Coordinator {
	return service.NewCoordinator(waitlist, booker, tables, matcher, service.Policy{
		RequeueOnExpiry: cfg.RequeueOnExpiry,
		MaxRequeues:     cfg.MaxRequeues,
	})
}
