package risk

import (
	"venue-booking/core/cache"
	"venue-booking/core/config"
	"venue-booking/core/middleware"
	customerService "venue-booking/modules/customer/service"
	"venue-booking/modules/risk/controller"
	"venue-booking/modules/risk/router"
	"venue-booking/modules/risk/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, c cache.Cache, cfg config.BookingConfig, customers *customerService.CustomerService, mw *middleware.Middleware) *service.Validator {
	validator := GetService(c, cfg)
	ctrl := controller.NewRiskController(validator, customers)

	router.NewRiskRouter(ctrl).Register(e, mw)

	return validator
}

func GetService(c cache.Cache, cfg config.BookingConfig) *service.Validator {
	limits := service.DefaultLimits()
	if cfg.BaseMaxBookingsPerDay > 0 {
		limits.BaseMaxBookingsPerDay = cfg.BaseMaxBookingsPerDay
	}
	if cfg.MaxPartySize > 0 {
		limits.MaxPartySize = cfg.MaxPartySize
	}
	return service.NewValidator(limits, service.NewPaymentPatternStore(c, cfg.PaymentPatternWindow))
}
