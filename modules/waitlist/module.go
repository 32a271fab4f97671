package waitlist

import (
	"venue-booking/core/database"
	"venue-booking/core/middleware"
	"venue-booking/modules/waitlist/controller"
	"venue-booking/modules/waitlist/repository"
	"venue-booking/modules/waitlist/router"
	"venue-booking/modules/waitlist/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.Database, limits service.LimitSource, risk service.RiskChecker, mw *middleware.Middleware) *service.WaitlistService {
	svc := GetService(db, limits, risk)
	ctrl := controller.NewWaitlistController(svc)

	router.NewWaitlistRouter(ctrl).Register(e, mw)

	return svc
}

func GetService(db database.Database, limits service.LimitSource, risk service.RiskChecker) *service.WaitlistService {
	return service.NewWaitlistService(repository.NewWaitlistRepository(db), limits, risk)
}
