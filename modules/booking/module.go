package booking

import (
	"venue-booking/core/database"
	"venue-booking/core/middleware"
	"venue-booking/core/storage"
	"venue-booking/modules/booking/controller"
	"venue-booking/modules/booking/repository"
	"venue-booking/modules/booking/router"
	"venue-booking/modules/booking/service"

	"github.com/labstack/echo/v4"
)

type Dependencies struct {
	Tables   service.TableBooker
	Limits   service.LimitSource
	Risk     service.RiskChecker
	Matcher  service.SlotMatcher
	Archiver storage.Archiver
}

func Init(e *echo.Group, repo repository.BookingRepositoryInterface, deps Dependencies, mw *middleware.Middleware) *service.BookingService {
	svc := GetService(repo, deps)
	ctrl := controller.NewBookingController(svc)

	router.NewBookingRouter(ctrl).Register(e, mw)

	return svc
}

// GetRepository is exposed on its own because the customer limit record reads booking stats.
func GetRepository(db database.Database) *repository.BookingRepository {
	return repository.NewBookingRepository(db)
}

func GetService(repo repository.BookingRepositoryInterface, deps Dependencies) *service.BookingService {
	return service.NewBookingService(repo, deps.Tables, deps.Limits, deps.Risk, deps.Matcher, deps.Archiver)
}
