package table

import (
	"venue-booking/core/database"
	"venue-booking/core/middleware"
	"venue-booking/modules/table/controller"
	"venue-booking/modules/table/repository"
	"venue-booking/modules/table/router"
	"venue-booking/modules/table/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.Database, mw *middleware.Middleware) *service.TableService {
	svc := GetService(db)
	ctrl := controller.NewTableController(svc)

	router.NewTableRouter(ctrl).Register(e, mw)

	return svc
}

func GetService(db database.Database) *service.TableService {
	repo := repository.NewTableRepository(db)
	return service.NewTableService(repo, service.NewResolver())
}
