package notification

import (
	"venue-booking/core/cache"
	"venue-booking/core/config"
	"venue-booking/core/database"
	"venue-booking/core/middleware"
	customerEntity "venue-booking/modules/customer/entity"
	"venue-booking/modules/notification/controller"
	"venue-booking/modules/notification/repository"
	"venue-booking/modules/notification/router"
	"venue-booking/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.Database, mw *middleware.Middleware) *service.NotificationService {
	svc := GetService(db)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc
}

func GetService(db database.Database) *service.NotificationService {
	return service.NewNotificationService(repository.NewNotificationRepository(db))
}

func GetDispatcher(db database.Database, queue service.Enqueuer, cfg config.NotificationConfig) *service.Dispatcher {
	return service.NewDispatcher(queue, repository.NewDeliveryRepository(db), cfg.Channels)
}

// GetDeliveryHandler wires the worker side: log-backed email and SMS, inbox-backed push.
func GetDeliveryHandler(db database.Database, c cache.Cache, customers service.CustomerReader, cfg config.NotificationConfig) *service.DeliveryHandler {
	return service.NewDeliveryHandler(customers, repository.NewDeliveryRepository(db), c, cfg.ConsentExemptChannels).
		Register(service.NewLogProvider(customerEntity.ChannelEmail), cfg.EmailRatePerSecond).
		Register(service.NewLogProvider(customerEntity.ChannelSMS), cfg.SMSRatePerSecond).
		Register(service.NewInboxProvider(GetService(db)), cfg.PushRatePerSecond)
}
