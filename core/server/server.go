package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"venue-booking/core/config"
	"venue-booking/core/logger"
	"venue-booking/core/middleware"
	"venue-booking/modules/booking"
	"venue-booking/modules/conversion"
	customerRepository "venue-booking/modules/customer/repository"
	customerService "venue-booking/modules/customer/service"
	"venue-booking/modules/matching"
	matchingService "venue-booking/modules/matching/service"
	"venue-booking/modules/notification"
	"venue-booking/modules/risk"
	"venue-booking/modules/table"
	"venue-booking/modules/waitlist"

	_ "venue-booking/docs"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const shutdownTimeout = 10 * time.Second

// NewEcho builds the HTTP API with every module registered under /api/v1.
func NewEcho(cfg *config.Config, infra *Infra) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	mw := middleware.NewMiddleware(cfg.JWT.Secret)
	e.Use(mw.RequestLogger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	tables := table.Init(api, infra.DB, mw)
	bookingRepo := booking.GetRepository(infra.DB)
	customers := customerService.NewCustomerService(customerRepository.NewCustomerRepository(infra.DB), bookingRepo)
	validator := risk.Init(api, infra.Cache, cfg.Booking, customers, mw)
	waitlistSvc := waitlist.Init(api, infra.DB, customers, validator, mw)
	notification.Init(api, infra.DB, mw)

	dispatcher := notification.GetDispatcher(infra.DB, infra.Queue, cfg.Notification)
	engine := matchingService.NewEngine(tables, waitlistSvc, dispatcher, reservationWindow(cfg))
	matching.Init(api, engine, mw)

	bookings := booking.Init(api, bookingRepo, booking.Dependencies{
		Tables:   tables,
		Limits:   customers,
		Risk:     validator,
		Matcher:  engine,
		Archiver: infra.Archiver,
	}, mw)

	coordinator := conversion.GetCoordinator(waitlistSvc, bookings, tables, engine, cfg.Waitlist)
	conversion.Init(api, coordinator, mw)

	return e
}

func reservationWindow(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Waitlist.ReservationWindowMinutes) * time.Minute
}

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	infra, err := Connect(cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	e := NewEcho(cfg, infra)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Run", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Server:Shutdown")
	return e.Shutdown(shutdownCtx)
}
