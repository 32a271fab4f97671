package server

import (
	"context"

	"venue-booking/core/config"
	"venue-booking/core/constants"
	"venue-booking/core/logger"
	"venue-booking/core/queue"
	"venue-booking/modules/booking"
	"venue-booking/modules/conversion"
	conversionService "venue-booking/modules/conversion/service"
	customerRepository "venue-booking/modules/customer/repository"
	customerService "venue-booking/modules/customer/service"
	matchingService "venue-booking/modules/matching/service"
	"venue-booking/modules/notification"
	"venue-booking/modules/risk"
	"venue-booking/modules/table"
	"venue-booking/modules/waitlist"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// RunWorker drains the notification queue and runs the expiry sweep until ctx is cancelled.
func RunWorker(ctx context.Context, cfg *config.Config) error {
	infra, err := Connect(cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	tables := table.GetService(infra.DB)
	bookingRepo := booking.GetRepository(infra.DB)
	customers := customerService.NewCustomerService(customerRepository.NewCustomerRepository(infra.DB), bookingRepo)
	validator := risk.GetService(infra.Cache, cfg.Booking)
	waitlistSvc := waitlist.GetService(infra.DB, customers, validator)
	dispatcher := notification.GetDispatcher(infra.DB, infra.Queue, cfg.Notification)
	engine := matchingService.NewEngine(tables, waitlistSvc, dispatcher, reservationWindow(cfg))
	bookings := booking.GetService(bookingRepo, booking.Dependencies{
		Tables:   tables,
		Limits:   customers,
		Risk:     validator,
		Matcher:  engine,
		Archiver: infra.Archiver,
	})
	coordinator := conversion.GetCoordinator(waitlistSvc, bookings, tables, engine, cfg.Waitlist)

	sweeper, err := newSweeper(ctx, cfg.Waitlist.SweepSpec, coordinator)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer func() { <-sweeper.Stop().Done() }()

	handler := notification.GetDeliveryHandler(infra.DB, infra.Cache, customers, cfg.Notification)
	mux := asynq.NewServeMux()
	mux.HandleFunc(constants.TaskTypeWaitlistNotify, handler.HandleNotifyTask)

	srv := queue.NewServer(cfg.Redis, cfg.Notification.WorkerConcurrency)
	if err := srv.Start(mux); err != nil {
		logger.Error("Worker:Start:Error:", err)
		return err
	}
	logger.Info("Worker:Run", "sweep", cfg.Waitlist.SweepSpec, "concurrency", cfg.Notification.WorkerConcurrency)

	<-ctx.Done()
	logger.Info("Worker:Shutdown")
	srv.Shutdown()
	return nil
}

// newSweeper schedules SweepExpired. A run still in progress makes the next tick skip.
func newSweeper(ctx context.Context, spec string, coordinator *conversionService.Coordinator) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		n, err := coordinator.SweepExpired(ctx)
		if err != nil {
			logger.Error("Worker:Sweep:Error:", err)
			return
		}
		if n > 0 {
			logger.Info("Worker:Sweep", "closed", n)
		}
	})
	if err != nil {
		logger.Error("Worker:Sweep:Schedule:Error:", err, "spec", spec)
		return nil, err
	}
	return c, nil
}
