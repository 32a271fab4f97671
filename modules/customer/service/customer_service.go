package service

import (
	"context"

	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/modules/customer/entity"
	"venue-booking/modules/customer/repository"
	riskEntity "venue-booking/modules/risk/entity"

	"github.com/google/uuid"
)

// BookingStats exposes a customer's confirmed bookings for one date.
type BookingStats interface {
	CustomerDayStats(ctx context.Context, customerID uuid.UUID, date string) (bookings int, tables []uuid.UUID, err error)
}

type CustomerService struct {
	repo  repository.CustomerRepositoryInterface
	stats BookingStats
}

func NewCustomerService(repo repository.CustomerRepositoryInterface, stats BookingStats) *CustomerService {
	return &CustomerService{repo: repo, stats: stats}
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// LimitRecord assembles the limit record for the customer on date from current data.
func (s *CustomerService) LimitRecord(ctx context.Context, customerID uuid.UUID, date string) (*riskEntity.CustomerLimitRecord, error) {
	customer, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	count, tables, err := s.stats.CustomerDayStats(ctx, customerID, date)
	if err != nil {
		logger.Error("CustomerService:LimitRecord:Stats:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load booking history", err)
	}

	flags := make([]string, len(customer.RiskFlags))
	copy(flags, customer.RiskFlags)

	return &riskEntity.CustomerLimitRecord{
		CustomerID:              customer.ID,
		BookingsCount:           count,
		TablesReserved:          tables,
		AttemptedExcessBookings: customer.AttemptedExcessBookings,
		IsVIPCustomer:           customer.IsVIP,
		LoyaltyTier:             customer.Tier(),
		RiskFlags:               flags,
	}, nil
}

// RecordExcessAttempt counts a request that was turned away by a booking or table limit.
func (s *CustomerService) RecordExcessAttempt(ctx context.Context, customerID uuid.UUID) error {
	if err := s.repo.IncrementExcessAttempts(ctx, customerID); err != nil {
		logger.Error("CustomerService:RecordExcessAttempt:Error:", err, "customer_id", customerID)
		return err
	}
	return nil
}
