package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"

	"venue-booking/core/database"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/modules/customer/entity"

	"github.com/google/uuid"
)

type CustomerRepositoryInterface interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	IncrementExcessAttempts(ctx context.Context, id uuid.UUID) error
}

type CustomerRepository struct {
	db database.Database
}

func NewCustomerRepository(db database.Database) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, phone, push_token, loyalty_tier, is_vip, attempted_excess_bookings,
			risk_flags, consent_email, consent_sms, consent_push, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :push_token, :loyalty_tier, :is_vip, :attempted_excess_bookings,
			:risk_flags, :consent_email, :consent_sms, :consent_push, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, customer); err != nil {
		logger.Error("CustomerRepository:Create:Error:", err)
		return err
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.GetContext(ctx, &customer, `SELECT * FROM customers WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Customer not found")
	}
	if err != nil {
		logger.Error("CustomerRepository:GetByID:Error:", err)
		return nil, err
	}
	return &customer, nil
}

// IncrementExcessAttempts bumps the counter in place so concurrent rejections all count.
func (r *CustomerRepository) IncrementExcessAttempts(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE customers
		SET attempted_excess_bookings = attempted_excess_bookings + 1, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecResultContext(ctx, query, id)
	if err != nil {
		logger.Error("CustomerRepository:IncrementExcessAttempts:Error:", err, "customer_id", id)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFound("Customer not found")
	}
	return nil
}

type MemoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]entity.Customer
}

func NewMemoryCustomerRepository(customers ...entity.Customer) *MemoryCustomerRepository {
	r := &MemoryCustomerRepository{customers: make(map[uuid.UUID]entity.Customer)}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *MemoryCustomerRepository) Create(_ context.Context, customer *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[customer.ID]; ok {
		return errors.NewAppError(errors.ErrAlreadyExists, "Customer already exists", nil)
	}
	r.customers[customer.ID] = *customer
	return nil
}

func (r *MemoryCustomerRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, errors.NewNotFound("Customer not found")
	}
	return &c, nil
}

func (r *MemoryCustomerRepository) IncrementExcessAttempts(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[id]
	if !ok {
		return errors.NewNotFound("Customer not found")
	}
	c.AttemptedExcessBookings++
	r.customers[id] = c
	return nil
}
