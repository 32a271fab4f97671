package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"venue-booking/core/database"
	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/modules/booking/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BookingRepositoryInterface interface {
	// Create returns ALREADY_EXISTS when the code or the waitlist entry is taken.
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	GetByWaitlistEntry(ctx context.Context, entryID uuid.UUID) (*entity.Booking, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Booking, error)
	// Cancel moves a confirmed booking to cancelled, or returns STATE_CONFLICT.
	Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*entity.Booking, error)
	// CustomerDayStats counts confirmed bookings on date and the tables they hold.
	CustomerDayStats(ctx context.Context, customerID uuid.UUID, date string) (int, []uuid.UUID, error)
}

type BookingRepository struct {
	db database.Database
}

func NewBookingRepository(db database.Database) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, code, customer_id, table_ids, booking_date, time_slot, party_size,
			waitlist_entry_id, status, created_at, updated_at)
		VALUES (:id, :code, :customer_id, :table_ids, :booking_date, :time_slot, :party_size,
			:waitlist_entry_id, :status, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, booking)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errors.NewAppError(errors.ErrAlreadyExists, "Booking already exists", err)
		}
		logger.Error("BookingRepository:Create:Error:", err)
		return err
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.getOne(ctx, `SELECT * FROM bookings WHERE id = $1`, id)
}

func (r *BookingRepository) GetByWaitlistEntry(ctx context.Context, entryID uuid.UUID) (*entity.Booking, error) {
	return r.getOne(ctx, `SELECT * FROM bookings WHERE waitlist_entry_id = $1`, entryID)
}

func (r *BookingRepository) getOne(ctx context.Context, query string, arg any) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, query, arg)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Booking not found")
	}
	if err != nil {
		logger.Error("BookingRepository:Get:Error:", err)
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	query := `SELECT * FROM bookings WHERE customer_id = $1 ORDER BY booking_date DESC, time_slot DESC`
	if err := r.db.SelectContext(ctx, &bookings, query, customerID); err != nil {
		logger.Error("BookingRepository:ListByCustomer:Error:", err)
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*entity.Booking, error) {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4 RETURNING *`

	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, query, entity.StatusCancelled, now, id, entity.StatusConfirmed)
	if stderrors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, errors.NewStateConflict("Booking is already cancelled")
	}
	if err != nil {
		logger.Error("BookingRepository:Cancel:Error:", err, "id", id)
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) CustomerDayStats(ctx context.Context, customerID uuid.UUID, date string) (int, []uuid.UUID, error) {
	var rows []coreEntity.IDList
	query := `SELECT table_ids FROM bookings WHERE customer_id = $1 AND booking_date = $2 AND status = $3`
	if err := r.db.SelectContext(ctx, &rows, query, customerID, date, entity.StatusConfirmed); err != nil {
		logger.Error("BookingRepository:CustomerDayStats:Error:", err)
		return 0, nil, err
	}

	var tables []uuid.UUID
	for _, ids := range rows {
		tables = append(tables, ids...)
	}
	return len(rows), tables, nil
}
