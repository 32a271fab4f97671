package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"venue-booking/core/database"
	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	tableEntity "venue-booking/modules/table/entity"
	"venue-booking/modules/waitlist/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type WaitlistRepositoryInterface interface {
	// Create stores a new ACTIVE entry and fills its Sequence. A customer may hold
	// one open (ACTIVE or NOTIFIED) entry per date.
	Create(ctx context.Context, entry *entity.WaitlistEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error)
	// ListActiveForSlot returns ACTIVE entries for date whose party fits capacity.
	// A nil floor does not filter.
	ListActiveForSlot(ctx context.Context, date string, capacity int, floor *tableEntity.Floor) ([]entity.WaitlistEntry, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.WaitlistEntry, error)
	// ListExpired returns NOTIFIED entries whose window closed at or before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]entity.WaitlistEntry, error)
	// Transition applies req only if the entry is in req.From and the guards hold.
	// Otherwise it returns STATE_CONFLICT (or NOT_FOUND) and changes nothing.
	Transition(ctx context.Context, req entity.TransitionRequest) (*entity.WaitlistEntry, error)
	AttachBooking(ctx context.Context, id uuid.UUID, bookingID uuid.UUID) error
	UpdatePriorities(ctx context.Context, priorities map[uuid.UUID]int) error
}

type WaitlistRepository struct {
	db database.Database
}

func NewWaitlistRepository(db database.Database) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func (r *WaitlistRepository) Create(ctx context.Context, entry *entity.WaitlistEntry) error {
	query := `
		INSERT INTO waitlist_entries (id, customer_id, preferred_date, preferred_time, party_size, floor, notify_channels, rank,
			loyalty_tier, priority, status, assigned_table_ids, assigned_time_slot, requeue_count, created_at, updated_at)
		VALUES (:id, :customer_id, :preferred_date, :preferred_time, :party_size, :floor, :notify_channels, :rank,
			:loyalty_tier, :priority, :status, :assigned_table_ids, :assigned_time_slot, :requeue_count, :created_at, :updated_at)
		RETURNING seq
	`
	if entry.AssignedTableIDs == nil {
		entry.AssignedTableIDs = coreEntity.IDList{}
	}
	if entry.Channels == nil {
		entry.Channels = pq.StringArray{}
	}

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errors.NewAppError(errors.ErrAlreadyExists, "Customer already has an open waitlist entry for this date", err)
		}
		logger.Error("WaitlistRepository:Create:Error:", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&entry.Sequence)
	}
	return rows.Err()
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	var entry entity.WaitlistEntry
	err := r.db.GetContext(ctx, &entry, `SELECT * FROM waitlist_entries WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Waitlist entry not found")
	}
	if err != nil {
		logger.Error("WaitlistRepository:GetByID:Error:", err)
		return nil, err
	}
	return &entry, nil
}

func (r *WaitlistRepository) ListActiveForSlot(ctx context.Context, date string, capacity int, floor *tableEntity.Floor) ([]entity.WaitlistEntry, error) {
	query := `
		SELECT * FROM waitlist_entries
		WHERE status = $1 AND preferred_date = $2 AND party_size <= $3
	`
	args := []any{entity.StatusActive, date, capacity}
	if floor != nil {
		query += ` AND (floor IS NULL OR floor = $4)`
		args = append(args, *floor)
	}
	query += ` ORDER BY priority DESC, created_at ASC, seq ASC`

	var entries []entity.WaitlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		logger.Error("WaitlistRepository:ListActiveForSlot:Error:", err)
		return nil, err
	}
	return entries, nil
}

func (r *WaitlistRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.WaitlistEntry, error) {
	var entries []entity.WaitlistEntry
	query := `SELECT * FROM waitlist_entries WHERE customer_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &entries, query, customerID); err != nil {
		logger.Error("WaitlistRepository:ListByCustomer:Error:", err)
		return nil, err
	}
	return entries, nil
}

func (r *WaitlistRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]entity.WaitlistEntry, error) {
	var entries []entity.WaitlistEntry
	query := `
		SELECT * FROM waitlist_entries
		WHERE status = $1 AND reservation_expires_at <= $2
		ORDER BY reservation_expires_at ASC
		LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &entries, query, entity.StatusNotified, now, limit); err != nil {
		logger.Error("WaitlistRepository:ListExpired:Error:", err)
		return nil, err
	}
	return entries, nil
}

func (r *WaitlistRepository) Transition(ctx context.Context, req entity.TransitionRequest) (*entity.WaitlistEntry, error) {
	if !req.From.CanTransitionTo(req.To) {
		return nil, errors.NewAppError(errors.ErrStateConflict, "Invalid waitlist status transition",
			&entity.InvalidTransitionError{From: req.From, To: req.To})
	}
	if req.To == entity.StatusNotified && req.ReservationExpiresAt == nil {
		return nil, errors.NewValidationError("reservation window is required when notifying")
	}

	set := []string{"status = $1", "updated_at = $2"}
	args := []any{req.To, req.Now}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch req.To {
	case entity.StatusNotified:
		tables := req.AssignedTableIDs
		if tables == nil {
			tables = coreEntity.IDList{}
		}
		set = append(set,
			"notified_at = "+next(req.Now),
			"reservation_expires_at = "+next(*req.ReservationExpiresAt),
			"assigned_table_ids = "+next(tables),
			"assigned_time_slot = "+next(req.AssignedTimeSlot),
		)
	case entity.StatusActive:
		set = append(set,
			"reservation_expires_at = NULL",
			"assigned_table_ids = '{}'",
			"assigned_time_slot = ''",
			"requeue_count = requeue_count + 1",
		)
	default:
		set = append(set, "reservation_expires_at = NULL")
	}

	where := []string{"id = " + next(req.ID), "status = " + next(req.From)}
	if req.WindowOpenAt != nil {
		where = append(where, "reservation_expires_at > "+next(*req.WindowOpenAt))
	}
	if req.WindowClosedAt != nil {
		where = append(where, "reservation_expires_at <= "+next(*req.WindowClosedAt))
	}

	query := `UPDATE waitlist_entries SET ` + strings.Join(set, ", ") +
		` WHERE ` + strings.Join(where, " AND ") + ` RETURNING *`

	var updated entity.WaitlistEntry
	err := r.db.GetContext(ctx, &updated, query, args...)
	if stderrors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, req.ID); getErr != nil {
			return nil, getErr
		}
		return nil, errors.NewStateConflict(fmt.Sprintf("Waitlist entry is no longer %s", req.From))
	}
	if err != nil {
		logger.Error("WaitlistRepository:Transition:Error:", err, "id", req.ID)
		return nil, err
	}
	return &updated, nil
}

func (r *WaitlistRepository) AttachBooking(ctx context.Context, id uuid.UUID, bookingID uuid.UUID) error {
	query := `UPDATE waitlist_entries SET booking_id = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	res, err := r.db.ExecResultContext(ctx, query, bookingID, id, entity.StatusConverted)
	if err != nil {
		logger.Error("WaitlistRepository:AttachBooking:Error:", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewStateConflict("Waitlist entry is not converted")
	}
	return nil
}

func (r *WaitlistRepository) UpdatePriorities(ctx context.Context, priorities map[uuid.UUID]int) error {
	if len(priorities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for id, p := range priorities {
		if _, err := tx.ExecContext(ctx,
			`UPDATE waitlist_entries SET priority = $1 WHERE id = $2 AND status = $3`,
			p, id, entity.StatusActive); err != nil {
			logger.Error("WaitlistRepository:UpdatePriorities:Error:", err)
			return err
		}
	}
	return tx.Commit()
}
