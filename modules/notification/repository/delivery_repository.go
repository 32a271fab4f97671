package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"venue-booking/core/database"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	customerEntity "venue-booking/modules/customer/entity"
	"venue-booking/modules/notification/entity"

	"github.com/google/uuid"
)

type DeliveryRepositoryInterface interface {
	// Upsert records the latest state of a (waitlist entry, channel) delivery.
	Upsert(ctx context.Context, delivery *entity.Delivery) error
	Get(ctx context.Context, entryID uuid.UUID, channel customerEntity.Channel) (*entity.Delivery, error)
	ListByEntry(ctx context.Context, entryID uuid.UUID) ([]entity.Delivery, error)
}

type DeliveryRepository struct {
	db database.Database
}

func NewDeliveryRepository(db database.Database) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Upsert(ctx context.Context, delivery *entity.Delivery) error {
	query := `
		INSERT INTO notification_deliveries (id, waitlist_entry_id, customer_id, channel, status, attempts, last_error, created_at, updated_at)
		VALUES (:id, :waitlist_entry_id, :customer_id, :channel, :status, :attempts, :last_error, :created_at, :updated_at)
		ON CONFLICT (waitlist_entry_id, channel) DO UPDATE SET
			status = EXCLUDED.status,
			attempts = EXCLUDED.attempts,
			last_error = EXCLUDED.last_error,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.NamedExecContext(ctx, query, delivery); err != nil {
		logger.Error("DeliveryRepository:Upsert:Error:", err)
		return err
	}
	return nil
}

func (r *DeliveryRepository) Get(ctx context.Context, entryID uuid.UUID, channel customerEntity.Channel) (*entity.Delivery, error) {
	var delivery entity.Delivery
	query := `SELECT * FROM notification_deliveries WHERE waitlist_entry_id = $1 AND channel = $2`
	err := r.db.GetContext(ctx, &delivery, query, entryID, channel)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Delivery not found")
	}
	if err != nil {
		logger.Error("DeliveryRepository:Get:Error:", err)
		return nil, err
	}
	return &delivery, nil
}

func (r *DeliveryRepository) ListByEntry(ctx context.Context, entryID uuid.UUID) ([]entity.Delivery, error) {
	var deliveries []entity.Delivery
	query := `SELECT * FROM notification_deliveries WHERE waitlist_entry_id = $1 ORDER BY channel`
	if err := r.db.SelectContext(ctx, &deliveries, query, entryID); err != nil {
		logger.Error("DeliveryRepository:ListByEntry:Error:", err)
		return nil, err
	}
	return deliveries, nil
}
