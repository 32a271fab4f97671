package repository

import (
	"context"

	"venue-booking/core/database"
	"venue-booking/core/logger"
	"venue-booking/core/params"
	"venue-booking/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByCustomerID(ctx context.Context, customerID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, customerID uuid.UUID, ids []string) error
	MarkAllAsRead(ctx context.Context, customerID uuid.UUID) error
	CountUnread(ctx context.Context, customerID uuid.UUID) (int, error)
}

type NotificationRepository struct {
	db database.Database
}

func NewNotificationRepository(db database.Database) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, title, message, type, data, customer_id, is_read, created_at, updated_at)
		VALUES (:id, :title, :message, :type, :data, :customer_id, :is_read, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		logger.Error("NotificationRepository:Create:Error:", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	offset := (params.PageNumber - 1) * params.PageSize

	baseQuery := `FROM notifications WHERE customer_id = $1`

	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, customerID)
	if err != nil {
		logger.Error("NotificationRepository:GetByCustomerID:Count:Error:", err)
		return nil, err
	}

	query := `
		SELECT * ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var notifications []entity.Notification
	err = r.db.SelectContext(ctx, &notifications, query, customerID, params.PageSize, offset)
	if err != nil {
		logger.Error("NotificationRepository:GetByCustomerID:Select:Error:", err)
		return nil, err
	}

	return &entity.PaginatedNotificationEntity{
		Items:      notifications,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, customerID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE notifications SET is_read = true, updated_at = NOW() WHERE customer_id = ? AND id IN (?)`, customerID, ids)
	if err != nil {
		return err
	}

	query = r.db.Rebind(query)
	if err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.Error("NotificationRepository:MarkAsRead:Error:", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, customerID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, updated_at = NOW() WHERE customer_id = $1 AND is_read = false`
	if err := r.db.ExecContext(ctx, query, customerID); err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead:Error:", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, customerID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE customer_id = $1 AND is_read = false`
	if err := r.db.GetContext(ctx, &count, query, customerID); err != nil {
		logger.Error("NotificationRepository:CountUnread:Error:", err)
		return 0, err
	}
	return count, nil
}
