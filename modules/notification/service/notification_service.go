package service

import (
	"context"
	"time"

	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/core/params"
	"venue-booking/modules/notification/dto"
	"venue-booking/modules/notification/entity"
	"venue-booking/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*entity.Notification, error) {
	if req.CustomerID == uuid.Nil || req.Title == "" {
		return nil, errors.NewValidationError("customer and title are required")
	}
	now := time.Now()
	notif := &entity.Notification{
		CustomerID: req.CustomerID,
		Title:      req.Title,
		Message:    req.Message,
		Type:       req.Type,
		Data:       entity.JSONB(req.Data),
		IsRead:     false,
		BaseEntity: coreEntity.BaseEntity{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return nil, err
	}
	return notif, nil
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, customerID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.GetByCustomerID(ctx, customerID, queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, customerID uuid.UUID, ids []string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return errors.NewValidationError("ids must be notification uuids")
		}
	}
	return s.repo.MarkAsRead(ctx, customerID, ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, customerID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, customerID)
}

func (s *NotificationService) CountUnread(ctx context.Context, customerID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, customerID)
}
