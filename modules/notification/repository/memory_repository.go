package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"venue-booking/core/errors"
	"venue-booking/core/params"
	customerEntity "venue-booking/modules/customer/entity"
	"venue-booking/modules/notification/entity"

	"github.com/google/uuid"
)

type MemoryNotificationRepository struct {
	mu    sync.Mutex
	items []entity.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *notification)
	return nil
}

func (r *MemoryNotificationRepository) GetByCustomerID(_ context.Context, customerID uuid.UUID, p params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mine []entity.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].CustomerID == customerID {
			mine = append(mine, r.items[i])
		}
	}

	start := (p.PageNumber - 1) * p.PageSize
	if start > len(mine) {
		start = len(mine)
	}
	end := start + p.PageSize
	if end > len(mine) {
		end = len(mine)
	}
	return &entity.PaginatedNotificationEntity{
		Items:      mine[start:end],
		TotalItems: len(mine),
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (r *MemoryNotificationRepository) MarkAsRead(_ context.Context, customerID uuid.UUID, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i := range r.items {
		if r.items[i].CustomerID == customerID && want[r.items[i].ID.String()] {
			r.items[i].IsRead = true
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) MarkAllAsRead(_ context.Context, customerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].CustomerID == customerID {
			r.items[i].IsRead = true
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) CountUnread(_ context.Context, customerID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.items {
		if n.CustomerID == customerID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type deliveryKey struct {
	entryID uuid.UUID
	channel customerEntity.Channel
}

type MemoryDeliveryRepository struct {
	mu         sync.Mutex
	deliveries map[deliveryKey]entity.Delivery
}

func NewMemoryDeliveryRepository() *MemoryDeliveryRepository {
	return &MemoryDeliveryRepository{deliveries: make(map[deliveryKey]entity.Delivery)}
}

func (r *MemoryDeliveryRepository) Upsert(_ context.Context, delivery *entity.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := deliveryKey{delivery.WaitlistEntryID, delivery.Channel}
	if existing, ok := r.deliveries[key]; ok {
		existing.Status = delivery.Status
		existing.Attempts = delivery.Attempts
		existing.LastError = delivery.LastError
		existing.UpdatedAt = time.Now()
		r.deliveries[key] = existing
		return nil
	}
	r.deliveries[key] = *delivery
	return nil
}

func (r *MemoryDeliveryRepository) Get(_ context.Context, entryID uuid.UUID, channel customerEntity.Channel) (*entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[deliveryKey{entryID, channel}]
	if !ok {
		return nil, errors.NewNotFound("Delivery not found")
	}
	return &d, nil
}

func (r *MemoryDeliveryRepository) ListByEntry(_ context.Context, entryID uuid.UUID) ([]entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Delivery
	for k, d := range r.deliveries {
		if k.entryID == entryID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out, nil
}
