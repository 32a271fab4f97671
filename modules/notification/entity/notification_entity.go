package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"venue-booking/core/entity"
	customerEntity "venue-booking/modules/customer/entity"

	"github.com/google/uuid"
)

const TypeTableOffered = "table_offered"

// Notification is an in-app inbox item. The push channel delivers into it.
type Notification struct {
	CustomerID uuid.UUID `db:"customer_id" json:"customer_id"`
	Title      string    `db:"title" json:"title"`
	Message    string    `db:"message" json:"message"`
	Type       string    `db:"type" json:"type"`
	Data       JSONB     `db:"data" json:"data"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	entity.BaseEntity
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *JSONB) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &a)
}

type PaginatedNotificationEntity = entity.Pagination[Notification]

type DeliveryStatus string

const (
	DeliveryQueued   DeliveryStatus = "queued"
	DeliverySent     DeliveryStatus = "sent"
	DeliveryRetrying DeliveryStatus = "retrying"
	DeliveryFailed   DeliveryStatus = "failed"
	DeliverySkipped  DeliveryStatus = "skipped"
)

// Delivery tracks one channel of one waitlist notification.
type Delivery struct {
	WaitlistEntryID uuid.UUID              `db:"waitlist_entry_id" json:"waitlist_entry_id"`
	CustomerID      uuid.UUID              `db:"customer_id" json:"customer_id"`
	Channel         customerEntity.Channel `db:"channel" json:"channel"`
	Status          DeliveryStatus         `db:"status" json:"status"`
	Attempts        int                    `db:"attempts" json:"attempts"`
	LastError       string                 `db:"last_error" json:"last_error,omitempty"`
	entity.BaseEntity
}
