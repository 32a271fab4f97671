package dto

import (
	"time"

	"github.com/google/uuid"
)

type MarkAsReadRequest struct {
	IDs []string `json:"ids"`
}

type CreateNotificationRequest struct {
	CustomerID uuid.UUID      `json:"customer_id"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Type       string         `json:"type"`
	Data       map[string]any `json:"data"`
}

// NotifyPayload is the body of a waitlist notification task, one per channel.
type NotifyPayload struct {
	EntryID    uuid.UUID   `json:"entry_id"`
	CustomerID uuid.UUID   `json:"customer_id"`
	Channel    string      `json:"channel"`
	Date       string      `json:"date"`
	TimeSlot   string      `json:"time_slot"`
	PartySize  int         `json:"party_size"`
	TableIDs   []uuid.UUID `json:"table_ids"`
	NotifiedAt time.Time   `json:"notified_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
}
