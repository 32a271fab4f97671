package dto

import (
	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
	PartySize int    `json:"party_size"`
	Floor     string `json:"floor,omitempty"`
	// TableIDs pins the booking to one resolved slot. Empty takes the best fit.
	TableIDs        []uuid.UUID `json:"table_ids,omitempty"`
	PaymentMethodID string      `json:"payment_method_id,omitempty"`
}
