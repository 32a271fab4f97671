package entity

import (
	"venue-booking/core/entity"

	"github.com/google/uuid"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type Booking struct {
	Code            string        `db:"code" json:"code"`
	CustomerID      uuid.UUID     `db:"customer_id" json:"customer_id"`
	TableIDs        entity.IDList `db:"table_ids" json:"table_ids"`
	Date            string        `db:"booking_date" json:"date"`
	TimeSlot        string        `db:"time_slot" json:"time_slot"`
	PartySize       int           `db:"party_size" json:"party_size"`
	WaitlistEntryID *uuid.UUID    `db:"waitlist_entry_id" json:"waitlist_entry_id,omitempty"`
	Status          Status        `db:"status" json:"status"`
	entity.BaseEntity
}

// ArchiveKey is where the confirmation document is stored.
func (b Booking) ArchiveKey() string {
	return "bookings/" + b.Date + "/" + b.Code + ".json"
}
