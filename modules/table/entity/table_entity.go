package entity

import (
	"venue-booking/core/entity"

	"github.com/google/uuid"
)

type Floor string

const (
	FloorUpstairs   Floor = "upstairs"
	FloorDownstairs Floor = "downstairs"
)

func (f Floor) Valid() bool {
	return f == FloorUpstairs || f == FloorDownstairs
}

type TableStatus string

const (
	TableStatusAvailable   TableStatus = "available"
	TableStatusBooked      TableStatus = "booked"
	TableStatusPending     TableStatus = "pending"
	TableStatusMaintenance TableStatus = "maintenance"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableStatusAvailable, TableStatusBooked, TableStatusPending, TableStatusMaintenance:
		return true
	}
	return false
}

type Table struct {
	Code           string        `db:"code" json:"code"`
	Name           string        `db:"name" json:"name"`
	CapacityMin    int           `db:"capacity_min" json:"capacity_min"`
	CapacityMax    int           `db:"capacity_max" json:"capacity_max"`
	Floor          Floor         `db:"floor" json:"floor"`
	CombinableWith entity.IDList `db:"combinable_with" json:"combinable_with"`
	Status         TableStatus   `db:"status" json:"status"`
	entity.BaseEntity
}

// Fits reports whether the table alone seats partySize.
func (t Table) Fits(partySize int) bool {
	return t.CapacityMin <= partySize && partySize <= t.CapacityMax
}

// CombinesWith treats combinability as symmetric.
func (t Table) CombinesWith(other Table) bool {
	if t.ID == other.ID {
		return false
	}
	return t.CombinableWith.Contains(other.ID) || other.CombinableWith.Contains(t.ID)
}

// AvailabilitySlot is derived on demand and never persisted.
type AvailabilitySlot struct {
	Date     string        `json:"date"`
	TimeSlot string        `json:"time_slot"`
	TableIDs entity.IDList `json:"table_ids"`
	Capacity int           `json:"capacity"`
	Floor    Floor         `json:"floor,omitempty"`
	Excess   int           `json:"excess"`
}

func (s AvailabilitySlot) Combined() bool {
	return len(s.TableIDs) > 1
}

// Key identifies a slot independent of table order.
func (s AvailabilitySlot) Key() string {
	key := s.Date + "|" + s.TimeSlot
	for _, id := range s.TableIDs.Sorted() {
		key += "|" + id.String()
	}
	return key
}

func TableIDs(tables []Table) []uuid.UUID {
	ids := make([]uuid.UUID, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	return ids
}
