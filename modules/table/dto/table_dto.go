package dto

import (
	"github.com/google/uuid"
)

type AvailabilityRequest struct {
	Date      string `query:"date" json:"date"`
	TimeSlot  string `query:"time" json:"time_slot"`
	PartySize int    `query:"party_size" json:"party_size"`
	Floor     string `query:"floor" json:"floor,omitempty"`
}

type CreateTableRequest struct {
	Name           string      `json:"name"`
	Code           string      `json:"code,omitempty"`
	CapacityMin    int         `json:"capacity_min"`
	CapacityMax    int         `json:"capacity_max"`
	Floor          string      `json:"floor"`
	CombinableWith []uuid.UUID `json:"combinable_with"`
}

type UpdateTableStatusRequest struct {
	Status string `json:"status"`
}
