package dto

import "github.com/google/uuid"

type SlotFreedRequest struct {
	Date     string      `json:"date"`
	TimeSlot string      `json:"time_slot"`
	TableIDs []uuid.UUID `json:"table_ids"`
}
