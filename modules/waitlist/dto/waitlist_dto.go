package dto

import "venue-booking/modules/waitlist/entity"

type EnrollRequest struct {
	PreferredDate   string `json:"preferred_date"`
	PreferredTime   string `json:"preferred_time"`
	PartySize       int    `json:"party_size"`
	Floor           string `json:"floor,omitempty"`
	Rank            int    `json:"rank"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	// Channels limits offer notifications to these channels (email, sms, push).
	Channels []string `json:"channels,omitempty"`
}

// EntryResponse adds the 1-based queue position; zero once the entry left ACTIVE.
type EntryResponse struct {
	*entity.WaitlistEntry
	Position int `json:"position"`
}
