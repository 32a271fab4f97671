package dto

type ValidateLimitsRequest struct {
	Date            string `json:"date"`
	RequestedTables int    `json:"requested_tables"`
	RequestedGuests int    `json:"requested_guests"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}
