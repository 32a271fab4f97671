package utils

import (
	"fmt"
	"time"

	"venue-booking/core/constants"
	"venue-booking/core/errors"
)

func ValidateDate(date string) error {
	if _, err := time.Parse(constants.DateLayout, date); err != nil {
		return errors.NewValidationError(fmt.Sprintf("date %q must use YYYY-MM-DD", date))
	}
	return nil
}

func ValidateTimeSlot(slot string) error {
	if _, err := time.Parse(constants.TimeLayout, slot); err != nil {
		return errors.NewValidationError(fmt.Sprintf("time %q must use HH:MM", slot))
	}
	return nil
}

func ValidatePartySize(partySize int) error {
	if partySize < constants.MinPartySize || partySize > constants.MaxPartySizeInput {
		return errors.NewValidationError(fmt.Sprintf("party size must be between %d and %d",
			constants.MinPartySize, constants.MaxPartySizeInput))
	}
	return nil
}

// MinutesOfDay converts HH:MM to minutes after midnight. Invalid input yields -1.
func MinutesOfDay(slot string) int {
	t, err := time.Parse(constants.TimeLayout, slot)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}
