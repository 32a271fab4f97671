package entity

import "fmt"

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusNotified  Status = "NOTIFIED"
	StatusConverted Status = "CONVERTED"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

var validTransitions = map[Status][]Status{
	StatusActive:    {StatusNotified, StatusCancelled},
	StatusNotified:  {StatusConverted, StatusExpired, StatusActive, StatusCancelled},
	StatusConverted: {},
	StatusExpired:   {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	next, ok := validTransitions[s]
	return ok && len(next) == 0
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid waitlist status transition from %s to %s", e.From, e.To)
}
