package entity

import (
	customerEntity "venue-booking/modules/customer/entity"

	"github.com/google/uuid"
)

// CustomerLimitRecord is read fresh for every validation and never written by the validator.
type CustomerLimitRecord struct {
	CustomerID              uuid.UUID                  `json:"customer_id"`
	BookingsCount           int                        `json:"bookings_count"`
	TablesReserved          []uuid.UUID                `json:"tables_reserved"`
	AttemptedExcessBookings int                        `json:"attempted_excess_bookings"`
	IsVIPCustomer           bool                       `json:"is_vip_customer"`
	LoyaltyTier             customerEntity.LoyaltyTier `json:"loyalty_tier"`
	RiskFlags               []string                   `json:"risk_flags"`
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type ViolationType string

const (
	ViolationDailyBookingLimit ViolationType = "daily_booking_limit"
	ViolationTableLimit        ViolationType = "table_limit"
	ViolationPartySize         ViolationType = "party_size"
	ViolationPaymentPattern    ViolationType = "payment_pattern"
	ViolationFraudRisk         ViolationType = "fraud_risk"
)

type Violation struct {
	Type        ViolationType  `json:"type"`
	Severity    Severity       `json:"severity"`
	Message     string         `json:"message"`
	CanOverride bool           `json:"can_override"`
	Points      int            `json:"points"`
	Details     map[string]any `json:"details,omitempty"`
}

// Blocking reports an error that no override can lift.
func (v Violation) Blocking() bool {
	return v.Severity == SeverityError && !v.CanOverride
}

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelVeryHigh RiskLevel = "very_high"
)

type RiskAssessment struct {
	Violations      []Violation `json:"violations"`
	Recommendations []string    `json:"recommendations"`
	RiskScore       int         `json:"risk_score"`
	RiskLevel       RiskLevel   `json:"risk_level"`
	IsValid         bool        `json:"is_valid"`
}

// ExceedsLimits reports a daily booking or table limit that blocks the request.
func (a RiskAssessment) ExceedsLimits() bool {
	for _, v := range a.BlockingViolations() {
		if v.Type == ViolationDailyBookingLimit || v.Type == ViolationTableLimit {
			return true
		}
	}
	return false
}

// BlockingViolations returns error violations without override.
func (a RiskAssessment) BlockingViolations() []Violation {
	var out []Violation
	for _, v := range a.Violations {
		if v.Blocking() {
			out = append(out, v)
		}
	}
	return out
}
