package service

import (
	"context"
	"fmt"

	"venue-booking/core/constants"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	customerEntity "venue-booking/modules/customer/entity"
	"venue-booking/modules/risk/entity"

	"github.com/google/uuid"
)

type Limits struct {
	BaseMaxBookingsPerDay int
	MaxPartySize          int
}

func DefaultLimits() Limits {
	return Limits{
		BaseMaxBookingsPerDay: 2,
		MaxPartySize:          constants.MaxPartySizeInput,
	}
}

type ValidateInput struct {
	Record          entity.CustomerLimitRecord
	RequestedTables int
	RequestedGuests int
	PaymentMethodID string
}

type Validator struct {
	limits   Limits
	payments PaymentPatternChecker
}

func NewValidator(limits Limits, payments PaymentPatternChecker) *Validator {
	return &Validator{limits: limits, payments: payments}
}

// ValidateLimits checks input ranges, consults the payment pattern store and scores the request.
func (v *Validator) ValidateLimits(ctx context.Context, in ValidateInput) (*entity.RiskAssessment, error) {
	if in.RequestedTables < constants.MinRequestedTables || in.RequestedTables > constants.MaxRequestedTables {
		return nil, errors.NewValidationError(fmt.Sprintf("requested tables must be between %d and %d",
			constants.MinRequestedTables, constants.MaxRequestedTables))
	}
	if in.RequestedGuests < constants.MinPartySize {
		return nil, errors.NewValidationError("requested guests must be at least 1")
	}

	duplicate := false
	if in.PaymentMethodID != "" && v.payments != nil {
		dup, err := v.payments.IsDuplicate(ctx, in.Record.CustomerID, in.PaymentMethodID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check payment pattern", err)
		}
		duplicate = dup
	}

	assessment := v.Assess(in.Record, in.RequestedTables, in.RequestedGuests, duplicate)
	logger.Debug("Validator:ValidateLimits",
		"customer_id", in.Record.CustomerID,
		"score", assessment.RiskScore,
		"valid", assessment.IsValid,
		"violations", len(assessment.Violations),
	)
	return &assessment, nil
}

// RecordPayment remembers a payment method use for later duplicate checks.
func (v *Validator) RecordPayment(ctx context.Context, customerID uuid.UUID, paymentMethodID string) error {
	if v.payments == nil || paymentMethodID == "" {
		return nil
	}
	return v.payments.RecordUse(ctx, customerID, paymentMethodID)
}

// Assess applies the scoring rules. It is deterministic in its inputs.
func (v *Validator) Assess(record entity.CustomerLimitRecord, requestedTables, requestedGuests int, duplicatePayment bool) entity.RiskAssessment {
	var violations []entity.Violation

	// Daily bookings
	maxBookings := v.limits.BaseMaxBookingsPerDay
	if record.IsVIPCustomer {
		maxBookings++
	}
	tier := record.LoyaltyTier
	switch {
	case record.BookingsCount >= maxBookings:
		violations = append(violations, entity.Violation{
			Type:        entity.ViolationDailyBookingLimit,
			Severity:    entity.SeverityError,
			Message:     fmt.Sprintf("Maximum %d bookings per day exceeded", maxBookings),
			CanOverride: tier == customerEntity.LoyaltyTierGold || tier == customerEntity.LoyaltyTierPlatinum,
			Points:      constants.PointsDailyLimitExceeded,
			Details:     map[string]any{"bookings_count": record.BookingsCount, "max": maxBookings},
		})
	case record.BookingsCount == maxBookings-1:
		violations = append(violations, entity.Violation{
			Type:        entity.ViolationDailyBookingLimit,
			Severity:    entity.SeverityWarning,
			Message:     fmt.Sprintf("Approaching the limit of %d bookings per day", maxBookings),
			CanOverride: true,
			Points:      constants.PointsDailyLimitNear,
			Details:     map[string]any{"bookings_count": record.BookingsCount, "max": maxBookings},
		})
	}

	// Tables per customer
	maxTables := constants.BaseTablesPerCustomer
	if record.IsVIPCustomer {
		maxTables = constants.VIPTablesPerCustomer
	}
	if total := len(record.TablesReserved) + requestedTables; total > maxTables {
		violations = append(violations, entity.Violation{
			Type:        entity.ViolationTableLimit,
			Severity:    entity.SeverityError,
			Message:     fmt.Sprintf("Maximum %d tables per customer exceeded", maxTables),
			CanOverride: tier == customerEntity.LoyaltyTierPlatinum,
			Points:      constants.PointsTableLimitExceeded,
			Details:     map[string]any{"tables_reserved": len(record.TablesReserved), "requested": requestedTables, "max": maxTables},
		})
	}

	// Party size
	switch {
	case requestedGuests > v.limits.MaxPartySize:
		violations = append(violations, entity.Violation{
			Type:        entity.ViolationPartySize,
			Severity:    entity.SeverityError,
			Message:     fmt.Sprintf("Party size %d exceeds the maximum of %d guests", requestedGuests, v.limits.MaxPartySize),
			CanOverride: false,
			Points:      constants.PointsPartyOverHardCap,
			Details:     map[string]any{"requested_guests": requestedGuests, "max": v.limits.MaxPartySize},
		})
	case requestedGuests > constants.LargePartyThreshold:
		violations = append(violations, entity.Violation{
			Type:        entity.ViolationPartySize,
			Severity:    entity.SeverityWarning,
			Message:     fmt.Sprintf("Large party of %d guests", requestedGuests),
			CanOverride: true,
			Points:      constants.PointsLargeParty,
			Details:     map[string]any{"requested_guests": requestedGuests},
		})
	}

	if duplicatePayment {
		violations = append(violations, entity.Violation{
			Type:        entity.ViolationPaymentPattern,
			Severity:    entity.SeverityWarning,
			Message:     "Payment method was recently used by another customer",
			CanOverride: true,
			Points:      constants.PointsPaymentPattern,
		})
	}

	if n := record.AttemptedExcessBookings; n > 0 {
		violations = append(violations, entity.Violation{
			Type:        entity.ViolationFraudRisk,
			Severity:    entity.SeverityWarning,
			Message:     fmt.Sprintf("%d previous attempts to exceed booking limits", n),
			CanOverride: n < constants.ExcessAttemptOverrideBelow,
			Points:      constants.PointsPerExcessAttempt * n,
			Details:     map[string]any{"attempted_excess_bookings": n},
		})
	}

	for _, flag := range record.RiskFlags {
		violations = append(violations, entity.Violation{
			Type:        entity.ViolationFraudRisk,
			Severity:    entity.SeverityInfo,
			Message:     fmt.Sprintf("Risk flag: %s", flag),
			CanOverride: true,
			Points:      constants.PointsPerRiskFlag,
			Details:     map[string]any{"flag": flag},
		})
	}

	sum := 0
	valid := true
	for _, vio := range violations {
		sum += vio.Points
		if vio.Blocking() {
			valid = false
		}
	}
	score := clamp(sum, constants.RiskScoreMin, constants.RiskScoreMax)
	level := levelFor(score)

	if violations == nil {
		violations = []entity.Violation{}
	}
	return entity.RiskAssessment{
		Violations:      violations,
		Recommendations: recommend(violations, level, v.limits.MaxPartySize),
		RiskScore:       score,
		RiskLevel:       level,
		IsValid:         valid,
	}
}

// EnsureAllowed converts an invalid assessment into LIMIT_EXCEEDED carrying every violation.
func EnsureAllowed(a *entity.RiskAssessment) error {
	if a == nil || a.IsValid {
		return nil
	}
	blocking := a.BlockingViolations()
	msg := "Booking limits exceeded"
	if len(blocking) > 0 {
		msg = blocking[0].Message
	}
	return errors.NewAppError(errors.ErrLimitExceeded, msg, nil).WithDetails(a)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func levelFor(score int) entity.RiskLevel {
	switch {
	case score >= constants.RiskVeryHighFrom:
		return entity.RiskLevelVeryHigh
	case score >= constants.RiskHighFrom:
		return entity.RiskLevelHigh
	case score >= constants.RiskMediumFrom:
		return entity.RiskLevelMedium
	default:
		return entity.RiskLevelLow
	}
}

func recommend(violations []entity.Violation, level entity.RiskLevel, maxParty int) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, v := range violations {
		switch v.Type {
		case entity.ViolationDailyBookingLimit:
			switch {
			case v.Severity == entity.SeverityWarning:
				add("This is the last booking allowed for the day")
			case v.CanOverride:
				add("Loyalty tier allows staff to override the daily booking limit")
			default:
				add("Choose another date or join the waitlist")
			}
		case entity.ViolationTableLimit:
			if v.CanOverride {
				add("Platinum tier allows staff to approve additional tables")
			} else {
				add("Reduce the number of tables requested")
			}
		case entity.ViolationPartySize:
			if v.Severity == entity.SeverityError {
				add(fmt.Sprintf("Split the party into groups of at most %d guests", maxParty))
			} else {
				add("Confirm large party arrangements with the venue")
			}
		case entity.ViolationPaymentPattern:
			add("Verify the payment method belongs to the customer")
		case entity.ViolationFraudRisk:
			if v.Severity == entity.SeverityInfo {
				add("Review customer risk flags")
			} else {
				add("Review previous attempts to exceed booking limits")
			}
		}
	}

	switch level {
	case entity.RiskLevelVeryHigh:
		add("Manual review recommended before confirming this booking")
	case entity.RiskLevelHigh:
		add("Request additional verification before confirming")
	}
	return out
}
