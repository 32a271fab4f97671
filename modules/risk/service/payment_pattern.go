package service

import (
	"context"
	"encoding/hex"
	"time"

	"venue-booking/core/cache"
	"venue-booking/core/constants"
	"venue-booking/core/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// PaymentPatternChecker flags a payment method recently used by another customer.
type PaymentPatternChecker interface {
	IsDuplicate(ctx context.Context, customerID uuid.UUID, paymentMethodID string) (bool, error)
	RecordUse(ctx context.Context, customerID uuid.UUID, paymentMethodID string) error
}

// PaymentPatternStore keeps, per payment fingerprint, the customers that used it
// within the window. Entries expire with the window.
type PaymentPatternStore struct {
	cache  cache.Cache
	window time.Duration
}

func NewPaymentPatternStore(c cache.Cache, window time.Duration) *PaymentPatternStore {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &PaymentPatternStore{cache: c, window: window}
}

func (s *PaymentPatternStore) IsDuplicate(ctx context.Context, customerID uuid.UUID, paymentMethodID string) (bool, error) {
	members, err := s.cache.Members(ctx, fingerprintKey(paymentMethodID))
	if err != nil {
		logger.Error("PaymentPatternStore:IsDuplicate:Error:", err)
		return false, err
	}
	self := customerID.String()
	for _, m := range members {
		if m != self {
			return true, nil
		}
	}
	return false, nil
}

func (s *PaymentPatternStore) RecordUse(ctx context.Context, customerID uuid.UUID, paymentMethodID string) error {
	if paymentMethodID == "" {
		return nil
	}
	return s.cache.AddMember(ctx, fingerprintKey(paymentMethodID), customerID.String(), s.window)
}

// fingerprintKey hashes the payment id so raw identifiers never reach the cache.
func fingerprintKey(paymentMethodID string) string {
	sum := blake2b.Sum256([]byte(paymentMethodID))
	return constants.PaymentFingerprintPrefix + hex.EncodeToString(sum[:16])
}
