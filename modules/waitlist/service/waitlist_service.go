package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"venue-booking/core/constants"
	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/core/utils"
	customerEntity "venue-booking/modules/customer/entity"
	riskEntity "venue-booking/modules/risk/entity"
	riskService "venue-booking/modules/risk/service"
	tableEntity "venue-booking/modules/table/entity"
	"venue-booking/modules/waitlist/dto"
	"venue-booking/modules/waitlist/entity"
	"venue-booking/modules/waitlist/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// LimitSource builds a fresh limit record for a customer and date.
type LimitSource interface {
	LimitRecord(ctx context.Context, customerID uuid.UUID, date string) (*riskEntity.CustomerLimitRecord, error)
	RecordExcessAttempt(ctx context.Context, customerID uuid.UUID) error
}

type RiskChecker interface {
	ValidateLimits(ctx context.Context, in riskService.ValidateInput) (*riskEntity.RiskAssessment, error)
}

type WaitlistService struct {
	repo   repository.WaitlistRepositoryInterface
	limits LimitSource
	risk   RiskChecker
	now    func() time.Time
}

func NewWaitlistService(repo repository.WaitlistRepositoryInterface, limits LimitSource, risk RiskChecker) *WaitlistService {
	return &WaitlistService{
		repo:   repo,
		limits: limits,
		risk:   risk,
		now:    time.Now,
	}
}

func (s *WaitlistService) WithClock(now func() time.Time) *WaitlistService {
	s.now = now
	return s
}

func (s *WaitlistService) Now() time.Time {
	return s.now()
}

// Enroll validates the request, gates it through the risk validator and stores an
// ACTIVE entry with its initial priority.
func (s *WaitlistService) Enroll(ctx context.Context, customerID uuid.UUID, req *dto.EnrollRequest) (*entity.WaitlistEntry, error) {
	prefs, err := toPreferences(req)
	if err != nil {
		return nil, err
	}
	if req.Rank < 0 || req.Rank > constants.MaxRank {
		return nil, errors.NewValidationError(fmt.Sprintf("rank must be between 0 and %d", constants.MaxRank))
	}

	record, err := s.limits.LimitRecord(ctx, customerID, prefs.PreferredDate)
	if err != nil {
		return nil, err
	}

	requestedTables := 1
	if prefs.PartySize > constants.CombinedSearchAbove {
		requestedTables = 2
	}
	assessment, err := s.risk.ValidateLimits(ctx, riskService.ValidateInput{
		Record:          *record,
		RequestedTables: requestedTables,
		RequestedGuests: prefs.PartySize,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		return nil, err
	}
	if err := riskService.EnsureAllowed(assessment); err != nil {
		logger.Info("WaitlistService:Enroll:Rejected", "customer_id", customerID, "score", assessment.RiskScore)
		if assessment.ExceedsLimits() {
			if recErr := s.limits.RecordExcessAttempt(ctx, customerID); recErr != nil {
				logger.Warn("WaitlistService:Enroll:RecordExcessAttempt:Error:", recErr, "customer_id", customerID)
			}
		}
		return nil, err
	}

	now := s.now()
	entry := &entity.WaitlistEntry{
		CustomerID:       customerID,
		Preferences:      prefs,
		Rank:             req.Rank,
		LoyaltyTier:      record.LoyaltyTier,
		Status:           entity.StatusActive,
		AssignedTableIDs: coreEntity.IDList{},
		BaseEntity: coreEntity.BaseEntity{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	entry.Priority = Priority(*entry, now)

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	logger.Info("WaitlistService:Enroll",
		"id", entry.ID,
		"customer_id", customerID,
		"date", prefs.PreferredDate,
		"party_size", prefs.PartySize,
		"priority", entry.Priority,
	)
	return entry, nil
}

func toPreferences(req *dto.EnrollRequest) (entity.Preferences, error) {
	if req == nil {
		return entity.Preferences{}, errors.NewValidationError("request is required")
	}
	if err := utils.ValidateDate(req.PreferredDate); err != nil {
		return entity.Preferences{}, err
	}
	if err := utils.ValidateTimeSlot(req.PreferredTime); err != nil {
		return entity.Preferences{}, err
	}
	if err := utils.ValidatePartySize(req.PartySize); err != nil {
		return entity.Preferences{}, err
	}

	prefs := entity.Preferences{
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		PartySize:     req.PartySize,
		Channels:      pq.StringArray{},
	}
	for _, c := range req.Channels {
		if !customerEntity.Channel(c).Valid() {
			return entity.Preferences{}, errors.NewValidationError(fmt.Sprintf("unknown channel %q", c))
		}
		if !slices.Contains(prefs.Channels, c) {
			prefs.Channels = append(prefs.Channels, c)
		}
	}
	if req.Floor != "" {
		floor := tableEntity.Floor(req.Floor)
		if !floor.Valid() {
			return entity.Preferences{}, errors.NewValidationError(fmt.Sprintf("unknown floor %q", req.Floor))
		}
		prefs.Floor = &floor
	}
	return prefs, nil
}

func (s *WaitlistService) Get(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	return s.repo.GetByID(ctx, id)
}

// GetForCustomer hides entries of other customers behind NOT_FOUND.
func (s *WaitlistService) GetForCustomer(ctx context.Context, id, customerID uuid.UUID) (*entity.WaitlistEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.CustomerID != customerID {
		return nil, errors.NewNotFound("Waitlist entry not found")
	}
	return entry, nil
}

func (s *WaitlistService) ListMine(ctx context.Context, customerID uuid.UUID) ([]entity.WaitlistEntry, error) {
	entries, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load waitlist entries", err)
	}
	if entries == nil {
		entries = []entity.WaitlistEntry{}
	}
	return entries, nil
}

// Position is the 1-based rank of an ACTIVE entry among ACTIVE entries for its date,
// ordered by current priority. Entries in any other status report 0.
func (s *WaitlistService) Position(ctx context.Context, entry *entity.WaitlistEntry) (int, error) {
	if entry.Status != entity.StatusActive {
		return 0, nil
	}
	queue, err := s.ListActiveForSlot(ctx, entry.PreferredDate, math.MaxInt32, nil)
	if err != nil {
		return 0, err
	}
	for i, e := range queue {
		if e.ID == entry.ID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// ListActiveForSlot returns ACTIVE entries for date that fit capacity, with priority
// recomputed at the current time and persisted.
func (s *WaitlistService) ListActiveForSlot(ctx context.Context, date string, capacity int, floor *tableEntity.Floor) ([]entity.WaitlistEntry, error) {
	entries, err := s.repo.ListActiveForSlot(ctx, date, capacity, floor)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load waitlist", err)
	}

	now := s.now()
	changed := make(map[uuid.UUID]int)
	for i := range entries {
		p := Priority(entries[i], now)
		if p != entries[i].Priority {
			entries[i].Priority = p
			changed[entries[i].ID] = p
		}
	}
	if err := s.repo.UpdatePriorities(ctx, changed); err != nil {
		logger.Warn("WaitlistService:ListActiveForSlot:UpdatePriorities:Error:", err)
	}

	entity.SortByPriority(entries)
	return entries, nil
}

// UpdateStatus is a conditional status change without status-bound fields.
// Moving to NOTIFIED needs a reservation window, use Transition for that.
func (s *WaitlistService) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.Status) (*entity.WaitlistEntry, error) {
	return s.Transition(ctx, entity.TransitionRequest{ID: id, From: from, To: to})
}

func (s *WaitlistService) Transition(ctx context.Context, req entity.TransitionRequest) (*entity.WaitlistEntry, error) {
	if req.Now.IsZero() {
		req.Now = s.now()
	}
	updated, err := s.repo.Transition(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Debug("WaitlistService:Transition", "id", req.ID, "from", req.From, "to", req.To)
	return updated, nil
}

func (s *WaitlistService) ListExpired(ctx context.Context, limit int) ([]entity.WaitlistEntry, error) {
	return s.repo.ListExpired(ctx, s.now(), limit)
}

func (s *WaitlistService) AttachBooking(ctx context.Context, id, bookingID uuid.UUID) error {
	return s.repo.AttachBooking(ctx, id, bookingID)
}
