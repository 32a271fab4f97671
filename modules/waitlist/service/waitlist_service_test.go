package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"venue-booking/core/errors"
	customerEntity "venue-booking/modules/customer/entity"
	riskEntity "venue-booking/modules/risk/entity"
	riskService "venue-booking/modules/risk/service"
	tableEntity "venue-booking/modules/table/entity"
	"venue-booking/modules/waitlist/dto"
	"venue-booking/modules/waitlist/entity"
	"venue-booking/modules/waitlist/repository"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)

type fakeLimits struct {
	mu      sync.Mutex
	tiers   map[uuid.UUID]customerEntity.LoyaltyTier
	booked  map[uuid.UUID]int
	excess  map[uuid.UUID]int
	missing bool
}

func newFakeLimits() *fakeLimits {
	return &fakeLimits{
		tiers:  make(map[uuid.UUID]customerEntity.LoyaltyTier),
		booked: make(map[uuid.UUID]int),
		excess: make(map[uuid.UUID]int),
	}
}

func (f *fakeLimits) set(id uuid.UUID, tier customerEntity.LoyaltyTier, bookings int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers[id] = tier
	f.booked[id] = bookings
}

func (f *fakeLimits) LimitRecord(_ context.Context, customerID uuid.UUID, _ string) (*riskEntity.CustomerLimitRecord, error) {
	if f.missing {
		return nil, errors.NewNotFound("Customer not found")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tier, ok := f.tiers[customerID]
	if !ok {
		tier = customerEntity.LoyaltyTierNone
	}
	return &riskEntity.CustomerLimitRecord{
		CustomerID:              customerID,
		BookingsCount:           f.booked[customerID],
		AttemptedExcessBookings: f.excess[customerID],
		LoyaltyTier:             tier,
	}, nil
}

func (f *fakeLimits) RecordExcessAttempt(_ context.Context, customerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.excess[customerID]++
	return nil
}

func newTestService(limits LimitSource) (*WaitlistService, *repository.MemoryWaitlistRepository) {
	repo := repository.NewMemoryWaitlistRepository()
	validator := riskService.NewValidator(riskService.DefaultLimits(), nil)
	svc := NewWaitlistService(repo, limits, validator).WithClock(func() time.Time { return testNow })
	return svc, repo
}

func enrollReq(party int) *dto.EnrollRequest {
	return &dto.EnrollRequest{PreferredDate: "2026-10-20", PreferredTime: "19:00", PartySize: party}
}

func TestPriorityFormula(t *testing.T) {
	e := entity.WaitlistEntry{LoyaltyTier: customerEntity.LoyaltyTierGold, Rank: 2}
	e.CreatedAt = testNow.Add(-25 * time.Minute)

	if got := Priority(e, testNow); got != 20+2+10 {
		t.Errorf("Priority() = %d, want 32", got)
	}

	e.CreatedAt = testNow.Add(-1000 * time.Hour)
	e.LoyaltyTier = customerEntity.LoyaltyTierNone
	e.Rank = 0
	if got := Priority(e, testNow); got != 48 {
		t.Errorf("Priority() = %d, want wait points capped at 48", got)
	}

	if got := WaitPoints(testNow, testNow.Add(-time.Hour)); got != 0 {
		t.Errorf("WaitPoints() with future createdAt = %d, want 0", got)
	}
}

func TestMatchScoreBonuses(t *testing.T) {
	up := tableEntity.FloorUpstairs
	e := entity.WaitlistEntry{Preferences: entity.Preferences{PreferredTime: "19:00", Floor: &up}}
	e.CreatedAt = testNow

	cases := []struct {
		slot  string
		floor tableEntity.Floor
		want  int
	}{
		{"19:00", tableEntity.FloorUpstairs, 30},
		{"19:30", tableEntity.FloorUpstairs, 28},
		{"19:30", tableEntity.FloorDownstairs, 18},
		{"01:00", tableEntity.FloorDownstairs, 0},
	}
	for _, tc := range cases {
		if got := MatchScore(e, tc.slot, tc.floor, testNow); got != tc.want {
			t.Errorf("MatchScore(%s, %s) = %d, want %d", tc.slot, tc.floor, got, tc.want)
		}
	}
}

func TestEnrollValidation(t *testing.T) {
	svc, _ := newTestService(newFakeLimits())

	cases := []*dto.EnrollRequest{
		{PreferredDate: "2026/10/20", PreferredTime: "19:00", PartySize: 2},
		{PreferredDate: "2026-10-20", PreferredTime: "25:00", PartySize: 2},
		{PreferredDate: "2026-10-20", PreferredTime: "19:00", PartySize: 0},
		{PreferredDate: "2026-10-20", PreferredTime: "19:00", PartySize: 2, Floor: "attic"},
		{PreferredDate: "2026-10-20", PreferredTime: "19:00", PartySize: 2, Rank: 11},
		{PreferredDate: "2026-10-20", PreferredTime: "19:00", PartySize: 2, Channels: []string{"fax"}},
	}
	for _, req := range cases {
		if _, err := svc.Enroll(context.Background(), uuid.New(), req); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Enroll(%+v) error = %v, want INVALID_INPUT", req, err)
		}
	}
}

func TestEnrollKeepsChosenChannels(t *testing.T) {
	svc, _ := newTestService(newFakeLimits())
	req := enrollReq(2)
	req.Channels = []string{"sms", "push", "sms"}

	entry, err := svc.Enroll(context.Background(), uuid.New(), req)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if len(entry.Channels) != 2 || entry.Channels[0] != "sms" || entry.Channels[1] != "push" {
		t.Errorf("Channels = %v, want [sms push]", entry.Channels)
	}
}

func TestEnrollRejectedByRiskValidator(t *testing.T) {
	limits := newFakeLimits()
	svc, _ := newTestService(limits)
	customer := uuid.New()
	limits.set(customer, customerEntity.LoyaltyTierNone, 2)

	_, err := svc.Enroll(context.Background(), customer, enrollReq(4))
	if !errors.Is(err, errors.ErrLimitExceeded) {
		t.Fatalf("Enroll() error = %v, want LIMIT_EXCEEDED", err)
	}
	ae, _ := errors.AsAppError(err)
	assessment, ok := ae.Details.(*riskEntity.RiskAssessment)
	if !ok || len(assessment.Violations) == 0 {
		t.Errorf("Details = %#v, want assessment with violations", ae.Details)
	}
	if limits.excess[customer] != 1 {
		t.Errorf("excess attempts = %d, want 1", limits.excess[customer])
	}

	// Gold may override the daily limit.
	limits.set(customer, customerEntity.LoyaltyTierGold, 2)
	if _, err := svc.Enroll(context.Background(), customer, enrollReq(4)); err != nil {
		t.Errorf("Enroll() for gold customer error = %v", err)
	}
}

func TestEnrollDuplicateOpenEntry(t *testing.T) {
	svc, _ := newTestService(newFakeLimits())
	customer := uuid.New()

	first, err := svc.Enroll(context.Background(), customer, enrollReq(2))
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if first.Status != entity.StatusActive || first.ReservationExpiresAt != nil {
		t.Errorf("new entry = %s with window %v, want ACTIVE without window", first.Status, first.ReservationExpiresAt)
	}

	if _, err := svc.Enroll(context.Background(), customer, enrollReq(3)); !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("second Enroll() error = %v, want ALREADY_EXISTS", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), first.ID, entity.StatusActive, entity.StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if _, err := svc.Enroll(context.Background(), customer, enrollReq(3)); err != nil {
		t.Errorf("Enroll() after cancel error = %v", err)
	}
}

func TestUpdateStatusConflict(t *testing.T) {
	svc, _ := newTestService(newFakeLimits())
	entry, err := svc.Enroll(context.Background(), uuid.New(), enrollReq(2))
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), entry.ID, entity.StatusNotified, entity.StatusConverted); !errors.Is(err, errors.ErrStateConflict) {
		t.Errorf("UpdateStatus(wrong from) error = %v, want STATE_CONFLICT", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), entry.ID, entity.StatusActive, entity.StatusConverted); !errors.Is(err, errors.ErrStateConflict) {
		t.Errorf("UpdateStatus(ACTIVE->CONVERTED) error = %v, want STATE_CONFLICT", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), entity.StatusActive, entity.StatusCancelled); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateStatus(unknown) error = %v, want NOT_FOUND", err)
	}

	got, _ := svc.Get(context.Background(), entry.ID)
	if got.Status != entity.StatusActive {
		t.Errorf("status after failed updates = %s, want ACTIVE", got.Status)
	}
}

func TestPositionFollowsPriority(t *testing.T) {
	limits := newFakeLimits()
	svc, _ := newTestService(limits)
	ctx := context.Background()

	plain := uuid.New()
	platinum := uuid.New()
	limits.set(platinum, customerEntity.LoyaltyTierPlatinum, 0)

	first, _ := svc.Enroll(ctx, plain, enrollReq(2))
	second, _ := svc.Enroll(ctx, platinum, enrollReq(2))

	if pos, _ := svc.Position(ctx, second); pos != 1 {
		t.Errorf("platinum position = %d, want 1", pos)
	}
	if pos, _ := svc.Position(ctx, first); pos != 2 {
		t.Errorf("plain position = %d, want 2", pos)
	}

	cancelled, _ := svc.UpdateStatus(ctx, second.ID, entity.StatusActive, entity.StatusCancelled)
	if pos, _ := svc.Position(ctx, cancelled); pos != 0 {
		t.Errorf("cancelled position = %d, want 0", pos)
	}
}

func TestListActiveForSlotRecomputesPriority(t *testing.T) {
	now := testNow
	repo := repository.NewMemoryWaitlistRepository()
	svc := NewWaitlistService(repo, newFakeLimits(), riskService.NewValidator(riskService.DefaultLimits(), nil)).
		WithClock(func() time.Time { return now })
	ctx := context.Background()

	early, _ := svc.Enroll(ctx, uuid.New(), enrollReq(2))
	now = now.Add(time.Hour)
	late, _ := svc.Enroll(ctx, uuid.New(), &dto.EnrollRequest{PreferredDate: "2026-10-20", PreferredTime: "19:00", PartySize: 2, Rank: 1})

	entries, err := svc.ListActiveForSlot(ctx, "2026-10-20", 4, nil)
	if err != nil {
		t.Fatalf("ListActiveForSlot() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListActiveForSlot() returned %d, want 2", len(entries))
	}
	// early waited 60 minutes (6 points), late has rank 1 (5 points).
	if entries[0].ID != early.ID || entries[0].Priority != 6 {
		t.Errorf("first = %v priority %d, want early with 6", entries[0].ID, entries[0].Priority)
	}
	if entries[1].ID != late.ID || entries[1].Priority != 5 {
		t.Errorf("second = %v priority %d, want late with 5", entries[1].ID, entries[1].Priority)
	}

	stored, _ := repo.GetByID(ctx, early.ID)
	if stored.Priority != 6 {
		t.Errorf("stored priority = %d, want persisted 6", stored.Priority)
	}

	if got, _ := svc.ListActiveForSlot(ctx, "2026-10-20", 1, nil); len(got) != 0 {
		t.Errorf("ListActiveForSlot(capacity 1) = %d entries, want 0", len(got))
	}
}

func TestEnrollConcurrent(t *testing.T) {
	const n = 1200
	limits := newFakeLimits()
	svc, _ := newTestService(limits)
	tiers := []customerEntity.LoyaltyTier{
		customerEntity.LoyaltyTierNone,
		customerEntity.LoyaltyTierSilver,
		customerEntity.LoyaltyTierGold,
		customerEntity.LoyaltyTierPlatinum,
	}

	customers := make([]uuid.UUID, n)
	for i := range customers {
		customers[i] = uuid.New()
		limits.set(customers[i], tiers[i%len(tiers)], 0)
	}

	var wg sync.WaitGroup
	results := make([]*entity.WaitlistEntry, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Enroll(context.Background(), customers[i], enrollReq(1+i%6))
		}(i)
	}
	wg.Wait()

	ids := make(map[uuid.UUID]bool, n)
	seqs := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("Enroll(%d) error = %v", i, errs[i])
		}
		if ids[results[i].ID] {
			t.Fatalf("duplicate id %v", results[i].ID)
		}
		if seqs[results[i].Sequence] {
			t.Fatalf("duplicate sequence %d", results[i].Sequence)
		}
		ids[results[i].ID] = true
		seqs[results[i].Sequence] = true
	}

	queue, err := svc.ListActiveForSlot(context.Background(), "2026-10-20", 20, nil)
	if err != nil {
		t.Fatalf("ListActiveForSlot() error = %v", err)
	}
	if len(queue) != n {
		t.Fatalf("queue length = %d, want %d", len(queue), n)
	}
	for i := 1; i < len(queue); i++ {
		if entity.Less(queue[i], queue[i-1]) {
			t.Fatalf("queue out of order at %d: %d/%d after %d/%d", i,
				queue[i].Priority, queue[i].Sequence, queue[i-1].Priority, queue[i-1].Sequence)
		}
	}
	if queue[0].LoyaltyTier != customerEntity.LoyaltyTierPlatinum {
		t.Errorf("head tier = %s, want PLATINUM", queue[0].LoyaltyTier)
	}
}
