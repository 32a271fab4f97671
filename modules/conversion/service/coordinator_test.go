package service

import (
	"context"
	"sync"
	"testing"
	"time"

	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	bookingRepository "venue-booking/modules/booking/repository"
	bookingService "venue-booking/modules/booking/service"
	customerEntity "venue-booking/modules/customer/entity"
	matchingService "venue-booking/modules/matching/service"
	riskEntity "venue-booking/modules/risk/entity"
	riskService "venue-booking/modules/risk/service"
	tableEntity "venue-booking/modules/table/entity"
	tableRepository "venue-booking/modules/table/repository"
	tableService "venue-booking/modules/table/service"
	waitlistDto "venue-booking/modules/waitlist/dto"
	waitlistEntity "venue-booking/modules/waitlist/entity"
	waitlistRepository "venue-booking/modules/waitlist/repository"
	waitlistService "venue-booking/modules/waitlist/service"

	"github.com/google/uuid"
)

var start = time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)

type clock struct {
	mu   sync.Mutex
	now  time.Time
	tick time.Duration
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.tick)
	return now
}

func (c *clock) set(t time.Time, tick time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now, c.tick = t, tick
}

type openLimits struct{}

func (openLimits) LimitRecord(_ context.Context, customerID uuid.UUID, _ string) (*riskEntity.CustomerLimitRecord, error) {
	return &riskEntity.CustomerLimitRecord{CustomerID: customerID, LoyaltyTier: customerEntity.LoyaltyTierNone}, nil
}

func (openLimits) RecordExcessAttempt(context.Context, uuid.UUID) error { return nil }

type fixture struct {
	clock    *clock
	tables   *tableRepository.MemoryTableRepository
	waitlist *waitlistService.WaitlistService
	bookings *bookingRepository.MemoryBookingRepository
	engine   *matchingService.Engine
	coord    *Coordinator
}

func newFixture(policy Policy, tables ...tableEntity.Table) *fixture {
	clk := &clock{now: start}
	tableRepo := tableRepository.NewMemoryTableRepository(tables...)
	tableSvc := tableService.NewTableService(tableRepo, nil)
	risk := riskService.NewValidator(riskService.DefaultLimits(), nil)
	wl := waitlistService.NewWaitlistService(waitlistRepository.NewMemoryWaitlistRepository(), openLimits{}, risk).
		WithClock(clk.Now)
	engine := matchingService.NewEngine(tableSvc, wl, nil, 30*time.Minute)
	bookingRepo := bookingRepository.NewMemoryBookingRepository()
	bookings := bookingService.NewBookingService(bookingRepo, tableSvc, openLimits{}, risk, engine, nil)

	return &fixture{
		clock:    clk,
		tables:   tableRepo,
		waitlist: wl,
		bookings: bookingRepo,
		engine:   engine,
		coord:    NewCoordinator(wl, bookings, tableSvc, engine, policy),
	}
}

func newTable(code string) tableEntity.Table {
	return tableEntity.Table{
		Code: code, Name: code, CapacityMin: 1, CapacityMax: 4,
		Floor:          tableEntity.FloorDownstairs,
		Status:         tableEntity.TableStatusAvailable,
		CombinableWith: coreEntity.IDList{},
		BaseEntity:     coreEntity.BaseEntity{ID: uuid.New()},
	}
}

func (f *fixture) enroll(t *testing.T, preferredTime string) *waitlistEntity.WaitlistEntry {
	t.Helper()
	entry, err := f.waitlist.Enroll(context.Background(), uuid.New(), &waitlistDto.EnrollRequest{
		PreferredDate: "2026-10-20", PreferredTime: preferredTime, PartySize: 2,
	})
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	return entry
}

func (f *fixture) offer(t *testing.T, table tableEntity.Table) *waitlistEntity.WaitlistEntry {
	t.Helper()
	notified, err := f.engine.OnSlotFreed(context.Background(), matchingService.FreedSlot{
		Date: "2026-10-20", TimeSlot: "19:00", TableIDs: []uuid.UUID{table.ID},
	})
	if err != nil || notified == nil {
		t.Fatalf("OnSlotFreed() = %v, %v, want a notified entry", notified, err)
	}
	return notified
}

func (f *fixture) entry(t *testing.T, id uuid.UUID) *waitlistEntity.WaitlistEntry {
	t.Helper()
	e, err := f.waitlist.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return e
}

func (f *fixture) tableStatus(t *testing.T, id uuid.UUID) tableEntity.TableStatus {
	t.Helper()
	tb, err := f.tables.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	return tb.Status
}

func TestConvertIsIdempotent(t *testing.T) {
	table := newTable("t1")
	f := newFixture(Policy{}, table)
	e := f.enroll(t, "19:00")
	f.offer(t, table)
	ctx := context.Background()

	first, err := f.coord.Convert(ctx, e.ID, e.CustomerID)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	second, err := f.coord.Convert(ctx, e.ID, e.CustomerID)
	if err != nil {
		t.Fatalf("second Convert() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Convert() returned bookings %v and %v, want the same", first.ID, second.ID)
	}

	got := f.entry(t, e.ID)
	if got.Status != waitlistEntity.StatusConverted || got.BookingID == nil || *got.BookingID != first.ID {
		t.Errorf("entry = %s booking %v, want CONVERTED with %v", got.Status, got.BookingID, first.ID)
	}
	if got.ReservationExpiresAt != nil {
		t.Errorf("converted entry kept its window")
	}
	if s := f.tableStatus(t, table.ID); s != tableEntity.TableStatusBooked {
		t.Errorf("table = %s, want booked", s)
	}
}

func TestConvertAfterWindow(t *testing.T) {
	table := newTable("t1")
	f := newFixture(Policy{}, table)
	e := f.enroll(t, "19:00")
	f.offer(t, table)

	f.clock.set(start.Add(30*time.Minute), 0)
	_, err := f.coord.Convert(context.Background(), e.ID, e.CustomerID)
	if !errors.Is(err, errors.ErrReservationExpired) {
		t.Errorf("Convert() error = %v, want %s", err, errors.ErrReservationExpired)
	}
	if s := f.entry(t, e.ID).Status; s != waitlistEntity.StatusNotified {
		t.Errorf("entry = %s, want NOTIFIED until the sweep runs", s)
	}
}

func TestConvertRejections(t *testing.T) {
	table := newTable("t1")
	f := newFixture(Policy{}, table)
	waiting := f.enroll(t, "21:00")
	e := f.enroll(t, "19:00")
	f.offer(t, table)
	ctx := context.Background()

	if _, err := f.coord.Convert(ctx, e.ID, uuid.New()); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Convert() by another customer error = %v, want %s", err, errors.ErrNotFound)
	}
	if _, err := f.coord.Convert(ctx, waiting.ID, waiting.CustomerID); !errors.Is(err, errors.ErrStateConflict) {
		t.Errorf("Convert() of a waiting entry error = %v, want %s", err, errors.ErrStateConflict)
	}
	if _, err := f.coord.Cancel(ctx, e.ID, e.CustomerID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, err := f.coord.Convert(ctx, e.ID, e.CustomerID); !errors.Is(err, errors.ErrStateConflict) {
		t.Errorf("Convert() of a cancelled entry error = %v, want %s", err, errors.ErrStateConflict)
	}
}

func TestConvertRacesSweepAtExpiry(t *testing.T) {
	for round := 0; round < 20; round++ {
		table := newTable("t1")
		f := newFixture(Policy{}, table)
		e := f.enroll(t, "19:00")
		f.offer(t, table)

		// Every clock read moves time forward, so the window closes mid-race.
		f.clock.set(start.Add(30*time.Minute-time.Second), 50*time.Millisecond)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			converted int
			swept     int
		)
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := f.coord.Convert(context.Background(), e.ID, e.CustomerID)
				if err != nil && !errors.Is(err, errors.ErrReservationExpired) {
					t.Errorf("Convert() error = %v", err)
				}
				if err == nil {
					mu.Lock()
					converted++
					mu.Unlock()
				}
			}()
			go func() {
				defer wg.Done()
				n, err := f.coord.SweepExpired(context.Background())
				if err != nil {
					t.Errorf("SweepExpired() error = %v", err)
				}
				mu.Lock()
				swept += n
				mu.Unlock()
			}()
		}
		wg.Wait()

		final := f.entry(t, e.ID)
		switch final.Status {
		case waitlistEntity.StatusConverted:
			if swept != 0 || converted == 0 {
				t.Fatalf("round %d: converted entry with %d sweeps and %d conversions", round, swept, converted)
			}
			if s := f.tableStatus(t, table.ID); s != tableEntity.TableStatusBooked {
				t.Fatalf("round %d: converted entry left table %s", round, s)
			}
		case waitlistEntity.StatusExpired:
			if swept != 1 || converted != 0 {
				t.Fatalf("round %d: expired entry with %d sweeps and %d conversions", round, swept, converted)
			}
			if s := f.tableStatus(t, table.ID); s != tableEntity.TableStatusAvailable {
				t.Fatalf("round %d: expired entry left table %s", round, s)
			}
			count, _, _ := f.bookings.CustomerDayStats(context.Background(), e.CustomerID, "2026-10-20")
			if count != 0 {
				t.Fatalf("round %d: expired entry has %d bookings", round, count)
			}
		default:
			if final.Status == waitlistEntity.StatusNotified {
				// Nobody read the clock past expiry before the sweeps finished.
				continue
			}
			t.Fatalf("round %d: entry = %s", round, final.Status)
		}
	}
}

func TestSweepExpiresAndOffersNext(t *testing.T) {
	table := newTable("t1")
	f := newFixture(Policy{}, table)
	first := f.enroll(t, "19:00")
	next := f.enroll(t, "21:00")
	f.offer(t, table)

	f.clock.set(start.Add(31*time.Minute), 0)
	n, err := f.coord.SweepExpired(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("SweepExpired() = %d, %v, want 1", n, err)
	}
	if s := f.entry(t, first.ID).Status; s != waitlistEntity.StatusExpired {
		t.Errorf("first = %s, want EXPIRED", s)
	}
	if s := f.entry(t, next.ID).Status; s != waitlistEntity.StatusNotified {
		t.Errorf("next = %s, want NOTIFIED", s)
	}
	if s := f.tableStatus(t, table.ID); s != tableEntity.TableStatusPending {
		t.Errorf("table = %s, want pending for the next offer", s)
	}

	if n, _ := f.coord.SweepExpired(context.Background()); n != 0 {
		t.Errorf("second SweepExpired() = %d, want 0", n)
	}
}

func TestSweepRequeuesOnce(t *testing.T) {
	table := newTable("t1")
	f := newFixture(Policy{RequeueOnExpiry: true, MaxRequeues: 1}, table)
	e := f.enroll(t, "19:00")
	f.offer(t, table)
	ctx := context.Background()

	f.clock.set(start.Add(31*time.Minute), 0)
	if n, err := f.coord.SweepExpired(ctx); err != nil || n != 1 {
		t.Fatalf("SweepExpired() = %d, %v, want 1", n, err)
	}
	got := f.entry(t, e.ID)
	if got.Status != waitlistEntity.StatusActive || got.RequeueCount != 1 {
		t.Fatalf("entry = %s requeued %d times, want ACTIVE once", got.Status, got.RequeueCount)
	}
	if s := f.tableStatus(t, table.ID); s != tableEntity.TableStatusAvailable {
		t.Errorf("table = %s, want available: the lapsed entry is not offered the same slot", s)
	}
	if _, err := f.coord.Convert(ctx, e.ID, e.CustomerID); !errors.Is(err, errors.ErrReservationExpired) {
		t.Errorf("Convert() of a requeued entry error = %v, want %s", err, errors.ErrReservationExpired)
	}

	f.offer(t, table)
	f.clock.set(start.Add(62*time.Minute), 0)
	if n, _ := f.coord.SweepExpired(ctx); n != 1 {
		t.Fatalf("second SweepExpired() = %d, want 1", n)
	}
	if s := f.entry(t, e.ID).Status; s != waitlistEntity.StatusExpired {
		t.Errorf("entry = %s, want EXPIRED after the last requeue", s)
	}
}

func TestCancelNotifiedOffersNext(t *testing.T) {
	table := newTable("t1")
	f := newFixture(Policy{}, table)
	first := f.enroll(t, "19:00")
	next := f.enroll(t, "21:00")
	f.offer(t, table)
	ctx := context.Background()

	cancelled, err := f.coord.Cancel(ctx, first.ID, first.CustomerID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Status != waitlistEntity.StatusCancelled || cancelled.ReservationExpiresAt != nil {
		t.Errorf("cancelled = %s window %v, want CANCELLED without window", cancelled.Status, cancelled.ReservationExpiresAt)
	}
	if s := f.entry(t, next.ID).Status; s != waitlistEntity.StatusNotified {
		t.Errorf("next = %s, want NOTIFIED", s)
	}

	if _, err := f.coord.Cancel(ctx, first.ID, first.CustomerID); !errors.Is(err, errors.ErrStateConflict) {
		t.Errorf("second Cancel() error = %v, want %s", err, errors.ErrStateConflict)
	}
}

func TestCancelActive(t *testing.T) {
	f := newFixture(Policy{})
	e := f.enroll(t, "19:00")

	if _, err := f.coord.Cancel(context.Background(), e.ID, e.CustomerID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if s := f.entry(t, e.ID).Status; s != waitlistEntity.StatusCancelled {
		t.Errorf("entry = %s, want CANCELLED", s)
	}
}
