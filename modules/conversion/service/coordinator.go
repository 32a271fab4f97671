package service

import (
	"context"
	"time"

	"venue-booking/core/errors"
	"venue-booking/core/logger"
	bookingEntity "venue-booking/modules/booking/entity"
	matchingService "venue-booking/modules/matching/service"
	waitlistEntity "venue-booking/modules/waitlist/entity"

	"github.com/google/uuid"
)

const DefaultSweepBatch = 500

type Waitlist interface {
	GetForCustomer(ctx context.Context, id, customerID uuid.UUID) (*waitlistEntity.WaitlistEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*waitlistEntity.WaitlistEntry, error)
	Transition(ctx context.Context, req waitlistEntity.TransitionRequest) (*waitlistEntity.WaitlistEntry, error)
	ListExpired(ctx context.Context, limit int) ([]waitlistEntity.WaitlistEntry, error)
	AttachBooking(ctx context.Context, id, bookingID uuid.UUID) error
	Now() time.Time
}

type Booker interface {
	CreateForWaitlist(ctx context.Context, entry *waitlistEntity.WaitlistEntry) (*bookingEntity.Booking, error)
}

type TableReleaser interface {
	Release(ctx context.Context, ids []uuid.UUID) error
}

type SlotMatcher interface {
	OnSlotFreed(ctx context.Context, slot matchingService.FreedSlot) (*waitlistEntity.WaitlistEntry, error)
}

// Policy decides what happens to an entry whose window lapsed.
type Policy struct {
	RequeueOnExpiry bool
	MaxRequeues     int
	SweepBatch      int
}

type Coordinator struct {
	waitlist Waitlist
	booker   Booker
	tables   TableReleaser
	matcher  SlotMatcher
	policy   Policy
}

func NewCoordinator(waitlist Waitlist, booker Booker, tables TableReleaser, matcher SlotMatcher, policy Policy) *Coordinator {
	if policy.SweepBatch <= 0 {
		policy.SweepBatch = DefaultSweepBatch
	}
	return &Coordinator{
		waitlist: waitlist,
		booker:   booker,
		tables:   tables,
		matcher:  matcher,
		policy:   policy,
	}
}

func reservationExpired() error {
	return errors.NewAppError(errors.ErrReservationExpired, "Reservation window has closed", nil)
}

// Convert turns an open offer into a booking. Calling it again for a converted entry
// returns the same booking.
func (c *Coordinator) Convert(ctx context.Context, entryID, customerID uuid.UUID) (*bookingEntity.Booking, error) {
	entry, err := c.waitlist.GetForCustomer(ctx, entryID, customerID)
	if err != nil {
		return nil, err
	}

	now := c.waitlist.Now()
	if entry.Status == waitlistEntity.StatusNotified && !entry.HasWindow(now) {
		return nil, reservationExpired()
	}
	if entry.Status != waitlistEntity.StatusNotified && entry.Status != waitlistEntity.StatusConverted {
		return nil, convertRejection(entry)
	}

	if entry.Status == waitlistEntity.StatusNotified {
		converted, err := c.waitlist.Transition(ctx, waitlistEntity.TransitionRequest{
			ID:           entry.ID,
			From:         waitlistEntity.StatusNotified,
			To:           waitlistEntity.StatusConverted,
			Now:          now,
			WindowOpenAt: &now,
		})
		if err != nil {
			if !errors.Is(err, errors.ErrStateConflict) {
				return nil, err
			}
			// Lost the race: the sweep expired the offer, or another request converted it.
			current, getErr := c.waitlist.Get(ctx, entry.ID)
			if getErr != nil {
				return nil, getErr
			}
			if current.Status != waitlistEntity.StatusConverted {
				logger.Info("Coordinator:Convert:Lost", "entry_id", entry.ID, "status", current.Status)
				if current.Status == waitlistEntity.StatusNotified {
					return nil, reservationExpired()
				}
				return nil, convertRejection(current)
			}
			converted = current
		}
		entry = converted
	}

	return c.finish(ctx, entry)
}

func convertRejection(entry *waitlistEntity.WaitlistEntry) error {
	switch entry.Status {
	case waitlistEntity.StatusExpired:
		return reservationExpired()
	case waitlistEntity.StatusActive:
		if entry.RequeueCount > 0 {
			return reservationExpired()
		}
		return errors.NewStateConflict("Waitlist entry has no open offer")
	default:
		return errors.NewStateConflict("Waitlist entry is " + string(entry.Status))
	}
}

func (c *Coordinator) finish(ctx context.Context, entry *waitlistEntity.WaitlistEntry) (*bookingEntity.Booking, error) {
	booking, err := c.booker.CreateForWaitlist(ctx, entry)
	if err != nil {
		logger.Error("Coordinator:Convert:Booking:Error:", err, "entry_id", entry.ID)
		return nil, err
	}

	if entry.BookingID == nil || *entry.BookingID != booking.ID {
		if err := c.waitlist.AttachBooking(ctx, entry.ID, booking.ID); err != nil {
			logger.Warn("Coordinator:Convert:AttachBooking:Error:", err, "entry_id", entry.ID)
		}
	}

	logger.Info("Coordinator:Convert", "entry_id", entry.ID, "booking_id", booking.ID, "code", booking.Code)
	return booking, nil
}

// SweepExpired closes lapsed offers and hands their tables back to matching.
// It returns how many entries it closed.
func (c *Coordinator) SweepExpired(ctx context.Context) (int, error) {
	entries, err := c.waitlist.ListExpired(ctx, c.policy.SweepBatch)
	if err != nil {
		logger.Error("Coordinator:SweepExpired:List:Error:", err)
		return 0, err
	}

	closed := 0
	for i := range entries {
		e := entries[i]
		now := c.waitlist.Now()

		to := waitlistEntity.StatusExpired
		if c.policy.RequeueOnExpiry && e.RequeueCount < c.policy.MaxRequeues {
			to = waitlistEntity.StatusActive
		}

		_, err := c.waitlist.Transition(ctx, waitlistEntity.TransitionRequest{
			ID:             e.ID,
			From:           waitlistEntity.StatusNotified,
			To:             to,
			Now:            now,
			WindowClosedAt: &now,
		})
		if errors.Is(err, errors.ErrStateConflict) || errors.Is(err, errors.ErrNotFound) {
			logger.Debug("Coordinator:SweepExpired:Skipped", "entry_id", e.ID)
			continue
		}
		if err != nil {
			logger.Error("Coordinator:SweepExpired:Transition:Error:", err, "entry_id", e.ID)
			continue
		}
		closed++
		logger.Info("Coordinator:SweepExpired", "entry_id", e.ID, "status", to)

		c.freeHeld(ctx, &e)
	}
	return closed, nil
}

// Cancel withdraws an ACTIVE or NOTIFIED entry. Held tables go back to matching.
func (c *Coordinator) Cancel(ctx context.Context, entryID, customerID uuid.UUID) (*waitlistEntity.WaitlistEntry, error) {
	entry, err := c.waitlist.GetForCustomer(ctx, entryID, customerID)
	if err != nil {
		return nil, err
	}
	if entry.Status != waitlistEntity.StatusActive && entry.Status != waitlistEntity.StatusNotified {
		return nil, errors.NewStateConflict("Waitlist entry is " + string(entry.Status))
	}

	cancelled, err := c.waitlist.Transition(ctx, waitlistEntity.TransitionRequest{
		ID:   entry.ID,
		From: entry.Status,
		To:   waitlistEntity.StatusCancelled,
		Now:  c.waitlist.Now(),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Coordinator:Cancel", "entry_id", entry.ID, "from", entry.Status)

	if entry.Status == waitlistEntity.StatusNotified {
		c.freeHeld(ctx, entry)
	}
	return cancelled, nil
}

// freeHeld releases the tables an offer held and runs a matching pass over them.
func (c *Coordinator) freeHeld(ctx context.Context, entry *waitlistEntity.WaitlistEntry) {
	if len(entry.AssignedTableIDs) == 0 {
		return
	}
	if err := c.tables.Release(ctx, entry.AssignedTableIDs); err != nil {
		logger.Error("Coordinator:Release:Error:", err, "entry_id", entry.ID)
		return
	}
	if c.matcher == nil {
		return
	}

	notified, err := c.matcher.OnSlotFreed(ctx, matchingService.FreedSlot{
		Date:     entry.PreferredDate,
		TimeSlot: entry.AssignedTimeSlot,
		TableIDs: entry.AssignedTableIDs,
		Skip:     []uuid.UUID{entry.ID},
	})
	if err != nil {
		logger.Error("Coordinator:Rematch:Error:", err, "entry_id", entry.ID)
		return
	}
	if notified != nil {
		logger.Info("Coordinator:Rematch", "from_entry", entry.ID, "to_entry", notified.ID)
	}
}
