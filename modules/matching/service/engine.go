package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"venue-booking/core/constants"
	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/core/utils"
	tableEntity "venue-booking/modules/table/entity"
	waitlistEntity "venue-booking/modules/waitlist/entity"
	waitlistService "venue-booking/modules/waitlist/service"

	"github.com/google/uuid"
)

const DefaultReservationWindow = 30 * time.Minute

type TableHolder interface {
	GetTables(ctx context.Context, ids []uuid.UUID) ([]tableEntity.Table, error)
	Hold(ctx context.Context, ids []uuid.UUID) error
	Release(ctx context.Context, ids []uuid.UUID) error
}

type Waitlist interface {
	ListActiveForSlot(ctx context.Context, date string, capacity int, floor *tableEntity.Floor) ([]waitlistEntity.WaitlistEntry, error)
	Transition(ctx context.Context, req waitlistEntity.TransitionRequest) (*waitlistEntity.WaitlistEntry, error)
	Now() time.Time
}

// Dispatcher hands a notified entry to the delivery pipeline. It must not block on delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, entry *waitlistEntity.WaitlistEntry) error
}

// FreedSlot is a set of tables that became bookable for a date and time.
type FreedSlot struct {
	Date     string
	TimeSlot string
	TableIDs []uuid.UUID
	// Skip lists entries that must not be offered this slot, such as one whose window just lapsed.
	Skip []uuid.UUID
}

type Engine struct {
	tables     TableHolder
	waitlist   Waitlist
	dispatcher Dispatcher
	window     time.Duration
}

func NewEngine(tables TableHolder, waitlist Waitlist, dispatcher Dispatcher, window time.Duration) *Engine {
	if window <= 0 {
		window = DefaultReservationWindow
	}
	return &Engine{
		tables:     tables,
		waitlist:   waitlist,
		dispatcher: dispatcher,
		window:     window,
	}
}

// OnSlotFreed offers the slot to the best ACTIVE waitlist entry. The tables are held
// (available -> pending) before any entry is claimed, so concurrent passes over the
// same slot produce at most one NOTIFIED entry. It returns nil when nobody was notified.
func (e *Engine) OnSlotFreed(ctx context.Context, slot FreedSlot) (*waitlistEntity.WaitlistEntry, error) {
	if err := utils.ValidateDate(slot.Date); err != nil {
		return nil, err
	}
	if err := utils.ValidateTimeSlot(slot.TimeSlot); err != nil {
		return nil, err
	}
	if len(slot.TableIDs) == 0 || len(slot.TableIDs) > 2 {
		return nil, errors.NewValidationError("a slot has one or two tables")
	}

	tables, err := e.tables.GetTables(ctx, slot.TableIDs)
	if err != nil {
		return nil, err
	}
	if len(tables) != len(slot.TableIDs) {
		return nil, errors.NewNotFound("Table not found")
	}

	if err := e.tables.Hold(ctx, slot.TableIDs); err != nil {
		if errors.Is(err, errors.ErrStateConflict) {
			logger.Debug("MatchingEngine:OnSlotFreed:SlotTaken", "date", slot.Date, "tables", slot.TableIDs)
			return nil, nil
		}
		return nil, err
	}

	capacity := 0
	for _, t := range tables {
		capacity += t.CapacityMax
	}
	floor := sharedFloor(tables)

	candidates, err := e.waitlist.ListActiveForSlot(ctx, slot.Date, capacity, nil)
	if err != nil {
		e.release(ctx, slot.TableIDs)
		return nil, err
	}

	now := e.waitlist.Now()
	rankCandidates(candidates, slot.TimeSlot, floor, now)

	for _, candidate := range candidates {
		if coreEntity.IDList(slot.Skip).Contains(candidate.ID) || !seats(tables, candidate.PartySize) {
			continue
		}
		assigned, rest := assignTables(tables, candidate.PartySize)
		expires := now.Add(e.window)

		notified, err := e.waitlist.Transition(ctx, waitlistEntity.TransitionRequest{
			ID:                   candidate.ID,
			From:                 waitlistEntity.StatusActive,
			To:                   waitlistEntity.StatusNotified,
			Now:                  now,
			ReservationExpiresAt: &expires,
			AssignedTableIDs:     assigned,
			AssignedTimeSlot:     slot.TimeSlot,
		})
		if err != nil {
			if errors.Is(err, errors.ErrStateConflict) || errors.Is(err, errors.ErrNotFound) {
				logger.Debug("MatchingEngine:OnSlotFreed:CandidateLost", "entry_id", candidate.ID)
				continue
			}
			e.release(ctx, slot.TableIDs)
			return nil, err
		}

		logger.Info("MatchingEngine:OnSlotFreed:Notified",
			"entry_id", notified.ID,
			"customer_id", notified.CustomerID,
			"date", slot.Date,
			"time_slot", slot.TimeSlot,
			"tables", assigned.Strings(),
			"expires_at", expires,
		)

		if e.dispatcher != nil {
			if err := e.dispatcher.Dispatch(ctx, notified); err != nil {
				logger.Error("MatchingEngine:OnSlotFreed:Dispatch:Error:", err, "entry_id", notified.ID)
			}
		}

		if len(rest) > 0 {
			e.release(ctx, rest)
			if _, err := e.OnSlotFreed(ctx, FreedSlot{Date: slot.Date, TimeSlot: slot.TimeSlot, TableIDs: rest, Skip: slot.Skip}); err != nil {
				logger.Warn("MatchingEngine:OnSlotFreed:Rematch:Error:", err)
			}
		}
		return notified, nil
	}

	e.release(ctx, slot.TableIDs)
	logger.Debug("MatchingEngine:OnSlotFreed:NoCandidate", "date", slot.Date, "candidates", len(candidates))
	return nil, nil
}

func (e *Engine) release(ctx context.Context, ids []uuid.UUID) {
	if err := e.tables.Release(ctx, ids); err != nil {
		logger.Error("MatchingEngine:Release:Error:", err, "tables", fmt.Sprint(ids))
	}
}

// rankCandidates orders by match score, then by the waitlist tiebreak.
func rankCandidates(entries []waitlistEntity.WaitlistEntry, timeSlot string, floor tableEntity.Floor, now time.Time) {
	scores := make(map[uuid.UUID]int, len(entries))
	for _, c := range entries {
		scores[c.ID] = waitlistService.MatchScore(c, timeSlot, floor, now)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		si, sj := scores[entries[i].ID], scores[entries[j].ID]
		if si != sj {
			return si > sj
		}
		return waitlistEntity.Less(entries[i], entries[j])
	})
}

// seats applies the resolver's rules to a freed slot: a single table must fit the party
// within its capacity range, and tables are only combined for parties above
// CombinedSearchAbove when none of them fits alone.
func seats(tables []tableEntity.Table, partySize int) bool {
	capacity := 0
	for _, t := range tables {
		if t.Fits(partySize) {
			return true
		}
		capacity += t.CapacityMax
	}
	return len(tables) > 1 && partySize > constants.CombinedSearchAbove && partySize <= capacity
}

// assignTables gives a party the tightest single table of a combined slot when one
// seats it alone, and returns the tables left over.
func assignTables(tables []tableEntity.Table, partySize int) (coreEntity.IDList, []uuid.UUID) {
	all := coreEntity.IDList(tableEntity.TableIDs(tables))
	if len(tables) < 2 {
		return all, nil
	}

	best := -1
	for i, t := range tables {
		if !t.Fits(partySize) {
			continue
		}
		if best < 0 || t.CapacityMax < tables[best].CapacityMax {
			best = i
		}
	}
	if best < 0 {
		return all, nil
	}

	var rest []uuid.UUID
	for i, t := range tables {
		if i != best {
			rest = append(rest, t.ID)
		}
	}
	return coreEntity.IDList{tables[best].ID}, rest
}

func sharedFloor(tables []tableEntity.Table) tableEntity.Floor {
	if len(tables) == 0 {
		return ""
	}
	floor := tables[0].Floor
	for _, t := range tables[1:] {
		if t.Floor != floor {
			return ""
		}
	}
	return floor
}
