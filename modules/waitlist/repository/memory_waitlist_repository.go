package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	tableEntity "venue-booking/modules/table/entity"
	"venue-booking/modules/waitlist/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MemoryWaitlistRepository is the in-process store. Transition compares and writes
// under one lock, which gives it the same single-winner behaviour as the
// conditional UPDATE in WaitlistRepository.
type MemoryWaitlistRepository struct {
	mu      sync.Mutex
	seq     int64
	entries map[uuid.UUID]entity.WaitlistEntry
}

func NewMemoryWaitlistRepository() *MemoryWaitlistRepository {
	return &MemoryWaitlistRepository{entries: make(map[uuid.UUID]entity.WaitlistEntry)}
}

func (r *MemoryWaitlistRepository) Create(_ context.Context, entry *entity.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.ID]; ok {
		return errors.NewAppError(errors.ErrAlreadyExists, "Waitlist entry already exists", nil)
	}
	for _, e := range r.entries {
		if e.CustomerID == entry.CustomerID && e.PreferredDate == entry.PreferredDate &&
			(e.Status == entity.StatusActive || e.Status == entity.StatusNotified) {
			return errors.NewAppError(errors.ErrAlreadyExists, "Customer already has an open waitlist entry for this date", nil)
		}
	}

	r.seq++
	entry.Sequence = r.seq
	if entry.AssignedTableIDs == nil {
		entry.AssignedTableIDs = coreEntity.IDList{}
	}
	r.entries[entry.ID] = cloneEntry(*entry)
	return nil
}

func (r *MemoryWaitlistRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, errors.NewNotFound("Waitlist entry not found")
	}
	out := cloneEntry(e)
	return &out, nil
}

func (r *MemoryWaitlistRepository) ListActiveForSlot(_ context.Context, date string, capacity int, floor *tableEntity.Floor) ([]entity.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.WaitlistEntry
	for _, e := range r.entries {
		if e.Status != entity.StatusActive || e.PreferredDate != date || e.PartySize > capacity {
			continue
		}
		if floor != nil && e.Floor != nil && *e.Floor != *floor {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	entity.SortByPriority(out)
	return out, nil
}

func (r *MemoryWaitlistRepository) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]entity.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.WaitlistEntry
	for _, e := range r.entries {
		if e.CustomerID == customerID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	return out, nil
}

func (r *MemoryWaitlistRepository) ListExpired(_ context.Context, now time.Time, limit int) ([]entity.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.WaitlistEntry
	for _, e := range r.entries {
		if e.Status == entity.StatusNotified && e.ReservationExpiresAt != nil && !e.ReservationExpiresAt.After(now) {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservationExpiresAt.Before(*out[j].ReservationExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryWaitlistRepository) Transition(_ context.Context, req entity.TransitionRequest) (*entity.WaitlistEntry, error) {
	if !req.From.CanTransitionTo(req.To) {
		return nil, errors.NewAppError(errors.ErrStateConflict, "Invalid waitlist status transition",
			&entity.InvalidTransitionError{From: req.From, To: req.To})
	}
	if req.To == entity.StatusNotified && req.ReservationExpiresAt == nil {
		return nil, errors.NewValidationError("reservation window is required when notifying")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[req.ID]
	if !ok {
		return nil, errors.NewNotFound("Waitlist entry not found")
	}
	if e.Status != req.From || !e.GuardsHold(req) {
		return nil, errors.NewStateConflict(fmt.Sprintf("Waitlist entry is no longer %s", req.From))
	}

	e.Apply(req)
	r.entries[req.ID] = e
	out := cloneEntry(e)
	return &out, nil
}

func (r *MemoryWaitlistRepository) AttachBooking(_ context.Context, id uuid.UUID, bookingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return errors.NewNotFound("Waitlist entry not found")
	}
	if e.Status != entity.StatusConverted {
		return errors.NewStateConflict("Waitlist entry is not converted")
	}
	e.BookingID = &bookingID
	r.entries[id] = e
	return nil
}

func (r *MemoryWaitlistRepository) UpdatePriorities(_ context.Context, priorities map[uuid.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range priorities {
		if e, ok := r.entries[id]; ok && e.Status == entity.StatusActive {
			e.Priority = p
			r.entries[id] = e
		}
	}
	return nil
}

func cloneEntry(e entity.WaitlistEntry) entity.WaitlistEntry {
	out := e
	out.AssignedTableIDs = append(coreEntity.IDList{}, e.AssignedTableIDs...)
	out.Channels = append(pq.StringArray{}, e.Channels...)
	if e.Floor != nil {
		f := *e.Floor
		out.Floor = &f
	}
	if e.NotifiedAt != nil {
		t := *e.NotifiedAt
		out.NotifiedAt = &t
	}
	if e.ReservationExpiresAt != nil {
		t := *e.ReservationExpiresAt
		out.ReservationExpiresAt = &t
	}
	if e.BookingID != nil {
		id := *e.BookingID
		out.BookingID = &id
	}
	return out
}
