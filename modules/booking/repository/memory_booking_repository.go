package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/modules/booking/entity"

	"github.com/google/uuid"
)

type MemoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]entity.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[uuid.UUID]entity.Booking)}
}

func (r *MemoryBookingRepository) Create(_ context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.ID == booking.ID || b.Code == booking.Code {
			return errors.NewAppError(errors.ErrAlreadyExists, "Booking already exists", nil)
		}
		if booking.WaitlistEntryID != nil && b.WaitlistEntryID != nil && *b.WaitlistEntryID == *booking.WaitlistEntryID {
			return errors.NewAppError(errors.ErrAlreadyExists, "Booking already exists", nil)
		}
	}
	r.bookings[booking.ID] = cloneBooking(*booking)
	return nil
}

func (r *MemoryBookingRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, errors.NewNotFound("Booking not found")
	}
	out := cloneBooking(b)
	return &out, nil
}

func (r *MemoryBookingRepository) GetByWaitlistEntry(_ context.Context, entryID uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.WaitlistEntryID != nil && *b.WaitlistEntryID == entryID {
			out := cloneBooking(b)
			return &out, nil
		}
	}
	return nil, errors.NewNotFound("Booking not found")
}

func (r *MemoryBookingRepository) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].TimeSlot > out[j].TimeSlot
	})
	return out, nil
}

func (r *MemoryBookingRepository) Cancel(_ context.Context, id uuid.UUID, now time.Time) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, errors.NewNotFound("Booking not found")
	}
	if b.Status != entity.StatusConfirmed {
		return nil, errors.NewStateConflict("Booking is already cancelled")
	}
	b.Status = entity.StatusCancelled
	b.UpdatedAt = now
	r.bookings[id] = b

	out := cloneBooking(b)
	return &out, nil
}

func (r *MemoryBookingRepository) CustomerDayStats(_ context.Context, customerID uuid.UUID, date string) (int, []uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	var tables []uuid.UUID
	for _, b := range r.bookings {
		if b.CustomerID == customerID && b.Date == date && b.Status == entity.StatusConfirmed {
			count++
			tables = append(tables, b.TableIDs...)
		}
	}
	return count, tables, nil
}

func cloneBooking(b entity.Booking) entity.Booking {
	out := b
	out.TableIDs = append(coreEntity.IDList{}, b.TableIDs...)
	if b.WaitlistEntryID != nil {
		id := *b.WaitlistEntryID
		out.WaitlistEntryID = &id
	}
	return out
}
