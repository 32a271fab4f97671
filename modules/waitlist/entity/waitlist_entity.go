package entity

import (
	"sort"
	"time"

	"venue-booking/core/entity"
	customerEntity "venue-booking/modules/customer/entity"
	tableEntity "venue-booking/modules/table/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Preferences struct {
	PreferredDate string             `db:"preferred_date" json:"preferred_date"`
	PreferredTime string             `db:"preferred_time" json:"preferred_time"`
	PartySize     int                `db:"party_size" json:"party_size"`
	Floor         *tableEntity.Floor `db:"floor" json:"floor,omitempty"`
	// Channels narrows how an offer reaches the customer. Empty means every configured channel.
	Channels pq.StringArray `db:"notify_channels" json:"notify_channels,omitempty"`
}

type WaitlistEntry struct {
	Sequence             int64                      `db:"seq" json:"-"`
	CustomerID           uuid.UUID                  `db:"customer_id" json:"customer_id"`
	Preferences          `json:"preferences"`
	Rank                 int                        `db:"rank" json:"rank"`
	LoyaltyTier          customerEntity.LoyaltyTier `db:"loyalty_tier" json:"loyalty_tier"`
	Priority             int                        `db:"priority" json:"priority"`
	Status               Status                     `db:"status" json:"status"`
	NotifiedAt           *time.Time                 `db:"notified_at" json:"notified_at,omitempty"`
	ReservationExpiresAt *time.Time                 `db:"reservation_expires_at" json:"reservation_expires_at,omitempty"`
	AssignedTableIDs     entity.IDList              `db:"assigned_table_ids" json:"assigned_table_ids,omitempty"`
	AssignedTimeSlot     string                     `db:"assigned_time_slot" json:"assigned_time_slot,omitempty"`
	RequeueCount         int                        `db:"requeue_count" json:"requeue_count"`
	BookingID            *uuid.UUID                 `db:"booking_id" json:"booking_id,omitempty"`
	entity.BaseEntity
}

// HasWindow reports whether the reservation window is open at now.
func (e WaitlistEntry) HasWindow(now time.Time) bool {
	return e.Status == StatusNotified && e.ReservationExpiresAt != nil && now.Before(*e.ReservationExpiresAt)
}

// TransitionRequest describes a conditional status change. The store applies it only
// when the entry is currently in From (and the guards hold); otherwise nothing changes.
type TransitionRequest struct {
	ID   uuid.UUID
	From Status
	To   Status
	Now  time.Time

	// Required when To is NOTIFIED.
	ReservationExpiresAt *time.Time
	AssignedTableIDs     entity.IDList
	AssignedTimeSlot     string

	// WindowOpenAt requires reservation_expires_at > WindowOpenAt.
	WindowOpenAt *time.Time
	// WindowClosedAt requires reservation_expires_at <= WindowClosedAt.
	WindowClosedAt *time.Time
}

// Apply mutates e the way the store does for an accepted request.
func (e *WaitlistEntry) Apply(req TransitionRequest) {
	switch req.To {
	case StatusNotified:
		now := req.Now
		e.NotifiedAt = &now
		exp := *req.ReservationExpiresAt
		e.ReservationExpiresAt = &exp
		e.AssignedTableIDs = append(entity.IDList{}, req.AssignedTableIDs...)
		e.AssignedTimeSlot = req.AssignedTimeSlot
	case StatusActive:
		e.ReservationExpiresAt = nil
		e.AssignedTableIDs = entity.IDList{}
		e.AssignedTimeSlot = ""
		e.RequeueCount++
	default:
		e.ReservationExpiresAt = nil
	}
	e.Status = req.To
	e.UpdatedAt = req.Now
}

// GuardsHold checks the window guards of req against e.
func (e WaitlistEntry) GuardsHold(req TransitionRequest) bool {
	if req.WindowOpenAt != nil {
		if e.ReservationExpiresAt == nil || !e.ReservationExpiresAt.After(*req.WindowOpenAt) {
			return false
		}
	}
	if req.WindowClosedAt != nil {
		if e.ReservationExpiresAt == nil || e.ReservationExpiresAt.After(*req.WindowClosedAt) {
			return false
		}
	}
	return true
}

// Less orders by priority desc, then createdAt asc, then enrollment sequence.
func Less(a, b WaitlistEntry) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Sequence < b.Sequence
}

func SortByPriority(entries []WaitlistEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}
