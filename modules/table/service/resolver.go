package service

import (
	"sort"

	"venue-booking/core/constants"
	coreEntity "venue-booking/core/entity"
	"venue-booking/modules/table/entity"
)

// Resolver turns a table snapshot into bookable slots. It has no side effects.
type Resolver struct {
	// CombineAbove is the party size above which combined tables are searched.
	CombineAbove int
	Strategy     CombinationStrategy
}

func NewResolver() *Resolver {
	return &Resolver{
		CombineAbove: constants.CombinedSearchAbove,
		Strategy:     PairwiseStrategy{},
	}
}

type ResolveInput struct {
	Date      string
	TimeSlot  string
	PartySize int
	Floor     *entity.Floor
}

// Resolve returns single-table slots ordered by tightest fit, or combined
// slots when no single table fits a party larger than CombineAbove.
func (r *Resolver) Resolve(snapshot []entity.Table, in ResolveInput) []entity.AvailabilitySlot {
	// 1. Available tables, optionally on the requested floor
	candidates := make([]entity.Table, 0, len(snapshot))
	for _, t := range snapshot {
		if t.Status != entity.TableStatusAvailable {
			continue
		}
		if t.CapacityMin > t.CapacityMax {
			continue
		}
		if in.Floor != nil && t.Floor != *in.Floor {
			continue
		}
		candidates = append(candidates, t)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Code < candidates[j].Code
	})

	// 2. Single tables
	singles := make([]entity.AvailabilitySlot, 0)
	for _, t := range candidates {
		if !t.Fits(in.PartySize) {
			continue
		}
		singles = append(singles, entity.AvailabilitySlot{
			Date:     in.Date,
			TimeSlot: in.TimeSlot,
			TableIDs: coreEntity.IDList{t.ID},
			Capacity: t.CapacityMax,
			Floor:    t.Floor,
			Excess:   t.CapacityMax - in.PartySize,
		})
	}
	if len(singles) > 0 {
		sortByExcess(singles)
		return singles
	}

	if in.PartySize <= r.CombineAbove || r.Strategy == nil {
		return singles
	}

	// 3. Combinations, each unordered group once
	seen := make(map[string]struct{})
	combined := make([]entity.AvailabilitySlot, 0)
	for _, group := range r.Strategy.Combine(candidates, in.PartySize) {
		slot := combinedSlot(group, in)
		if slot.Capacity < in.PartySize {
			continue
		}
		key := slot.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		combined = append(combined, slot)
	}
	sortByExcess(combined)
	return combined
}

func combinedSlot(group []entity.Table, in ResolveInput) entity.AvailabilitySlot {
	sort.Slice(group, func(i, j int) bool { return group[i].Code < group[j].Code })

	slot := entity.AvailabilitySlot{
		Date:     in.Date,
		TimeSlot: in.TimeSlot,
		TableIDs: make(coreEntity.IDList, 0, len(group)),
		Floor:    group[0].Floor,
	}
	for _, t := range group {
		slot.TableIDs = append(slot.TableIDs, t.ID)
		slot.Capacity += t.CapacityMax
		if t.Floor != slot.Floor {
			slot.Floor = ""
		}
	}
	slot.Excess = slot.Capacity - in.PartySize
	return slot
}

func sortByExcess(slots []entity.AvailabilitySlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Excess < slots[j].Excess
	})
}
