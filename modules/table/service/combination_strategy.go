package service

import (
	"venue-booking/modules/table/entity"
)

// CombinationStrategy finds multi-table groupings for a party no single table seats.
// Candidates are already filtered to available tables.
type CombinationStrategy interface {
	Combine(candidates []entity.Table, partySize int) [][]entity.Table
}

// PairwiseStrategy enumerates unordered pairs. Adequate for venues of a few dozen tables.
type PairwiseStrategy struct{}

func (PairwiseStrategy) Combine(candidates []entity.Table, partySize int) [][]entity.Table {
	var groups [][]entity.Table
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if !a.CombinesWith(b) {
				continue
			}
			if a.CapacityMax+b.CapacityMax < partySize {
				continue
			}
			groups = append(groups, []entity.Table{a, b})
		}
	}
	return groups
}
