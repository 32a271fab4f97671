package service

import (
	"time"

	"venue-booking/core/constants"
	"venue-booking/core/utils"
	customerEntity "venue-booking/modules/customer/entity"
	tableEntity "venue-booking/modules/table/entity"
	"venue-booking/modules/waitlist/entity"
)

func TierWeight(tier customerEntity.LoyaltyTier) int {
	switch tier {
	case customerEntity.LoyaltyTierSilver:
		return constants.TierWeightSilver
	case customerEntity.LoyaltyTierGold:
		return constants.TierWeightGold
	case customerEntity.LoyaltyTierPlatinum:
		return constants.TierWeightPlatinum
	}
	return constants.TierWeightNone
}

// WaitPoints grants one point per full wait interval, capped.
func WaitPoints(createdAt, now time.Time) int {
	waited := now.Sub(createdAt)
	if waited <= 0 {
		return 0
	}
	points := int(waited / constants.WaitPointEvery)
	if points > constants.WaitPointsCap {
		return constants.WaitPointsCap
	}
	return points
}

func Priority(e entity.WaitlistEntry, now time.Time) int {
	return TierWeight(e.LoyaltyTier) + WaitPoints(e.CreatedAt, now) + e.Rank*constants.RankWeight
}

// MatchScore is priority plus the best-effort bonus for how well the entry's
// preferences fit the freed slot.
func MatchScore(e entity.WaitlistEntry, timeSlot string, floor tableEntity.Floor, now time.Time) int {
	score := Priority(e, now)

	if timeSlot != "" && e.PreferredTime != "" {
		diff := utils.MinutesOfDay(timeSlot) - utils.MinutesOfDay(e.PreferredTime)
		if diff < 0 {
			diff = -diff
		}
		// one point lost per quarter hour away from the preferred time
		if bonus := constants.TimeMatchMaxBonus - diff/15; bonus > 0 {
			score += bonus
		}
	}
	if e.Floor != nil && floor != "" && *e.Floor == floor {
		score += constants.FloorMatchBonus
	}
	return score
}
