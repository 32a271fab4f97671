package entity

import (
	"venue-booking/core/entity"

	"github.com/lib/pq"
)

type LoyaltyTier string

const (
	LoyaltyTierNone     LoyaltyTier = "NONE"
	LoyaltyTierSilver   LoyaltyTier = "SILVER"
	LoyaltyTierGold     LoyaltyTier = "GOLD"
	LoyaltyTierPlatinum LoyaltyTier = "PLATINUM"
)

func (t LoyaltyTier) Valid() bool {
	switch t {
	case LoyaltyTierNone, LoyaltyTierSilver, LoyaltyTierGold, LoyaltyTierPlatinum:
		return true
	}
	return false
}

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

type Customer struct {
	Name                    string         `db:"name" json:"name"`
	Email                   *string        `db:"email" json:"email,omitempty"`
	Phone                   *string        `db:"phone" json:"phone,omitempty"`
	PushToken               *string        `db:"push_token" json:"-"`
	LoyaltyTier             LoyaltyTier    `db:"loyalty_tier" json:"loyalty_tier"`
	IsVIP                   bool           `db:"is_vip" json:"is_vip"`
	AttemptedExcessBookings int            `db:"attempted_excess_bookings" json:"attempted_excess_bookings"`
	RiskFlags               pq.StringArray `db:"risk_flags" json:"risk_flags"`
	ConsentEmail            bool           `db:"consent_email" json:"consent_email"`
	ConsentSMS              bool           `db:"consent_sms" json:"consent_sms"`
	ConsentPush             bool           `db:"consent_push" json:"consent_push"`
	entity.BaseEntity
}

func (c Customer) HasConsent(channel Channel) bool {
	switch channel {
	case ChannelEmail:
		return c.ConsentEmail
	case ChannelSMS:
		return c.ConsentSMS
	case ChannelPush:
		return c.ConsentPush
	}
	return false
}

// Address returns the delivery address for a channel, or "" when unknown.
func (c Customer) Address(channel Channel) string {
	var p *string
	switch channel {
	case ChannelEmail:
		p = c.Email
	case ChannelSMS:
		p = c.Phone
	case ChannelPush:
		p = c.PushToken
	}
	if p == nil {
		return ""
	}
	return *p
}

func (c Customer) Tier() LoyaltyTier {
	if c.LoyaltyTier == "" {
		return LoyaltyTierNone
	}
	return c.LoyaltyTier
}
