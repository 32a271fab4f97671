package service

import (
	"context"
	"fmt"
	"time"

	"venue-booking/core/logger"
	customerEntity "venue-booking/modules/customer/entity"
	"venue-booking/modules/notification/dto"
	"venue-booking/modules/notification/entity"
)

// Message is what a provider delivers to one address.
type Message struct {
	Payload dto.NotifyPayload
	Address string
	Title   string
	Body    string
}

type Provider interface {
	Channel() customerEntity.Channel
	Send(ctx context.Context, msg Message) error
}

func NewMessage(p dto.NotifyPayload, address string) Message {
	return Message{
		Payload: p,
		Address: address,
		Title:   "A table is ready for you",
		Body: fmt.Sprintf("A table for %d on %s at %s is held for you until %s. Confirm before it expires.",
			p.PartySize, p.Date, p.TimeSlot, p.ExpiresAt.Format(time.Kitchen)),
	}
}

// LogProvider writes the message to the service log. It stands in for an email or SMS gateway.
type LogProvider struct {
	channel customerEntity.Channel
}

func NewLogProvider(channel customerEntity.Channel) *LogProvider {
	return &LogProvider{channel: channel}
}

func (p *LogProvider) Channel() customerEntity.Channel {
	return p.channel
}

func (p *LogProvider) Send(_ context.Context, msg Message) error {
	logger.Info("Notification:Send",
		"channel", p.channel,
		"to", msg.Address,
		"entry_id", msg.Payload.EntryID,
		"subject", msg.Title,
	)
	return nil
}

// InboxProvider delivers push notifications into the in-app inbox.
type InboxProvider struct {
	inbox *NotificationService
}

func NewInboxProvider(inbox *NotificationService) *InboxProvider {
	return &InboxProvider{inbox: inbox}
}

func (p *InboxProvider) Channel() customerEntity.Channel {
	return customerEntity.ChannelPush
}

func (p *InboxProvider) Send(ctx context.Context, msg Message) error {
	_, err := p.inbox.Create(ctx, &dto.CreateNotificationRequest{
		CustomerID: msg.Payload.CustomerID,
		Title:      msg.Title,
		Message:    msg.Body,
		Type:       entity.TypeTableOffered,
		Data: map[string]any{
			"entry_id":   msg.Payload.EntryID.String(),
			"date":       msg.Payload.Date,
			"time_slot":  msg.Payload.TimeSlot,
			"expires_at": msg.Payload.ExpiresAt,
		},
	})
	return err
}
