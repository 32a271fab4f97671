package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"venue-booking/core/constants"
	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	customerEntity "venue-booking/modules/customer/entity"
	"venue-booking/modules/notification/dto"
	"venue-booking/modules/notification/entity"
	"venue-booking/modules/notification/repository"
	waitlistEntity "venue-booking/modules/waitlist/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Dispatcher struct {
	queue      Enqueuer
	deliveries repository.DeliveryRepositoryInterface
	channels   []customerEntity.Channel
	attempts   int
}

func NewDispatcher(queue Enqueuer, deliveries repository.DeliveryRepositoryInterface, channels []string) *Dispatcher {
	var chs []customerEntity.Channel
	for _, c := range channels {
		chs = append(chs, customerEntity.Channel(c))
	}
	if len(chs) == 0 {
		chs = []customerEntity.Channel{customerEntity.ChannelEmail, customerEntity.ChannelSMS, customerEntity.ChannelPush}
	}
	return &Dispatcher{
		queue:      queue,
		deliveries: deliveries,
		channels:   chs,
		attempts:   constants.NotificationMaxAttempts,
	}
}

// TaskID is stable per entry, channel and notification time so a repeated
// dispatch of the same offer is rejected by the queue.
func TaskID(entryID uuid.UUID, channel customerEntity.Channel, notifiedAt time.Time) string {
	return fmt.Sprintf("notify:%s:%s:%d", entryID, channel, notifiedAt.Unix())
}

// channelsFor keeps the configured channels the entry asked for, in configured order.
// An entry without a choice, or whose choice matches nothing configured, gets them all.
func (d *Dispatcher) channelsFor(entry *waitlistEntity.WaitlistEntry) []customerEntity.Channel {
	if len(entry.Channels) == 0 {
		return d.channels
	}
	var out []customerEntity.Channel
	for _, c := range d.channels {
		if slices.Contains(entry.Channels, string(c)) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		logger.Warn("Dispatcher:Dispatch:NoChosenChannelConfigured", "entry_id", entry.ID, "chosen", []string(entry.Channels))
		return d.channels
	}
	return out
}

// Dispatch enqueues one delivery task per channel and returns without waiting for delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, entry *waitlistEntity.WaitlistEntry) error {
	if entry.Status != waitlistEntity.StatusNotified || entry.ReservationExpiresAt == nil || entry.NotifiedAt == nil {
		return errors.NewStateConflict("Only notified entries can be dispatched")
	}

	channels := d.channelsFor(entry)
	var failed []error
	for _, channel := range channels {
		payload := dto.NotifyPayload{
			EntryID:    entry.ID,
			CustomerID: entry.CustomerID,
			Channel:    string(channel),
			Date:       entry.PreferredDate,
			TimeSlot:   entry.AssignedTimeSlot,
			PartySize:  entry.PartySize,
			TableIDs:   entry.AssignedTableIDs,
			NotifiedAt: *entry.NotifiedAt,
			ExpiresAt:  *entry.ReservationExpiresAt,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		task := asynq.NewTask(constants.TaskTypeWaitlistNotify, body)
		_, err = d.queue.EnqueueContext(ctx, task,
			asynq.TaskID(TaskID(entry.ID, channel, *entry.NotifiedAt)),
			asynq.Queue(constants.QueueNotifications),
			asynq.MaxRetry(d.attempts-1),
		)
		if stderrors.Is(err, asynq.ErrTaskIDConflict) {
			logger.Debug("Dispatcher:Dispatch:AlreadyQueued", "entry_id", entry.ID, "channel", channel)
			continue
		}
		if err != nil {
			logger.Error("Dispatcher:Dispatch:Enqueue:Error:", err, "entry_id", entry.ID, "channel", channel)
			failed = append(failed, err)
			continue
		}

		now := time.Now()
		if err := d.deliveries.Upsert(ctx, &entity.Delivery{
			WaitlistEntryID: entry.ID,
			CustomerID:      entry.CustomerID,
			Channel:         channel,
			Status:          entity.DeliveryQueued,
			BaseEntity: coreEntity.BaseEntity{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
		}); err != nil {
			logger.Warn("Dispatcher:Dispatch:RecordQueued:Error:", err)
		}
	}

	if len(failed) > 0 {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to enqueue notifications", stderrors.Join(failed...))
	}
	logger.Debug("Dispatcher:Dispatch", "entry_id", entry.ID, "channels", len(channels))
	return nil
}
