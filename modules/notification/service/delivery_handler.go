package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"venue-booking/core/cache"
	"venue-booking/core/constants"
	coreEntity "venue-booking/core/entity"
	"venue-booking/core/logger"
	customerEntity "venue-booking/modules/customer/entity"
	"venue-booking/modules/notification/dto"
	"venue-booking/modules/notification/entity"
	"venue-booking/modules/notification/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"
)

type CustomerReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*customerEntity.Customer, error)
}

// DeliveryHandler processes waitlist notification tasks on the worker.
// It never changes waitlist state.
type DeliveryHandler struct {
	customers     CustomerReader
	deliveries    repository.DeliveryRepositoryInterface
	cache         cache.Cache
	providers     map[customerEntity.Channel]Provider
	limiters      map[customerEntity.Channel]*rate.Limiter
	consentExempt map[customerEntity.Channel]bool
}

func NewDeliveryHandler(customers CustomerReader, deliveries repository.DeliveryRepositoryInterface, c cache.Cache, consentExempt []string) *DeliveryHandler {
	exempt := make(map[customerEntity.Channel]bool)
	for _, ch := range consentExempt {
		exempt[customerEntity.Channel(ch)] = true
	}
	return &DeliveryHandler{
		customers:     customers,
		deliveries:    deliveries,
		cache:         c,
		providers:     make(map[customerEntity.Channel]Provider),
		limiters:      make(map[customerEntity.Channel]*rate.Limiter),
		consentExempt: exempt,
	}
}

// Register adds a provider throttled to perSecond sends (0 means unlimited).
func (h *DeliveryHandler) Register(p Provider, perSecond float64) *DeliveryHandler {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	h.providers[p.Channel()] = p
	h.limiters[p.Channel()] = rate.NewLimiter(limit, burst)
	return h
}

func (h *DeliveryHandler) HandleNotifyTask(ctx context.Context, t *asynq.Task) error {
	var p dto.NotifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.Error("DeliveryHandler:HandleNotifyTask:Decode:Error:", err)
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	retried, maxRetry := retryInfo(ctx)
	return h.Deliver(ctx, p, retried, maxRetry)
}

// Deliver sends one channel of one offer. retried counts earlier attempts; a returned
// error asks the queue to retry, and once retried reaches maxRetry the delivery is failed.
func (h *DeliveryHandler) Deliver(ctx context.Context, p dto.NotifyPayload, retried, maxRetry int) error {
	channel := customerEntity.Channel(p.Channel)
	attempt := retried + 1

	provider, ok := h.providers[channel]
	if !ok {
		h.record(ctx, p, entity.DeliverySkipped, attempt, "no provider for channel")
		return nil
	}

	customer, err := h.customers.GetByID(ctx, p.CustomerID)
	if err != nil {
		return h.fail(ctx, p, attempt, retried >= maxRetry, err)
	}
	if !h.consentExempt[channel] && !customer.HasConsent(channel) {
		h.record(ctx, p, entity.DeliverySkipped, attempt, "no consent")
		logger.Debug("DeliveryHandler:Deliver:NoConsent", "entry_id", p.EntryID, "channel", channel)
		return nil
	}
	address := customer.Address(channel)
	if address == "" && channel != customerEntity.ChannelPush {
		h.record(ctx, p, entity.DeliverySkipped, attempt, "no address")
		return nil
	}

	key := sentKey(p)
	first, err := h.cache.SetNX(ctx, key, "1", constants.NotificationSentTTL)
	if err != nil {
		return h.fail(ctx, p, attempt, retried >= maxRetry, err)
	}
	if !first {
		logger.Debug("DeliveryHandler:Deliver:AlreadySent", "entry_id", p.EntryID, "channel", channel)
		return nil
	}

	if limiter := h.limiters[channel]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			_ = h.cache.Del(ctx, key)
			return h.fail(ctx, p, attempt, retried >= maxRetry, err)
		}
	}

	if err := provider.Send(ctx, NewMessage(p, address)); err != nil {
		_ = h.cache.Del(ctx, key)
		return h.fail(ctx, p, attempt, retried >= maxRetry, err)
	}

	h.record(ctx, p, entity.DeliverySent, attempt, "")
	return nil
}

func (h *DeliveryHandler) fail(ctx context.Context, p dto.NotifyPayload, attempt int, final bool, cause error) error {
	status := entity.DeliveryRetrying
	if final {
		status = entity.DeliveryFailed
	}
	h.record(ctx, p, status, attempt, cause.Error())
	logger.Warn("DeliveryHandler:Deliver:Error:", cause,
		"entry_id", p.EntryID,
		"channel", p.Channel,
		"attempt", attempt,
		"status", status,
	)
	return cause
}

func (h *DeliveryHandler) record(ctx context.Context, p dto.NotifyPayload, status entity.DeliveryStatus, attempts int, lastErr string) {
	now := time.Now()
	err := h.deliveries.Upsert(ctx, &entity.Delivery{
		WaitlistEntryID: p.EntryID,
		CustomerID:      p.CustomerID,
		Channel:         customerEntity.Channel(p.Channel),
		Status:          status,
		Attempts:        attempts,
		LastError:       lastErr,
		BaseEntity: coreEntity.BaseEntity{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	})
	if err != nil {
		logger.Error("DeliveryHandler:Record:Error:", err, "entry_id", p.EntryID)
	}
}

func sentKey(p dto.NotifyPayload) string {
	return fmt.Sprintf("%s%s:%s:%d", constants.NotificationSentPrefix, p.EntryID, p.Channel, p.NotifiedAt.Unix())
}

// retryInfo reads the attempt counters asynq puts on the context. Outside a worker
// it assumes a first attempt with the default retry budget.
func retryInfo(ctx context.Context) (retried, maxRetry int) {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		retried = 0
	}
	maxRetry, ok = asynq.GetMaxRetry(ctx)
	if !ok {
		maxRetry = constants.NotificationMaxAttempts - 1
	}
	return retried, maxRetry
}
