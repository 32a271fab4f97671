package service

import (
	"context"
	"encoding/json"
	"fmt"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"venue-booking/core/cache"
	"venue-booking/core/constants"
	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	customerEntity "venue-booking/modules/customer/entity"
	"venue-booking/modules/notification/dto"
	"venue-booking/modules/notification/entity"
	"venue-booking/modules/notification/repository"
	waitlistEntity "venue-booking/modules/waitlist/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeQueue struct {
	mu    sync.Mutex
	ids   map[string]bool
	tasks []*asynq.Task
	fail  bool
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{ids: make(map[string]bool)}
}

// EnqueueContext mimics asynq's TaskID uniqueness by reading the option's value.
func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.fail {
		return nil, stderrors.New("redis unavailable")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, o := range opts {
		if o.Type() == asynq.TaskIDOpt {
			id := o.Value().(string)
			if q.ids[id] {
				return nil, asynq.ErrTaskIDConflict
			}
			q.ids[id] = true
		}
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (q *fakeQueue) drain() []*asynq.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.tasks
	q.tasks = nil
	return out
}

func notifiedEntry() *waitlistEntity.WaitlistEntry {
	now := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	exp := now.Add(30 * time.Minute)
	return &waitlistEntity.WaitlistEntry{
		CustomerID:           uuid.New(),
		Preferences:          waitlistEntity.Preferences{PreferredDate: "2026-10-20", PreferredTime: "19:00", PartySize: 4},
		Status:               waitlistEntity.StatusNotified,
		NotifiedAt:           &now,
		ReservationExpiresAt: &exp,
		AssignedTableIDs:     coreEntity.IDList{uuid.New()},
		AssignedTimeSlot:     "19:00",
		BaseEntity:           coreEntity.BaseEntity{ID: uuid.New()},
	}
}

func TestDispatchEnqueuesOneTaskPerChannel(t *testing.T) {
	q := newFakeQueue()
	deliveries := repository.NewMemoryDeliveryRepository()
	d := NewDispatcher(q, deliveries, []string{"email", "sms", "push"})
	entry := notifiedEntry()

	if err := d.Dispatch(context.Background(), entry); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	tasks := q.drain()
	if len(tasks) != 3 {
		t.Fatalf("enqueued %d tasks, want 3", len(tasks))
	}

	channels := map[string]bool{}
	for _, task := range tasks {
		if task.Type() != constants.TaskTypeWaitlistNotify {
			t.Errorf("task type = %q", task.Type())
		}
		var p dto.NotifyPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			t.Fatalf("payload decode error = %v", err)
		}
		if p.EntryID != entry.ID || p.TimeSlot != "19:00" || !p.ExpiresAt.Equal(*entry.ReservationExpiresAt) {
			t.Errorf("payload = %+v, want entry fields", p)
		}
		channels[p.Channel] = true
	}
	if len(channels) != 3 {
		t.Errorf("channels = %v, want email, sms and push", channels)
	}

	list, _ := deliveries.ListByEntry(context.Background(), entry.ID)
	for _, dl := range list {
		if dl.Status != entity.DeliveryQueued {
			t.Errorf("delivery %s = %s, want queued", dl.Channel, dl.Status)
		}
	}

	// The same offer dispatched again is absorbed by task id dedupe.
	if err := d.Dispatch(context.Background(), entry); err != nil {
		t.Errorf("repeated Dispatch() error = %v", err)
	}
	if n := len(q.drain()); n != 0 {
		t.Errorf("repeated Dispatch() enqueued %d tasks, want 0", n)
	}
}

func TestDispatchHonoursChosenChannels(t *testing.T) {
	cases := []struct {
		name   string
		chosen []string
		want   []string
	}{
		{"no choice", nil, []string{"email", "sms", "push"}},
		{"push only", []string{"push"}, []string{"push"}},
		{"order follows config", []string{"push", "email"}, []string{"email", "push"}},
		{"nothing configured matches", []string{"pager"}, []string{"email", "sms", "push"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := newFakeQueue()
			d := NewDispatcher(q, repository.NewMemoryDeliveryRepository(), []string{"email", "sms", "push"})
			entry := notifiedEntry()
			entry.Channels = tc.chosen

			if err := d.Dispatch(context.Background(), entry); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			var got []string
			for _, task := range q.drain() {
				var p dto.NotifyPayload
				if err := json.Unmarshal(task.Payload(), &p); err != nil {
					t.Fatalf("payload decode error = %v", err)
				}
				got = append(got, p.Channel)
			}
			if fmt.Sprint(got) != fmt.Sprint(tc.want) {
				t.Errorf("channels = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDispatchRejectsEntryWithoutWindow(t *testing.T) {
	d := NewDispatcher(newFakeQueue(), repository.NewMemoryDeliveryRepository(), nil)
	entry := notifiedEntry()
	entry.Status = waitlistEntity.StatusActive
	entry.ReservationExpiresAt = nil

	if err := d.Dispatch(context.Background(), entry); !errors.Is(err, errors.ErrStateConflict) {
		t.Errorf("Dispatch() error = %v, want STATE_CONFLICT", err)
	}
}

func TestDispatchQueueFailure(t *testing.T) {
	q := newFakeQueue()
	q.fail = true
	d := NewDispatcher(q, repository.NewMemoryDeliveryRepository(), []string{"email"})

	if err := d.Dispatch(context.Background(), notifiedEntry()); !errors.Is(err, errors.ErrInternalServer) {
		t.Errorf("Dispatch() error = %v, want INTERNAL_SERVER", err)
	}
}

type customerMap map[uuid.UUID]customerEntity.Customer

func (m customerMap) GetByID(_ context.Context, id uuid.UUID) (*customerEntity.Customer, error) {
	c, ok := m[id]
	if !ok {
		return nil, errors.NewNotFound("Customer not found")
	}
	return &c, nil
}

type countingProvider struct {
	channel customerEntity.Channel
	mu      sync.Mutex
	sent    int
	failFor int
}

func (p *countingProvider) Channel() customerEntity.Channel { return p.channel }

func (p *countingProvider) Send(_ context.Context, _ Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor > 0 {
		p.failFor--
		return stderrors.New("gateway timeout")
	}
	p.sent++
	return nil
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

func strPtr(s string) *string { return &s }

func newCustomer(consentSMS bool) customerEntity.Customer {
	return customerEntity.Customer{
		Name:       "Mai",
		Email:      strPtr("mai@example.com"),
		Phone:      strPtr("+84900000000"),
		ConsentSMS: consentSMS,
		BaseEntity: coreEntity.BaseEntity{ID: uuid.New()},
	}
}

func payloadFor(customer customerEntity.Customer, channel customerEntity.Channel) dto.NotifyPayload {
	entry := notifiedEntry()
	return dto.NotifyPayload{
		EntryID:    entry.ID,
		CustomerID: customer.ID,
		Channel:    string(channel),
		Date:       "2026-10-20",
		TimeSlot:   "19:00",
		PartySize:  4,
		NotifiedAt: *entry.NotifiedAt,
		ExpiresAt:  *entry.ReservationExpiresAt,
	}
}

func TestDeliverConsent(t *testing.T) {
	customer := newCustomer(false)
	deliveries := repository.NewMemoryDeliveryRepository()
	email := &countingProvider{channel: customerEntity.ChannelEmail}
	sms := &countingProvider{channel: customerEntity.ChannelSMS}
	h := NewDeliveryHandler(customerMap{customer.ID: customer}, deliveries, cache.NewMemoryCache(), []string{"email"}).
		Register(email, 0).
		Register(sms, 0)

	smsPayload := payloadFor(customer, customerEntity.ChannelSMS)
	if err := h.Deliver(context.Background(), smsPayload, 0, 2); err != nil {
		t.Fatalf("Deliver(sms) error = %v", err)
	}
	if sms.count() != 0 {
		t.Errorf("sms sent %d, want 0 without consent", sms.count())
	}
	if d, _ := deliveries.Get(context.Background(), smsPayload.EntryID, customerEntity.ChannelSMS); d == nil || d.Status != entity.DeliverySkipped {
		t.Errorf("sms delivery = %+v, want skipped", d)
	}

	// email is consent-exempt
	emailPayload := payloadFor(customer, customerEntity.ChannelEmail)
	if err := h.Deliver(context.Background(), emailPayload, 0, 2); err != nil {
		t.Fatalf("Deliver(email) error = %v", err)
	}
	if email.count() != 1 {
		t.Errorf("email sent %d, want 1", email.count())
	}
	if d, _ := deliveries.Get(context.Background(), emailPayload.EntryID, customerEntity.ChannelEmail); d == nil || d.Status != entity.DeliverySent {
		t.Errorf("email delivery = %+v, want sent", d)
	}
}

func TestDeliverRetryThenFail(t *testing.T) {
	customer := newCustomer(true)
	deliveries := repository.NewMemoryDeliveryRepository()
	sms := &countingProvider{channel: customerEntity.ChannelSMS, failFor: 3}
	h := NewDeliveryHandler(customerMap{customer.ID: customer}, deliveries, cache.NewMemoryCache(), nil).Register(sms, 0)
	p := payloadFor(customer, customerEntity.ChannelSMS)
	maxRetry := constants.NotificationMaxAttempts - 1

	for retried := 0; retried < maxRetry; retried++ {
		if err := h.Deliver(context.Background(), p, retried, maxRetry); err == nil {
			t.Fatalf("Deliver(retried=%d) error = nil, want failure", retried)
		}
		d, _ := deliveries.Get(context.Background(), p.EntryID, customerEntity.ChannelSMS)
		if d.Status != entity.DeliveryRetrying || d.Attempts != retried+1 {
			t.Errorf("after attempt %d: %s/%d, want retrying/%d", retried+1, d.Status, d.Attempts, retried+1)
		}
	}

	if err := h.Deliver(context.Background(), p, maxRetry, maxRetry); err == nil {
		t.Fatal("final Deliver() error = nil, want failure")
	}
	d, _ := deliveries.Get(context.Background(), p.EntryID, customerEntity.ChannelSMS)
	if d.Status != entity.DeliveryFailed || d.Attempts != constants.NotificationMaxAttempts {
		t.Errorf("final delivery = %s/%d, want failed/%d", d.Status, d.Attempts, constants.NotificationMaxAttempts)
	}
	if d.LastError != "gateway timeout" {
		t.Errorf("LastError = %q", d.LastError)
	}
}

func TestDeliverRecoversOnRetry(t *testing.T) {
	customer := newCustomer(true)
	deliveries := repository.NewMemoryDeliveryRepository()
	sms := &countingProvider{channel: customerEntity.ChannelSMS, failFor: 1}
	h := NewDeliveryHandler(customerMap{customer.ID: customer}, deliveries, cache.NewMemoryCache(), nil).Register(sms, 0)
	p := payloadFor(customer, customerEntity.ChannelSMS)

	if err := h.Deliver(context.Background(), p, 0, 2); err == nil {
		t.Fatal("first Deliver() error = nil, want failure")
	}
	if err := h.Deliver(context.Background(), p, 1, 2); err != nil {
		t.Fatalf("retry Deliver() error = %v", err)
	}
	if sms.count() != 1 {
		t.Errorf("sent = %d, want 1", sms.count())
	}
	// a duplicate task for the same offer does not send again
	if err := h.Deliver(context.Background(), p, 0, 2); err != nil {
		t.Fatalf("duplicate Deliver() error = %v", err)
	}
	if sms.count() != 1 {
		t.Errorf("sent after duplicate = %d, want 1", sms.count())
	}
}

func TestPushDeliversToInbox(t *testing.T) {
	customer := newCustomer(false)
	customer.ConsentPush = true
	inbox := NewNotificationService(repository.NewMemoryNotificationRepository())
	h := NewDeliveryHandler(customerMap{customer.ID: customer}, repository.NewMemoryDeliveryRepository(), cache.NewMemoryCache(), nil).
		Register(NewInboxProvider(inbox), 0)

	task := asynq.NewTask(constants.TaskTypeWaitlistNotify, mustJSON(t, payloadFor(customer, customerEntity.ChannelPush)))
	if err := h.HandleNotifyTask(context.Background(), task); err != nil {
		t.Fatalf("HandleNotifyTask() error = %v", err)
	}

	count, _ := inbox.CountUnread(context.Background(), customer.ID)
	if count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}
}

func TestHandleNotifyTaskBadPayload(t *testing.T) {
	h := NewDeliveryHandler(customerMap{}, repository.NewMemoryDeliveryRepository(), cache.NewMemoryCache(), nil)
	err := h.HandleNotifyTask(context.Background(), asynq.NewTask(constants.TaskTypeWaitlistNotify, []byte("{")))
	if !stderrors.Is(err, asynq.SkipRetry) {
		t.Errorf("HandleNotifyTask() error = %v, want SkipRetry", err)
	}
}

func TestFanOut600(t *testing.T) {
	const n = 600
	q := newFakeQueue()
	deliveries := repository.NewMemoryDeliveryRepository()
	d := NewDispatcher(q, deliveries, []string{"email", "push"})

	customers := customerMap{}
	entries := make([]*waitlistEntity.WaitlistEntry, n)
	for i := range entries {
		c := newCustomer(false)
		c.ConsentPush = i%2 == 0
		customers[c.ID] = c
		entries[i] = notifiedEntry()
		entries[i].CustomerID = c.ID
	}

	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(e *waitlistEntity.WaitlistEntry) {
			defer wg.Done()
			if err := d.Dispatch(context.Background(), e); err != nil {
				t.Errorf("Dispatch() error = %v", err)
			}
		}(e)
	}
	wg.Wait()

	tasks := q.drain()
	if len(tasks) != 2*n {
		t.Fatalf("enqueued %d tasks, want %d", len(tasks), 2*n)
	}

	email := &countingProvider{channel: customerEntity.ChannelEmail}
	push := &countingProvider{channel: customerEntity.ChannelPush}
	h := NewDeliveryHandler(customers, deliveries, cache.NewMemoryCache(), []string{"email"}).
		Register(email, 0).
		Register(push, 0)

	for _, task := range tasks {
		wg.Add(1)
		go func(task *asynq.Task) {
			defer wg.Done()
			if err := h.HandleNotifyTask(context.Background(), task); err != nil {
				t.Errorf("HandleNotifyTask() error = %v", err)
			}
		}(task)
	}
	wg.Wait()

	if email.count() != n {
		t.Errorf("email sent = %d, want %d", email.count(), n)
	}
	if push.count() != n/2 {
		t.Errorf("push sent = %d, want %d", push.count(), n/2)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
