package worker

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"salonik/internal/events"

	"github.com/rs/zerolog"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	fails int
}

func (f *fakeSender) Send(ctx context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return errors.New("gateway unavailable")
	}
	f.sent = append(f.sent, phone+": "+message)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestWorker(sender *fakeSender) *NotifyWorker {
	logger := zerolog.New(os.Stdout)
	return NewNotifyWorker(sender, RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}, 16, &logger)
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	if got := policy.NextDelay(1); got != time.Second {
		t.Errorf("attempt 1: expected 1s, got %v", got)
	}
	if got := policy.NextDelay(2); got != 2*time.Second {
		t.Errorf("attempt 2: expected 2s, got %v", got)
	}
	if got := policy.NextDelay(10); got != 10*time.Second {
		t.Errorf("attempt 10: expected clamp to 10s, got %v", got)
	}
}

func TestEnqueueValidation(t *testing.T) {
	worker := newTestWorker(&fakeSender{})

	if err := worker.Enqueue(NotifyTask{Message: "hi"}); err == nil {
		t.Error("expected error for missing phone")
	}
	if err := worker.Enqueue(NotifyTask{Phone: "+48 600 100 200"}); err == nil {
		t.Error("expected error for missing message")
	}
	if err := worker.Enqueue(NotifyTask{Phone: "+48 600 100 200", Message: "hi"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWorkerDelivers(t *testing.T) {
	sender := &fakeSender{}
	worker := newTestWorker(sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	if err := worker.Enqueue(NotifyTask{Phone: "+48 600 100 200", Message: "test"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitFor(t, func() bool { return sender.sentCount() == 1 })
}

func TestWorkerRetriesOnFailure(t *testing.T) {
	sender := &fakeSender{fails: 2}
	worker := newTestWorker(sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	if err := worker.Enqueue(NotifyTask{Phone: "+48 600 100 200", Message: "test"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// two failures, third attempt succeeds
	waitFor(t, func() bool { return sender.sentCount() == 1 })
}

func TestWorkerReactsToEvents(t *testing.T) {
	sender := &fakeSender{}
	worker := newTestWorker(sender)
	bus := events.NewEventBus()
	worker.SubscribeToBookingEvents(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	err := bus.PublishJSON(events.EventAppointmentCreated, events.AppointmentEventPayload{
		AppointmentID: 1,
		ClientPhone:   "+48 600 100 200",
		ServiceName:   "Strzyżenie",
		Date:          "2025-06-04",
		Time:          "10:00",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	waitFor(t, func() bool { return sender.sentCount() == 1 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
