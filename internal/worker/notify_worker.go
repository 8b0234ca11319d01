package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"salonik/internal/domain"
	"salonik/internal/events"

	"github.com/rs/zerolog"
)

// NotifyTask is one outbound client notification waiting for delivery.
// Delivery transports are external; the worker only drives retries.
type NotifyTask struct {
	Phone     string
	Message   string
	Attempt   int
	CreatedAt time.Time
}

// NotifyWorker consumes notification tasks from a bounded queue and hands
// them to the sender, retrying with backoff on failure.
type NotifyWorker struct {
	sender      domain.NotificationSender
	retryPolicy RetryPolicy
	queue       chan NotifyTask
	logger      *zerolog.Logger
}

func NewNotifyWorker(sender domain.NotificationSender, retry RetryPolicy, queueSize int, logger *zerolog.Logger) *NotifyWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if queueSize <= 0 {
		queueSize = 128
	}

	return &NotifyWorker{
		sender:      sender,
		retryPolicy: retry,
		queue:       make(chan NotifyTask, queueSize),
		logger:      logger,
	}
}

// Enqueue schedules a notification. A full queue drops the task with an
// error rather than blocking the booking flow.
func (w *NotifyWorker) Enqueue(task NotifyTask) error {
	if task.Phone == "" {
		return errors.New("phone is required")
	}
	if task.Message == "" {
		return errors.New("message is required")
	}
	task.CreatedAt = time.Now()

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("notification queue is full")
	}
}

// Run processes the queue until the context is cancelled.
func (w *NotifyWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

func (w *NotifyWorker) process(ctx context.Context, task NotifyTask) {
	err := w.sender.Send(ctx, task.Phone, task.Message)
	if err == nil {
		w.logger.Debug().Str("phone", task.Phone).Msg("notification sent")
		return
	}

	task.Attempt++
	if task.Attempt >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(err).Str("phone", task.Phone).Int("attempts", task.Attempt).
			Msg("notification dropped after max retries")
		return
	}

	delay := w.retryPolicy.NextDelay(task.Attempt)
	w.logger.Warn().Err(err).Str("phone", task.Phone).Dur("retry_in", delay).
		Msg("notification delivery failed, will retry")

	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(delay):
			select {
			case w.queue <- task:
			default:
				w.logger.Error().Str("phone", task.Phone).Msg("queue full, retry dropped")
			}
		}
	}()
}

// SubscribeToBookingEvents wires the worker to the event bus: appointment
// lifecycle events become client notifications.
func (w *NotifyWorker) SubscribeToBookingEvents(bus *events.EventBus) {
	handler := func(message func(events.AppointmentEventPayload) string) events.EventHandler {
		return func(event *events.Event) error {
			var payload events.AppointmentEventPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				return err
			}
			if payload.ClientPhone == "" {
				return nil
			}
			return w.Enqueue(NotifyTask{Phone: payload.ClientPhone, Message: message(payload)})
		}
	}

	bus.Subscribe(events.EventAppointmentCreated, handler(func(p events.AppointmentEventPayload) string {
		return "Twoja wizyta " + p.ServiceName + " w dniu " + p.Date + " o " + p.Time + " została zapisana."
	}))
	bus.Subscribe(events.EventAppointmentConfirmed, handler(func(p events.AppointmentEventPayload) string {
		return "Twoja wizyta w dniu " + p.Date + " o " + p.Time + " została potwierdzona."
	}))
	bus.Subscribe(events.EventAppointmentCancelled, handler(func(p events.AppointmentEventPayload) string {
		return "Twoja wizyta w dniu " + p.Date + " o " + p.Time + " została odwołana."
	}))
	bus.Subscribe(events.EventAppointmentRescheduled, handler(func(p events.AppointmentEventPayload) string {
		return "Twoja wizyta została przeniesiona na " + p.Date + " o " + p.Time + "."
	}))
}
