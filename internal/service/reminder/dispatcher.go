// internal/service/reminder/dispatcher.go
package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"laptoppro-service/internal/domain/reminder"
	"laptoppro-service/internal/domain/ticket"
	"laptoppro-service/internal/domain/websocket"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/pkg/queue"
	"laptoppro-service/internal/repository"

	"go.uber.org/zap"
)

const (
	MaxAttempts  = 5
	RetryBackoff = 5 * time.Minute
	claimBatch   = 20
)

// Claimer is the consumer side of the delayed queue.
type Claimer interface {
	ClaimDue(ctx context.Context, limit int) ([]*queue.Job, error)
	Ack(ctx context.Context, id string) error
	Retry(ctx context.Context, job *queue.Job, delay time.Duration) error
	RequeueStale(ctx context.Context) (int64, error)
}

// Sender delivers a text message to a customer phone.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// Prober is implemented by senders that can report whether they are able to deliver.
type Prober interface {
	Health(ctx context.Context) (bool, error)
}

// Dispatcher sends follow-up messages for reminders that have come due.
type Dispatcher struct {
	queue     Claimer
	store     repository.Store
	sender    Sender
	publisher websocket.Publisher
	interval  time.Duration
	logger    *zap.Logger
}

func NewDispatcher(
	q Claimer,
	store repository.Store,
	sender Sender,
	publisher websocket.Publisher,
	interval time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if publisher == nil {
		publisher = websocket.NopPublisher{}
	}
	return &Dispatcher{
		queue:     q,
		store:     store,
		sender:    sender,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("reminder dispatcher started", zap.Duration("interval", d.interval))

	for {
		if _, err := d.DispatchDue(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("reminder dispatch pass failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// DispatchDue runs one pass over due jobs and returns how many messages were sent.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	if n, err := d.queue.RequeueStale(ctx); err != nil {
		d.logger.Warn("failed to requeue stale reminders", zap.Error(err))
	} else if n > 0 {
		d.logger.Warn("requeued stale reminders", zap.Int64("count", n))
	}

	if p, ok := d.sender.(Prober); ok {
		ready, err := p.Health(ctx)
		if err != nil || !ready {
			d.logger.Warn("messaging bot not ready, skipping pass", zap.Error(err))
			return 0, nil
		}
	}

	jobs, err := d.queue.ClaimDue(ctx, claimBatch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, job := range jobs {
		delivered, err := d.handle(ctx, job)
		if err != nil {
			d.fail(ctx, job, err)
			continue
		}
		if err := d.queue.Ack(ctx, job.ID); err != nil {
			d.logger.Error("failed to ack reminder", zap.String("job_id", job.ID), zap.Error(err))
		}
		if delivered {
			sent++
		}
	}

	return sent, nil
}

// handle returns false without error for jobs that are done but need no message.
func (d *Dispatcher) handle(ctx context.Context, job *queue.Job) (bool, error) {
	var payload reminder.Payload
	if err := json.Unmarshal(job.Payload, &payload); err != nil || payload.TicketID <= 0 {
		d.logger.Error("dropping reminder with bad payload",
			zap.String("job_id", job.ID),
			zap.ByteString("payload", job.Payload),
		)
		return false, nil
	}

	logger := d.logger.With(
		zap.String("job_id", job.ID),
		zap.String("kind", job.Name),
		zap.Int64("ticket_id", payload.TicketID),
	)

	t, err := d.store.Tickets().FindByID(ctx, payload.TicketID)
	if errors.Is(err, xerrors.ErrNotFound) {
		logger.Info("skipping reminder for deleted ticket")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if t.Status.Final() {
		logger.Info("skipping reminder for finished ticket", zap.String("status", string(t.Status)))
		return false, nil
	}
	if t.Customer == nil || t.Customer.Phone == "" {
		logger.Info("skipping reminder for ticket without customer")
		return false, nil
	}

	text := Message(reminder.Kind(job.Name), t)
	if err := d.sender.Send(ctx, t.Customer.Phone, text); err != nil {
		return false, fmt.Errorf("send reminder: %w", err)
	}

	logger.Info("reminder sent")
	d.publisher.Publish(websocket.ChannelReminders, websocket.EventTypeReminderSent, websocket.ReminderSentData{
		TicketID:   t.ID,
		TicketCode: t.TicketCode,
		Kind:       job.Name,
	})

	return true, nil
}

func (d *Dispatcher) fail(ctx context.Context, job *queue.Job, cause error) {
	logger := d.logger.With(
		zap.String("job_id", job.ID),
		zap.String("kind", job.Name),
		zap.Int("attempts", job.Attempts+1),
		zap.Error(cause),
	)

	if job.Attempts+1 >= MaxAttempts {
		logger.Error("reminder failed permanently")
		if err := d.queue.Ack(ctx, job.ID); err != nil {
			logger.Error("failed to drop reminder", zap.NamedError("ack_error", err))
		}
		return
	}

	logger.Warn("reminder failed, will retry", zap.Duration("backoff", RetryBackoff))
	if err := d.queue.Retry(ctx, job, RetryBackoff); err != nil {
		logger.Error("failed to reschedule reminder", zap.NamedError("retry_error", err))
	}
}

// Message renders the follow-up text for a reminder kind.
func Message(kind reminder.Kind, t *ticket.Ticket) string {
	name := "pelanggan"
	if t.Customer != nil && t.Customer.Name != "" {
		name = t.Customer.Name
	}

	switch kind {
	case reminder.KindOneDay:
		return fmt.Sprintf("Hai %s, terima kasih kerana menghantar %s ke LaptopPro (tiket %s). Status terkini: %s. Balas mesej ini jika ada sebarang pertanyaan.",
			name, t.Device, t.TicketCode, t.Status.Label())
	case reminder.KindTwentyDays:
		return fmt.Sprintf("Hai %s, peringatan mesra: %s anda (tiket %s) masih bersama kami. Status terkini: %s.",
			name, t.Device, t.TicketCode, t.Status.Label())
	case reminder.KindThirtyDays:
		return fmt.Sprintf("Hai %s, %s anda (tiket %s) telah berada di kedai kami selama 30 hari. Sila hubungi kami untuk urusan pengambilan.",
			name, t.Device, t.TicketCode)
	default:
		return fmt.Sprintf("Hai %s, status tiket %s: %s.", name, t.TicketCode, t.Status.Label())
	}
}
