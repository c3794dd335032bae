// internal/service/reminder/scheduler.go
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"laptoppro-service/internal/domain/reminder"
	"laptoppro-service/internal/pkg/queue"

	"go.uber.org/zap"
)

// Enqueuer posts a named job with a delay to the scheduling collaborator.
type Enqueuer interface {
	Add(ctx context.Context, name string, payload interface{}, delay time.Duration) (*queue.Job, error)
}

type Scheduler struct {
	queue  Enqueuer
	logger *zap.Logger
}

func NewScheduler(q Enqueuer, logger *zap.Logger) *Scheduler {
	return &Scheduler{queue: q, logger: logger}
}

// ScheduleReminders posts the 1-day, 20-day and 30-day follow-ups for a
// ticket. Every job is attempted; the returned error joins the failures.
// Calling it twice schedules two independent series.
func (s *Scheduler) ScheduleReminders(ctx context.Context, ticketID int64) error {
	payload := reminder.Payload{TicketID: ticketID}

	var errs []error
	for _, step := range reminder.Series {
		job, err := s.queue.Add(ctx, string(step.Kind), payload, step.Delay)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.Kind, err))
			continue
		}

		s.logger.Debug("reminder scheduled",
			zap.Int64("ticket_id", ticketID),
			zap.String("kind", string(step.Kind)),
			zap.String("job_id", job.ID),
			zap.Time("due_at", job.DueAt),
		)
	}

	return errors.Join(errs...)
}
