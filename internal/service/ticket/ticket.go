// internal/service/ticket/ticket.go
package ticket

import (
	"context"
	"strings"
	"time"

	"laptoppro-service/internal/domain/ticket"
	"laptoppro-service/internal/domain/websocket"
	"laptoppro-service/internal/pkg/code"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository"
	customersvc "laptoppro-service/internal/service/customer"

	"go.uber.org/zap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
	scheduleTimeout  = 5 * time.Second
)

// ReminderScheduler posts the follow-up series for a ticket.
type ReminderScheduler interface {
	ScheduleReminders(ctx context.Context, ticketID int64) error
}

type TicketService struct {
	store     repository.Store
	customers *customersvc.CustomerService
	reminders ReminderScheduler
	publisher websocket.Publisher
	logger    *zap.Logger
}

func NewTicketService(
	store repository.Store,
	customers *customersvc.CustomerService,
	reminders ReminderScheduler,
	publisher websocket.Publisher,
	logger *zap.Logger,
) *TicketService {
	if publisher == nil {
		publisher = websocket.NopPublisher{}
	}
	return &TicketService{
		store:     store,
		customers: customers,
		reminders: reminders,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateTicket records a drop-off. The customer merge, the insert and the
// display code commit together; reminders are posted only after commit and
// their failure never fails the call.
func (s *TicketService) CreateTicket(ctx context.Context, req *ticket.CreateTicketRequest) (*ticket.Ticket, error) {
	device := strings.TrimSpace(req.Device)
	issue := strings.TrimSpace(req.Issue)

	if device == "" {
		return nil, xerrors.Invalid("device", "is required")
	}
	if issue == "" {
		return nil, xerrors.Invalid("issue", "is required")
	}
	if req.Estimate != nil && req.Estimate.IsNegative() {
		return nil, xerrors.Invalid("estimate", "must not be negative")
	}

	notes := ""
	if req.Notes != nil {
		notes = strings.TrimSpace(*req.Notes)
	}

	if req.Status != "" && ticket.Status(req.Status) != ticket.StatusDroppedOff {
		s.logger.Debug("ignoring requested status on create", zap.String("status", req.Status))
	}

	var created *ticket.Ticket
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		c, err := s.customers.Resolve(ctx, tx.Customers(), req.Customer)
		if err != nil {
			return err
		}

		t := &ticket.Ticket{
			Device:     device,
			Issue:      issue,
			Status:     ticket.StatusDroppedOff,
			Estimate:   req.Estimate,
			Notes:      notes,
			CustomerID: &c.ID,
		}
		if err := tx.Tickets().Create(ctx, t); err != nil {
			return err
		}

		t.TicketCode = code.Ticket(t.ID)
		if err := tx.Tickets().AssignCode(ctx, t.ID, t.TicketCode); err != nil {
			return err
		}

		t.Customer = c.Summary()
		t.Updates = []ticket.Update{}
		created = t
		return nil
	})
	if err != nil {
		err = xerrors.Persistence("create ticket", err)
		s.logOutcome("failed to create ticket", err)
		return nil, err
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", created.ID),
		zap.String("ticket_code", created.TicketCode),
		zap.Int64("customer_id", *created.CustomerID),
	)

	s.scheduleReminders(ctx, created.ID)
	s.publisher.Publish(websocket.ChannelTickets, websocket.EventTypeTicketCreated, created)

	return created, nil
}

func (s *TicketService) scheduleReminders(ctx context.Context, ticketID int64) {
	if s.reminders == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), scheduleTimeout)
	defer cancel()

	if err := s.reminders.ScheduleReminders(ctx, ticketID); err != nil {
		s.logger.Warn("failed to schedule reminders",
			zap.Int64("ticket_id", ticketID),
			zap.Error(err),
		)
	}
}

// UpdateTicket applies status, estimate, notes and an optional log message
// in one transaction. Any status may follow any other.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, req *ticket.UpdateTicketRequest) (*ticket.Ticket, error) {
	var patch ticket.Patch

	if req.Status != nil {
		st := ticket.Status(*req.Status)
		if !st.Valid() {
			return nil, xerrors.Invalid("status", "unknown status "+*req.Status)
		}
		patch.Status = &st
	}
	if req.Estimate != nil {
		if req.Estimate.IsNegative() {
			return nil, xerrors.Invalid("estimate", "must not be negative")
		}
		patch.Estimate = req.Estimate
	}
	if req.Notes != nil {
		n := strings.TrimSpace(*req.Notes)
		patch.Notes = &n
	}

	message := ""
	if req.AppendMessage != nil {
		message = strings.TrimSpace(*req.AppendMessage)
	}

	if patch.Empty() && message == "" {
		return nil, xerrors.Invalid("", "at least one of status, estimate, notes or append_message is required")
	}

	var updated *ticket.Ticket
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Tickets().Update(ctx, id, patch); err != nil {
			return err
		}
		if message != "" {
			if _, err := tx.Tickets().AppendUpdate(ctx, id, message); err != nil {
				return err
			}
		}

		t, err := loadTicket(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		err = xerrors.Persistence("update ticket", err)
		s.logOutcome("failed to update ticket", err, zap.Int64("ticket_id", id))
		return nil, err
	}

	fields := []zap.Field{zap.Int64("ticket_id", id), zap.String("status", string(updated.Status))}
	if message != "" {
		fields = append(fields, zap.Bool("log_appended", true))
	}
	s.logger.Info("ticket updated", fields...)

	s.publisher.Publish(websocket.ChannelTickets, websocket.EventTypeTicketUpdated, updated)

	return updated, nil
}

// GetTicket returns the ticket with its log oldest first
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*ticket.Ticket, error) {
	t, err := loadTicket(ctx, s.store, id)
	if err != nil {
		return nil, xerrors.Persistence("get ticket", err)
	}
	return t, nil
}

// ListTickets returns tickets newest first. A status outside the enumeration,
// lower case included, is ignored rather than rejected.
func (s *TicketService) ListTickets(ctx context.Context, filters *ticket.ListFilters) (*ticket.TicketListResponse, error) {
	var status *ticket.Status
	if filters.Status != "" {
		st := ticket.Status(filters.Status)
		if st.Valid() {
			status = &st
		}
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	tickets, err := s.store.Tickets().List(ctx, status, limit)
	if err != nil {
		return nil, xerrors.Persistence("list tickets", err)
	}

	return &ticket.TicketListResponse{Items: tickets, Total: len(tickets)}, nil
}

// RescheduleReminders posts a fresh follow-up series for an existing ticket.
// Unlike creation, a scheduling failure is returned to the caller.
func (s *TicketService) RescheduleReminders(ctx context.Context, id int64) error {
	if id <= 0 {
		return xerrors.Invalid("ticket_id", "must be positive")
	}
	if _, err := s.store.Tickets().FindByID(ctx, id); err != nil {
		return xerrors.Persistence("find ticket", err)
	}
	if s.reminders == nil {
		return xerrors.Persistence("schedule reminders", xerrors.ErrPersistence)
	}

	if err := s.reminders.ScheduleReminders(ctx, id); err != nil {
		s.logger.Error("failed to reschedule reminders", zap.Int64("ticket_id", id), zap.Error(err))
		return xerrors.Persistence("schedule reminders", err)
	}

	s.logger.Info("reminders rescheduled", zap.Int64("ticket_id", id))
	return nil
}

func loadTicket(ctx context.Context, repos repository.Repositories, id int64) (*ticket.Ticket, error) {
	t, err := repos.Tickets().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updates, err := repos.Tickets().ListUpdates(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Updates = updates
	return t, nil
}

// logOutcome logs caller mistakes at info and storage failures at error.
func (s *TicketService) logOutcome(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if xerrors.Is(err, xerrors.ErrPersistence) {
		s.logger.Error(msg, fields...)
		return
	}
	s.logger.Info(msg, fields...)
}
