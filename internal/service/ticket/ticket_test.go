package ticket

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"laptoppro-service/internal/domain/customer"
	"laptoppro-service/internal/domain/ticket"
	"laptoppro-service/internal/domain/websocket"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository/memory"
	customersvc "laptoppro-service/internal/service/customer"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeScheduler struct {
	mu    sync.Mutex
	err   error
	calls []int64
}

func (f *fakeScheduler) ScheduleReminders(ctx context.Context, ticketID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ticketID)
	return f.err
}

type fakePublisher struct {
	events []websocket.EventType
}

func (p *fakePublisher) Publish(channel websocket.ChannelType, event websocket.EventType, data interface{}) {
	p.events = append(p.events, event)
}

type fixture struct {
	store     *memory.Store
	scheduler *fakeScheduler
	publisher *fakePublisher
	svc       *TicketService
}

func newFixture(t *testing.T, logger *zap.Logger) *fixture {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &fixture{
		store:     memory.NewStore(),
		scheduler: &fakeScheduler{},
		publisher: &fakePublisher{},
	}
	f.svc = NewTicketService(f.store, customersvc.NewCustomerService(f.store, logger), f.scheduler, f.publisher, logger)
	return f
}

func strPtr(s string) *string { return &s }

func sampleRequest() *ticket.CreateTicketRequest {
	est := decimal.RequireFromString("150.00")
	return &ticket.CreateTicketRequest{
		Customer: customer.Input{Name: "Ali", Phone: "0123456789"},
		Device:   "Dell XPS 13",
		Issue:    "Battery not charging",
		Estimate: &est,
		Status:   "READY",
	}
}

func TestCreateTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tk, err := f.svc.CreateTicket(ctx, sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, ticket.StatusDroppedOff, tk.Status)
	assert.Regexp(t, regexp.MustCompile(`^T-\d{5}$`), tk.TicketCode)
	assert.Equal(t, "T-00001", tk.TicketCode)
	require.NotNil(t, tk.Customer)
	assert.Equal(t, "Ali", tk.Customer.Name)
	assert.Empty(t, tk.Updates)

	assert.Equal(t, []int64{tk.ID}, f.scheduler.calls)
	assert.Equal(t, []websocket.EventType{websocket.EventTypeTicketCreated}, f.publisher.events)

	stored, err := f.svc.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "T-00001", stored.TicketCode)
	assert.True(t, stored.Estimate.Equal(decimal.NewFromInt(150)))
}

func TestCreateTicketCodesFollowIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	var codes []string
	for i := 0; i < 3; i++ {
		tk, err := f.svc.CreateTicket(ctx, sampleRequest())
		require.NoError(t, err)
		codes = append(codes, tk.TicketCode)
	}
	assert.Equal(t, []string{"T-00001", "T-00002", "T-00003"}, codes)
}

func TestCreateTicketSurvivesSchedulerFailure(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, zap.New(core))
	f.scheduler.err = errors.New("redis unavailable")

	tk, err := f.svc.CreateTicket(ctx, sampleRequest())
	require.NoError(t, err)
	assert.NotZero(t, tk.ID)

	entries := logs.FilterMessage("failed to schedule reminders").All()
	require.Len(t, entries, 1)
	assert.Equal(t, tk.ID, entries[0].ContextMap()["ticket_id"])
}

func TestCreateTicketValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		mutate func(r *ticket.CreateTicketRequest)
	}{
		{"missing device", func(r *ticket.CreateTicketRequest) { r.Device = " " }},
		{"missing issue", func(r *ticket.CreateTicketRequest) { r.Issue = "" }},
		{"negative estimate", func(r *ticket.CreateTicketRequest) {
			neg := decimal.NewFromInt(-1)
			r.Estimate = &neg
		}},
		{"missing phone", func(r *ticket.CreateTicketRequest) { r.Customer.Phone = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest()
			tt.mutate(req)
			_, err := f.svc.CreateTicket(ctx, req)
			assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
		})
	}

	list, err := f.svc.ListTickets(ctx, &ticket.ListFilters{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.Empty(t, f.scheduler.calls)
}

func TestUpdateTicketRequiresAField(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tk, err := f.svc.CreateTicket(ctx, sampleRequest())
	require.NoError(t, err)

	_, err = f.svc.UpdateTicket(ctx, tk.ID, &ticket.UpdateTicketRequest{})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = f.svc.UpdateTicket(ctx, tk.ID, &ticket.UpdateTicketRequest{AppendMessage: strPtr("   ")})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestUpdateTicketMissing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.UpdateTicket(context.Background(), 999, &ticket.UpdateTicketRequest{Status: strPtr("CLOSED")})
	var nf *xerrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(999), nf.ID)
}

func TestUpdateTicketRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tk, err := f.svc.CreateTicket(ctx, sampleRequest())
	require.NoError(t, err)

	for _, status := range []string{"LOST", "closed", " CLOSED ", ""} {
		_, err = f.svc.UpdateTicket(ctx, tk.ID, &ticket.UpdateTicketRequest{Status: strPtr(status)})
		var ve *xerrors.ValidationError
		require.ErrorAs(t, err, &ve, "status %q", status)
		assert.Equal(t, "status", ve.Field)
	}

	stored, err := f.svc.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusDroppedOff, stored.Status)
	assert.Empty(t, stored.Updates)
}

func TestUpdateTicketAppliesFieldsAndLog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tk, err := f.svc.CreateTicket(ctx, sampleRequest())
	require.NoError(t, err)

	est := decimal.RequireFromString("320.50")
	updated, err := f.svc.UpdateTicket(ctx, tk.ID, &ticket.UpdateTicketRequest{
		Status:        strPtr("WAITING_APPROVAL"),
		Estimate:      &est,
		Notes:         strPtr("needs new battery"),
		AppendMessage: strPtr("Quoted RM320.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusWaitingApproval, updated.Status)
	assert.True(t, updated.Estimate.Equal(est))
	assert.Equal(t, "needs new battery", updated.Notes)

	_, err = f.svc.UpdateTicket(ctx, tk.ID, &ticket.UpdateTicketRequest{AppendMessage: strPtr("Customer approved")})
	require.NoError(t, err)

	// any status may follow any other
	back, err := f.svc.UpdateTicket(ctx, tk.ID, &ticket.UpdateTicketRequest{Status: strPtr("DROPPED_OFF")})
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusDroppedOff, back.Status)

	require.Len(t, back.Updates, 2)
	assert.Equal(t, "Quoted RM320.50", back.Updates[0].Message)
	assert.Equal(t, "Customer approved", back.Updates[1].Message)
	assert.False(t, back.UpdatedAt.Before(tk.UpdatedAt))

	assert.Equal(t, []websocket.EventType{
		websocket.EventTypeTicketCreated,
		websocket.EventTypeTicketUpdated,
		websocket.EventTypeTicketUpdated,
		websocket.EventTypeTicketUpdated,
	}, f.publisher.events)
}

func TestListTicketsFiltersAndIgnoresUnknownStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	first, err := f.svc.CreateTicket(ctx, sampleRequest())
	require.NoError(t, err)
	second, err := f.svc.CreateTicket(ctx, sampleRequest())
	require.NoError(t, err)

	_, err = f.svc.UpdateTicket(ctx, first.ID, &ticket.UpdateTicketRequest{Status: strPtr("IN_REPAIR")})
	require.NoError(t, err)

	all, err := f.svc.ListTickets(ctx, &ticket.ListFilters{})
	require.NoError(t, err)
	require.Equal(t, 2, all.Total)
	assert.Equal(t, second.ID, all.Items[0].ID)

	inRepair, err := f.svc.ListTickets(ctx, &ticket.ListFilters{Status: "IN_REPAIR"})
	require.NoError(t, err)
	require.Equal(t, 1, inRepair.Total)
	assert.Equal(t, first.ID, inRepair.Items[0].ID)

	for _, status := range []string{"BOGUS", "in_repair"} {
		unknown, err := f.svc.ListTickets(ctx, &ticket.ListFilters{Status: status})
		require.NoError(t, err)
		assert.Equal(t, 2, unknown.Total, "status %q", status)
	}

	limited, err := f.svc.ListTickets(ctx, &ticket.ListFilters{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, limited.Total)
}

func TestRescheduleReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tk, err := f.svc.CreateTicket(ctx, sampleRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.RescheduleReminders(ctx, tk.ID))
	assert.Equal(t, []int64{tk.ID, tk.ID}, f.scheduler.calls)

	err = f.svc.RescheduleReminders(ctx, 404)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	f.scheduler.err = errors.New("redis unavailable")
	err = f.svc.RescheduleReminders(ctx, tk.ID)
	assert.ErrorIs(t, err, xerrors.ErrPersistence)
}
