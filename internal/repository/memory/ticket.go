// internal/repository/memory/ticket.go
package memory

import (
	"context"
	"sort"

	"laptoppro-service/internal/domain/ticket"
	xerrors "laptoppro-service/internal/pkg/errors"
)

type ticketRepo struct{ v *view }

func (r *ticketRepo) Create(ctx context.Context, t *ticket.Ticket) error {
	defer r.v.lock()()
	d := r.v.store.data

	d.ticketSeq++
	now := r.v.store.now()
	t.ID = d.ticketSeq
	t.CreatedAt = now
	t.UpdatedAt = now

	stored := *t
	stored.Customer = nil
	stored.Updates = nil
	d.tickets[t.ID] = stored
	return nil
}

func (r *ticketRepo) AssignCode(ctx context.Context, id int64, code string) error {
	defer r.v.lock()()
	d := r.v.store.data

	t, ok := d.tickets[id]
	if !ok {
		return xerrors.NotFound("ticket", id)
	}
	for otherID, other := range d.tickets {
		if otherID != id && other.TicketCode == code {
			return xerrors.Persistence("assign ticket code", xerrors.ErrConflict)
		}
	}
	t.TicketCode = code
	d.tickets[id] = t
	return nil
}

func (r *ticketRepo) FindByID(ctx context.Context, id int64) (*ticket.Ticket, error) {
	defer r.v.lock()()
	t, ok := r.v.store.data.tickets[id]
	if !ok {
		return nil, xerrors.NotFound("ticket", id)
	}
	t.Customer = r.v.summary(t.CustomerID)
	return &t, nil
}

func (r *ticketRepo) List(ctx context.Context, status *ticket.Status, limit int) ([]ticket.Ticket, error) {
	defer r.v.lock()()
	out := make([]ticket.Ticket, 0)
	for _, t := range r.v.store.data.tickets {
		if status != nil && t.Status != *status {
			continue
		}
		t.Customer = r.v.summary(t.CustomerID)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ticketRepo) Update(ctx context.Context, id int64, patch ticket.Patch) error {
	defer r.v.lock()()
	d := r.v.store.data

	t, ok := d.tickets[id]
	if !ok {
		return xerrors.NotFound("ticket", id)
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Estimate != nil {
		e := *patch.Estimate
		t.Estimate = &e
	}
	if patch.Notes != nil {
		t.Notes = *patch.Notes
	}
	t.UpdatedAt = r.v.store.now()
	d.tickets[id] = t
	return nil
}

func (r *ticketRepo) AppendUpdate(ctx context.Context, ticketID int64, message string) (*ticket.Update, error) {
	defer r.v.lock()()
	d := r.v.store.data

	if _, ok := d.tickets[ticketID]; !ok {
		return nil, xerrors.NotFound("ticket", ticketID)
	}
	d.updateSeq++
	u := ticket.Update{
		ID:        d.updateSeq,
		TicketID:  ticketID,
		Message:   message,
		CreatedAt: r.v.store.now(),
	}
	d.updates = append(d.updates, u)
	return &u, nil
}

func (r *ticketRepo) ListUpdates(ctx context.Context, ticketID int64) ([]ticket.Update, error) {
	defer r.v.lock()()
	out := make([]ticket.Update, 0)
	for _, u := range r.v.store.data.updates {
		if u.TicketID == ticketID {
			out = append(out, u)
		}
	}
	return out, nil
}
