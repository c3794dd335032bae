// internal/repository/postgres/ticket_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"laptoppro-service/internal/domain/customer"
	"laptoppro-service/internal/domain/ticket"
	xerrors "laptoppro-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type TicketRepository struct {
	db Querier
}

func NewTicketRepository(db Querier) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `
	t.id, COALESCE(t.ticket_code, ''), t.device, t.issue, t.status, t.estimate, t.notes,
	t.customer_id, t.created_at, t.updated_at,
	c.id, c.name, c.phone, c.email
`

func scanTicket(row pgx.Row) (*ticket.Ticket, error) {
	var (
		t        ticket.Ticket
		estimate decimal.NullDecimal
		custID   *int64
		custName *string
		phone    *string
		email    *string
	)

	err := row.Scan(
		&t.ID, &t.TicketCode, &t.Device, &t.Issue, &t.Status, &estimate, &t.Notes,
		&t.CustomerID, &t.CreatedAt, &t.UpdatedAt,
		&custID, &custName, &phone, &email,
	)
	if err != nil {
		return nil, err
	}

	if estimate.Valid {
		t.Estimate = &estimate.Decimal
	}
	if custID != nil {
		t.Customer = &customer.Summary{ID: *custID, Name: *custName, Phone: *phone, Email: email}
	}

	return &t, nil
}

// Create inserts a ticket; the display code is assigned separately once the id is known.
func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	query := `
		INSERT INTO tickets (device, issue, status, estimate, notes, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	var estimate decimal.NullDecimal
	if t.Estimate != nil {
		estimate = decimal.NewNullDecimal(*t.Estimate)
	}

	err := r.db.QueryRow(ctx, query,
		t.Device, t.Issue, t.Status, estimate, t.Notes, t.CustomerID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return storageErr("create ticket", err)
	}

	return nil
}

func (r *TicketRepository) AssignCode(ctx context.Context, id int64, code string) error {
	result, err := r.db.Exec(ctx, `UPDATE tickets SET ticket_code = $1 WHERE id = $2`, code, id)
	if err != nil {
		return storageErr("assign ticket code", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("ticket", id)
	}
	return nil
}

// FindByID retrieves a ticket with its customer summary
func (r *TicketRepository) FindByID(ctx context.Context, id int64) (*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets t
		LEFT JOIN customers c ON c.id = t.customer_id
		WHERE t.id = $1
	`

	t, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("ticket", id)
	}
	if err != nil {
		return nil, storageErr("find ticket", err)
	}

	return t, nil
}

// List returns tickets newest first, optionally filtered by status
func (r *TicketRepository) List(ctx context.Context, status *ticket.Status, limit int) ([]ticket.Ticket, error) {
	var conditions []string
	args := []interface{}{}
	argPos := 1

	if status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argPos))
		args = append(args, *status)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s
		FROM tickets t
		LEFT JOIN customers c ON c.id = t.customer_id
		%s
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $%d
	`, ticketColumns, whereClause, argPos)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list tickets", err)
	}
	defer rows.Close()

	tickets := make([]ticket.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, storageErr("scan ticket", err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list tickets", err)
	}

	return tickets, nil
}

// Update applies the non-nil patch fields and always refreshes updated_at
func (r *TicketRepository) Update(ctx context.Context, id int64, patch ticket.Patch) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argPos := 1

	if patch.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *patch.Status)
		argPos++
	}
	if patch.Estimate != nil {
		sets = append(sets, fmt.Sprintf("estimate = $%d", argPos))
		args = append(args, *patch.Estimate)
		argPos++
	}
	if patch.Notes != nil {
		sets = append(sets, fmt.Sprintf("notes = $%d", argPos))
		args = append(args, *patch.Notes)
		argPos++
	}

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id = $%d`, strings.Join(sets, ", "), argPos)
	args = append(args, id)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storageErr("update ticket", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("ticket", id)
	}

	return nil
}

func (r *TicketRepository) AppendUpdate(ctx context.Context, ticketID int64, message string) (*ticket.Update, error) {
	query := `
		INSERT INTO ticket_updates (ticket_id, message)
		VALUES ($1, $2)
		RETURNING id, ticket_id, message, created_at
	`

	var u ticket.Update
	err := r.db.QueryRow(ctx, query, ticketID, message).Scan(&u.ID, &u.TicketID, &u.Message, &u.CreatedAt)
	if err != nil {
		return nil, storageErr("append ticket update", err)
	}

	return &u, nil
}

// ListUpdates returns the ticket log oldest first
func (r *TicketRepository) ListUpdates(ctx context.Context, ticketID int64) ([]ticket.Update, error) {
	query := `
		SELECT id, ticket_id, message, created_at
		FROM ticket_updates
		WHERE ticket_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, storageErr("list ticket updates", err)
	}
	defer rows.Close()

	updates := make([]ticket.Update, 0)
	for rows.Next() {
		var u ticket.Update
		if err := rows.Scan(&u.ID, &u.TicketID, &u.Message, &u.CreatedAt); err != nil {
			return nil, storageErr("scan ticket update", err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list ticket updates", err)
	}

	return updates, nil
}
