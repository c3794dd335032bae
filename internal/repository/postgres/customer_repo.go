// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"

	"laptoppro-service/internal/domain/customer"
	xerrors "laptoppro-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type CustomerRepository struct {
	db Querier
}

func NewCustomerRepository(db Querier) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Upsert inserts or merges on phone. A NULL email never replaces a stored one.
func (r *CustomerRepository) Upsert(ctx context.Context, name, phone string, email *string) (*customer.Customer, error) {
	query := `
		INSERT INTO customers (name, phone, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE
		SET name  = EXCLUDED.name,
		    email = COALESCE(EXCLUDED.email, customers.email)
		RETURNING id, name, phone, email, created_at
	`

	var c customer.Customer
	err := r.db.QueryRow(ctx, query, name, phone, email).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt,
	)
	if err != nil {
		return nil, storageErr("upsert customer", err)
	}

	return &c, nil
}

// FindByID retrieves a customer by ID
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := `SELECT id, name, phone, email, created_at FROM customers WHERE id = $1`

	var c customer.Customer
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("customer", id)
	}
	if err != nil {
		return nil, storageErr("find customer", err)
	}

	return &c, nil
}

// FindByPhone retrieves a customer by phone number
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	query := `SELECT id, name, phone, email, created_at FROM customers WHERE phone = $1`

	var c customer.Customer
	err := r.db.QueryRow(ctx, query, phone).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find customer by phone", err)
	}

	return &c, nil
}

// List returns customers newest first
func (r *CustomerRepository) List(ctx context.Context, limit int) ([]customer.Customer, error) {
	query := `
		SELECT id, name, phone, email, created_at
		FROM customers
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, storageErr("list customers", err)
	}
	defer rows.Close()

	customers := make([]customer.Customer, 0)
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
			return nil, storageErr("scan customer", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list customers", err)
	}

	return customers, nil
}
