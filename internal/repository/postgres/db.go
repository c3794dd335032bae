// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DB struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func NewDB(pool *pgxpool.Pool, lockTimeout time.Duration) *DB {
	return &DB{pool: pool, lockTimeout: lockTimeout}
}

func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.pool.Begin(ctx)
}

// WithinTx runs fn in one transaction. Row locks taken by fn are bounded by the
// configured lock timeout and released when the transaction ends either way.
func (db *DB) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return xerrors.Persistence("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if db.lockTimeout > 0 {
		setting := fmt.Sprintf("%dms", db.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, setting); err != nil {
			return xerrors.Persistence("set lock timeout", err)
		}
	}

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return xerrors.Persistence("commit transaction", err)
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) Customers() repository.CustomerRepository { return NewCustomerRepository(db.pool) }
func (db *DB) Tickets() repository.TicketRepository     { return NewTicketRepository(db.pool) }
func (db *DB) Products() repository.ProductRepository   { return NewProductRepository(db.pool) }
func (db *DB) Sales() repository.SaleRepository         { return NewSaleRepository(db.pool) }
func (db *DB) Staff() repository.StaffRepository        { return NewStaffRepository(db.pool) }

type repositories struct {
	q Querier
}

func newRepositories(q Querier) *repositories {
	return &repositories{q: q}
}

func (r *repositories) Customers() repository.CustomerRepository { return NewCustomerRepository(r.q) }
func (r *repositories) Tickets() repository.TicketRepository     { return NewTicketRepository(r.q) }
func (r *repositories) Products() repository.ProductRepository   { return NewProductRepository(r.q) }
func (r *repositories) Sales() repository.SaleRepository         { return NewSaleRepository(r.q) }
func (r *repositories) Staff() repository.StaffRepository        { return NewStaffRepository(r.q) }

const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// storageErr turns a driver error into a *PersistenceError, naming lock timeouts.
func storageErr(op string, err error) error {
	if pgCode(err) == pgLockNotAvailable {
		return xerrors.Persistence(op, fmt.Errorf("lock timeout: %w", err))
	}
	return xerrors.Persistence(op, err)
}

var (
	_ repository.Store        = (*DB)(nil)
	_ repository.Repositories = (*repositories)(nil)
)
