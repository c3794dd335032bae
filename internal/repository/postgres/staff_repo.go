// internal/repository/postgres/staff_repo.go
package postgres

import (
	"context"
	"errors"

	"laptoppro-service/internal/domain/staff"
	xerrors "laptoppro-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type StaffRepository struct {
	db Querier
}

func NewStaffRepository(db Querier) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) Create(ctx context.Context, u *staff.User) error {
	query := `
		INSERT INTO staff_users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, u.Username, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err, "") {
		return xerrors.Invalid("username", "already taken")
	}
	if err != nil {
		return storageErr("create staff user", err)
	}

	return nil
}

func (r *StaffRepository) FindByID(ctx context.Context, id int64) (*staff.User, error) {
	query := `SELECT id, username, password_hash, role, created_at FROM staff_users WHERE id = $1`

	var u staff.User
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("staff user", id)
	}
	if err != nil {
		return nil, storageErr("find staff user", err)
	}

	return &u, nil
}

func (r *StaffRepository) FindByUsername(ctx context.Context, username string) (*staff.User, error) {
	query := `SELECT id, username, password_hash, role, created_at FROM staff_users WHERE username = $1`

	var u staff.User
	err := r.db.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find staff user", err)
	}

	return &u, nil
}
