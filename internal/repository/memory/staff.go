// internal/repository/memory/staff.go
package memory

import (
	"context"

	"laptoppro-service/internal/domain/staff"
	xerrors "laptoppro-service/internal/pkg/errors"
)

type staffRepo struct{ v *view }

func (r *staffRepo) Create(ctx context.Context, u *staff.User) error {
	defer r.v.lock()()
	d := r.v.store.data

	for _, existing := range d.users {
		if existing.Username == u.Username {
			return xerrors.Invalid("username", "already taken")
		}
	}
	d.userSeq++
	u.ID = d.userSeq
	u.CreatedAt = r.v.store.now()
	d.users[u.ID] = *u
	return nil
}

func (r *staffRepo) FindByID(ctx context.Context, id int64) (*staff.User, error) {
	defer r.v.lock()()
	u, ok := r.v.store.data.users[id]
	if !ok {
		return nil, xerrors.NotFound("staff user", id)
	}
	return &u, nil
}

func (r *staffRepo) FindByUsername(ctx context.Context, username string) (*staff.User, error) {
	defer r.v.lock()()
	for _, u := range r.v.store.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, xerrors.ErrNotFound
}
