// internal/repository/memory/customer.go
package memory

import (
	"context"
	"sort"

	"laptoppro-service/internal/domain/customer"
	xerrors "laptoppro-service/internal/pkg/errors"
)

type customerRepo struct{ v *view }

func (r *customerRepo) Upsert(ctx context.Context, name, phone string, email *string) (*customer.Customer, error) {
	defer r.v.lock()()
	d := r.v.store.data

	for id, c := range d.customers {
		if c.Phone != phone {
			continue
		}
		c.Name = name
		if email != nil {
			e := *email
			c.Email = &e
		}
		d.customers[id] = c
		return &c, nil
	}

	d.customerSeq++
	c := customer.Customer{
		ID:        d.customerSeq,
		Name:      name,
		Phone:     phone,
		CreatedAt: r.v.store.now(),
	}
	if email != nil {
		e := *email
		c.Email = &e
	}
	d.customers[c.ID] = c
	return &c, nil
}

func (r *customerRepo) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	defer r.v.lock()()
	c, ok := r.v.store.data.customers[id]
	if !ok {
		return nil, xerrors.NotFound("customer", id)
	}
	return &c, nil
}

func (r *customerRepo) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	defer r.v.lock()()
	for _, c := range r.v.store.data.customers {
		if c.Phone == phone {
			return &c, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *customerRepo) List(ctx context.Context, limit int) ([]customer.Customer, error) {
	defer r.v.lock()()
	out := make([]customer.Customer, 0, len(r.v.store.data.customers))
	for _, c := range r.v.store.data.customers {
		out = append(out, c)
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
