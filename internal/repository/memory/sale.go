// internal/repository/memory/sale.go
package memory

import (
	"context"
	"sort"

	"laptoppro-service/internal/domain/sale"
	xerrors "laptoppro-service/internal/pkg/errors"
)

type saleRepo struct{ v *view }

func (r *saleRepo) Create(ctx context.Context, s *sale.Sale) error {
	defer r.v.lock()()
	d := r.v.store.data

	d.saleSeq++
	s.ID = d.saleSeq
	s.CreatedAt = r.v.store.now()

	stored := *s
	stored.Items = nil
	stored.Customer = nil
	d.sales[s.ID] = stored
	return nil
}

func (r *saleRepo) AssignInvoiceNumber(ctx context.Context, id int64, number string) error {
	defer r.v.lock()()
	d := r.v.store.data

	s, ok := d.sales[id]
	if !ok {
		return xerrors.NotFound("sale", id)
	}
	for otherID, other := range d.sales {
		if otherID != id && other.InvoiceNumber == number {
			return xerrors.Persistence("assign invoice number", xerrors.ErrConflict)
		}
	}
	s.InvoiceNumber = number
	d.sales[id] = s
	return nil
}

func (r *saleRepo) CreateItem(ctx context.Context, item *sale.Item) error {
	defer r.v.lock()()
	d := r.v.store.data

	if _, ok := d.sales[item.SaleID]; !ok {
		return xerrors.NotFound("sale", item.SaleID)
	}
	d.itemSeq++
	item.ID = d.itemSeq
	d.items = append(d.items, *item)
	return nil
}

func (r *saleRepo) FindByID(ctx context.Context, id int64) (*sale.Sale, error) {
	defer r.v.lock()()
	s, ok := r.v.store.data.sales[id]
	if !ok {
		return nil, xerrors.NotFound("sale", id)
	}
	r.hydrate(&s)
	return &s, nil
}

func (r *saleRepo) List(ctx context.Context, limit int) ([]sale.Sale, error) {
	defer r.v.lock()()
	out := make([]sale.Sale, 0, len(r.v.store.data.sales))
	for _, s := range r.v.store.data.sales {
		out = append(out, s)
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
	for i := range out {
		r.hydrate(&out[i])
	}
	return out, nil
}

func (r *saleRepo) hydrate(s *sale.Sale) {
	s.Customer = r.v.summary(s.CustomerID)
	s.Items = make([]sale.Item, 0)
	for _, it := range r.v.store.data.items {
		if it.SaleID == s.ID {
			s.Items = append(s.Items, it)
		}
	}
}
