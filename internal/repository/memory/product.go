// internal/repository/memory/product.go
package memory

import (
	"context"
	"sort"

	"laptoppro-service/internal/domain/product"
	xerrors "laptoppro-service/internal/pkg/errors"
)

type productRepo struct{ v *view }

func (r *productRepo) List(ctx context.Context) ([]product.Product, error) {
	defer r.v.lock()()
	out := make([]product.Product, 0, len(r.v.store.data.products))
	for _, p := range r.v.store.data.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	defer r.v.lock()()
	p, ok := r.v.store.data.products[id]
	if !ok {
		return nil, xerrors.NotFound("product", id)
	}
	return &p, nil
}

// LockByID is FindByID: inside a transaction the store mutex is already the lock.
func (r *productRepo) LockByID(ctx context.Context, id int64) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *productRepo) DecrementStock(ctx context.Context, id int64, quantity int) error {
	defer r.v.lock()()
	d := r.v.store.data

	p, ok := d.products[id]
	if !ok {
		return xerrors.NotFound("product", id)
	}
	if p.Stock < quantity {
		return &xerrors.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   quantity,
			Available:   p.Stock,
		}
	}
	p.Stock -= quantity
	p.UpdatedAt = r.v.store.now()
	d.products[id] = p
	return nil
}

func (r *productRepo) UpsertBySKU(ctx context.Context, p *product.Product) error {
	defer r.v.lock()()
	d := r.v.store.data
	now := r.v.store.now()

	for id, existing := range d.products {
		if existing.SKU != p.SKU {
			continue
		}
		existing.Name = p.Name
		existing.Price = p.Price
		existing.Stock = p.Stock
		existing.UpdatedAt = now
		d.products[id] = existing
		*p = existing
		return nil
	}

	d.productSeq++
	p.ID = d.productSeq
	p.CreatedAt = now
	p.UpdatedAt = now
	d.products[p.ID] = *p
	return nil
}

func (r *productRepo) Update(ctx context.Context, id int64, patch product.Patch) (*product.Product, error) {
	defer r.v.lock()()
	d := r.v.store.data

	p, ok := d.products[id]
	if !ok {
		return nil, xerrors.NotFound("product", id)
	}
	if patch.SKU != nil {
		for otherID, other := range d.products {
			if otherID != id && other.SKU == *patch.SKU {
				return nil, xerrors.Invalid("sku", "already used by another product")
			}
		}
		p.SKU = *patch.SKU
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	p.UpdatedAt = r.v.store.now()
	d.products[id] = p
	return &p, nil
}
