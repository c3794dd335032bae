// internal/service/product/product.go
package product

import (
	"context"
	"strings"

	"laptoppro-service/internal/domain/product"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository"

	"go.uber.org/zap"
)

// Cache is the read-through catalog cache. Misses and failures look the same.
// Set and SetAll take the Version read before the storage lookup so a value
// loaded before an invalidation is never written after it.
type Cache interface {
	Version(ctx context.Context) string
	GetAll(ctx context.Context) ([]product.Product, bool)
	SetAll(ctx context.Context, products []product.Product, version string)
	Get(ctx context.Context, id int64) (*product.Product, bool)
	Set(ctx context.Context, p *product.Product, version string)
	Invalidate(ctx context.Context, ids ...int64)
}

type ProductService struct {
	store  repository.Store
	cache  Cache
	logger *zap.Logger
}

func NewProductService(store repository.Store, cache Cache, logger *zap.Logger) *ProductService {
	return &ProductService{store: store, cache: cache, logger: logger}
}

// ListProducts returns the catalog ordered by name
func (s *ProductService) ListProducts(ctx context.Context) (*product.ProductListResponse, error) {
	version := ""
	if s.cache != nil {
		if products, ok := s.cache.GetAll(ctx); ok {
			return &product.ProductListResponse{Items: products, Total: len(products)}, nil
		}
		version = s.cache.Version(ctx)
	}

	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, xerrors.Persistence("list products", err)
	}

	if s.cache != nil {
		s.cache.SetAll(ctx, products, version)
	}

	return &product.ProductListResponse{Items: products, Total: len(products)}, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	version := ""
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			return p, nil
		}
		version = s.cache.Version(ctx)
	}

	p, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, xerrors.Persistence("get product", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, p, version)
	}
	return p, nil
}

// UpsertProduct creates the product or replaces name, price and stock of the
// product with the same SKU.
func (s *ProductService) UpsertProduct(ctx context.Context, req *product.UpsertProductRequest) (*product.Product, error) {
	sku := strings.TrimSpace(req.SKU)
	name := strings.TrimSpace(req.Name)

	if sku == "" {
		return nil, xerrors.Invalid("sku", "is required")
	}
	if name == "" {
		return nil, xerrors.Invalid("name", "is required")
	}
	if req.Price.IsNegative() {
		return nil, xerrors.Invalid("price", "must not be negative")
	}
	if req.Stock < 0 {
		return nil, xerrors.Invalid("stock", "must not be negative")
	}

	p := &product.Product{SKU: sku, Name: name, Price: req.Price.Round(2), Stock: req.Stock}
	if err := s.store.Products().UpsertBySKU(ctx, p); err != nil {
		err = xerrors.Persistence("upsert product", err)
		s.logger.Error("failed to upsert product", zap.String("sku", sku), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, p.ID)

	s.logger.Info("product saved",
		zap.Int64("product_id", p.ID),
		zap.String("sku", p.SKU),
		zap.Int("stock", p.Stock),
	)

	return p, nil
}

// UpdateProduct applies a partial admin edit
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *product.UpdateProductRequest) (*product.Product, error) {
	var patch product.Patch

	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku == "" {
			return nil, xerrors.Invalid("sku", "must not be empty")
		}
		patch.SKU = &sku
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, xerrors.Invalid("name", "must not be empty")
		}
		patch.Name = &name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, xerrors.Invalid("price", "must not be negative")
		}
		price := req.Price.Round(2)
		patch.Price = &price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, xerrors.Invalid("stock", "must not be negative")
		}
		patch.Stock = req.Stock
	}

	if patch.Empty() {
		return nil, xerrors.Invalid("", "at least one of sku, name, price or stock is required")
	}

	p, err := s.store.Products().Update(ctx, id, patch)
	if err != nil {
		err = xerrors.Persistence("update product", err)
		if xerrors.Is(err, xerrors.ErrPersistence) {
			s.logger.Error("failed to update product", zap.Int64("product_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.invalidate(ctx, p.ID)

	s.logger.Info("product updated", zap.Int64("product_id", p.ID))
	return p, nil
}

func (s *ProductService) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}
