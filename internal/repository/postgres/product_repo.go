// internal/repository/postgres/product_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"laptoppro-service/internal/domain/product"
	xerrors "laptoppro-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type ProductRepository struct {
	db Querier
}

func NewProductRepository(db Querier) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, sku, name, price, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every product ordered by name
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	defer rows.Close()

	products := make([]product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr("scan product", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list products", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("product", id)
	}
	if err != nil {
		return nil, storageErr("find product", err)
	}
	return p, nil
}

// LockByID reads the product row FOR UPDATE; the lock lives until commit or rollback.
func (r *ProductRepository) LockByID(ctx context.Context, id int64) (*product.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("product", id)
	}
	if err != nil {
		return nil, storageErr("lock product", err)
	}
	return p, nil
}

// DecrementStock subtracts quantity, refusing to take stock below zero.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`

	result, err := r.db.Exec(ctx, query, quantity, id)
	if err != nil {
		return storageErr("decrement stock", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	p, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return &xerrors.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   quantity,
		Available:   p.Stock,
	}
}

// UpsertBySKU inserts the product or overwrites name, price and stock of the row with the same SKU.
func (r *ProductRepository) UpsertBySKU(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (sku, name, price, stock)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku) DO UPDATE
		SET name = EXCLUDED.name,
		    price = EXCLUDED.price,
		    stock = EXCLUDED.stock,
		    updated_at = NOW()
		RETURNING ` + productColumns

	saved, err := scanProduct(r.db.QueryRow(ctx, query, p.SKU, p.Name, p.Price, p.Stock))
	if err != nil {
		return storageErr("upsert product", err)
	}
	*p = *saved
	return nil
}

// Update applies the non-nil patch fields
func (r *ProductRepository) Update(ctx context.Context, id int64, patch product.Patch) (*product.Product, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argPos := 1

	if patch.SKU != nil {
		sets = append(sets, fmt.Sprintf("sku = $%d", argPos))
		args = append(args, *patch.SKU)
		argPos++
	}
	if patch.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *patch.Name)
		argPos++
	}
	if patch.Price != nil {
		sets = append(sets, fmt.Sprintf("price = $%d", argPos))
		args = append(args, *patch.Price)
		argPos++
	}
	if patch.Stock != nil {
		sets = append(sets, fmt.Sprintf("stock = $%d", argPos))
		args = append(args, *patch.Stock)
		argPos++
	}

	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, productColumns)
	args = append(args, id)

	p, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("product", id)
	}
	if isUniqueViolation(err, "products_sku_key") {
		return nil, xerrors.Invalid("sku", "already used by another product")
	}
	if err != nil {
		return nil, storageErr("update product", err)
	}

	return p, nil
}
