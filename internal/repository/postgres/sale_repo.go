// internal/repository/postgres/sale_repo.go
package postgres

import (
	"context"
	"errors"

	"laptoppro-service/internal/domain/customer"
	"laptoppro-service/internal/domain/sale"
	xerrors "laptoppro-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type SaleRepository struct {
	db Querier
}

func NewSaleRepository(db Querier) *SaleRepository {
	return &SaleRepository{db: db}
}

const saleColumns = `
	s.id, COALESCE(s.invoice_number, ''), s.total, s.payment_method, s.customer_id, s.created_at,
	c.id, c.name, c.phone, c.email
`

func scanSale(row pgx.Row) (*sale.Sale, error) {
	var (
		s        sale.Sale
		custID   *int64
		custName *string
		phone    *string
		email    *string
	)

	err := row.Scan(
		&s.ID, &s.InvoiceNumber, &s.Total, &s.PaymentMethod, &s.CustomerID, &s.CreatedAt,
		&custID, &custName, &phone, &email,
	)
	if err != nil {
		return nil, err
	}

	if custID != nil {
		s.Customer = &customer.Summary{ID: *custID, Name: *custName, Phone: *phone, Email: email}
	}
	s.Items = make([]sale.Item, 0)

	return &s, nil
}

// Create inserts the sale header; the invoice number is assigned once the id is known.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	query := `
		INSERT INTO sales (total, payment_method, customer_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, s.Total, s.PaymentMethod, s.CustomerID).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return storageErr("create sale", err)
	}

	return nil
}

func (r *SaleRepository) AssignInvoiceNumber(ctx context.Context, id int64, number string) error {
	result, err := r.db.Exec(ctx, `UPDATE sales SET invoice_number = $1 WHERE id = $2`, number, id)
	if err != nil {
		return storageErr("assign invoice number", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("sale", id)
	}
	return nil
}

func (r *SaleRepository) CreateItem(ctx context.Context, item *sale.Item) error {
	query := `
		INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal,
	).Scan(&item.ID)
	if err != nil {
		return storageErr("create sale item", err)
	}

	return nil
}

// FindByID retrieves a sale with its items
func (r *SaleRepository) FindByID(ctx context.Context, id int64) (*sale.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		WHERE s.id = $1
	`

	s, err := scanSale(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("sale", id)
	}
	if err != nil {
		return nil, storageErr("find sale", err)
	}

	items, err := r.listItems(ctx, []int64{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = append(s.Items, items[s.ID]...)

	return s, nil
}

// List returns sales newest first with their items
func (r *SaleRepository) List(ctx context.Context, limit int) ([]sale.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, storageErr("list sales", err)
	}
	defer rows.Close()

	sales := make([]sale.Sale, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, storageErr("scan sale", err)
		}
		sales = append(sales, *s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list sales", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return sales, nil
	}

	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = append(sales[i].Items, items[sales[i].ID]...)
	}

	return sales, nil
}

func (r *SaleRepository) listItems(ctx context.Context, saleIDs []int64) (map[int64][]sale.Item, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price, line_total
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, storageErr("list sale items", err)
	}
	defer rows.Close()

	items := make(map[int64][]sale.Item, len(saleIDs))
	for rows.Next() {
		var it sale.Item
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, storageErr("scan sale item", err)
		}
		items[it.SaleID] = append(items[it.SaleID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list sale items", err)
	}

	return items, nil
}
