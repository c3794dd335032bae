package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"laptoppro-service/internal/db"
	"laptoppro-service/internal/domain/customer"
	"laptoppro-service/internal/domain/product"
	"laptoppro-service/internal/domain/sale"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository"
	customersvc "laptoppro-service/internal/service/customer"
	salesvc "laptoppro-service/internal/service/sale"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestDB connects to TEST_DATABASE_URL, applies the migrations and empties
// the domain tables. Tests in this file share the database and must not run in parallel.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.ConnectDB(ctx, db.PostgresConfig{URL: url, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool, zap.NewNop()))

	_, err = pool.Exec(ctx, `
		TRUNCATE sale_items, sales, ticket_updates, tickets, products, customers
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)

	return NewDB(pool, 2*time.Second)
}

func newSaleService(store *DB) *salesvc.SaleService {
	logger := zap.NewNop()
	return salesvc.NewSaleService(store, customersvc.NewCustomerService(store, logger), nil, nil, logger)
}

func seedProduct(t *testing.T, store *DB, sku, price string, stock int) *product.Product {
	t.Helper()
	p := &product.Product{SKU: sku, Name: sku, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, store.Products().UpsertBySKU(context.Background(), p))
	return p
}

func stockOf(t *testing.T, store *DB, id int64) int {
	t.Helper()
	p, err := store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestPostgresConcurrentSalesNeverOversell(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t)
	svc := newSaleService(store)
	p := seedProduct(t, store, "SSD-1T", "329.00", 5)

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.CreateSale(ctx, &sale.CreateSaleRequest{
				PaymentMethod: sale.PaymentMethodCash,
				Items:         []sale.LineInput{{ProductID: p.ID, Quantity: 3}},
			})
		}(i)
	}
	close(start)
	wg.Wait()

	committed, rejected := 0, 0
	for _, err := range errs {
		var stockErr *xerrors.InsufficientStockError
		switch {
		case err == nil:
			committed++
		case errors.As(err, &stockErr):
			rejected++
			assert.Equal(t, 3, stockErr.Requested)
			assert.Equal(t, 2, stockErr.Available)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 2, stockOf(t, store, p.ID))

	sales, err := store.Sales().List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestPostgresLockByIDBlocksOtherTransactions(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t)
	p := seedProduct(t, store, "RAM-16", "180.00", 4)

	holder, err := store.pool.Begin(ctx)
	require.NoError(t, err)
	defer holder.Rollback(ctx)

	_, err = NewProductRepository(holder).LockByID(ctx, p.ID)
	require.NoError(t, err)

	impatient := NewDB(store.pool, 100*time.Millisecond)
	lock := func(ctx context.Context, tx repository.Repositories) error {
		_, err := tx.Products().LockByID(ctx, p.ID)
		return err
	}

	err = impatient.WithinTx(ctx, lock)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrPersistence)
	assert.Contains(t, err.Error(), "lock timeout")

	require.NoError(t, holder.Rollback(ctx))
	assert.NoError(t, impatient.WithinTx(ctx, lock))
}

func TestPostgresSaleShortageRollsBackEarlierLines(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t)
	svc := newSaleService(store)
	ssd := seedProduct(t, store, "SSD-512", "199.90", 10)
	battery := seedProduct(t, store, "BAT-45W", "120.00", 1)

	_, err := svc.CreateSale(ctx, &sale.CreateSaleRequest{
		PaymentMethod: sale.PaymentMethodCard,
		Customer:      &customer.Input{Name: "Ali", Phone: "0123456789"},
		Items: []sale.LineInput{
			{ProductID: ssd.ID, Quantity: 2},
			{ProductID: battery.ID, Quantity: 3},
		},
	})
	var stockErr *xerrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, battery.ID, stockErr.ProductID)

	assert.Equal(t, 10, stockOf(t, store, ssd.ID))
	assert.Equal(t, 1, stockOf(t, store, battery.ID))

	sales, err := store.Sales().List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, sales)

	// the customer merge belonged to the same transaction
	_, err = store.Customers().FindByPhone(ctx, "0123456789")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestPostgresCustomerUpsertKeepsEmailWhenOmitted(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t)
	svc := customersvc.NewCustomerService(store, zap.NewNop())

	email := "ali@example.com"
	first, err := svc.Resolve(ctx, store.Customers(), customer.Input{Name: "Ali", Phone: "0123456789", Email: &email})
	require.NoError(t, err)

	second, err := svc.Resolve(ctx, store.Customers(), customer.Input{Name: "Ali Bin Abu", Phone: "0123456789"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ali Bin Abu", second.Name)
	require.NotNil(t, second.Email)
	assert.Equal(t, email, *second.Email)

	all, err := store.Customers().List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPostgresInvoiceNumberReadBack(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t)
	svc := newSaleService(store)
	p := seedProduct(t, store, "KB-MY", "60.00", 3)

	created, err := svc.CreateSale(ctx, &sale.CreateSaleRequest{
		PaymentMethod: sale.PaymentMethodTransfer,
		Items:         []sale.LineInput{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	stored, err := store.Sales().FindByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^INV-\d{4}-\d{5}$`), stored.InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("INV-%d-%05d", created.CreatedAt.Year(), created.ID), stored.InvoiceNumber)
	assert.Equal(t, created.InvoiceNumber, stored.InvoiceNumber)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("120.00")))

	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.True(t, stored.Items[0].UnitPrice.Equal(p.Price))
	require.NotNil(t, stored.Items[0].ProductID)
	assert.Equal(t, p.ID, *stored.Items[0].ProductID)
}
