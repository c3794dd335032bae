package sale

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"laptoppro-service/internal/domain/customer"
	"laptoppro-service/internal/domain/product"
	"laptoppro-service/internal/domain/sale"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository/memory"
	customersvc "laptoppro-service/internal/service/customer"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingCache struct {
	mu  sync.Mutex
	ids []int64
}

func (c *recordingCache) Invalidate(ctx context.Context, ids ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, ids...)
}

type fixture struct {
	store *memory.Store
	cache *recordingCache
	svc   *SaleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	cache := &recordingCache{}
	logger := zap.NewNop()
	return &fixture{
		store: store,
		cache: cache,
		svc:   NewSaleService(store, customersvc.NewCustomerService(store, logger), cache, nil, logger),
	}
}

func (f *fixture) product(t *testing.T, sku, price string, stock int) *product.Product {
	t.Helper()
	p := &product.Product{SKU: sku, Name: sku, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, f.store.Products().UpsertBySKU(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestCreateSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ssd := f.product(t, "SSD-512", "199.90", 10)
	cable := f.product(t, "USB-C", "15.50", 4)

	s, err := f.svc.CreateSale(ctx, &sale.CreateSaleRequest{
		PaymentMethod: "cash",
		Customer:      &customer.Input{Name: "Ali", Phone: "0123456789"},
		Items: []sale.LineInput{
			{ProductID: ssd.ID, Quantity: 2},
			{ProductID: cable.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, sale.PaymentMethodCash, s.PaymentMethod)
	assert.Regexp(t, regexp.MustCompile(`^INV-\d{4}-\d{5}$`), s.InvoiceNumber)
	require.Len(t, s.Items, 2)
	assert.True(t, s.Items[0].LineTotal.Equal(decimal.RequireFromString("399.80")))
	assert.True(t, s.Items[1].LineTotal.Equal(decimal.RequireFromString("46.50")))
	assert.True(t, s.Total.Equal(decimal.RequireFromString("446.30")))

	sum := decimal.Zero
	for _, it := range s.Items {
		assert.True(t, it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Equal(it.LineTotal))
		sum = sum.Add(it.LineTotal)
	}
	assert.True(t, sum.Equal(s.Total))

	assert.Equal(t, 8, f.stock(t, ssd.ID))
	assert.Equal(t, 1, f.stock(t, cable.ID))
	require.NotNil(t, s.Customer)
	assert.Equal(t, "Ali", s.Customer.Name)
	assert.ElementsMatch(t, []int64{ssd.ID, cable.ID}, f.cache.ids)

	stored, err := f.svc.GetSale(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.InvoiceNumber, stored.InvoiceNumber)
	assert.Len(t, stored.Items, 2)
}

func TestCreateSaleInvoiceUsesYearAndID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "RAM-8", "90.00", 5)

	s, err := f.svc.CreateSale(ctx, &sale.CreateSaleRequest{
		PaymentMethod: sale.PaymentMethodCard,
		Items:         []sale.LineInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	want := "INV-" + s.CreatedAt.Format("2006") + "-00001"
	assert.Equal(t, want, s.InvoiceNumber)
	assert.Nil(t, s.Customer)
}

func TestCreateSaleRejectsEmptyItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateSale(ctx, &sale.CreateSaleRequest{PaymentMethod: "CASH"})
	var ve *xerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items", ve.Field)

	list, err := f.svc.ListSales(ctx, &sale.ListFilters{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCreateSaleValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "KB-1", "60.00", 3)

	tests := []struct {
		name string
		req  sale.CreateSaleRequest
	}{
		{"unknown payment method", sale.CreateSaleRequest{PaymentMethod: "BITCOIN", Items: []sale.LineInput{{ProductID: p.ID, Quantity: 1}}}},
		{"zero quantity", sale.CreateSaleRequest{PaymentMethod: "CASH", Items: []sale.LineInput{{ProductID: p.ID, Quantity: 0}}}},
		{"negative quantity", sale.CreateSaleRequest{PaymentMethod: "CASH", Items: []sale.LineInput{{ProductID: p.ID, Quantity: -2}}}},
		{"missing product id", sale.CreateSaleRequest{PaymentMethod: "CASH", Items: []sale.LineInput{{Quantity: 1}}}},
		{"bad customer", sale.CreateSaleRequest{PaymentMethod: "CASH", Customer: &customer.Input{Name: "X"}, Items: []sale.LineInput{{ProductID: p.ID, Quantity: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.CreateSale(ctx, &req)
			assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
		})
	}

	assert.Equal(t, 3, f.stock(t, p.ID))
}

func TestCreateSaleRollsBackEarlierLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "A", "10.00", 5)
	b := f.product(t, "B", "20.00", 1)

	_, err := f.svc.CreateSale(ctx, &sale.CreateSaleRequest{
		PaymentMethod: "TRANSFER",
		Customer:      &customer.Input{Name: "Siti", Phone: "0199999999"},
		Items: []sale.LineInput{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 2},
		},
	})

	var stockErr *xerrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, b.ID, stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 5, f.stock(t, a.ID))
	assert.Equal(t, 1, f.stock(t, b.ID))

	list, err := f.svc.ListSales(ctx, &sale.ListFilters{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	customers, err := f.store.Customers().List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, customers)
	assert.Empty(t, f.cache.ids)
}

func TestCreateSaleDuplicateLinesCompound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "FAN", "35.00", 5)

	_, err := f.svc.CreateSale(ctx, &sale.CreateSaleRequest{
		PaymentMethod: "CASH",
		Items:         []sale.LineInput{{ProductID: p.ID, Quantity: 3}, {ProductID: p.ID, Quantity: 3}},
	})
	var stockErr *xerrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, f.stock(t, p.ID))

	s, err := f.svc.CreateSale(ctx, &sale.CreateSaleRequest{
		PaymentMethod: "CASH",
		Items:         []sale.LineInput{{ProductID: p.ID, Quantity: 2}, {ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.True(t, s.Total.Equal(decimal.RequireFromString("175.00")))
	assert.Zero(t, f.stock(t, p.ID))
}

func TestCreateSaleMissingProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "LCD", "450.00", 2)

	_, err := f.svc.CreateSale(ctx, &sale.CreateSaleRequest{
		PaymentMethod: "CARD",
		Items:         []sale.LineInput{{ProductID: p.ID, Quantity: 1}, {ProductID: 9999, Quantity: 1}},
	})
	var nf *xerrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(9999), nf.ID)
	assert.Equal(t, 2, f.stock(t, p.ID))
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "GPU", "999.00", 5)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		shortages int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateSale(ctx, &sale.CreateSaleRequest{
				PaymentMethod: "CASH",
				Items:         []sale.LineInput{{ProductID: p.ID, Quantity: 3}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if xerrors.Is(err, xerrors.ErrInsufficientStock) {
				shortages++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, shortages)
	assert.Equal(t, 2, f.stock(t, p.ID))
}

func TestIdenticalSalesAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "MOUSE", "25.00", 10)

	req := &sale.CreateSaleRequest{PaymentMethod: "CASH", Items: []sale.LineInput{{ProductID: p.ID, Quantity: 1}}}

	first, err := f.svc.CreateSale(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.CreateSale(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Equal(t, 8, f.stock(t, p.ID))

	list, err := f.svc.ListSales(ctx, &sale.ListFilters{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, second.ID, list.Items[0].ID)
}
