package memory

import (
	"context"
	"errors"
	"testing"

	"laptoppro-service/internal/domain/product"
	"laptoppro-service/internal/domain/ticket"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p := &product.Product{SKU: "SSD-512", Name: "SSD 512GB", Price: decimal.RequireFromString("199.00"), Stock: 4}
	require.NoError(t, s.Products().UpsertBySKU(ctx, p))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		require.NoError(t, tx.Products().DecrementStock(ctx, p.ID, 3))
		_, err := tx.Customers().Upsert(ctx, "Ali", "0123", nil)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)

	customers, err := s.Customers().List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var id int64
	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		tk := &ticket.Ticket{Device: "ThinkPad", Issue: "no power", Status: ticket.StatusDroppedOff}
		if err := tx.Tickets().Create(ctx, tk); err != nil {
			return err
		}
		id = tk.ID
		return tx.Tickets().AssignCode(ctx, tk.ID, "T-00001")
	})
	require.NoError(t, err)

	got, err := s.Tickets().FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "T-00001", got.TicketCode)
}

func TestCustomerUpsertKeepsEmailWhenOmitted(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	email := "ali@example.com"

	first, err := s.Customers().Upsert(ctx, "Ali", "0123", &email)
	require.NoError(t, err)

	second, err := s.Customers().Upsert(ctx, "Ali Bin Abu", "0123", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ali Bin Abu", second.Name)
	require.NotNil(t, second.Email)
	assert.Equal(t, email, *second.Email)
}

func TestDecrementStockNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p := &product.Product{SKU: "RAM-8", Name: "RAM 8GB", Price: decimal.NewFromInt(90), Stock: 2}
	require.NoError(t, s.Products().UpsertBySKU(ctx, p))

	err := s.Products().DecrementStock(ctx, p.ID, 3)
	var stockErr *xerrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
}

func TestProductUpdateRejectsDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := &product.Product{SKU: "A", Name: "Alpha", Price: decimal.NewFromInt(1)}
	b := &product.Product{SKU: "B", Name: "Beta", Price: decimal.NewFromInt(1)}
	require.NoError(t, s.Products().UpsertBySKU(ctx, a))
	require.NoError(t, s.Products().UpsertBySKU(ctx, b))

	dup := "A"
	_, err := s.Products().Update(ctx, b.ID, product.Patch{SKU: &dup})
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestTicketUpdatesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tk := &ticket.Ticket{Device: "MacBook", Issue: "keyboard", Status: ticket.StatusDroppedOff}
	require.NoError(t, s.Tickets().Create(ctx, tk))

	for _, msg := range []string{"first", "second", "third"} {
		_, err := s.Tickets().AppendUpdate(ctx, tk.ID, msg)
		require.NoError(t, err)
	}

	updates, err := s.Tickets().ListUpdates(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, updates, 3)
	assert.Equal(t, "first", updates[0].Message)
	assert.Equal(t, "third", updates[2].Message)
}
