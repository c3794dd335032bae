// internal/service/sale/sale.go
package sale

import (
	"context"
	"fmt"
	"strings"

	"laptoppro-service/internal/domain/sale"
	"laptoppro-service/internal/domain/websocket"
	"laptoppro-service/internal/pkg/code"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository"
	customersvc "laptoppro-service/internal/service/customer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// CacheInvalidator drops cached catalog entries after stock changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...int64)
}

type SaleService struct {
	store     repository.Store
	customers *customersvc.CustomerService
	cache     CacheInvalidator
	publisher websocket.Publisher
	logger    *zap.Logger
}

func NewSaleService(
	store repository.Store,
	customers *customersvc.CustomerService,
	cache CacheInvalidator,
	publisher websocket.Publisher,
	logger *zap.Logger,
) *SaleService {
	if publisher == nil {
		publisher = websocket.NopPublisher{}
	}
	return &SaleService{
		store:     store,
		customers: customers,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateSale records a multi-line sale. Every product row is locked before its
// stock is checked, the price is snapshotted from the locked row and stock is
// decremented line by line, so repeated products compound. Any failure rolls
// the whole sale back. Identical requests create independent sales.
func (s *SaleService) CreateSale(ctx context.Context, req *sale.CreateSaleRequest) (*sale.Sale, error) {
	method := sale.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(req.PaymentMethod))))
	if !method.Valid() {
		return nil, xerrors.Invalid("payment_method", "must be one of CASH, CARD, TRANSFER")
	}
	if len(req.Items) < sale.MinItems {
		return nil, xerrors.Invalid("items", "at least one item is required")
	}
	for i, line := range req.Items {
		if line.ProductID <= 0 {
			return nil, xerrors.Invalid(fmt.Sprintf("items[%d].product_id", i), "must be positive")
		}
		if line.Quantity <= 0 {
			return nil, xerrors.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
	}

	var created *sale.Sale
	touched := make([]int64, 0, len(req.Items))

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		header := &sale.Sale{PaymentMethod: method, Total: decimal.Zero}

		if req.Customer != nil {
			c, err := s.customers.Resolve(ctx, tx.Customers(), *req.Customer)
			if err != nil {
				return err
			}
			header.CustomerID = &c.ID
			header.Customer = c.Summary()
		}

		items := make([]sale.Item, 0, len(req.Items))
		for _, line := range req.Items {
			p, err := tx.Products().LockByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p.Stock < line.Quantity {
				return &xerrors.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   line.Quantity,
					Available:   p.Stock,
				}
			}

			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			header.Total = header.Total.Add(lineTotal)

			if err := tx.Products().DecrementStock(ctx, p.ID, line.Quantity); err != nil {
				return err
			}

			productID := p.ID
			items = append(items, sale.Item{
				ProductID: &productID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
				LineTotal: lineTotal,
			})
			touched = append(touched, p.ID)
		}

		if err := tx.Sales().Create(ctx, header); err != nil {
			return err
		}

		header.InvoiceNumber = code.Invoice(header.CreatedAt.Year(), header.ID)
		if err := tx.Sales().AssignInvoiceNumber(ctx, header.ID, header.InvoiceNumber); err != nil {
			return err
		}

		for i := range items {
			items[i].SaleID = header.ID
			if err := tx.Sales().CreateItem(ctx, &items[i]); err != nil {
				return err
			}
		}

		header.Items = items
		created = header
		return nil
	})
	if err != nil {
		err = xerrors.Persistence("create sale", err)
		if xerrors.Is(err, xerrors.ErrPersistence) {
			s.logger.Error("failed to create sale", zap.Error(err))
		} else {
			s.logger.Info("sale rejected", zap.Error(err))
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, touched...)
	}

	s.logger.Info("sale created",
		zap.Int64("sale_id", created.ID),
		zap.String("invoice_number", created.InvoiceNumber),
		zap.String("total", created.Total.StringFixed(2)),
		zap.String("payment_method", string(created.PaymentMethod)),
		zap.Int("lines", len(created.Items)),
	)

	s.publisher.Publish(websocket.ChannelSales, websocket.EventTypeSaleCreated, created)

	return created, nil
}

// GetSale retrieves a sale with its items
func (s *SaleService) GetSale(ctx context.Context, id int64) (*sale.Sale, error) {
	sl, err := s.store.Sales().FindByID(ctx, id)
	if err != nil {
		return nil, xerrors.Persistence("get sale", err)
	}
	return sl, nil
}

// ListSales returns sales newest first
func (s *SaleService) ListSales(ctx context.Context, filters *sale.ListFilters) (*sale.SaleListResponse, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	sales, err := s.store.Sales().List(ctx, limit)
	if err != nil {
		return nil, xerrors.Persistence("list sales", err)
	}

	return &sale.SaleListResponse{Items: sales, Total: len(sales)}, nil
}
