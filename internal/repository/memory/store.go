// internal/repository/memory/store.go
package memory

import (
	"context"
	"sync"
	"time"

	"laptoppro-service/internal/domain/customer"
	"laptoppro-service/internal/domain/product"
	"laptoppro-service/internal/domain/sale"
	"laptoppro-service/internal/domain/staff"
	"laptoppro-service/internal/domain/ticket"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository"
)

// Store keeps everything in process memory. A transaction holds the store-wide
// mutex from begin to commit, so transactions are fully serialized and a
// failed one is undone by restoring the snapshot taken at begin.
type Store struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

type dataset struct {
	customers   map[int64]customer.Customer
	tickets     map[int64]ticket.Ticket
	updates     []ticket.Update
	products    map[int64]product.Product
	sales       map[int64]sale.Sale
	items       []sale.Item
	users       map[int64]staff.User
	customerSeq int64
	ticketSeq   int64
	updateSeq   int64
	productSeq  int64
	saleSeq     int64
	itemSeq     int64
	userSeq     int64
}

func newDataset() *dataset {
	return &dataset{
		customers: make(map[int64]customer.Customer),
		tickets:   make(map[int64]ticket.Ticket),
		products:  make(map[int64]product.Product),
		sales:     make(map[int64]sale.Sale),
		users:     make(map[int64]staff.User),
	}
}

func (d *dataset) clone() *dataset {
	c := *d
	c.customers = make(map[int64]customer.Customer, len(d.customers))
	for k, v := range d.customers {
		c.customers[k] = v
	}
	c.tickets = make(map[int64]ticket.Ticket, len(d.tickets))
	for k, v := range d.tickets {
		c.tickets[k] = v
	}
	c.products = make(map[int64]product.Product, len(d.products))
	for k, v := range d.products {
		c.products[k] = v
	}
	c.sales = make(map[int64]sale.Sale, len(d.sales))
	for k, v := range d.sales {
		c.sales[k] = v
	}
	c.users = make(map[int64]staff.User, len(d.users))
	for k, v := range d.users {
		c.users[k] = v
	}
	c.updates = append([]ticket.Update(nil), d.updates...)
	c.items = append([]sale.Item(nil), d.items...)
	return &c
}

func NewStore() *Store {
	return &Store{
		data: newDataset(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source, for tests that need stable timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return xerrors.Persistence("begin transaction", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	if err = fn(ctx, &view{store: s, inTx: true}); err != nil {
		return err
	}
	if cerr := ctx.Err(); cerr != nil {
		return xerrors.Persistence("commit transaction", cerr)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() {}

func (s *Store) Customers() repository.CustomerRepository { return (&view{store: s}).Customers() }
func (s *Store) Tickets() repository.TicketRepository     { return (&view{store: s}).Tickets() }
func (s *Store) Products() repository.ProductRepository   { return (&view{store: s}).Products() }
func (s *Store) Sales() repository.SaleRepository         { return (&view{store: s}).Sales() }
func (s *Store) Staff() repository.StaffRepository        { return (&view{store: s}).Staff() }

// view binds repositories either to a running transaction, which already owns
// the mutex, or to single-call units of work that take it per call.
type view struct {
	store *Store
	inTx  bool
}

func (v *view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.store.mu.Lock()
	return v.store.mu.Unlock
}

func (v *view) Customers() repository.CustomerRepository { return &customerRepo{v} }
func (v *view) Tickets() repository.TicketRepository     { return &ticketRepo{v} }
func (v *view) Products() repository.ProductRepository   { return &productRepo{v} }
func (v *view) Sales() repository.SaleRepository         { return &saleRepo{v} }
func (v *view) Staff() repository.StaffRepository        { return &staffRepo{v} }

func (v *view) summary(id *int64) *customer.Summary {
	if id == nil {
		return nil
	}
	c, ok := v.store.data.customers[*id]
	if !ok {
		return nil
	}
	return c.Summary()
}

var (
	_ repository.Store        = (*Store)(nil)
	_ repository.Repositories = (*view)(nil)
)
