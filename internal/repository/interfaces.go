// internal/repository/interfaces.go
package repository

import (
	"context"

	"laptoppro-service/internal/domain/customer"
	"laptoppro-service/internal/domain/product"
	"laptoppro-service/internal/domain/sale"
	"laptoppro-service/internal/domain/staff"
	"laptoppro-service/internal/domain/ticket"
)

// CustomerRepository persists customers keyed by phone.
type CustomerRepository interface {
	// Upsert inserts the customer or merges into the row with the same phone.
	// Name is always overwritten; email only when non-nil.
	Upsert(ctx context.Context, name, phone string, email *string) (*customer.Customer, error)
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*customer.Customer, error)
	List(ctx context.Context, limit int) ([]customer.Customer, error)
}

type TicketRepository interface {
	// Create inserts the ticket and fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, t *ticket.Ticket) error
	AssignCode(ctx context.Context, id int64, code string) error
	// FindByID returns the ticket with its customer summary but without the log.
	FindByID(ctx context.Context, id int64) (*ticket.Ticket, error)
	List(ctx context.Context, status *ticket.Status, limit int) ([]ticket.Ticket, error)
	// Update applies the patch and refreshes updated_at, even for an empty patch.
	Update(ctx context.Context, id int64, patch ticket.Patch) error
	AppendUpdate(ctx context.Context, ticketID int64, message string) (*ticket.Update, error)
	ListUpdates(ctx context.Context, ticketID int64) ([]ticket.Update, error)
}

type ProductRepository interface {
	List(ctx context.Context) ([]product.Product, error)
	FindByID(ctx context.Context, id int64) (*product.Product, error)
	// LockByID reads the product row and holds an exclusive lock on it until
	// the surrounding transaction ends.
	LockByID(ctx context.Context, id int64) (*product.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) error
	UpsertBySKU(ctx context.Context, p *product.Product) error
	Update(ctx context.Context, id int64, patch product.Patch) (*product.Product, error)
}

type SaleRepository interface {
	// Create inserts the sale header and fills ID and CreatedAt.
	Create(ctx context.Context, s *sale.Sale) error
	AssignInvoiceNumber(ctx context.Context, id int64, number string) error
	CreateItem(ctx context.Context, item *sale.Item) error
	// FindByID returns the sale with its items and customer summary.
	FindByID(ctx context.Context, id int64) (*sale.Sale, error)
	List(ctx context.Context, limit int) ([]sale.Sale, error)
}

type StaffRepository interface {
	Create(ctx context.Context, u *staff.User) error
	FindByID(ctx context.Context, id int64) (*staff.User, error)
	FindByUsername(ctx context.Context, username string) (*staff.User, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Customers() CustomerRepository
	Tickets() TicketRepository
	Products() ProductRepository
	Sales() SaleRepository
	Staff() StaffRepository
}

// TxFunc runs against repositories bound to a single transaction.
type TxFunc func(ctx context.Context, tx Repositories) error

// Store is the storage collaborator. Outside WithinTx every call is its own
// unit of work; inside, a returned error rolls back everything fn did.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
	Close()
}
