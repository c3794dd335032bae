// internal/service/customer/customer.go
package customer

import (
	"context"
	"strings"

	"laptoppro-service/internal/domain/customer"
	xerrors "laptoppro-service/internal/pkg/errors"
	"laptoppro-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type CustomerService struct {
	store    repository.Store
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCustomerService(store repository.Store, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// Resolve finds or creates the customer keyed by phone and merges name and
// email into it. It runs on repo so callers inside a transaction pass the
// transaction's repository and the merge commits or rolls back with them.
func (s *CustomerService) Resolve(ctx context.Context, repo repository.CustomerRepository, in customer.Input) (*customer.Customer, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return nil, xerrors.Invalid("customer.name", "is required")
	}
	if phone == "" {
		return nil, xerrors.Invalid("customer.phone", "is required")
	}

	var email *string
	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		if e != "" {
			if err := s.validate.Var(e, "email"); err != nil {
				return nil, xerrors.Invalid("customer.email", "must be a valid email address")
			}
			email = &e
		}
	}

	c, err := repo.Upsert(ctx, name, phone, email)
	if err != nil {
		return nil, xerrors.Persistence("resolve customer", err)
	}

	s.logger.Debug("customer resolved",
		zap.Int64("customer_id", c.ID),
		zap.String("phone", c.Phone),
	)

	return c, nil
}

// GetByPhone retrieves a customer by phone number
func (s *CustomerService) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, xerrors.Invalid("phone", "is required")
	}

	c, err := s.store.Customers().FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns customers newest first
func (s *CustomerService) List(ctx context.Context, filters customer.ListFilters) ([]customer.Customer, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return s.store.Customers().List(ctx, limit)
}
