// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int64           `json:"id" db:"id"`
	SKU       string          `json:"sku" db:"sku"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Patch is the validated set of fields an admin edit applies.
type Patch struct {
	SKU   *string
	Name  *string
	Price *decimal.Decimal
	Stock *int
}

func (p Patch) Empty() bool {
	return p.SKU == nil && p.Name == nil && p.Price == nil && p.Stock == nil
}
