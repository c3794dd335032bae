// internal/domain/sale/entity.go
package sale

import (
	"time"

	"laptoppro-service/internal/domain/customer"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// MinItems is the smallest number of lines a sale may carry.
const MinItems = 1

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

type Sale struct {
	ID            int64             `json:"id" db:"id"`
	InvoiceNumber string            `json:"invoice_number" db:"invoice_number"`
	Total         decimal.Decimal   `json:"total" db:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method" db:"payment_method"`
	CustomerID    *int64            `json:"-" db:"customer_id"`
	Customer      *customer.Summary `json:"customer"`
	Items         []Item            `json:"items"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// Item captures the price at the moment its product row was locked.
type Item struct {
	ID        int64           `json:"id" db:"id"`
	SaleID    int64           `json:"sale_id" db:"sale_id"`
	ProductID *int64          `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total" db:"line_total"`
}
