// internal/domain/sale/dto.go
package sale

import "laptoppro-service/internal/domain/customer"

type LineInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CreateSaleRequest struct {
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Customer      *customer.Input `json:"customer"`
	Items         []LineInput     `json:"items"`
}

type ListFilters struct {
	Limit int `form:"limit"`
}

type SaleListResponse struct {
	Items []Sale `json:"items"`
	Total int    `json:"total"`
}
