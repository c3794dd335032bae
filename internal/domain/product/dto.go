// internal/domain/product/dto.go
package product

import "github.com/shopspring/decimal"

type UpsertProductRequest struct {
	SKU   string          `json:"sku" binding:"required,max=64"`
	Name  string          `json:"name" binding:"required,max=255"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" binding:"min=0"`
}

type UpdateProductRequest struct {
	SKU   *string          `json:"sku" binding:"omitempty,max=64"`
	Name  *string          `json:"name" binding:"omitempty,max=255"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

type ProductListResponse struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}
