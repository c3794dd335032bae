// internal/domain/customer/dto.go
package customer

// Input is the (name, phone, email?) tuple a ticket or sale carries.
type Input struct {
	Name  string  `json:"name" binding:"required,max=255"`
	Phone string  `json:"phone" binding:"required,max=32"`
	Email *string `json:"email" binding:"omitempty,max=255"`
}

type ListFilters struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}
