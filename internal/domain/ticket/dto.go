// internal/domain/ticket/dto.go
package ticket

import (
	"laptoppro-service/internal/domain/customer"

	"github.com/shopspring/decimal"
)

type CreateTicketRequest struct {
	Customer customer.Input   `json:"customer" binding:"required"`
	Device   string           `json:"device" binding:"required,max=255"`
	Issue    string           `json:"issue" binding:"required"`
	Estimate *decimal.Decimal `json:"estimate"`
	Notes    *string          `json:"notes"`
	// Status is accepted for compatibility and ignored; new tickets start DROPPED_OFF.
	Status string `json:"status"`
}

type UpdateTicketRequest struct {
	Status        *string          `json:"status"`
	Estimate      *decimal.Decimal `json:"estimate"`
	Notes         *string          `json:"notes"`
	AppendMessage *string          `json:"append_message"`
}

type ListFilters struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

type TicketListResponse struct {
	Items []Ticket `json:"items"`
	Total int      `json:"total"`
}

type RescheduleRemindersRequest struct {
	TicketID int64 `json:"ticket_id" binding:"required,min=1"`
}
