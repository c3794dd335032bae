// internal/handlers/ticket/ticket.go
package ticket

import (
	"net/http"
	"strconv"

	"laptoppro-service/internal/domain/ticket"
	"laptoppro-service/internal/pkg/response"
	service "laptoppro-service/internal/service/ticket"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	ticketService *service.TicketService
}

func NewTicketHandler(ticketService *service.TicketService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
	}
}

// CreateTicket registers a device drop-off
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req ticket.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.ticketService.CreateTicket(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, "failed to create ticket", err)
		return
	}

	response.Success(c, http.StatusCreated, "ticket created successfully", result)
}

// UpdateTicket changes status, estimate or notes and may append a log message
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid ticket ID", err)
		return
	}

	var req ticket.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.ticketService.UpdateTicket(c.Request.Context(), ticketID, &req)
	if err != nil {
		response.HandleError(c, "failed to update ticket", err)
		return
	}

	response.Success(c, http.StatusOK, "ticket updated successfully", result)
}

// GetTicket returns a ticket with its customer and update log
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid ticket ID", err)
		return
	}

	result, err := h.ticketService.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		response.HandleError(c, "ticket not found", err)
		return
	}

	response.Success(c, http.StatusOK, "ticket retrieved successfully", result)
}

// ListTickets lists tickets newest first, optionally by status
func (h *TicketHandler) ListTickets(c *gin.Context) {
	var filters ticket.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.ticketService.ListTickets(c.Request.Context(), &filters)
	if err != nil {
		response.HandleError(c, "failed to list tickets", err)
		return
	}

	response.Success(c, http.StatusOK, "tickets retrieved successfully", result)
}
