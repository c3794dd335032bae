// internal/handlers/reminder/reminder.go
package reminder

import (
	"net/http"

	"laptoppro-service/internal/domain/ticket"
	"laptoppro-service/internal/pkg/response"
	service "laptoppro-service/internal/service/ticket"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	ticketService *service.TicketService
}

func NewReminderHandler(ticketService *service.TicketService) *ReminderHandler {
	return &ReminderHandler{
		ticketService: ticketService,
	}
}

// ScheduleReminders posts the follow-up series for a ticket again (admin only).
// Repeated calls post repeated series.
func (h *ReminderHandler) ScheduleReminders(c *gin.Context) {
	var req ticket.RescheduleRemindersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.ticketService.RescheduleReminders(c.Request.Context(), req.TicketID); err != nil {
		response.HandleError(c, "failed to schedule reminders", err)
		return
	}

	response.Success(c, http.StatusAccepted, "reminders scheduled", gin.H{"ticket_id": req.TicketID})
}
