// internal/handlers/customer/customer.go
package customer

import (
	"net/http"

	"laptoppro-service/internal/domain/customer"
	"laptoppro-service/internal/pkg/response"
	service "laptoppro-service/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// ListCustomers lists customers newest first
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var filters customer.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	customers, err := h.customerService.List(c.Request.Context(), filters)
	if err != nil {
		response.HandleError(c, "failed to list customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved successfully", gin.H{
		"items": customers,
		"total": len(customers),
	})
}

// GetCustomerByPhone looks a customer up by phone number
func (h *CustomerHandler) GetCustomerByPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		response.Error(c, http.StatusBadRequest, "phone is required", nil)
		return
	}

	result, err := h.customerService.GetByPhone(c.Request.Context(), phone)
	if err != nil {
		response.HandleError(c, "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved successfully", result)
}
