// internal/handlers/sale/sale.go
package sale

import (
	"net/http"
	"strconv"

	"laptoppro-service/internal/domain/sale"
	"laptoppro-service/internal/pkg/response"
	service "laptoppro-service/internal/service/sale"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	saleService *service.SaleService
}

func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// CreateSale records a multi-line sale against stock
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req sale.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.saleService.CreateSale(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, "failed to create sale", err)
		return
	}

	response.Success(c, http.StatusCreated, "sale created successfully", result)
}

// GetSale returns a sale with its lines
func (h *SaleHandler) GetSale(c *gin.Context) {
	saleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid sale ID", err)
		return
	}

	result, err := h.saleService.GetSale(c.Request.Context(), saleID)
	if err != nil {
		response.HandleError(c, "sale not found", err)
		return
	}

	response.Success(c, http.StatusOK, "sale retrieved successfully", result)
}

// ListSales lists sales newest first
func (h *SaleHandler) ListSales(c *gin.Context) {
	var filters sale.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.saleService.ListSales(c.Request.Context(), &filters)
	if err != nil {
		response.HandleError(c, "failed to list sales", err)
		return
	}

	response.Success(c, http.StatusOK, "sales retrieved successfully", result)
}
