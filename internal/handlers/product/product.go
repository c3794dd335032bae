// internal/handlers/product/product.go
package product

import (
	"net/http"
	"strconv"

	"laptoppro-service/internal/domain/product"
	"laptoppro-service/internal/pkg/response"
	service "laptoppro-service/internal/service/product"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// ListProducts returns the catalog
func (h *ProductHandler) ListProducts(c *gin.Context) {
	result, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		response.HandleError(c, "failed to list products", err)
		return
	}

	response.Success(c, http.StatusOK, "products retrieved successfully", result)
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid product ID", err)
		return
	}

	result, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		response.HandleError(c, "product not found", err)
		return
	}

	response.Success(c, http.StatusOK, "product retrieved successfully", result)
}

// ========== Admin Only Endpoints ==========

// UpsertProduct creates or replaces a product by SKU (admin only)
func (h *ProductHandler) UpsertProduct(c *gin.Context) {
	var req product.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.productService.UpsertProduct(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, "failed to save product", err)
		return
	}

	response.Success(c, http.StatusOK, "product saved successfully", result)
}

// UpdateProduct edits a product (admin only)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid product ID", err)
		return
	}

	var req product.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.productService.UpdateProduct(c.Request.Context(), productID, &req)
	if err != nil {
		response.HandleError(c, "failed to update product", err)
		return
	}

	response.Success(c, http.StatusOK, "product updated successfully", result)
}
