// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "laptoppro-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StockShortage is the data attached to a 409 so the client can adjust the sale.
type StockShortage struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// Abort before writing so later handlers in the chain do not run.
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// HandleError maps the error taxonomy onto HTTP statuses. Storage failures are
// reported with an opaque message; their detail is for the logs only.
func HandleError(c *gin.Context, message string, err error) {
	var (
		stockErr *xerrors.InsufficientStockError
		validErr *xerrors.ValidationError
		notFound *xerrors.NotFoundError
	)

	switch {
	case errors.As(err, &stockErr):
		Error(c, http.StatusConflict, stockErr.Error(), xerrors.ErrInsufficientStock, StockShortage{
			ProductID:   stockErr.ProductID,
			ProductName: stockErr.ProductName,
			Requested:   stockErr.Requested,
			Available:   stockErr.Available,
		})
	case errors.As(err, &validErr):
		ValidationError(c, message, validErr)
	case errors.As(err, &notFound):
		Error(c, http.StatusNotFound, notFound.Error(), xerrors.ErrNotFound)
	case errors.Is(err, xerrors.ErrNotFound):
		NotFound(c, message)
	case errors.Is(err, xerrors.ErrUnauthorized):
		Unauthorized(c, message)
	case errors.Is(err, xerrors.ErrForbidden):
		Forbidden(c, message)
	case errors.Is(err, xerrors.ErrRateLimited):
		Error(c, http.StatusTooManyRequests, message, xerrors.ErrRateLimited)
	default:
		Error(c, http.StatusInternalServerError, message, xerrors.ErrPersistence)
	}
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}
