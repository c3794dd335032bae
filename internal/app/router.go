// internal/app/router.go
package app

import (
	authHandler "laptoppro-service/internal/handlers/auth"
	customerHandler "laptoppro-service/internal/handlers/customer"
	healthHandler "laptoppro-service/internal/handlers/health"
	productHandler "laptoppro-service/internal/handlers/product"
	reminderHandler "laptoppro-service/internal/handlers/reminder"
	saleHandler "laptoppro-service/internal/handlers/sale"
	ticketHandler "laptoppro-service/internal/handlers/ticket"
	wsHandler "laptoppro-service/internal/handlers/websocket"
	"laptoppro-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	TicketHandler   *ticketHandler.TicketHandler
	SaleHandler     *saleHandler.SaleHandler
	ProductHandler  *productHandler.ProductHandler
	CustomerHandler *customerHandler.CustomerHandler
	ReminderHandler *reminderHandler.ReminderHandler
	HealthHandler   *healthHandler.HealthHandler
	WSHandler       *wsHandler.WebSocketHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", h.HealthHandler.Health)

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	api.POST("/auth/login", h.AuthHandler.Login)

	// ==================== Staff Routes ====================
	staff := api.Group("")
	staff.Use(h.AuthMiddleware.Auth())
	{
		staff.GET("/auth/me", h.AuthHandler.Me)
		staff.POST("/auth/logout", h.AuthHandler.Logout)

		tickets := staff.Group("/tickets")
		{
			tickets.POST("", h.TicketHandler.CreateTicket)
			tickets.GET("", h.TicketHandler.ListTickets)
			tickets.GET("/:id", h.TicketHandler.GetTicket)
			tickets.PATCH("/:id", h.TicketHandler.UpdateTicket)
		}

		sales := staff.Group("/sales")
		{
			sales.POST("", h.SaleHandler.CreateSale)
			sales.GET("", h.SaleHandler.ListSales)
			sales.GET("/:id", h.SaleHandler.GetSale)
		}

		products := staff.Group("/products")
		{
			products.GET("", h.ProductHandler.ListProducts)
			products.GET("/:id", h.ProductHandler.GetProduct)
		}

		customers := staff.Group("/customers")
		{
			customers.GET("", h.CustomerHandler.ListCustomers)
			customers.GET("/phone", h.CustomerHandler.GetCustomerByPhone)
		}
	}

	// ==================== Admin Routes ====================
	admin := api.Group("")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.POST("/products", h.ProductHandler.UpsertProduct)
		admin.PATCH("/products/:id", h.ProductHandler.UpdateProduct)
		admin.POST("/jobs/reminders", h.ReminderHandler.ScheduleReminders)
		admin.POST("/admin/staff", h.AuthHandler.CreateStaff)
	}
}
