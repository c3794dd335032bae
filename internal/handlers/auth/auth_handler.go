// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"laptoppro-service/internal/domain/staff"
	"laptoppro-service/internal/middleware"
	"laptoppro-service/internal/pkg/response"
	authUsecase "laptoppro-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Login ==========

// Login handles staff login
func (h *AuthHandler) Login(c *gin.Context) {
	var req staff.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.logger.Info("login failed",
			zap.String("username", req.Username),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.HandleError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// Logout revokes the caller's token (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	staffID := middleware.MustGetStaffID(c)
	jti, _ := middleware.GetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), staffID, jti); err != nil {
		h.logger.Error("logout failed", zap.Int64("staff_id", staffID), zap.Error(err))
		response.HandleError(c, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// Me returns the authenticated staff user
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.MustGetStaffID(c))
	if err != nil {
		response.HandleError(c, "failed to get profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved successfully", user)
}

// ========== Admin ==========

// CreateStaff registers a new staff account (admin only)
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	var req staff.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	user, err := h.authService.CreateStaff(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, "failed to create staff user", err)
		return
	}

	h.logger.Info("staff user created by admin",
		zap.Int64("admin_id", middleware.MustGetStaffID(c)),
		zap.Int64("staff_id", user.ID),
	)

	response.Success(c, http.StatusCreated, "staff user created successfully", user)
}
