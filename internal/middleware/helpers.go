// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetStaffID gets the authenticated staff ID from context
func GetStaffID(c *gin.Context) (int64, bool) {
	staffID, exists := c.Get(ctxStaffID)
	if !exists {
		return 0, false
	}

	id, ok := staffID.(int64)
	return id, ok
}

// MustGetStaffID gets staff ID from context or panics
func MustGetStaffID(c *gin.Context) int64 {
	staffID, exists := GetStaffID(c)
	if !exists {
		panic("staff_id not found in context")
	}
	return staffID
}

// GetJTI gets the token ID from context
func GetJTI(c *gin.Context) (string, bool) {
	return getString(c, ctxJTI)
}

// GetRole gets the staff role from context
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, ctxRole)
}

// GetUsername gets the staff username from context
func GetUsername(c *gin.Context) string {
	username, _ := getString(c, ctxUsername)
	return username
}

// IsAdmin checks if user is an admin
func IsAdmin(c *gin.Context) bool {
	role, _ := GetRole(c)
	return role == "admin"
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
