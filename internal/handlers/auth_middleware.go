package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

// AuthMiddleware authenticates bearer access tokens issued by the auth service.
type AuthMiddleware struct {
	authService services.AuthService
	logger      utils.Logger
}

func NewAuthMiddleware(authService services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, logger: logger}
}

// AuthMiddleware rejects requests without a valid access token and stores
// the current account in the gin context.
func (am *AuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: err.Error(),
			})
			return
		}

		user, err := am.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, services.ErrForbidden) {
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, ErrorResponse{
				Error:   "unauthorized",
				Message: fmt.Sprintf("invalid token: %v", err),
			})
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RequireApproved blocks pending accounts from protected views.
func (am *AuthMiddleware) RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: err.Error(),
			})
			return
		}
		if !user.IsApproved() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "account is awaiting approval",
				Details: gin.H{"status": user.Status},
			})
			return
		}
		c.Next()
	}
}

// RequireRoleMiddleware checks if user has one of the roles. Admins always pass.
func (am *AuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: err.Error(),
			})
			return
		}

		hasRequiredRole := false
		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			return
		}

		c.Next()
	}
}

// bearerToken reads the Authorization header. EventSource clients cannot set
// headers, so the access_token query parameter is accepted as well.
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("access_token"); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("authorization header missing")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" || tokenParts[1] == "" {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return tokenParts[1], nil
}

func setUser(c *gin.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("user", user)
	c.Set("user_role", user.Role)
	c.Set("user_email", user.Email)
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
