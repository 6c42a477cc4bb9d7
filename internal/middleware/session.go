package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gap-platform/backend/internal/auth"
	"github.com/gap-platform/backend/pkg/response"
)

const (
	// ContextBrandUserID is the key for the brand user ID in gin context.
	ContextBrandUserID = "brand_user_id"
)

// BrandSession returns a middleware that validates the brand-portal session
// token and confirms the account is still active.
func BrandSession(jwtService *auth.JWTService, repo *auth.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if _, err := repo.GetBrandUserByID(c.Request.Context(), claims.BrandUserID); err != nil {
			response.Unauthorized(c, "account not found or inactive")
			c.Abort()
			return
		}
		c.Set(ContextBrandUserID, claims.BrandUserID)
		c.Next()
	}
}
