package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gap-platform/backend/internal/auth"
	"github.com/gap-platform/backend/pkg/response"
)

const (
	// ContextGameID is the key for the resolved game ID in gin context.
	ContextGameID = "game_id"
	// ContextAPIKey is the key for the presenting API key in gin context.
	ContextAPIKey = "api_key"

	apiKeyPrefix = "RBXG-"
)

// APIKey returns a middleware that validates the device credential
// (X-API-Key header or Authorization bearer) and resolves it to a game.
// Missing or malformed keys are 401; a well-formed key that resolves to no
// game is 404.
func APIKey(repo *auth.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			header := c.GetHeader("Authorization")
			apiKey = strings.TrimPrefix(header, "Bearer ")
		}
		if apiKey == "" {
			response.Unauthorized(c, "missing API key")
			c.Abort()
			return
		}
		if !strings.HasPrefix(apiKey, apiKeyPrefix) {
			response.Unauthorized(c, "invalid API key format")
			c.Abort()
			return
		}

		game, err := repo.GetGameByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				response.NotFound(c, "game not found for API key")
			} else {
				response.Internal(c, "authentication failed")
			}
			c.Abort()
			return
		}

		c.Set(ContextGameID, game.ID)
		c.Set(ContextAPIKey, apiKey)
		c.Next()
	}
}
