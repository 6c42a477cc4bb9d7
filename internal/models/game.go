package models

import (
	"time"

	"github.com/google/uuid"
)

// Game is a third-party game world that hosts ad containers. ServerAPIKey is
// the device credential presented by the game server (RBXG- prefixed).
type Game struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	ServerAPIKey string    `json:"-"`
	APIKeyStatus string    `json:"-"` // "active" or "revoked"
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BrandUser is a brand-portal account. Authenticates with email/password and
// holds playlists and ads.
type BrandUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CompanyName  string    `json:"companyName"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
