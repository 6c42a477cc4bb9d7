package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gap-platform/backend/internal/models"
)

// ErrNotFound is returned when a credential does not resolve to an identity.
var ErrNotFound = errors.New("not found")

// Repository resolves credentials to caller identities: API keys to games,
// brand user IDs to brand accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetGameByAPIKey returns the game whose active server API key matches.
func (r *Repository) GetGameByAPIKey(ctx context.Context, apiKey string) (*models.Game, error) {
	const q = `SELECT id, name, description, COALESCE(thumbnail,''), server_api_key, server_api_key_status, created_at, updated_at
		FROM games WHERE server_api_key = $1 AND server_api_key_status = 'active'`
	var g models.Game
	err := r.pool.QueryRow(ctx, q, apiKey).Scan(&g.ID, &g.Name, &g.Description, &g.Thumbnail,
		&g.ServerAPIKey, &g.APIKeyStatus, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetBrandUserByID returns an active brand user by ID.
func (r *Repository) GetBrandUserByID(ctx context.Context, id uuid.UUID) (*models.BrandUser, error) {
	const q = `SELECT id, email, password_hash, company_name, is_active, created_at, updated_at
		FROM brand_users WHERE id = $1 AND is_active = TRUE`
	var u models.BrandUser
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CompanyName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetBrandUserByEmail returns a brand user by email (active or not; callers
// check IsActive for login).
func (r *Repository) GetBrandUserByEmail(ctx context.Context, email string) (*models.BrandUser, error) {
	const q = `SELECT id, email, password_hash, company_name, is_active, created_at, updated_at
		FROM brand_users WHERE email = $1`
	var u models.BrandUser
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CompanyName,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateBrandUser inserts a new brand user.
func (r *Repository) CreateBrandUser(ctx context.Context, u *models.BrandUser) error {
	const q = `INSERT INTO brand_users (id, email, password_hash, company_name, is_active)
		VALUES (gen_random_uuid(), $1, $2, $3, TRUE)
		RETURNING id, is_active, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, u.Email, u.PasswordHash, u.CompanyName).
		Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}
