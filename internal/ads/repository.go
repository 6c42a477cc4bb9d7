package ads

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gap-platform/backend/internal/models"
)

// ErrNotFound is returned when an ad does not exist or is not owned by the
// caller.
var ErrNotFound = errors.New("ad not found")

// Repository handles game ad persistence. Assets are stored as a jsonb
// document on the row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an ads repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const adCols = `id, name, type, assets, brand_user_id, game_id, created_at, updated_at`

func scanAd(row pgx.Row) (*models.GameAd, error) {
	var ad models.GameAd
	var assetsJSON []byte
	err := row.Scan(&ad.ID, &ad.Name, &ad.Type, &assetsJSON, &ad.BrandUserID, &ad.GameID, &ad.CreatedAt, &ad.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(assetsJSON) > 0 {
		if err := json.Unmarshal(assetsJSON, &ad.Assets); err != nil {
			return nil, err
		}
	}
	return &ad, nil
}

// ListByBrand returns all ads owned by a brand user, newest first.
func (r *Repository) ListByBrand(ctx context.Context, brandUserID uuid.UUID) ([]models.GameAd, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+adCols+` FROM game_ads WHERE brand_user_id = $1 ORDER BY created_at DESC`, brandUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.GameAd
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *ad)
	}
	return list, rows.Err()
}

// GetByID returns one ad owned by the brand user.
func (r *Repository) GetByID(ctx context.Context, id, brandUserID uuid.UUID) (*models.GameAd, error) {
	return scanAd(r.pool.QueryRow(ctx,
		`SELECT `+adCols+` FROM game_ads WHERE id = $1 AND brand_user_id = $2`, id, brandUserID))
}

// Create inserts a new ad.
func (r *Repository) Create(ctx context.Context, ad *models.GameAd) error {
	assetsJSON, err := json.Marshal(ad.Assets)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO game_ads (id, name, type, assets, brand_user_id, game_id)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		ad.Name, ad.Type, assetsJSON, ad.BrandUserID, ad.GameID).
		Scan(&ad.ID, &ad.CreatedAt, &ad.UpdatedAt)
}

// Update rewrites the mutable fields of an ad owned by the brand user.
func (r *Repository) Update(ctx context.Context, ad *models.GameAd, brandUserID uuid.UUID) error {
	assetsJSON, err := json.Marshal(ad.Assets)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE game_ads SET name = $3, type = $4, assets = $5, updated_at = NOW()
		 WHERE id = $1 AND brand_user_id = $2`,
		ad.ID, brandUserID, ad.Name, ad.Type, assetsJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an ad owned by the brand user. Schedules referencing it go
// away via FK cascade.
func (r *Repository) Delete(ctx context.Context, id, brandUserID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM game_ads WHERE id = $1 AND brand_user_id = $2`, id, brandUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
