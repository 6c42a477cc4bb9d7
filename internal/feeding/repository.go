package feeding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gap-platform/backend/config"
	"github.com/gap-platform/backend/internal/models"
)

// Repository reads the candidate ad set for a game. Eligibility goes through
// the schedule/deployment graph only; the legacy game_id column on ads is
// never consulted.
type Repository struct {
	pool *pgxpool.Pool
	cfg  config.FeedingConfig
}

// NewRepository creates a feeding repository.
func NewRepository(pool *pgxpool.Pool, cfg config.FeedingConfig) *Repository {
	return &Repository{pool: pool, cfg: cfg}
}

// EligibleCandidates returns every ad with a deployment targeting the game
// whose schedule window contains now and whose stored status is not
// CANCELLED. Each candidate carries a store-derived performance score for
// containers whose callers report none.
func (r *Repository) EligibleCandidates(ctx context.Context, gameID uuid.UUID, now time.Time) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ga.id, ga.name, ga.type, ga.assets, ga.brand_user_id, ga.game_id, ga.created_at, ga.updated_at
		 FROM game_ads ga
		 JOIN playlist_schedules ps ON ps.game_ad_id = ga.id
		 JOIN game_deployments gd ON gd.schedule_id = ps.id
		 WHERE gd.game_id = $1
		   AND ps.status <> $2
		   AND ps.start_date <= $3
		   AND ps.end_date > $3
		 ORDER BY ga.created_at`,
		gameID, models.ScheduleCancelled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var ad models.GameAd
		var assetsJSON []byte
		if err := rows.Scan(&ad.ID, &ad.Name, &ad.Type, &assetsJSON, &ad.BrandUserID, &ad.GameID,
			&ad.CreatedAt, &ad.UpdatedAt); err != nil {
			return nil, err
		}
		if len(assetsJSON) > 0 {
			if err := json.Unmarshal(assetsJSON, &ad.Assets); err != nil {
				return nil, err
			}
		}
		candidates = append(candidates, Candidate{Ad: ad})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	scores, err := r.fallbackScores(ctx, gameID, now)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].FallbackScore = scores[candidates[i].Ad.ID]
	}
	return candidates, nil
}

// fallbackScores derives a 0..1 performance score per ad from recent rollups:
// half from touch rate, half from average view duration capped at 30s.
func (r *Repository) fallbackScores(ctx context.Context, gameID uuid.UUID, now time.Time) (map[uuid.UUID]float64, error) {
	since := now.UTC().AddDate(0, 0, -r.cfg.PerformanceLookback).Truncate(24 * time.Hour)
	rows, err := r.pool.Query(ctx,
		`SELECT game_ad_id, COALESCE(SUM(views),0), COALESCE(SUM(view_duration),0), COALESCE(SUM(touches),0)
		 FROM performance_records
		 WHERE game_id = $1 AND day >= $2
		 GROUP BY game_ad_id`,
		gameID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[uuid.UUID]float64)
	for rows.Next() {
		var adID uuid.UUID
		var views, touches int64
		var viewDuration float64
		if err := rows.Scan(&adID, &views, &viewDuration, &touches); err != nil {
			return nil, err
		}
		scores[adID] = rollupScore(views, viewDuration, touches)
	}
	return scores, rows.Err()
}

func rollupScore(views int64, viewDuration float64, touches int64) float64 {
	if views <= 0 {
		return 0
	}
	touchRate := float64(touches) / float64(views)
	if touchRate > 1 {
		touchRate = 1
	}
	avgView := viewDuration / float64(views) / 30
	if avgView > 1 {
		avgView = 1
	}
	return touchRate*0.5 + avgView*0.5
}
