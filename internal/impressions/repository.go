package impressions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gap-platform/backend/internal/models"
)

// ErrNoRecord is returned when no rollup exists for a (ad, game, day) key.
var ErrNoRecord = errors.New("performance record not found")

// Repository merges day groups into the performance store. All counter
// updates are expressed as atomic increments at the storage layer, so
// concurrent merges for the same (ad, game, day) never lose a delta.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an impressions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MergeGroup folds one day group into the store. The row upsert and the two
// map-counter tables are separate statements; a cancelled request leaves
// already-committed groups intact, which is the contract for batch ingestion.
func (r *Repository) MergeGroup(ctx context.Context, gameID uuid.UUID, g *DayGroup) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO performance_records (game_ad_id, game_id, day, views, view_duration, touches, last_event_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (game_ad_id, game_id, day) DO UPDATE SET
			views = performance_records.views + EXCLUDED.views,
			view_duration = performance_records.view_duration + EXCLUDED.view_duration,
			touches = performance_records.touches + EXCLUDED.touches,
			last_event_at = GREATEST(performance_records.last_event_at, EXCLUDED.last_event_at),
			updated_at = NOW()`,
		g.AdID, gameID, g.Day, g.Views, g.ViewDuration, g.Touches, g.LastEventAt)
	if err != nil {
		return err
	}

	for country, count := range g.Demographics {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO performance_demographics (game_ad_id, game_id, day, country, count)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_ad_id, game_id, day, country) DO UPDATE SET
				count = performance_demographics.count + EXCLUDED.count`,
			g.AdID, gameID, g.Day, country, count)
		if err != nil {
			return err
		}
	}
	for containerID, count := range g.Engagements {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO performance_engagements (game_ad_id, game_id, day, container_id, count)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_ad_id, game_id, day, container_id) DO UPDATE SET
				count = performance_engagements.count + EXCLUDED.count`,
			g.AdID, gameID, g.Day, containerID, count)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetRecord reads one rollup with its demographic and engagement maps
// assembled from the side tables.
func (r *Repository) GetRecord(ctx context.Context, adID, gameID uuid.UUID, day time.Time) (*models.PerformanceRecord, error) {
	var rec models.PerformanceRecord
	err := r.pool.QueryRow(ctx,
		`SELECT id, game_ad_id, game_id, day, views, view_duration, touches, last_event_at, created_at, updated_at
		 FROM performance_records WHERE game_ad_id = $1 AND game_id = $2 AND day = $3`,
		adID, gameID, day.Format("2006-01-02")).
		Scan(&rec.ID, &rec.GameAdID, &rec.GameID, &rec.Day, &rec.Views, &rec.ViewDuration, &rec.Touches,
			&rec.LastEventAt, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}

	rec.Demographics = make(map[string]int64)
	rec.Engagements = make(map[string]int64)

	rows, err := r.pool.Query(ctx,
		`SELECT country, count FROM performance_demographics
		 WHERE game_ad_id = $1 AND game_id = $2 AND day = $3`,
		adID, gameID, day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var country string
		var count int64
		if err := rows.Scan(&country, &count); err != nil {
			rows.Close()
			return nil, err
		}
		rec.Demographics[country] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT container_id, count FROM performance_engagements
		 WHERE game_ad_id = $1 AND game_id = $2 AND day = $3`,
		adID, gameID, day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var containerID string
		var count int64
		if err := rows.Scan(&containerID, &count); err != nil {
			rows.Close()
			return nil, err
		}
		rec.Engagements[containerID] = count
	}
	rows.Close()
	return &rec, rows.Err()
}
