package playlists

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gap-platform/backend/internal/models"
)

// ErrNotFound covers both "absent" and "not owned by caller": the two are
// indistinguishable to the API to avoid leaking playlist existence.
var ErrNotFound = errors.New("playlist not found")

// ScheduleInput is one schedule in a create/update request. A nil ID means a
// new schedule; GameIDs is the full replace-set of target games.
type ScheduleInput struct {
	ID           *uuid.UUID
	GameAdID     uuid.UUID
	StartDate    time.Time
	DurationDays int
	GameIDs      []uuid.UUID
}

// Repository handles playlist, schedule, and deployment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a playlist repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const playlistCols = `id, name, description, brand_user_id, created_at, updated_at`

func scanPlaylist(row pgx.Row) (*models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.BrandUserID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByBrand returns all playlists for a brand user with schedules and
// deployments attached, newest first.
func (r *Repository) ListByBrand(ctx context.Context, brandUserID uuid.UUID) ([]models.Playlist, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+playlistCols+` FROM playlists WHERE brand_user_id = $1 ORDER BY created_at DESC`, brandUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Playlist
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.BrandUserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSchedules(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID returns one playlist owned by the brand user, with schedules and
// deployments attached.
func (r *Repository) GetByID(ctx context.Context, id, brandUserID uuid.UUID) (*models.Playlist, error) {
	p, err := scanPlaylist(r.pool.QueryRow(ctx,
		`SELECT `+playlistCols+` FROM playlists WHERE id = $1 AND brand_user_id = $2`, id, brandUserID))
	if err != nil {
		return nil, err
	}
	list := []models.Playlist{*p}
	if err := r.attachSchedules(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *Repository) attachSchedules(ctx context.Context, playlists []models.Playlist) error {
	if len(playlists) == 0 {
		return nil
	}
	playlistIDs := make([]uuid.UUID, len(playlists))
	index := make(map[uuid.UUID]*models.Playlist, len(playlists))
	for i := range playlists {
		playlistIDs[i] = playlists[i].ID
		index[playlists[i].ID] = &playlists[i]
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, playlist_id, game_ad_id, start_date, duration_days, end_date, status, created_at, updated_at
		 FROM playlist_schedules WHERE playlist_id = ANY($1) ORDER BY created_at`, playlistIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	scheduleIndex := make(map[uuid.UUID]*models.Schedule)
	var scheduleIDs []uuid.UUID
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(&s.ID, &s.PlaylistID, &s.GameAdID, &s.StartDate, &s.DurationDays, &s.EndDate,
			&s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		p := index[s.PlaylistID]
		p.Schedules = append(p.Schedules, s)
		scheduleIDs = append(scheduleIDs, s.ID)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range playlists {
		for j := range playlists[i].Schedules {
			scheduleIndex[playlists[i].Schedules[j].ID] = &playlists[i].Schedules[j]
		}
	}
	if len(scheduleIDs) == 0 {
		return nil
	}

	depRows, err := r.pool.Query(ctx,
		`SELECT id, schedule_id, game_id, status, created_at, updated_at
		 FROM game_deployments WHERE schedule_id = ANY($1) ORDER BY created_at`, scheduleIDs)
	if err != nil {
		return err
	}
	defer depRows.Close()
	for depRows.Next() {
		var d models.Deployment
		if err := depRows.Scan(&d.ID, &d.ScheduleID, &d.GameID, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return err
		}
		s := scheduleIndex[d.ScheduleID]
		s.Deployments = append(s.Deployments, d)
	}
	return depRows.Err()
}

// Create inserts a playlist with its schedules and deployments in one
// transaction. Duplicate target game IDs within a schedule are dropped so at
// most one deployment exists per (schedule, game).
func (r *Repository) Create(ctx context.Context, p *models.Playlist, schedules []ScheduleInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO playlists (id, name, description, brand_user_id)
		 VALUES (gen_random_uuid(), $1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.BrandUserID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	for _, in := range schedules {
		if _, err := insertSchedule(ctx, tx, p.ID, in); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func insertSchedule(ctx context.Context, tx pgx.Tx, playlistID uuid.UUID, in ScheduleInput) (uuid.UUID, error) {
	scheduleID := uuid.New()
	if in.ID != nil {
		scheduleID = *in.ID
	}
	endDate := ScheduleEndDate(in.StartDate, in.DurationDays)
	_, err := tx.Exec(ctx,
		`INSERT INTO playlist_schedules (id, playlist_id, game_ad_id, start_date, duration_days, end_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		scheduleID, playlistID, in.GameAdID, in.StartDate, in.DurationDays, endDate, models.ScheduleScheduled)
	if err != nil {
		return uuid.Nil, err
	}
	return scheduleID, insertDeployments(ctx, tx, scheduleID, in.GameIDs)
}

// dedupeGameIDs drops repeated target game IDs, keeping first-seen order.
// Together with delete-before-reinsert in replaceSchedule and the
// UNIQUE(schedule_id, game_id) constraint, this keeps deployments at one per
// (schedule, game) no matter how often a replace-set overlaps itself.
func dedupeGameIDs(gameIDs []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(gameIDs))
	unique := make([]uuid.UUID, 0, len(gameIDs))
	for _, gameID := range gameIDs {
		if _, dup := seen[gameID]; dup {
			continue
		}
		seen[gameID] = struct{}{}
		unique = append(unique, gameID)
	}
	return unique
}

func insertDeployments(ctx context.Context, tx pgx.Tx, scheduleID uuid.UUID, gameIDs []uuid.UUID) error {
	for _, gameID := range dedupeGameIDs(gameIDs) {
		_, err := tx.Exec(ctx,
			`INSERT INTO game_deployments (id, schedule_id, game_id, status)
			 VALUES (gen_random_uuid(), $1, $2, $3)
			 ON CONFLICT (schedule_id, game_id) DO NOTHING`,
			scheduleID, gameID, models.DeploymentPending)
		if err != nil {
			return err
		}
	}
	return nil
}

// Update applies a partial update to a playlist owned by the brand user. A
// non-nil schedules slice is a full replace-set: existing schedules named in
// the request are rewritten (status reset to SCHEDULED, deployments
// recreated), new ones are created, and schedules absent from the request are
// removed. The whole replacement is atomic.
func (r *Repository) Update(ctx context.Context, id, brandUserID uuid.UUID, name, description *string, schedules []ScheduleInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE playlists SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			updated_at = NOW()
		 WHERE id = $1 AND brand_user_id = $2`,
		id, brandUserID, name, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if schedules != nil {
		existing := make(map[uuid.UUID]bool)
		rows, err := tx.Query(ctx, `SELECT id FROM playlist_schedules WHERE playlist_id = $1`, id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var sid uuid.UUID
			if err := rows.Scan(&sid); err != nil {
				rows.Close()
				return err
			}
			existing[sid] = false
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, in := range schedules {
			if in.ID != nil {
				if _, ok := existing[*in.ID]; ok {
					existing[*in.ID] = true
					if err := replaceSchedule(ctx, tx, *in.ID, in); err != nil {
						return err
					}
					continue
				}
			}
			if _, err := insertSchedule(ctx, tx, id, in); err != nil {
				return err
			}
		}

		for sid, kept := range existing {
			if kept {
				continue
			}
			if _, err := tx.Exec(ctx, `DELETE FROM playlist_schedules WHERE id = $1`, sid); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

func replaceSchedule(ctx context.Context, tx pgx.Tx, scheduleID uuid.UUID, in ScheduleInput) error {
	endDate := ScheduleEndDate(in.StartDate, in.DurationDays)
	_, err := tx.Exec(ctx,
		`UPDATE playlist_schedules SET
			game_ad_id = $2, start_date = $3, duration_days = $4, end_date = $5,
			status = $6, updated_at = NOW()
		 WHERE id = $1`,
		scheduleID, in.GameAdID, in.StartDate, in.DurationDays, endDate, models.ScheduleScheduled)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM game_deployments WHERE schedule_id = $1`, scheduleID); err != nil {
		return err
	}
	return insertDeployments(ctx, tx, scheduleID, in.GameIDs)
}

// Delete removes a playlist owned by the brand user; schedules and
// deployments go with it via FK cascade.
func (r *Repository) Delete(ctx context.Context, id, brandUserID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM playlists WHERE id = $1 AND brand_user_id = $2`, id, brandUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyCorrections persists drifted stored statuses. Called fire-and-forget
// after reads; failures are logged by the caller and never surface to the
// response.
func (r *Repository) ApplyCorrections(ctx context.Context, corr Corrections) error {
	for sid, status := range corr.Schedules {
		if _, err := r.pool.Exec(ctx,
			`UPDATE playlist_schedules SET status = $2, updated_at = NOW() WHERE id = $1`, sid, status); err != nil {
			return err
		}
	}
	for did, status := range corr.Deployments {
		if _, err := r.pool.Exec(ctx,
			`UPDATE game_deployments SET status = $2, updated_at = NOW() WHERE id = $1`, did, status); err != nil {
			return err
		}
	}
	return nil
}
