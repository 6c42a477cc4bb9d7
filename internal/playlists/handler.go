package playlists

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gap-platform/backend/internal/middleware"
	"github.com/gap-platform/backend/internal/models"
	"github.com/gap-platform/backend/pkg/response"
)

// Handler exposes the brand-portal playlist endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a playlist handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger, now: time.Now}
}

type scheduleRequest struct {
	ID           *uuid.UUID  `json:"id"`
	GameAdID     uuid.UUID   `json:"gameAdId" binding:"required"`
	StartDate    time.Time   `json:"startDate" binding:"required"`
	DurationDays int         `json:"duration" binding:"required,min=1"`
	GameIDs      []uuid.UUID `json:"gameIds"`
}

type createPlaylistRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Schedules   []scheduleRequest `json:"schedules"`
}

type updatePlaylistRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Schedules   []scheduleRequest `json:"schedules"`
}

func toScheduleInputs(reqs []scheduleRequest) []ScheduleInput {
	if reqs == nil {
		return nil
	}
	inputs := make([]ScheduleInput, len(reqs))
	for i, s := range reqs {
		inputs[i] = ScheduleInput{
			ID:           s.ID,
			GameAdID:     s.GameAdID,
			StartDate:    s.StartDate,
			DurationDays: s.DurationDays,
			GameIDs:      s.GameIDs,
		}
	}
	return inputs
}

// List returns the caller's playlists with authoritative statuses.
// GET /api/v1/playlists
func (h *Handler) List(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)

	list, err := h.repo.ListByBrand(c.Request.Context(), brandUserID)
	if err != nil {
		h.logger.Error("failed to list playlists", zap.Error(err))
		response.Internal(c, "failed to list playlists")
		return
	}
	h.reconcile(list)
	if list == nil {
		list = []models.Playlist{}
	}
	response.OK(c, list)
}

// Get returns one playlist with authoritative statuses.
// GET /api/v1/playlists/:id
func (h *Handler) Get(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid playlist id")
		return
	}

	p, err := h.repo.GetByID(c.Request.Context(), id, brandUserID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "playlist not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get playlist", zap.Error(err), zap.String("playlist_id", id.String()))
		response.Internal(c, "failed to get playlist")
		return
	}
	list := []models.Playlist{*p}
	h.reconcile(list)
	response.OK(c, list[0])
}

// Create creates a playlist with its schedules and deployments.
// POST /api/v1/playlists
func (h *Handler) Create(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)

	var req createPlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p := &models.Playlist{
		Name:        req.Name,
		Description: req.Description,
		BrandUserID: brandUserID,
	}
	if err := h.repo.Create(c.Request.Context(), p, toScheduleInputs(req.Schedules)); err != nil {
		h.logger.Error("failed to create playlist", zap.Error(err))
		response.Internal(c, "failed to create playlist")
		return
	}

	created, err := h.repo.GetByID(c.Request.Context(), p.ID, brandUserID)
	if err != nil {
		h.logger.Error("failed to reload created playlist", zap.Error(err))
		response.Internal(c, "failed to create playlist")
		return
	}
	list := []models.Playlist{*created}
	h.reconcile(list)
	response.Created(c, list[0])
}

// Update applies a partial update; a schedules array replaces the full set.
// PUT /api/v1/playlists/:id
func (h *Handler) Update(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid playlist id")
		return
	}

	var req updatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	err = h.repo.Update(c.Request.Context(), id, brandUserID, req.Name, req.Description, toScheduleInputs(req.Schedules))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "playlist not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update playlist", zap.Error(err), zap.String("playlist_id", id.String()))
		response.Internal(c, "failed to update playlist")
		return
	}

	updated, err := h.repo.GetByID(c.Request.Context(), id, brandUserID)
	if err != nil {
		h.logger.Error("failed to reload updated playlist", zap.Error(err))
		response.Internal(c, "failed to update playlist")
		return
	}
	list := []models.Playlist{*updated}
	h.reconcile(list)
	response.OK(c, list[0])
}

// Delete removes a playlist and everything under it.
// DELETE /api/v1/playlists/:id
func (h *Handler) Delete(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid playlist id")
		return
	}

	err = h.repo.Delete(c.Request.Context(), id, brandUserID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "playlist not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete playlist", zap.Error(err), zap.String("playlist_id", id.String()))
		response.Internal(c, "failed to delete playlist")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// reconcile annotates computed statuses and kicks off a best-effort write for
// any drifted stored rows. The request never waits on, or fails with, the
// corrective write.
func (h *Handler) reconcile(list []models.Playlist) {
	corr := Reconcile(list, h.now())
	if corr.Empty() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.repo.ApplyCorrections(ctx, corr); err != nil {
			h.logger.Warn("status correction write failed", zap.Error(err))
		}
	}()
}
