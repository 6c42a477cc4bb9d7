package impressions

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gap-platform/backend/internal/middleware"
	"github.com/gap-platform/backend/pkg/response"
)

// GroupMerger persists one day group's deltas.
type GroupMerger interface {
	MergeGroup(ctx context.Context, gameID uuid.UUID, g *DayGroup) error
}

// Handler exposes the device-facing batch ingestion endpoint.
type Handler struct {
	store  GroupMerger
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates an impressions handler.
func NewHandler(store GroupMerger, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger, now: time.Now}
}

type batchRequest struct {
	Impressions     []Event `json:"impressions" binding:"required,min=1"`
	BatchID         string  `json:"batchId"`
	GameSession     string  `json:"gameSession"`
	ServerTimestamp int64   `json:"serverTimestamp"`
}

type batchResponse struct {
	Success   bool `json:"success"`
	Processed int  `json:"processed"`
	Upserts   int  `json:"upserts"`
}

// Ingest folds a telemetry batch into daily rollups. A failed day group does
// not stop the remaining groups in the batch; the response reports aggregate
// counts only.
// POST /api/v1/impressions/batch
func (h *Handler) Ingest(c *gin.Context) {
	gameID := c.MustGet(middleware.ContextGameID).(uuid.UUID)

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, "invalid request body", err.Error())
		return
	}

	groups, skipped := Group(req.Impressions, h.now())
	if skipped > 0 {
		h.logger.Debug("skipped malformed events",
			zap.Int("skipped", skipped),
			zap.String("batch_id", req.BatchID),
			zap.String("game_id", gameID.String()))
	}

	upserts := 0
	for _, g := range groups {
		if err := h.store.MergeGroup(c.Request.Context(), gameID, g); err != nil {
			h.logger.Error("failed to merge day group",
				zap.Error(err),
				zap.String("ad_id", g.AdID.String()),
				zap.Time("day", g.Day))
			continue
		}
		upserts++
	}

	c.JSON(http.StatusOK, batchResponse{
		Success:   true,
		Processed: len(req.Impressions) - skipped,
		Upserts:   upserts,
	})
}
