package feeding

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gap-platform/backend/internal/middleware"
	"github.com/gap-platform/backend/internal/models"
	"github.com/gap-platform/backend/pkg/response"
)

// CandidateSource yields the eligible ad set for a game at an instant.
type CandidateSource interface {
	EligibleCandidates(ctx context.Context, gameID uuid.UUID, now time.Time) ([]Candidate, error)
}

// Handler exposes the device-facing feed endpoint.
type Handler struct {
	source CandidateSource
	engine *Engine
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a feeding handler.
func NewHandler(source CandidateSource, engine *Engine, logger *zap.Logger) *Handler {
	return &Handler{source: source, engine: engine, logger: logger, now: time.Now}
}

type feedRequest struct {
	GameID             string                            `json:"gameId"`
	Containers         []models.Container                `json:"containers" binding:"required,min=1,dive"`
	PlayerContext      *models.PlayerContext             `json:"playerContext"`
	CurrentAssignments map[string]models.AssignmentState `json:"currentAssignments"`
}

type feedMetadata struct {
	TotalAds           int       `json:"totalAds"`
	AssignmentStrategy string    `json:"assignmentStrategy"`
	NextUpdate         time.Time `json:"nextUpdate"`
	GameID             string    `json:"gameId"`
	Timestamp          time.Time `json:"timestamp"`
}

type feedResponse struct {
	Success              bool                         `json:"success"`
	ContainerAssignments map[string][]string          `json:"containerAssignments"`
	RotationSchedule     map[string]*RotationSchedule `json:"rotationSchedule"`
	Metadata             feedMetadata                 `json:"metadata"`
}

// Feed computes ad assignments for the calling game's containers.
// POST /api/v1/feeding/container-ads
func (h *Handler) Feed(c *gin.Context) {
	gameID := c.MustGet(middleware.ContextGameID).(uuid.UUID)

	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, "invalid request body", err.Error())
		return
	}
	// The credential decides the game; a mismatching body gameId is logged
	// and ignored.
	if req.GameID != "" && req.GameID != gameID.String() {
		h.logger.Warn("body gameId does not match credential, using resolved game",
			zap.String("body_game_id", req.GameID),
			zap.String("game_id", gameID.String()))
	}
	for _, container := range req.Containers {
		if _, ok := compatible[container.Type]; !ok {
			response.ValidationFailed(c, "invalid container type",
				[]string{"unknown container type " + string(container.Type) + " for container " + container.ID})
			return
		}
	}

	now := h.now()
	candidates, err := h.source.EligibleCandidates(c.Request.Context(), gameID, now)
	if err != nil {
		h.logger.Error("failed to load candidate ads", zap.Error(err), zap.String("game_id", gameID.String()))
		response.Internal(c, "failed to compute assignments")
		return
	}

	result := h.engine.Assign(candidates, req.Containers, req.PlayerContext, req.CurrentAssignments)

	c.JSON(http.StatusOK, feedResponse{
		Success:              true,
		ContainerAssignments: result.ContainerAds,
		RotationSchedule:     result.Rotation,
		Metadata: feedMetadata{
			TotalAds:           result.TotalAds,
			AssignmentStrategy: result.Strategy,
			NextUpdate:         result.NextUpdateAt,
			GameID:             gameID.String(),
			Timestamp:          now,
		},
	})
}
