package ads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gap-platform/backend/internal/middleware"
	"github.com/gap-platform/backend/internal/models"
	"github.com/gap-platform/backend/pkg/response"
	"github.com/gap-platform/backend/pkg/storage"
)

// Handler exposes the brand-portal ad CRUD and media upload endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an ads handler. s3 may be nil; media upload endpoints
// then return 503.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, s3: s3, logger: logger}
}

type adRequest struct {
	Name   string           `json:"name" binding:"required"`
	Type   models.AdType    `json:"type" binding:"required"`
	Assets []models.AdAsset `json:"assets"`
}

// List returns the caller's ads.
// GET /api/v1/ads
func (h *Handler) List(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)

	list, err := h.repo.ListByBrand(c.Request.Context(), brandUserID)
	if err != nil {
		h.logger.Error("failed to list ads", zap.Error(err))
		response.Internal(c, "failed to list ads")
		return
	}
	if list == nil {
		list = []models.GameAd{}
	}
	response.OK(c, list)
}

// Get returns one ad.
// GET /api/v1/ads/:id
func (h *Handler) Get(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}

	ad, err := h.repo.GetByID(c.Request.Context(), id, brandUserID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "ad not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get ad", zap.Error(err), zap.String("ad_id", id.String()))
		response.Internal(c, "failed to get ad")
		return
	}
	response.OK(c, ad)
}

// Create creates an ad after validating its asset set.
// POST /api/v1/ads
func (h *Handler) Create(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)

	var req adRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if problems := ValidateAssets(req.Type, req.Assets); len(problems) > 0 {
		response.ValidationFailed(c, "incomplete ad assets", problems)
		return
	}

	ad := &models.GameAd{
		Name:        req.Name,
		Type:        req.Type,
		Assets:      req.Assets,
		BrandUserID: &brandUserID,
	}
	if err := h.repo.Create(c.Request.Context(), ad); err != nil {
		h.logger.Error("failed to create ad", zap.Error(err))
		response.Internal(c, "failed to create ad")
		return
	}
	response.Created(c, ad)
}

// Update rewrites an ad after revalidating its asset set.
// PUT /api/v1/ads/:id
func (h *Handler) Update(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}

	var req adRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if problems := ValidateAssets(req.Type, req.Assets); len(problems) > 0 {
		response.ValidationFailed(c, "incomplete ad assets", problems)
		return
	}

	ad := &models.GameAd{ID: id, Name: req.Name, Type: req.Type, Assets: req.Assets}
	err = h.repo.Update(c.Request.Context(), ad, brandUserID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "ad not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update ad", zap.Error(err), zap.String("ad_id", id.String()))
		response.Internal(c, "failed to update ad")
		return
	}

	updated, err := h.repo.GetByID(c.Request.Context(), id, brandUserID)
	if err != nil {
		h.logger.Error("failed to reload updated ad", zap.Error(err))
		response.Internal(c, "failed to update ad")
		return
	}
	response.OK(c, updated)
}

// Delete removes an ad.
// DELETE /api/v1/ads/:id
func (h *Handler) Delete(c *gin.Context) {
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}

	err = h.repo.Delete(c.Request.Context(), id, brandUserID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "ad not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete ad", zap.Error(err), zap.String("ad_id", id.String()))
		response.Internal(c, "failed to delete ad")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

type uploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType"`
}

// MediaUploadURL returns a pre-signed PUT URL for uploading a creative file
// belonging to an ad the caller owns.
// POST /api/v1/ads/:id/media-upload-url
func (h *Handler) MediaUploadURL(c *gin.Context) {
	if h.s3 == nil {
		c.JSON(http.StatusServiceUnavailable, response.Body{Success: false, Error: "media storage not configured"})
		return
	}
	brandUserID := c.MustGet(middleware.ContextBrandUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !storage.ValidateMediaFileType(req.ContentType, req.Filename) {
		response.BadRequest(c, "unsupported media type")
		return
	}

	if _, err := h.repo.GetByID(c.Request.Context(), id, brandUserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "ad not found")
			return
		}
		h.logger.Error("failed to check ad ownership", zap.Error(err))
		response.Internal(c, "failed to prepare upload")
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(req.Filename)
	}
	key := storage.MediaKey(id.String(), req.Filename)
	url, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), key, contentType, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("failed to presign media upload", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to prepare upload")
		return
	}
	response.OK(c, gin.H{
		"uploadUrl":   url,
		"key":         key,
		"publicUrl":   h.s3.PublicObjectURL(key),
		"contentType": contentType,
		"maxBytes":    storage.MaxMediaFileSize,
	})
}
