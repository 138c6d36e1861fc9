package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medisync/medisync/internal/platform/auth"
)

// MaxFilesPerUpload bounds the photos accepted in one request.
const MaxFilesPerUpload = 10

// Handler serves treatment photo upload and download.
type Handler struct {
	store     BlobStore
	urlPrefix string
	logger    zerolog.Logger
}

// NewHandler creates a Handler. urlPrefix is prepended to photo keys to
// build the URLs stored on treatment records, e.g. "/api/treatments/photos/".
func NewHandler(store BlobStore, urlPrefix string, logger zerolog.Logger) *Handler {
	return &Handler{store: store, urlPrefix: urlPrefix, logger: logger}
}

// RegisterRoutes mounts the photo routes on the supplied Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/treatments/upload-photos", h.handleUpload)
	g.GET("/treatments/photos/:key", h.handleDownload)
	g.DELETE("/treatments/photos/:key", h.handleDelete)
}

type uploadResponse struct {
	PhotoURLs []string `json:"photoUrls"`
}

// handleUpload stores every file sent under the "photos" form field.
func (h *Handler) handleUpload(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form with photos is required")
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one photo is required")
	}
	if len(files) > MaxFilesPerUpload {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("at most %d photos per upload", MaxFilesPerUpload))
	}

	ctx := c.Request().Context()
	keys := make([]string, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			h.discard(c, keys)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
		}
		meta, err := h.store.Upload(ctx, BlobMetadata{
			FileName:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			OwnerID:     owner,
		}, src)
		src.Close()
		if err != nil {
			h.discard(c, keys)
			return uploadError(err)
		}
		keys = append(keys, meta.Key)
	}

	urls := make([]string, len(keys))
	for i, key := range keys {
		urls[i] = h.urlPrefix + key
	}
	return c.JSON(http.StatusOK, uploadResponse{PhotoURLs: urls})
}

// discard removes the photos of a failed upload. Their URLs were never
// returned, so nothing else could delete them. It runs on a context detached
// from the request, which may already be cancelled.
func (h *Handler) discard(c echo.Context, keys []string) {
	ctx := context.WithoutCancel(c.Request().Context())
	for _, key := range keys {
		if err := h.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrBlobNotFound) {
			h.logger.Error().Err(err).Str("key", key).Msg("failed to discard photo of rejected upload")
		}
	}
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrMissingFileName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidContentType):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Photo upload failed").SetInternal(err)
	}
}

// handleDownload streams a photo. Photos of other owners are reported as
// missing.
func (h *Handler) handleDownload(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}

	rc, meta, err := h.store.Download(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Photo not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Photo download failed").SetInternal(err)
	}
	defer rc.Close()

	if meta.OwnerID != owner {
		return echo.NewHTTPError(http.StatusNotFound, "Photo not found")
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, meta.FileName))
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}

func (h *Handler) handleDelete(c echo.Context) error {
	owner, err := auth.OwnerID(c)
	if err != nil {
		return err
	}

	key := c.Param("key")
	rc, meta, err := h.store.Download(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Photo not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Photo delete failed").SetInternal(err)
	}
	rc.Close()
	if meta.OwnerID != owner {
		return echo.NewHTTPError(http.StatusNotFound, "Photo not found")
	}

	if err := h.store.Delete(c.Request().Context(), key); err != nil && !errors.Is(err, ErrBlobNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Photo delete failed").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}
