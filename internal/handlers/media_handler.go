package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/forms"
	"github.com/anonto42/nano-blog/backend/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

// MediaHandler serves stored post images.
type MediaHandler struct {
	images storage.ImageStore
}

func NewMediaHandler(images storage.ImageStore) *MediaHandler {
	return &MediaHandler{images: images}
}

func (h *MediaHandler) RegisterMediaRoutes(e *echo.Echo) {
	e.GET("/media/"+storage.PostsPrefix+"/:name", h.PostImage)
}

// PostImage streams posts/:name with a sniffed content type.
func (h *MediaHandler) PostImage(c echo.Context) error {
	rc, err := h.images.Open(c.Request().Context(), c.Param("name"))
	if errors.Is(err, storage.ErrImageNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, forms.MaxImageSize+1))
	if err != nil {
		return err
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, mimetype.Detect(data).String(), data)
}
