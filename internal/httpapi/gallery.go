package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/labstack/echo/v4"
)

const maxStyleCount = 30

// GalleryImages returns the generated mix for a chat, or stock photos when
// the chat has nothing generated.
// GET /api/gallery/images?chat_session_id=
func (h *Handler) GalleryImages(c echo.Context) error {
	ctx := c.Request().Context()
	var content map[domain.Category][]domain.ContentItem

	if id := c.QueryParam("chat_session_id"); id != "" {
		snap, err := h.sessions.Snapshot(ctx, id)
		switch {
		case err == nil:
			content = snap.Content
		case errors.Is(err, session.ErrNotFound):
		default:
			h.log(c).WarnContext(ctx, "loading session content failed", "chat_id", id, "error", err)
		}
	}
	return c.JSON(http.StatusOK, h.gallery.Images(ctx, content))
}

// SearchStyle searches stock photos for a visual style.
// GET /api/gallery/search-style/:style?count=
func (h *Handler) SearchStyle(c echo.Context) error {
	style := c.Param("style")
	count := 0
	if n := c.QueryParam("count"); n != "" {
		val, err := strconv.Atoi(n)
		if err != nil || val < 1 {
			return errorJSON(c, http.StatusBadRequest, "count must be a positive integer")
		}
		count = min(val, maxStyleCount)
	}
	return c.JSON(http.StatusOK, h.gallery.Style(c.Request().Context(), style, count))
}
