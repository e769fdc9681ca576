package httpapi

import (
	"net/http"
	"time"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/labstack/echo/v4"
)

type sessionSummaryJSON struct {
	ID           string                  `json:"id"`
	Stage        domain.Stage            `json:"stage"`
	MessageCount int                     `json:"message_count"`
	FieldCount   int                     `json:"field_count"`
	HasGenerated bool                    `json:"has_generated"`
	ItemCounts   map[domain.Category]int `json:"item_counts,omitempty"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// ListSessions lists the live sessions.
// GET /api/admin/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sums, err := h.sessions.List(c.Request().Context())
	if err != nil {
		h.log(c).ErrorContext(c.Request().Context(), "listing sessions failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not list sessions")
	}
	out := make([]sessionSummaryJSON, 0, len(sums))
	for _, s := range sums {
		out = append(out, sessionSummaryJSON{
			ID:           s.ID,
			Stage:        s.Stage,
			MessageCount: s.MessageCount,
			FieldCount:   s.FieldCount,
			HasGenerated: s.HasGenerated,
			ItemCounts:   s.ItemCounts,
			UpdatedAt:    s.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"sessions": out, "total": len(out)})
}

// ClearSessions drops every live session. The archive is left alone.
// DELETE /api/admin/sessions
func (h *Handler) ClearSessions(c echo.Context) error {
	ctx := c.Request().Context()
	n, err := h.sessions.Count(ctx)
	if err == nil {
		err = h.sessions.ClearAll(ctx)
	}
	if err != nil {
		h.log(c).ErrorContext(ctx, "clearing sessions failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not clear sessions")
	}
	h.log(c).InfoContext(ctx, "sessions cleared", "count", n)
	return c.JSON(http.StatusOK, map[string]any{"cleared": n})
}
