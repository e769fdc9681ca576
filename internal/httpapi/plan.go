package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/service"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/labstack/echo/v4"
)

const markdownContentType = "text/markdown; charset=utf-8"

// DownloadPlan renders the plan document for a chat with recommendations.
// POST /api/chats/:id/plan
func (h *Handler) DownloadPlan(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	plan, err := h.conversation.Export(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "chat not found")
	case errors.Is(err, service.ErrNothingToExport):
		return errorJSON(c, http.StatusBadRequest, "no recommendations to export yet")
	case err != nil:
		h.log(c).ErrorContext(ctx, "export failed", "chat_id", id, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not build the plan")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", plan.Filename))
	return c.Blob(http.StatusOK, markdownContentType, []byte(plan.Markdown))
}

// RequestPlan asks the user, through the chat, to confirm the plan document.
// POST /api/chats/:id/plan/request
func (h *Handler) RequestPlan(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	res, err := h.conversation.RequestExport(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "chat not found")
	case errors.Is(err, service.ErrNothingToExport):
		return errorJSON(c, http.StatusBadRequest, "no recommendations to export yet")
	case err != nil:
		h.log(c).ErrorContext(ctx, "plan request failed", "chat_id", id, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not request the plan")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": messageJSON{Role: domain.RoleAssistant, Content: res.Reply, Timestamp: h.now()},
		"stage":   res.Stage,
	})
}
