// Package httpapi serves the chat, gallery and plan endpoints over echo.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/export"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests.
type Handler struct {
	conversation app.ConversationUseCase
	history      app.ChatHistoryUseCase
	sessions     session.Store
	gallery      *export.Gallery
	logger       *slog.Logger
	now          func() time.Time
}

// Deps are the collaborators a Handler serves.
type Deps struct {
	Conversation app.ConversationUseCase
	History      app.ChatHistoryUseCase
	Sessions     session.Store
	Gallery      *export.Gallery
	Logger       *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Gallery == nil {
		deps.Gallery = export.NewGallery(nil, deps.Logger)
	}
	return &Handler{
		conversation: deps.Conversation,
		history:      deps.History,
		sessions:     deps.Sessions,
		gallery:      deps.Gallery,
		logger:       deps.Logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Chats
	e.POST("/api/chats", h.CreateChat)
	e.GET("/api/chats", h.ListChats)
	e.GET("/api/chats/:id", h.GetChat)
	e.DELETE("/api/chats/:id", h.DeleteChat)
	e.POST("/api/chats/:id/messages", h.SendMessage)

	// Plan document
	e.POST("/api/chats/:id/plan", h.DownloadPlan)
	e.POST("/api/chats/:id/plan/request", h.RequestPlan)

	// Gallery
	e.GET("/api/gallery/images", h.GalleryImages)
	e.GET("/api/gallery/search-style/:style", h.SearchStyle)

	// Admin
	e.GET("/api/admin/sessions", h.ListSessions)
	e.DELETE("/api/admin/sessions", h.ClearSessions)

	e.GET("/healthz", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	resp := map[string]any{"status": "healthy"}
	if n, err := h.sessions.Count(c.Request().Context()); err == nil {
		resp["sessions"] = n
	} else {
		resp["status"] = "degraded"
		resp["error"] = "session store unavailable"
	}
	return c.JSON(http.StatusOK, resp)
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
