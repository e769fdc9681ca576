package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/logger"
	"github.com/alexanderramin/eventwise/internal/repository"
	"github.com/alexanderramin/eventwise/internal/service"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/labstack/echo/v4"
)

const (
	defaultChatLimit = 50
	turnFailedReply  = "Sorry, something went wrong processing your message. Please try again."
)

type messageJSON struct {
	Role      domain.Role `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

type chatJSON struct {
	ChatID       string        `json:"chatId"`
	Title        string        `json:"title"`
	Stage        domain.Stage  `json:"stage,omitempty"`
	CreatedAt    time.Time     `json:"createdAt,omitzero"`
	UpdatedAt    time.Time     `json:"updatedAt,omitzero"`
	MessageCount *int          `json:"messageCount,omitempty"`
	Messages     []messageJSON `json:"messages,omitempty"`
}

type suggestionsJSON struct {
	Stage                domain.Stage            `json:"stage"`
	MissingFields        []string                `json:"missing_fields"`
	CompletionPercentage int                     `json:"completion_percentage"`
	ReadyToGenerate      bool                    `json:"ready_to_generate"`
	GeneratedCounts      map[domain.Category]int `json:"generated_counts,omitempty"`
	FailedCategories     []domain.Category       `json:"failed_categories,omitempty"`
	RefreshGallery       bool                    `json:"refresh_gallery"`
	ExportRequested      bool                    `json:"export_requested"`
	RefinementRequested  []domain.Category       `json:"refinement_requested,omitempty"`
	Fallback             bool                    `json:"fallback,omitempty"`
	Extracted            map[string]any          `json:"extracted,omitempty"`
}

// CreateChat starts a new chat.
// POST /api/chats
func (h *Handler) CreateChat(c echo.Context) error {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	chat, err := h.history.CreateChat(c.Request().Context(), strings.TrimSpace(req.Title))
	if err != nil {
		h.log(c).ErrorContext(c.Request().Context(), "create chat failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not create chat")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"chatId":    chat.ID,
		"title":     chat.Title,
		"createdAt": chat.CreatedAt,
		"messages":  []messageJSON{},
	})
}

// ListChats lists archived chats, newest first. Without an archive the live
// sessions are listed instead.
// GET /api/chats
func (h *Handler) ListChats(c echo.Context) error {
	ctx := c.Request().Context()
	limit := defaultChatLimit
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}

	chats, err := h.history.ListChats(ctx, limit)
	if errors.Is(err, service.ErrArchiveDisabled) {
		return h.listLiveSessions(c, limit)
	}
	if err != nil {
		h.log(c).ErrorContext(ctx, "list chats failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not list chats")
	}

	out := make([]chatJSON, 0, len(chats))
	for _, ch := range chats {
		out = append(out, chatJSON{
			ChatID:    ch.ID,
			Title:     ch.Title,
			Stage:     ch.Stage,
			CreatedAt: ch.CreatedAt,
			UpdatedAt: ch.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"chats": out})
}

func (h *Handler) listLiveSessions(c echo.Context, limit int) error {
	sums, err := h.sessions.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "could not list chats")
	}
	out := make([]chatJSON, 0, min(len(sums), limit))
	for _, s := range sums[:min(len(sums), limit)] {
		n := s.MessageCount
		out = append(out, chatJSON{
			ChatID:       s.ID,
			Stage:        s.Stage,
			UpdatedAt:    s.UpdatedAt,
			MessageCount: &n,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"chats": out})
}

// GetChat returns one chat with its messages. The archive is preferred; a
// live session answers when the chat was never archived.
// GET /api/chats/:id
func (h *Handler) GetChat(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	transcript, err := h.history.GetChat(ctx, id)
	if err == nil {
		return c.JSON(http.StatusOK, transcriptJSON(transcript))
	}
	if !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, service.ErrArchiveDisabled) {
		h.log(c).ErrorContext(ctx, "get chat failed", "chat_id", id, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not load chat")
	}

	sess, err := h.sessions.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, "chat not found")
	}
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "could not load chat")
	}
	return c.JSON(http.StatusOK, sessionJSON(sess))
}

// DeleteChat removes a chat from the archive and drops its live session.
// DELETE /api/chats/:id
func (h *Handler) DeleteChat(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	err := h.history.DeleteChat(ctx, id)
	if err != nil && !errors.Is(err, service.ErrArchiveDisabled) {
		h.log(c).ErrorContext(ctx, "delete chat failed", "chat_id", id, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not delete chat")
	}
	if err := h.sessions.Clear(ctx, id); err != nil {
		h.log(c).WarnContext(ctx, "clearing session failed", "chat_id", id, "error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SendMessage runs one conversation turn, plus generation when the turn
// confirmed it.
// POST /api/chats/:id/messages
func (h *Handler) SendMessage(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" {
		return errorJSON(c, http.StatusBadRequest, "message content is required")
	}

	ctx := logger.WithSessionID(c.Request().Context(), id)
	res, err := h.conversation.Converse(ctx, id, req.Content)
	if errors.Is(err, service.ErrEmptyMessage) {
		return errorJSON(c, http.StatusBadRequest, "message content is required")
	}
	if err != nil {
		h.log(c).ErrorContext(ctx, "turn failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":   "turn failed",
			"message": messageJSON{Role: domain.RoleAssistant, Content: turnFailedReply, Timestamp: h.now()},
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": messageJSON{
			Role:      domain.RoleAssistant,
			Content:   res.Reply(),
			Timestamp: h.now(),
		},
		"suggestions": converseSuggestions(res),
	})
}

func converseSuggestions(res *app.ConverseResult) suggestionsJSON {
	turn := res.Turn
	out := suggestionsJSON{
		Stage:                res.Stage(),
		MissingFields:        turn.Missing,
		CompletionPercentage: turn.CompletionPercentage,
		ReadyToGenerate:      turn.ReadyToGenerate,
		ExportRequested:      turn.ExportConfirmed,
		RefinementRequested:  turn.Refinement,
		Fallback:             turn.Fallback,
		Extracted:            turn.Suggestions,
	}
	if out.MissingFields == nil {
		out.MissingFields = []string{}
	}
	if gen := res.Generation; gen != nil {
		out.GeneratedCounts = gen.Counts
		out.FailedCategories = gen.Failed
		out.RefreshGallery = gen.Total > 0
	}
	return out
}

func transcriptJSON(t *app.ChatTranscript) chatJSON {
	out := chatJSON{
		ChatID:    t.Chat.ID,
		Title:     t.Chat.Title,
		Stage:     t.Chat.Stage,
		CreatedAt: t.Chat.CreatedAt,
		UpdatedAt: t.Chat.UpdatedAt,
		Messages:  make([]messageJSON, 0, len(t.Messages)),
	}
	for _, m := range t.Messages {
		out.Messages = append(out.Messages, messageJSON{Role: m.Role, Content: m.Content, Timestamp: m.CreatedAt})
	}
	return out
}

func sessionJSON(s *domain.Session) chatJSON {
	out := chatJSON{
		ChatID:    s.ID,
		Stage:     s.State.Stage,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]messageJSON, 0, len(s.History)),
	}
	for _, m := range s.History {
		if out.Title == "" && m.Role == domain.RoleUser {
			out.Title = domain.ChatTitle(m.Content)
		}
		out.Messages = append(out.Messages, messageJSON{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}
	return out
}

func (h *Handler) log(c echo.Context) *slog.Logger {
	return logger.Enrich(c.Request().Context(), h.logger)
}
