// Package app declares the use cases the outer surfaces (HTTP, CLI) drive,
// and the result types that cross that boundary.
package app

import (
	"context"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/alexanderramin/eventwise/internal/export"
)

// ConversationUseCase runs the planning conversation for one session.
type ConversationUseCase interface {
	// HandleMessage processes one user message without running generation.
	HandleMessage(ctx context.Context, sessionID, text string) (*TurnResult, error)
	// Generate runs the generation collaborators once the user confirmed.
	Generate(ctx context.Context, sessionID string) (*GenerationReport, error)
	// Converse is HandleMessage followed by Generate when the turn opened the gate.
	Converse(ctx context.Context, sessionID, text string) (*ConverseResult, error)
	// RequestExport asks the user to confirm the plan document.
	RequestExport(ctx context.Context, sessionID string) (*TurnResult, error)
	// Export renders the plan document.
	Export(ctx context.Context, sessionID string) (*export.Plan, error)
}

// ChatHistoryUseCase reads and manages the chat archive.
type ChatHistoryUseCase interface {
	CreateChat(ctx context.Context, title string) (*domain.Chat, error)
	ListChats(ctx context.Context, limit int) ([]*domain.Chat, error)
	GetChat(ctx context.Context, id string) (*ChatTranscript, error)
	DeleteChat(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
