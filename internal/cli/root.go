package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/spf13/cobra"
)

// ConfigFlag names the persistent flag that points at the YAML config file.
// main reads it before the command tree exists.
const ConfigFlag = "config"

// App holds the use cases and hooks the CLI commands drive.
type App struct {
	Conversation app.ConversationUseCase
	History      app.ChatHistoryUseCase
	Sessions     session.Store

	// Serve runs the HTTP server until ctx is cancelled. Nil disables serve.
	Serve func(ctx context.Context) error

	// IsInteractive reports whether stdin is a terminal. Nil means it is not.
	IsInteractive func() bool

	// Confirm asks a yes/no question. Nil uses a huh confirm form.
	Confirm func(title string) (bool, error)

	// Now is the clock used for relative timestamps. Nil uses time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return huhConfirm(title)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "eventwise" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "eventwise",
		Short:         "Conversational event planning assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP(ConfigFlag, "c", "", "Config file (default ./eventwise.yaml or ~/.eventwise/eventwise.yaml)")

	root.AddCommand(
		newChatCmd(app),
		newServeCmd(app),
		newSessionCmd(app),
		newExportCmd(app),
	)

	return root
}
