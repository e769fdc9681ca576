package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/cli/formatter"
	"github.com/alexanderramin/eventwise/internal/service"
	"github.com/alexanderramin/eventwise/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Chat commands understood by both the TUI and the line REPL.
const (
	chatCmdQuit = "/quit"
	chatCmdExit = "/exit"
	chatCmdPlan = "/plan"
)

func newChatCmd(app *App) *cobra.Command {
	var sessionID, planDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Plan an event in an interactive chat",
		Long: `Start a planning conversation. Describe the event; the assistant asks
for what it still needs, confirms, then generates recommendations. Resume an
earlier conversation with --session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			if app.interactive() {
				_, err := tea.NewProgram(newChatModel(cmd.Context(), app, sessionID, planDir)).Run()
				return err
			}
			return runChatREPL(cmd.Context(), app, sessionID, planDir, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Resume this session id")
	cmd.Flags().StringVar(&planDir, "plan-dir", ".", "Directory plan documents are saved to")

	return cmd
}

// runChatREPL is the line-oriented chat used when stdin is not a terminal.
func runChatREPL(ctx context.Context, app *App, sessionID, planDir string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, formatter.FormatChatWelcome(sessionID))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case chatCmdQuit, chatCmdExit:
			return nil
		case chatCmdPlan:
			fmt.Fprintln(out, planLine(ctx, app, sessionID, planDir))
			continue
		}

		res, err := app.Conversation.Converse(ctx, sessionID, text)
		if err != nil {
			fmt.Fprintln(out, formatter.StyleRed.Render("error: "+err.Error()))
			continue
		}
		fmt.Fprintln(out, formatConverse(res))
		if res.Turn.ExportConfirmed {
			fmt.Fprintln(out, planLine(ctx, app, sessionID, planDir))
		}
	}
	return scanner.Err()
}

// formatConverse renders the replies of one turn followed by its status.
func formatConverse(res *app.ConverseResult) string {
	lines := []string{formatter.FormatAssistantMessage(res.Turn.Reply)}
	if res.Generation != nil {
		lines = append(lines, formatter.FormatAssistantMessage(res.Generation.Reply))
	}
	lines = append(lines, formatter.FormatTurnStatus(res))
	return strings.Join(lines, "\n")
}

func planLine(ctx context.Context, app *App, sessionID, planDir string) string {
	path, size, err := savePlan(ctx, app, sessionID, planDir)
	if err != nil {
		return planError(err)
	}
	return formatter.FormatPlanSaved(path, size)
}

func planError(err error) string {
	if errors.Is(err, service.ErrNothingToExport) || errors.Is(err, session.ErrNotFound) {
		return formatter.StyleYellow.Render("No recommendations yet, so there is no plan to save.")
	}
	return formatter.StyleRed.Render("could not save the plan: " + err.Error())
}
