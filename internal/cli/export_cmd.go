package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderramin/eventwise/internal/cli/formatter"
	"github.com/alexanderramin/eventwise/internal/service"
	"github.com/spf13/cobra"
)

var errExportCancelled = errors.New("export cancelled")

func newExportCmd(app *App) *cobra.Command {
	var out string
	var force bool

	cmd := &cobra.Command{
		Use:   "export SESSION_ID",
		Short: "Write the plan document for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := app.Conversation.Export(ctx, args[0])
			if errors.Is(err, service.ErrNothingToExport) {
				return fmt.Errorf("session %s has no recommendations yet; finish the chat first", args[0])
			}
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = plan.Filename
			}
			if _, err := os.Stat(path); err == nil && !force {
				if !app.interactive() {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				ok, err := app.confirm(fmt.Sprintf("Overwrite %s?", path))
				if err != nil {
					return err
				}
				if !ok {
					return errExportCancelled
				}
			}

			if err := writePlanFile(path, plan.Markdown); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPlanSaved(path, len(plan.Markdown)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default event_plan_<id>.md)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

// savePlan exports the session's plan into dir under its default name.
func savePlan(ctx context.Context, app *App, sessionID, dir string) (string, int, error) {
	plan, err := app.Conversation.Export(ctx, sessionID)
	if err != nil {
		return "", 0, err
	}
	path := filepath.Join(dir, plan.Filename)
	if err := writePlanFile(path, plan.Markdown); err != nil {
		return "", 0, err
	}
	return path, len(plan.Markdown), nil
}

func writePlanFile(path, markdown string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}
