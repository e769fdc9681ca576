package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/eventwise/internal/cli/formatter"
	"github.com/alexanderramin/eventwise/internal/service"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and clear planning sessions",
	}

	cmd.AddCommand(
		newSessionListCmd(app),
		newSessionShowCmd(app),
		newSessionClearCmd(app),
	)

	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var archived bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live sessions, or archived chats with --archived",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if archived {
				chats, err := app.History.ListChats(ctx, limit)
				if errors.Is(err, service.ErrArchiveDisabled) {
					return errors.New("the chat archive is disabled (set archive.enabled)")
				}
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatChatList(chats, app.now()))
				return nil
			}

			sums, err := app.Sessions.List(ctx)
			if err != nil {
				return err
			}
			if limit > 0 && len(sums) > limit {
				sums = sums[:limit]
			}
			fmt.Fprint(out, formatter.FormatSessionList(sums, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&archived, "archived", false, "List archived chats instead of live sessions")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to show")

	return cmd
}

func newSessionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show SESSION_ID",
		Short: "Show collected details, recommendations and recent messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Sessions.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionDetail(sess))
			return nil
		},
	}
}

func newSessionClearCmd(app *App) *cobra.Command {
	var all, archive, yes bool

	cmd := &cobra.Command{
		Use:   "clear [SESSION_ID]",
		Short: "Clear one session, or every session with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !all {
				if len(args) != 1 {
					return errors.New("pass a session id or --all")
				}
				if err := app.Sessions.Clear(ctx, args[0]); err != nil {
					return err
				}
				if archive {
					if err := app.History.DeleteChat(ctx, args[0]); err != nil && !errors.Is(err, service.ErrArchiveDisabled) {
						return err
					}
				}
				fmt.Fprintf(out, "Cleared session %s\n", args[0])
				return nil
			}

			if len(args) > 0 {
				return errors.New("--all takes no session id")
			}
			n, err := app.Sessions.Count(ctx)
			if err != nil {
				return err
			}
			if !yes {
				if !app.interactive() {
					return errors.New("refusing to clear every session without --yes")
				}
				ok, err := app.confirm(fmt.Sprintf("Clear all %d sessions?", n))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, formatter.Dim("Cancelled."))
					return nil
				}
			}

			if err := app.Sessions.ClearAll(ctx); err != nil {
				return err
			}
			if archive {
				if err := app.History.DeleteAll(ctx); err != nil && !errors.Is(err, service.ErrArchiveDisabled) {
					return err
				}
			}
			fmt.Fprintf(out, "Cleared %d sessions\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clear every session")
	cmd.Flags().BoolVar(&archive, "archive", false, "Also delete archived chats")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
