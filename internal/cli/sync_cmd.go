package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/skiff/internal/cli/formatter"
	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass against the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if app.Engine.State() == domain.SyncOffline {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Offline: no remote configured (set SKIFF_REMOTE)."))
				return nil
			}
			if err := app.Engine.Sync(ctx); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			// The run may have rewritten ids and references.
			if err := app.Tasks.Load(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s sync complete\n", formatter.StateBadge(app.Engine.State()))
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync engine state and local store summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			all, err := app.Tasks.All(ctx)
			if err != nil {
				return err
			}
			pending, placeholders := 0, 0
			for _, t := range all {
				if t.SyncStatus == domain.SyncPending {
					pending++
				}
				if t.IsPlaceholder() {
					placeholders++
				}
			}

			var b strings.Builder
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("STATE    "), formatter.StateBadge(app.Engine.State())))
			if err := app.Engine.LastError(); err != nil {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("LAST ERR "), formatter.StyleRed.Render(err.Error())))
			}
			lastSync, err := app.Store.LastSyncTime(ctx)
			if err != nil {
				return err
			}
			if lastSync != nil {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("LAST SYNC"), formatter.HumanTimestamp(*lastSync)))
			} else {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("LAST SYNC"), formatter.Dim("never")))
			}
			b.WriteString(fmt.Sprintf("  %s  %d\n", formatter.Dim("TASKS    "), len(all)))
			b.WriteString(fmt.Sprintf("  %s  %d\n", formatter.Dim("PENDING  "), pending))
			b.WriteString(fmt.Sprintf("  %s  %d\n", formatter.Dim("LOCAL-ONLY"), placeholders))

			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox("Sync Status", b.String()))
			return nil
		},
	}
}
