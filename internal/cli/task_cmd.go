package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/skiff/internal/cli/formatter"
	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

// statusValue is a pflag.Value that only accepts known task statuses.
type statusValue struct {
	status domain.TaskStatus
}

var _ pflag.Value = (*statusValue)(nil)

func (v *statusValue) String() string { return string(v.status) }
func (v *statusValue) Type() string   { return "status" }

func (v *statusValue) Set(raw string) error {
	if !domain.ValidTaskStatuses[raw] {
		return fmt.Errorf("unknown status %q (want not_started|in_progress|completed|ignored)", raw)
	}
	v.status = domain.TaskStatus(raw)
	return nil
}

func newAddCmd(app *App) *cobra.Command {
	var desc, parent, start, due string
	var priority int

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			t := &domain.Task{Title: args[0], Description: desc}

			if cmd.Flags().Changed("start") {
				at, err := time.Parse(dateLayout, start)
				if err != nil {
					return fmt.Errorf("parsing --start: %w", err)
				}
				t.SoftStart = &at
			}
			if cmd.Flags().Changed("due") {
				at, err := time.Parse(dateLayout, due)
				if err != nil {
					return fmt.Errorf("parsing --due: %w", err)
				}
				t.HardEnd = &at
			}
			if cmd.Flags().Changed("priority") {
				p := priority
				t.Priority = &p
			}

			if cmd.Flags().Changed("parent") {
				parentID, err := resolveTaskID(ctx, app, parent)
				if err != nil {
					return err
				}
				if err := app.Tasks.AddChild(ctx, parentID, t); err != nil {
					return err
				}
			} else if err := app.Tasks.Add(ctx, t); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s)\n", t.Title, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Task description")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task ID")
	cmd.Flags().StringVar(&start, "start", "", "Soft start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "Hard deadline (YYYY-MM-DD)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority")

	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var overdueOnly bool
	var statusFilter statusValue

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks sorted by deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			now := time.Now()

			var tasks []*domain.StoredTask
			var err error
			if overdueOnly {
				tasks, err = app.Tasks.Overdue(ctx, now)
			} else {
				tasks, err = app.Tasks.SortedByDeadline(ctx)
			}
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("status") {
				filtered := tasks[:0]
				for _, t := range tasks {
					if t.Status == statusFilter.status {
						filtered = append(filtered, t)
					}
				}
				tasks = filtered
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No tasks."))
				return nil
			}

			headers := []string{"ID", "TITLE", "STATUS", "DEADLINE", "SYNC"}
			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				rows = append(rows, []string{
					formatter.TruncID(t.ID),
					t.Title,
					formatter.StatusPill(t.Status),
					formatter.DeadlineStyled(t, now),
					formatter.SyncBadge(t.SyncStatus),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overdueOnly, "overdue", false, "Only show overdue tasks")
	cmd.Flags().Var(&statusFilter, "status", "Only show tasks with this status")
	return cmd
}

func newTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the task forest",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			items, err := collectTree(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTaskTree(items))
			return nil
		},
	}
}

// collectTree walks the forest depth-first, roots in deterministic order.
func collectTree(ctx context.Context, app *App) ([]formatter.TreeItem, error) {
	roots, err := app.Tasks.Roots(ctx)
	if err != nil {
		return nil, err
	}

	var items []formatter.TreeItem
	var walk func(t *domain.StoredTask, level int, isLast bool) error
	walk = func(t *domain.StoredTask, level int, isLast bool) error {
		items = append(items, formatter.TreeItem{Task: t, Level: level, IsLast: isLast})
		children, err := app.Tasks.Children(ctx, t.ID)
		if err != nil {
			return err
		}
		for i, c := range children {
			if err := walk(c, level+1, i == len(children)-1); err != nil {
				return err
			}
		}
		return nil
	}
	for i, r := range roots {
		if err := walk(r, 0, i == len(roots)-1); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func newInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ID",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}

			var b strings.Builder
			b.WriteString(fmt.Sprintf("%s  %s\n\n", formatter.Bold(t.Title), formatter.StatusPill(t.Status)))
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("ID      "), t.ID))
			if t.RemoteID != "" {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("REMOTE  "), t.RemoteID))
			} else {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("REMOTE  "), formatter.Dim("not yet assigned")))
			}
			if t.Description != "" {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("DESC    "), t.Description))
			}
			if t.Priority != nil {
				b.WriteString(fmt.Sprintf("  %s  %d\n", formatter.Dim("PRIORITY"), *t.Priority))
			}
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("START   "), formatter.HumanDate(t.EffectiveStart())))
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("DUE     "), formatter.DeadlineStyled(t, time.Now())))
			if t.ParentID != nil {
				b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("PARENT  "), formatter.TruncID(*t.ParentID)))
			}
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("SYNC    "), formatter.SyncBadge(t.SyncStatus)))
			b.WriteString(fmt.Sprintf("  %s  %s\n", formatter.Dim("MODIFIED"), formatter.HumanTimestamp(t.LastModified)))

			children, err := app.Tasks.Children(ctx, t.ID)
			if err != nil {
				return err
			}
			if len(children) > 0 {
				b.WriteString("\n")
				b.WriteString(formatter.Header("Subtasks"))
				b.WriteString("\n")
				headers := []string{"ID", "TITLE", "STATUS"}
				rows := make([][]string, 0, len(children))
				for _, c := range children {
					rows = append(rows, []string{
						formatter.TruncID(c.ID),
						c.Title,
						formatter.StatusPill(c.Status),
					})
				}
				b.WriteString(formatter.RenderTable(headers, rows))
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox("Task", b.String()))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var title, desc, start, due string
	var priority int

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			stored, err := app.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			t := stored.Clone()

			if cmd.Flags().Changed("title") {
				t.Title = title
			}
			if cmd.Flags().Changed("desc") {
				t.Description = desc
			}
			if cmd.Flags().Changed("start") {
				at, err := time.Parse(dateLayout, start)
				if err != nil {
					return fmt.Errorf("parsing --start: %w", err)
				}
				t.SoftStart = &at
			}
			if cmd.Flags().Changed("due") {
				at, err := time.Parse(dateLayout, due)
				if err != nil {
					return fmt.Errorf("parsing --due: %w", err)
				}
				t.HardEnd = &at
			}
			if cmd.Flags().Changed("priority") {
				p := priority
				t.Priority = &p
			}

			if err := app.Tasks.Update(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&desc, "desc", "", "New description")
	cmd.Flags().StringVar(&start, "start", "", "Soft start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "Hard deadline (YYYY-MM-DD)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority")

	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var toRoot bool

	cmd := &cobra.Command{
		Use:   "move ID [PARENT]",
		Short: "Re-parent a task (use --root to make it top-level)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}

			newParent := ""
			if !toRoot {
				if len(args) < 2 {
					return fmt.Errorf("a parent ID is required unless --root is given")
				}
				newParent, err = resolveTaskID(ctx, app, args[1])
				if err != nil {
					return err
				}
			}

			if err := app.Tasks.Move(ctx, id, newParent); err != nil {
				return err
			}
			if newParent == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s to top level\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s under %s\n", id, newParent)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&toRoot, "root", false, "Move to top level")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a task and its whole subtree",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			removed, err := app.Tasks.Remove(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d task(s)\n", len(removed))
			return nil
		},
	}
}

func newMarkCmd(app *App, use, short string, status domain.TaskStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Tasks.SetStatus(ctx, id, status); err != nil {
				return err
			}
			t, err := app.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StatusPill(t.Status), t.Title)
			return nil
		},
	}
}
