package cli

import (
	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/alexanderramin/skiff/internal/repository"
	"github.com/alexanderramin/skiff/internal/service"
	synceng "github.com/alexanderramin/skiff/internal/sync"
	"github.com/spf13/cobra"
)

// App holds the wired collaborators CLI commands run against.
type App struct {
	Tasks  service.TaskService
	Store  repository.TaskStore
	Engine *synceng.Engine
}

// NewRootCmd creates the top-level "skiff" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "skiff",
		Short: "Local-first task manager with background sync",
	}

	root.AddCommand(
		newAddCmd(app),
		newListCmd(app),
		newTreeCmd(app),
		newInspectCmd(app),
		newEditCmd(app),
		newMoveCmd(app),
		newRemoveCmd(app),
		newMarkCmd(app, "done", "Mark a task completed", domain.TaskCompleted),
		newMarkCmd(app, "start", "Mark a task in progress", domain.TaskInProgress),
		newMarkCmd(app, "ignore", "Mark a task ignored", domain.TaskIgnored),
		newSyncCmd(app),
		newStatusCmd(app),
		newServeCmd(app),
	)

	return root
}
