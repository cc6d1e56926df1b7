package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// TreeItem is one rendered row of the task forest.
type TreeItem struct {
	Task   *domain.StoredTask
	Level  int
	IsLast bool
}

// RenderTaskTree renders tasks as an indented tree with box-drawing
// connectors. Completed tasks get a green ✔ and dimmed title, in-progress
// tasks an amber ▶, ignored tasks are dimmed; pending-sync rows get a
// right-aligned badge.
func RenderTaskTree(items []TreeItem) string {
	if len(items) == 0 {
		return Dim("No tasks.") + "\n"
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxWidth := 0

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Task.Title
		glyph := ""
		switch item.Task.Status {
		case domain.TaskCompleted:
			glyph = StyleGreen.Render("✔ ")
			title = Dim(title)
		case domain.TaskInProgress:
			glyph = StyleYellowBold.Render("▶ ")
			title = StyleYellowBold.Render(title)
		case domain.TaskIgnored:
			glyph = StyleDim.Render("⊘ ")
			title = Dim(title)
		}

		content := prefix + glyph + title + "  " + TruncID(item.Task.ID)
		lines[idx].content = content
		if item.Task.SyncStatus != domain.SyncSynced {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Task.SyncStatus))
		}
		if w := lipgloss.Width(content); w > maxWidth {
			maxWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}
	return b.String()
}
