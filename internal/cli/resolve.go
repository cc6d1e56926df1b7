package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/skiff/internal/domain"
)

// resolveTaskID accepts a full task ID or a unique ID prefix and returns the
// full ID. Ambiguous prefixes are an error listing the candidates.
func resolveTaskID(ctx context.Context, app *App, arg string) (string, error) {
	if _, err := app.Tasks.Get(ctx, arg); err == nil {
		return arg, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	all, err := app.Tasks.All(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range all {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q: %w", arg, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous: matches %s", arg, strings.Join(matches, ", "))
	}
}
