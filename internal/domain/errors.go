package domain

import "errors"

var (
	// ErrNotFound indicates an operation targeted a task id absent from
	// the store or graph.
	ErrNotFound = errors.New("task not found")

	// ErrCycle indicates a re-parenting that would make a task its own
	// descendant.
	ErrCycle = errors.New("move would create a cycle")

	// ErrMissingTitle indicates a task without the required title.
	ErrMissingTitle = errors.New("task title is required")
)
