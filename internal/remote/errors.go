package remote

import "errors"

var (
	// ErrRemoteGone indicates the target task no longer exists in the
	// remote collection.
	ErrRemoteGone = errors.New("task no longer exists remotely")

	// ErrUnavailable indicates the remote collection is unreachable.
	ErrUnavailable = errors.New("remote collection unavailable")
)
