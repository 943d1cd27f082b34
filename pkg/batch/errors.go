package batch

import "errors"

var (
	// ErrRootNotFound means the input root does not exist or is not a
	// directory. Fatal: reported before any job runs.
	ErrRootNotFound = errors.New("input root not found")

	// ErrRootUnreadable means the input root exists but cannot be read.
	// Fatal: reported before any job runs.
	ErrRootUnreadable = errors.New("input root not readable")

	// ErrJobsFailed marks a batch that attempted every candidate but
	// recorded at least one failed extraction.
	ErrJobsFailed = errors.New("one or more extraction jobs failed")
)
