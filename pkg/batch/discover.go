package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkgbatch/pkg/kind"
)

// Candidate is one discovered archive file, classified and numbered in
// discovery order.
type Candidate struct {
	Path  string
	Kind  kind.Kind
	Index int
}

// Discover validates root, then walks it in a producer goroutine,
// emitting recognized archives on the returned channel. The sequence is
// lazy, finite, and closed when the walk ends or ctx is cancelled; a
// fresh call is needed to enumerate again.
//
// Root problems are fatal and returned immediately. Everything below the
// root is best-effort: unreadable subtrees, symlinks, and extensionless
// files are skipped with at most a debug log.
func Discover(ctx context.Context, root string, kinds kind.Set, log *slog.Logger) (<-chan Candidate, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}

	out := make(chan Candidate)
	go func() {
		defer close(out)
		index := 0
		// Walk errors below the root are already handled inside the
		// callback, so the return value carries nothing new.
		_ = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Debug("skipping unreadable entry", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if ctx.Err() != nil {
				return fs.SkipAll
			}
			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() {
				log.Debug("skipping irregular file", "path", path)
				return nil
			}
			k, ok := kinds.Match(path)
			if !ok {
				log.Debug("ignoring file", "path", path)
				return nil
			}

			select {
			case out <- Candidate{Path: path, Kind: k, Index: index}:
				index++
				return nil
			case <-ctx.Done():
				return fs.SkipAll
			}
		})
	}()
	return out, nil
}
