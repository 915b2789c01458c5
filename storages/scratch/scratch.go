package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Dir is the scratch area rendered artifacts are written to before being
// streamed back. Files are disposable; the Sweeper removes them once they
// outlive the TTL.
type Dir struct {
	Root string
	TTL  time.Duration
}

func New(root string, ttl time.Duration) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("scratch: create root: %w", err)
	}
	return &Dir{Root: root, TTL: ttl}, nil
}

// Write stores one artifact and returns its full path. Only the base of
// name is used so callers cannot escape the scratch root.
func (d *Dir) Write(name string, data []byte) (string, error) {
	path := filepath.Join(d.Root, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("scratch: write %s: %w", name, err)
	}
	return path, nil
}

// SweepOlderThan removes files whose mtime is before the cutoff and reports
// how many were deleted.
func (d *Dir) SweepOlderThan(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return 0, fmt.Errorf("scratch: read root: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(d.Root, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
