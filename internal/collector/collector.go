// Package collector detects files that landed in the shared download
// directory during a batch and files them into per-day folders.
package collector

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Snapshot is a point-in-time set of regular-file paths in a directory.
type Snapshot map[string]struct{}

// Take lists the regular files directly inside dir (non-recursive). A
// missing directory yields an empty snapshot.
func Take(dir string) (Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list download directory: %w", err)
	}

	snap := make(Snapshot, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		snap[filepath.Join(dir, entry.Name())] = struct{}{}
	}
	return snap, nil
}

// Diff returns the paths present in after but not in before, sorted. Files
// present in both snapshots are excluded regardless of modification.
func Diff(before, after Snapshot) []string {
	var added []string
	for path := range after {
		if _, ok := before[path]; !ok {
			added = append(added, path)
		}
	}
	sort.Strings(added)
	return added
}

// Relocate creates dest if needed and moves each file into it. A failed move
// is logged and skipped: losing one file's placement is recoverable by hand,
// aborting the day would lose its ledger update.
func Relocate(files []string, dest string, log *slog.Logger) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, fmt.Errorf("create day folder: %w", err)
	}

	moved := 0
	for _, file := range files {
		target := filepath.Join(dest, filepath.Base(file))
		if err := os.Rename(file, target); err != nil {
			log.Warn("file not relocated", "file", file, "error", err)
			continue
		}
		moved++
	}
	return moved, nil
}
