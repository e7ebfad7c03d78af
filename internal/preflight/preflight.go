package preflight

import (
	"context"
	"path/filepath"

	"mqlite/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free space below which the store directory check fails.
const minFreeBytes = 64 << 20

// RunAll executes all applicable preflight checks for the given config.
// Filesystem checks are skipped for in-memory stores.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if !cfg.InMemory() {
		dir := filepath.Dir(cfg.Store.Path)
		results = append(results,
			CheckDirectoryAccess("Store directory", dir),
			CheckFreeSpace("Free space", dir, minFreeBytes),
			CheckLockAvailable("Store lock", cfg.Store.Path),
		)
	}
	results = append(results, CheckStore(ctx, cfg))
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
