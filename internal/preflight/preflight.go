package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nycterent/thefilter/internal/config"
	"github.com/nycterent/thefilter/internal/runs"
	"github.com/nycterent/thefilter/internal/services/buttondown"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local preflight checks for the given config. Online
// checks are opt-in via CheckButtondown so doctor stays useful offline.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckDatabase(ctx, cfg))
	return results
}

// CheckDirectoryAccess reports whether the gate can read and write the
// directory. Missing directories fail here; EnsureDirectories creates the
// configured ones before these checks run.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Result{Name: name, Detail: path + " does not exist"}
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("stat %s: %v", path, err)}
	case !info.IsDir():
		return Result{Name: name, Detail: path + " is not a directory"}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("no read/write access to %s: %v", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDatabase opens the run database and inspects its health.
func CheckDatabase(ctx context.Context, cfg *config.Config) Result {
	const name = "Run database"

	store, err := runs.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open failed: %v", err)}
	}
	defer store.Close()

	health, err := store.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", health.DBPath, err)}
	}
	if !health.DatabaseExists {
		// A missing file is fine; the schema is created on first open.
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", health.DBPath)}
	}
	if !health.IntegrityCheck {
		return Result{Name: name, Detail: fmt.Sprintf("%s (integrity check failed)", health.DBPath)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d runs)", health.DBPath, health.TotalRuns)}
}

// CheckButtondown verifies that the publishing API is reachable and the
// key is accepted. It uses a 10-second timeout and a single attempt.
func CheckButtondown(ctx context.Context, cfg *config.Config) Result {
	const name = "Buttondown API"

	if cfg.Buttondown.APIKey == "" {
		return Result{Name: name, Detail: "api key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := buttondown.NewFromConfig(cfg)
	if _, err := client.ListEmails(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("list emails failed: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable, key accepted"}
}
