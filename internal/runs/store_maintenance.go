package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ResetProcessing rolls runs left in an in-flight status by an aborted
// process back to the resting state their stage started from, so a later
// process pass can pick them up again.
func (s *Store) ResetProcessing(ctx context.Context) (int64, error) {
	var total int64
	now := time.Now().UTC().Format(timeLayout)
	for _, tr := range processingRollbacks {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE runs SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`,
			tr.to,
			now,
			tr.from,
		)
		if err != nil {
			return total, fmt.Errorf("reset %s runs: %w", tr.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// Clear removes terminal runs, keeping in-flight rows untouched.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM runs WHERE status IN (`+terminalSQLList+`)`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates run state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch {
		case status == StatusSucceeded:
			health.Succeeded += count
		case status.IsTerminal():
			health.Failed += count
		case status.IsProcessing():
			health.Processing += count
		default:
			health.Queued += count
		}
	}
	return health, nil
}

// CheckHealth returns diagnostic information about the run database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}
	if s.path == "" {
		return health, errors.New("run database path is unknown")
	}

	switch info, err := os.Stat(s.path); {
	case errors.Is(err, os.ErrNotExist):
		return health, nil
	case err != nil:
		return health, fmt.Errorf("stat run database: %w", err)
	case info.IsDir():
		return health, fmt.Errorf("run database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("run database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.inspect(connCtx, &health); err != nil {
		health.Error = err.Error()
		return health, err
	}
	return health, nil
}

// inspect fills the connection-dependent health fields, stopping at the
// first probe that fails.
func (s *Store) inspect(ctx context.Context, health *DatabaseHealth) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping run database: %w", err)
	}
	health.DatabaseReadable = true

	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'runs'",
	).Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh file, schema not applied yet.
	case err != nil:
		return fmt.Errorf("query table info: %w", err)
	default:
		health.TableExists = true
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&health.TotalRuns); err != nil {
			return fmt.Errorf("count runs: %w", err)
		}
	}

	var verdict string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&verdict); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(verdict, "ok")
	return nil
}
