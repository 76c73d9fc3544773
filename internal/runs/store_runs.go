package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, source, title, issue_number, status, report_json, email_id, email_url, attempts_json, error_message, created_at, updated_at"

// timeLayout is RFC3339 with zero-padded nanoseconds. Timestamps are stored
// as TEXT and ordered lexicographically, so the width must be fixed.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// terminalSQLList is the terminal status set rendered for IN clauses, in
// catalogue order so generated SQL is stable.
var terminalSQLList = func() string {
	quoted := make([]string, 0, len(terminalStatuses))
	for _, status := range allStatuses {
		if status.IsTerminal() {
			quoted = append(quoted, "'"+string(status)+"'")
		}
	}
	return strings.Join(quoted, ", ")
}()

// Create inserts a new run for a source document, starting at generated.
func (s *Store) Create(ctx context.Context, source, title string) (*Run, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("source is required")
	}

	timestamp := time.Now().UTC().Format(timeLayout)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (
            source, title, issue_number, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		source,
		nullableString(strings.TrimSpace(title)),
		0,
		StatusGenerated,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a run by identifier. A missing id returns (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Update persists changes to an existing run. Updates against a terminal
// row fail with ErrTerminalRun; the row is left untouched.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if _, ok := statusSet[run.Status]; !ok {
		return fmt.Errorf("unknown status %q", run.Status)
	}
	attemptsJSON, err := attemptsToJSON(run.Attempts)
	if err != nil {
		return fmt.Errorf("marshal attempts: %w", err)
	}

	run.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET source = ?, title = ?, issue_number = ?, status = ?, report_json = ?,
             email_id = ?, email_url = ?, attempts_json = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND status NOT IN (`+terminalSQLList+`)`,
		run.Source,
		nullableString(run.Title),
		run.IssueNumber,
		run.Status,
		nullableString(run.ReportJSON),
		nullableString(run.EmailID),
		nullableString(run.EmailURL),
		nullableString(attemptsJSON),
		nullableString(run.ErrorMessage),
		run.UpdatedAt.Format(timeLayout),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		existing, getErr := s.GetByID(ctx, run.ID)
		if getErr != nil {
			return getErr
		}
		if existing == nil {
			return fmt.Errorf("update run %d: %w", run.ID, ErrRunNotFound)
		}
		return fmt.Errorf("update run %d in status %s: %w", run.ID, existing.Status, ErrTerminalRun)
	}
	return nil
}

// List returns runs newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Run, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + runColumns + ` FROM runs`
	orderClause := ` ORDER BY created_at DESC, id DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// NextForStatuses returns the oldest run matching any of the provided
// statuses, or nil when nothing is waiting.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Run, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE status IN (` + placeholders + `) ORDER BY created_at, id LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Reissue opens a fresh run for the source of an existing run. This is the
// retry path for terminal rows, which are themselves immutable.
func (s *Store) Reissue(ctx context.Context, id int64) (*Run, error) {
	prior, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, fmt.Errorf("reissue run %d: %w", id, ErrRunNotFound)
	}
	return s.Create(ctx, prior.Source, prior.Title)
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           int64
		source       string
		title        sql.NullString
		issueNumber  sql.NullInt64
		statusStr    string
		reportJSON   sql.NullString
		emailID      sql.NullString
		emailURL     sql.NullString
		attemptsJSON sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&source,
		&title,
		&issueNumber,
		&statusStr,
		&reportJSON,
		&emailID,
		&emailURL,
		&attemptsJSON,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		Source:       source,
		Title:        title.String,
		IssueNumber:  int(issueNumber.Int64),
		Status:       Status(statusStr),
		ReportJSON:   reportJSON.String,
		EmailID:      emailID.String,
		EmailURL:     emailURL.String,
		Attempts:     attemptsFromJSON(attemptsJSON.String),
		ErrorMessage: errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
