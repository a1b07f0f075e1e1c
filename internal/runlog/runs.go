package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, source_name, source_path, output_path, status, state, transcript, corrected, error_kind, error_message, audio_channels, video_seconds, created_at, updated_at, finished_at"

const defaultListLimit = 50

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Begin records a new running run. ID and SourceName are required.
func (s *Store) Begin(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("begin run: id is required")
	}
	if strings.TrimSpace(run.SourceName) == "" {
		return errors.New("begin run: source name is required")
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, source_name, source_path, output_path, status, state, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.SourceName,
		nullableString(run.SourcePath),
		nullableString(run.OutputPath),
		StatusRunning,
		run.State,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Advance updates the pipeline state of a running run.
func (s *Store) Advance(ctx context.Context, id, state string) error {
	affected, err := s.exec(ctx,
		`UPDATE runs SET state = ?, updated_at = ? WHERE id = ?`,
		state, time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("advance run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("advance run %s: %w", id, ErrNotFound)
	}
	return nil
}

// Finish stores the final outcome of a run. Status must be terminal.
func (s *Store) Finish(ctx context.Context, run Run) error {
	if !run.Status.IsTerminal() {
		return fmt.Errorf("finish run: status %q is not terminal", run.Status)
	}
	now := time.Now().UTC()
	finished := now
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	affected, err := s.exec(ctx,
		`UPDATE runs SET
            status = ?, state = ?, output_path = ?, transcript = ?, corrected = ?,
            error_kind = ?, error_message = ?, audio_channels = ?, video_seconds = ?,
            updated_at = ?, finished_at = ?
         WHERE id = ?`,
		run.Status,
		run.State,
		nullableString(run.OutputPath),
		nullableString(run.Transcript),
		nullableString(run.Corrected),
		nullableString(run.ErrorKind),
		nullableString(run.ErrorMessage),
		run.AudioChannels,
		run.VideoSeconds,
		now.Format(timeLayout),
		finished.Format(timeLayout),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// Get returns the run with id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first. A limit <= 0 uses a default of 50.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// MarkInterrupted fails every run still marked running. It is called at
// startup, when no run from an earlier process can still be in flight.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(timeLayout)
	affected, err := s.exec(ctx,
		`UPDATE runs SET status = ?, error_kind = ?, error_message = ?, updated_at = ?, finished_at = ?
         WHERE status = ?`,
		StatusFailed, "interrupted", InterruptedReason, now, now, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	return affected, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		status       string
		sourcePath   sql.NullString
		outputPath   sql.NullString
		transcript   sql.NullString
		corrected    sql.NullString
		errorKind    sql.NullString
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.SourceName,
		&sourcePath,
		&outputPath,
		&status,
		&run.State,
		&transcript,
		&corrected,
		&errorKind,
		&errorMessage,
		&run.AudioChannels,
		&run.VideoSeconds,
		&createdRaw,
		&updatedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.SourcePath = sourcePath.String
	run.OutputPath = outputPath.String
	run.Transcript = transcript.String
	run.Corrected = corrected.String
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMessage.String
	if created, err := parseTimeString(createdRaw); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		run.UpdatedAt = updated
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
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
	return time.Parse(timeLayout, value)
}
