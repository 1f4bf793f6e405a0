package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/slideshot/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "slideshot.db"

// timestampLayout sorts lexically in chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB provides SQLite-based storage for capture runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slide TEXT NOT NULL,
		title TEXT,
		digest TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		screenshot TEXT,
		report_json TEXT NOT NULL,
		summary TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_slide ON runs(slide);
	CREATE INDEX IF NOT EXISTS idx_runs_captured_at ON runs(captured_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one stored capture of a slide.
type Run struct {
	ID         int64
	Slide      string
	Title      string
	Digest     string
	CapturedAt time.Time
	Width      int
	Height     int
	Screenshot string
	Summary    model.Summary
	Report     *model.LayoutReport
}

// RunMetadata is a run without its report, for listings.
type RunMetadata struct {
	ID         int64
	Slide      string
	Digest     string
	CapturedAt time.Time
	Summary    model.Summary
}

// SlideKey normalizes an HTML path into the key runs are stored under.
func SlideKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve slide path: %w", err)
	}
	return filepath.Clean(abs), nil
}

// SaveRun stores run and returns its ID. The summary is derived from the
// report. A zero CapturedAt is replaced with the current time.
func (h *HistoryDB) SaveRun(ctx context.Context, run *Run) (int64, error) {
	if run.Report == nil {
		return 0, errors.New("run has no report")
	}

	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	run.Summary = run.Report.Summary()
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}
	if run.CapturedAt.IsZero() {
		run.CapturedAt = time.Now()
	}

	query := `
	INSERT INTO runs (slide, title, digest, captured_at, width, height, screenshot, report_json, summary)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		run.Slide,
		run.Title,
		run.Digest,
		run.CapturedAt.UTC().Format(timestampLayout),
		run.Width,
		run.Height,
		run.Screenshot,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	run.ID = id
	return id, nil
}

// ListSlides returns every slide that has at least one run.
func (h *HistoryDB) ListSlides(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT slide FROM runs ORDER BY slide`)
	if err != nil {
		return nil, fmt.Errorf("failed to list slides: %w", err)
	}
	defer rows.Close()

	var slides []string
	for rows.Next() {
		var slide string
		if err := rows.Scan(&slide); err != nil {
			return nil, fmt.Errorf("failed to scan slide: %w", err)
		}
		slides = append(slides, slide)
	}
	return slides, rows.Err()
}

// ListRuns returns the run metadata of slide, newest first.
func (h *HistoryDB) ListRuns(ctx context.Context, slide string) ([]RunMetadata, error) {
	query := `
	SELECT id, slide, digest, captured_at, summary
	FROM runs
	WHERE slide = ?
	ORDER BY captured_at DESC, id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, slide)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta        RunMetadata
			capturedAt  string
			summaryJSON string
		)
		if err := rows.Scan(&meta.ID, &meta.Slide, &meta.Digest, &capturedAt, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.CapturedAt = parseTimestamp(capturedAt)
		if err := json.Unmarshal([]byte(summaryJSON), &meta.Summary); err != nil {
			meta.Summary = model.Summary{}
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

const runColumns = `id, slide, title, digest, captured_at, width, height, screenshot, report_json`

// GetRunByID returns the run with the given ID, or ErrRunNotFound.
func (h *HistoryDB) GetRunByID(ctx context.Context, id int64) (*Run, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetLatestRuns returns up to limit runs of slide, newest first.
// Rows whose report cannot be decoded are skipped.
func (h *HistoryDB) GetLatestRuns(ctx context.Context, slide string, limit int) ([]*Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT ` + runColumns + `
	FROM runs
	WHERE slide = ?
	ORDER BY captured_at DESC, id DESC
	LIMIT ?
	`

	rows, err := h.db.QueryContext(ctx, query, slide, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			var parseErr *reportParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

type reportParseError struct {
	id  int64
	err error
}

func (e *reportParseError) Error() string {
	return fmt.Sprintf("failed to parse report of run %d: %v", e.id, e.err)
}

func (e *reportParseError) Unwrap() error {
	return e.err
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		title      sql.NullString
		screenshot sql.NullString
		capturedAt string
		reportJSON string
	)
	err := row.Scan(&run.ID, &run.Slide, &title, &run.Digest, &capturedAt,
		&run.Width, &run.Height, &screenshot, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Title = title.String
	run.Screenshot = screenshot.String
	run.CapturedAt = parseTimestamp(capturedAt)

	var report model.LayoutReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, &reportParseError{id: run.ID, err: err}
	}
	if report.Words == nil {
		report.Words = []model.Word{}
	}
	if report.Warnings == nil {
		report.Warnings = []model.Warning{}
	}
	run.Report = &report
	run.Summary = report.Summary()
	return &run, nil
}

// timestampFormats lists the layouts a stored timestamp may use.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
