// Package venture records seeded ventures in SQLite and keeps each venture's
// brief on disk.
package venture

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the lifecycle state of a venture.
type Status string

const (
	StatusSeeding Status = "seeding"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSeeding, StatusRunning, StatusPaused, StatusStopped:
		return true
	}
	return false
}

// ErrNotFound is returned when no venture has the requested id.
var ErrNotFound = errors.New("venture not found")

// BriefFile is the name of the brief document inside a venture directory.
const BriefFile = "brief.md"

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is the stored metadata for one venture.
type Record struct {
	VentureID  string
	Brief      string
	WorkflowID string
	Status     Status
	SeedID     string
	RunID      string
	RunNumber  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store manages venture metadata in SQLite.
type Store struct {
	DBPath string
	// Dir receives one directory per venture holding brief.md.
	Dir string

	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the venture database at dbPath. Venture directories
// are created under dir.
func Open(dbPath, dir string) (*Store, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve venture db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure venture db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open venture db: %w", err)
	}

	store := &Store{
		DBPath: absPath,
		Dir:    dir,
		db:     db,
		now:    time.Now,
	}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ensureSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS ventures (
	id TEXT PRIMARY KEY,
	brief TEXT NOT NULL,
	workflow_id TEXT NOT NULL,
	status TEXT NOT NULL,
	seed_id TEXT,
	run_id TEXT,
	run_number INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ventures_created ON ventures(created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create venture schema: %w", err)
	}
	return nil
}

// Save stores a new venture in the seeding state and writes its brief. Saving
// an existing id replaces the previous record and clears its run info.
func (s *Store) Save(ventureID, brief, workflowID, seedID string) (*Record, error) {
	if ventureID == "" {
		return nil, errors.New("venture id is required")
	}
	now := s.now().UTC()
	rec := &Record{
		VentureID:  ventureID,
		Brief:      brief,
		WorkflowID: workflowID,
		Status:     StatusSeeding,
		SeedID:     seedID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.writeBrief(ventureID, brief); err != nil {
		return nil, err
	}

	stamp := now.Format(timeLayout)
	_, err := s.db.Exec(`
		INSERT INTO ventures (id, brief, workflow_id, status, seed_id, run_id, run_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NULL, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			brief = excluded.brief,
			workflow_id = excluded.workflow_id,
			status = excluded.status,
			seed_id = excluded.seed_id,
			run_id = NULL,
			run_number = 0,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, ventureID, brief, workflowID, string(StatusSeeding), seedID, stamp, stamp)
	if err != nil {
		return nil, fmt.Errorf("save venture: %w", err)
	}
	return rec, nil
}

func (s *Store) writeBrief(ventureID, brief string) error {
	dir := filepath.Join(s.Dir, ventureID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure venture dir: %w", err)
	}
	content := fmt.Sprintf("# Business Brief\n\n%s\n", brief)
	if err := os.WriteFile(filepath.Join(dir, BriefFile), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write brief: %w", err)
	}
	return nil
}

// UpdateStatus moves a venture to status.
func (s *Store) UpdateStatus(ventureID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid venture status %q", status)
	}
	return s.update(ventureID, "UPDATE ventures SET status = ?, updated_at = ? WHERE id = ?",
		string(status), s.now().UTC().Format(timeLayout), ventureID)
}

// RecordRun stores the id and sequence number of the venture's latest run.
func (s *Store) RecordRun(ventureID, runID string, runNumber int) error {
	return s.update(ventureID, "UPDATE ventures SET run_id = ?, run_number = ?, updated_at = ? WHERE id = ?",
		runID, runNumber, s.now().UTC().Format(timeLayout), ventureID)
}

func (s *Store) update(ventureID, query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update venture: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update venture: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, ventureID)
	}
	return nil
}

const selectColumns = `SELECT id, brief, workflow_id, status, seed_id, run_id, run_number, created_at, updated_at FROM ventures`

// Get returns the venture with the given id.
func (s *Store) Get(ventureID string) (*Record, error) {
	rows, err := s.db.Query(selectColumns+" WHERE id = ?", ventureID)
	if err != nil {
		return nil, fmt.Errorf("get venture: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ventureID)
	}
	return &records[0], nil
}

// List returns every venture, newest first.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(selectColumns + " ORDER BY created_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("query ventures: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var status, createdAt, updatedAt string
		var seedID, runID sql.NullString
		if err := rows.Scan(&rec.VentureID, &rec.Brief, &rec.WorkflowID, &status,
			&seedID, &runID, &rec.RunNumber, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan venture: %w", err)
		}
		rec.Status = Status(status)
		rec.SeedID = seedID.String
		rec.RunID = runID.String
		rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		rec.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ventures: %w", err)
	}
	return records, nil
}
