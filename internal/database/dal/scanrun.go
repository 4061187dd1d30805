package dal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScanRunRow mirrors the scan_runs table.
type ScanRunRow struct {
	ID              uuid.UUID
	StartedAt       time.Time
	FinishedAt      *time.Time
	Status          string
	FilesProcessed  int
	FilesAdded      int
	FilesUpdated    int
	FilesUnchanged  int
	FilesMissing    int
	ErrorsCount     int
}

// ScanRunDAL wraps scan_runs table access.
type ScanRunDAL struct {
	db *sql.DB
}

func NewScanRunDAL(db *sql.DB) *ScanRunDAL { return &ScanRunDAL{db: db} }

// Create inserts a new in-progress scan run and returns its id.
func (d *ScanRunDAL) Create() (uuid.UUID, error) {
	id := uuid.New()
	_, err := d.db.Exec(
		"INSERT INTO scan_runs (id, started_at, status) VALUES (?, ?, 'running')",
		id.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("creating scan run: %w", err)
	}
	return id, nil
}

// UpdateCounters overwrites the running counters for id.
func (d *ScanRunDAL) UpdateCounters(id uuid.UUID, processed, added, updated, unchanged, missing, errorsCount int) error {
	_, err := d.db.Exec(`
		UPDATE scan_runs SET files_processed=?, files_added=?, files_updated=?, files_unchanged=?, files_missing=?, errors_count=?
		WHERE id=?`,
		processed, added, updated, unchanged, missing, errorsCount, id.String(),
	)
	if err != nil {
		return fmt.Errorf("updating scan run counters for %s: %w", id, err)
	}
	return nil
}

// Finalize marks id finished with a terminal status ("completed" or
// "failed").
func (d *ScanRunDAL) Finalize(id uuid.UUID, status string) error {
	_, err := d.db.Exec(
		"UPDATE scan_runs SET status=?, finished_at=? WHERE id=?",
		status, time.Now().UTC().Format(time.RFC3339), id.String(),
	)
	if err != nil {
		return fmt.Errorf("finalizing scan run %s: %w", id, err)
	}
	return nil
}

// GetByID returns the scan run row for id.
func (d *ScanRunDAL) GetByID(id uuid.UUID) (*ScanRunRow, error) {
	row := d.db.QueryRow(`
		SELECT id, started_at, finished_at, status, files_processed, files_added, files_updated, files_unchanged, files_missing, errors_count
		FROM scan_runs WHERE id=?`, id.String())

	var r ScanRunRow
	var idStr, startedAt string
	var finishedAt sql.NullString
	if err := row.Scan(&idStr, &startedAt, &finishedAt, &r.Status, &r.FilesProcessed,
		&r.FilesAdded, &r.FilesUpdated, &r.FilesUnchanged, &r.FilesMissing, &r.ErrorsCount); err != nil {
		return nil, err
	}
	r.ID, _ = uuid.Parse(idStr)
	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if finishedAt.Valid {
		if t, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
			r.FinishedAt = &t
		}
	}
	return &r, nil
}
