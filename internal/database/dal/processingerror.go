package dal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProcessingErrorRow mirrors the processing_errors table.
type ProcessingErrorRow struct {
	ID            int64
	ScanRunID     uuid.UUID
	RelativePath  string
	ErrorType     string
	ErrorCategory string
	Message       string
	CreatedAt     time.Time
}

// ProcessingErrorDAL wraps processing_errors table access.
type ProcessingErrorDAL struct {
	db *sql.DB
}

func NewProcessingErrorDAL(db *sql.DB) *ProcessingErrorDAL { return &ProcessingErrorDAL{db: db} }

// Insert records one processing failure.
func (d *ProcessingErrorDAL) Insert(e ProcessingErrorRow) error {
	return insertProcessingError(d.db, e)
}

// InsertTx is Insert against an already-open transaction.
func (d *ProcessingErrorDAL) InsertTx(tx *sql.Tx, e ProcessingErrorRow) error {
	return insertProcessingError(tx, e)
}

func insertProcessingError(q execer, e ProcessingErrorRow) error {
	_, err := q.Exec(
		"INSERT INTO processing_errors (scan_run_id, relative_path, error_type, error_category, message, created_at) VALUES (?,?,?,?,?,?)",
		e.ScanRunID.String(), e.RelativePath, e.ErrorType, e.ErrorCategory, e.Message, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording processing error for %s: %w", e.RelativePath, err)
	}
	return nil
}

// InsertBatch records multiple processing failures in one transaction.
func (d *ProcessingErrorDAL) InsertBatch(errs []ProcessingErrorRow) error {
	if len(errs) == 0 {
		return nil
	}
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning processing error batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO processing_errors (scan_run_id, relative_path, error_type, error_category, message, created_at) VALUES (?,?,?,?,?,?)",
	)
	if err != nil {
		return fmt.Errorf("preparing processing error batch insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range errs {
		if _, err := stmt.Exec(e.ScanRunID.String(), e.RelativePath, e.ErrorType, e.ErrorCategory, e.Message, now); err != nil {
			return fmt.Errorf("recording processing error for %s: %w", e.RelativePath, err)
		}
	}
	return tx.Commit()
}

// CountByCategory returns the number of errors of category for scanRunID.
func (d *ProcessingErrorDAL) CountByCategory(scanRunID uuid.UUID, category string) (int, error) {
	var n int
	err := d.db.QueryRow(
		"SELECT COUNT(*) FROM processing_errors WHERE scan_run_id = ? AND error_category = ?",
		scanRunID.String(), category,
	).Scan(&n)
	return n, err
}

// CountForScanRun returns the total number of errors recorded for
// scanRunID.
func (d *ProcessingErrorDAL) CountForScanRun(scanRunID uuid.UUID) (int, error) {
	var n int
	err := d.db.QueryRow(
		"SELECT COUNT(*) FROM processing_errors WHERE scan_run_id = ?",
		scanRunID.String(),
	).Scan(&n)
	return n, err
}
