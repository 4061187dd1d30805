package dal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlbumRow mirrors the albums table.
type AlbumRow struct {
	ID                uuid.UUID
	FolderPath        string
	IsUserAlbum       bool
	Title             string
	Description       string
	AccessLevel       string
	CreationTimestamp *time.Time
	MetadataPath      string
	Status            string
	ScanRunID         uuid.UUID
}

// AlbumDAL wraps albums table access.
type AlbumDAL struct {
	db *sql.DB
}

func NewAlbumDAL(db *sql.DB) *AlbumDAL { return &AlbumDAL{db: db} }

// Upsert inserts a.ID or, if folder_path already has a row, updates it in
// place (album ids are deterministic from folder_path, so these are the
// same row whenever they collide).
func (d *AlbumDAL) Upsert(a AlbumRow) error {
	var created *string
	if a.CreationTimestamp != nil {
		s := a.CreationTimestamp.UTC().Format(time.RFC3339)
		created = &s
	}

	_, err := d.db.Exec(`
		INSERT INTO albums (id, folder_path, is_user_album, title, description, access_level, creation_timestamp, metadata_path, status, scan_run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'present', ?)
		ON CONFLICT(folder_path) DO UPDATE SET
			is_user_album=excluded.is_user_album,
			title=excluded.title,
			description=excluded.description,
			access_level=excluded.access_level,
			creation_timestamp=excluded.creation_timestamp,
			metadata_path=excluded.metadata_path,
			status='present',
			scan_run_id=excluded.scan_run_id`,
		a.ID.String(), a.FolderPath, a.IsUserAlbum, a.Title, nullIfEmpty(a.Description),
		nullIfEmpty(a.AccessLevel), created, nullIfEmpty(a.MetadataPath), a.ScanRunID.String(),
	)
	if err != nil {
		return fmt.Errorf("upserting album %s: %w", a.FolderPath, err)
	}
	return nil
}

const selectAlbumByFolderPath = `
	SELECT id, folder_path, is_user_album, title, description, access_level, creation_timestamp, metadata_path, status, scan_run_id
	FROM albums WHERE folder_path = ?`

// GetByFolderPath returns the album row for folderPath, or sql.ErrNoRows.
func (d *AlbumDAL) GetByFolderPath(folderPath string) (*AlbumRow, error) {
	return scanAlbumRow(d.db.QueryRow(selectAlbumByFolderPath, folderPath))
}

// GetByFolderPathTx is GetByFolderPath against an already-open
// transaction, for the writer's batched commits.
func (d *AlbumDAL) GetByFolderPathTx(tx *sql.Tx, folderPath string) (*AlbumRow, error) {
	return scanAlbumRow(tx.QueryRow(selectAlbumByFolderPath, folderPath))
}

func scanAlbumRow(row *sql.Row) (*AlbumRow, error) {
	var a AlbumRow
	var idStr, scanRunStr string
	var description, accessLevel, metadataPath, created sql.NullString

	if err := row.Scan(&idStr, &a.FolderPath, &a.IsUserAlbum, &a.Title, &description,
		&accessLevel, &created, &metadataPath, &a.Status, &scanRunStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing album id %q: %w", idStr, err)
	}
	a.ID = id
	a.ScanRunID, _ = uuid.Parse(scanRunStr)
	a.Description = description.String
	a.AccessLevel = accessLevel.String
	a.MetadataPath = metadataPath.String
	if created.Valid {
		if t, err := time.Parse(time.RFC3339, created.String); err == nil {
			a.CreationTimestamp = &t
		}
	}
	return &a, nil
}

// MarkMissing sets status='missing' on every album not sighted during
// currentScanRunID.
func (d *AlbumDAL) MarkMissing(currentScanRunID uuid.UUID) (int64, error) {
	res, err := d.db.Exec("UPDATE albums SET status='missing' WHERE scan_run_id != ?", currentScanRunID.String())
	if err != nil {
		return 0, fmt.Errorf("marking missing albums: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the total number of album rows.
func (d *AlbumDAL) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM albums").Scan(&n)
	return n, err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
