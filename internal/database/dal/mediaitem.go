package dal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaItemRow mirrors the media_items table.
type MediaItemRow struct {
	ID                 uuid.UUID
	RelativePath       string
	AlbumID            uuid.UUID
	Title              string
	MimeType           string
	FileSize           int64
	CRC32              string
	ContentFingerprint string
	SidecarFingerprint string // empty means null
	Width              int
	Height             int
	DurationSecs       float64
	FrameRate          float64
	CaptureTimestamp   *time.Time
	CaptureSource      string

	ExifDatetimeOriginal  *time.Time
	ExifDatetimeDigitized *time.Time
	ExifGPSLatitude       *float64
	ExifGPSLongitude      *float64
	ExifGPSAltitude       *float64
	ExifCameraMake        string
	ExifCameraModel       string
	ExifLensMake          string
	ExifLensModel         string
	ExifFocalLength       *float64
	ExifFNumber           *float64
	ExifExposureTime      string
	ExifISO               *int
	ExifOrientation       *int

	GoogleDescription  string
	GoogleGeoLatitude  float64
	GoogleGeoLongitude float64
	GoogleGeoAltitude  float64
	GoogleGeoSet       bool

	Status    string
	FirstSeen time.Time
	LastSeen  time.Time
	ScanRunID uuid.UUID
}

// MediaItemDAL wraps media_items table access.
type MediaItemDAL struct {
	db *sql.DB
}

func NewMediaItemDAL(db *sql.DB) *MediaItemDAL { return &MediaItemDAL{db: db} }

// CheckUnchanged returns true iff a row exists for relativePath whose
// content and sidecar fingerprints both match the given ones (including a
// null-to-empty sidecar match), per spec §4.9.
func (d *MediaItemDAL) CheckUnchanged(relativePath, contentFingerprint, sidecarFingerprint string) (bool, error) {
	return checkUnchanged(d.db, relativePath, contentFingerprint, sidecarFingerprint)
}

// CheckUnchangedTx is CheckUnchanged against an already-open transaction.
func (d *MediaItemDAL) CheckUnchangedTx(tx *sql.Tx, relativePath, contentFingerprint, sidecarFingerprint string) (bool, error) {
	return checkUnchanged(tx, relativePath, contentFingerprint, sidecarFingerprint)
}

func checkUnchanged(q execer, relativePath, contentFingerprint, sidecarFingerprint string) (bool, error) {
	var existingContent string
	var existingSidecar sql.NullString
	err := q.QueryRow(
		"SELECT content_fingerprint, sidecar_fingerprint FROM media_items WHERE relative_path = ?",
		relativePath,
	).Scan(&existingContent, &existingSidecar)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking unchanged for %s: %w", relativePath, err)
	}

	if existingContent != contentFingerprint {
		return false, nil
	}
	existingSidecarVal := ""
	if existingSidecar.Valid {
		existingSidecarVal = existingSidecar.String
	}
	return existingSidecarVal == sidecarFingerprint, nil
}

// TouchOnly updates only last_seen and scan_run_id for relativePath, the
// fast path for a file whose fingerprints didn't change.
func (d *MediaItemDAL) TouchOnly(relativePath string, scanRunID uuid.UUID) error {
	return touchOnly(d.db, relativePath, scanRunID)
}

// TouchOnlyTx is TouchOnly against an already-open transaction.
func (d *MediaItemDAL) TouchOnlyTx(tx *sql.Tx, relativePath string, scanRunID uuid.UUID) error {
	return touchOnly(tx, relativePath, scanRunID)
}

func touchOnly(q execer, relativePath string, scanRunID uuid.UUID) error {
	_, err := q.Exec(
		"UPDATE media_items SET last_seen=?, scan_run_id=? WHERE relative_path=?",
		time.Now().UTC().Format(time.RFC3339), scanRunID.String(), relativePath,
	)
	if err != nil {
		return fmt.Errorf("touching %s: %w", relativePath, err)
	}
	return nil
}

// GetByPath returns the media item row for relativePath, or sql.ErrNoRows.
func (d *MediaItemDAL) GetByPath(relativePath string) (*MediaItemRow, error) {
	return getByPath(d.db, relativePath)
}

// GetByPathTx is GetByPath against an already-open transaction.
func (d *MediaItemDAL) GetByPathTx(tx *sql.Tx, relativePath string) (*MediaItemRow, error) {
	return getByPath(tx, relativePath)
}

func getByPath(q execer, relativePath string) (*MediaItemRow, error) {
	row := q.QueryRow(selectMediaItemColumns+" WHERE relative_path = ?", relativePath)
	return scanMediaItemRow(row)
}

// GetByID returns the media item row for id, or sql.ErrNoRows.
func (d *MediaItemDAL) GetByID(id uuid.UUID) (*MediaItemRow, error) {
	row := d.db.QueryRow(selectMediaItemColumns+" WHERE id = ?", id.String())
	return scanMediaItemRow(row)
}

const selectMediaItemColumns = `
	SELECT id, relative_path, album_id, title, mime_type, file_size, crc32, content_fingerprint,
		sidecar_fingerprint, width, height, duration_seconds, frame_rate, capture_timestamp, capture_source,
		exif_datetime_original, exif_datetime_digitized, exif_gps_latitude, exif_gps_longitude, exif_gps_altitude,
		exif_camera_make, exif_camera_model, exif_lens_make, exif_lens_model, exif_focal_length, exif_fnumber,
		exif_exposure_time, exif_iso, exif_orientation, google_description, google_geo_latitude,
		google_geo_longitude, google_geo_altitude, google_geo_set, status, first_seen, last_seen, scan_run_id
	FROM media_items`

func scanMediaItemRow(row *sql.Row) (*MediaItemRow, error) {
	var m MediaItemRow
	var idStr, albumStr, scanRunStr string
	var sidecarFP, captureSource, exifCameraMake, exifCameraModel, exifLensMake, exifLensModel, exifExposure, googleDesc sql.NullString
	var width, height, isoVal, orientation sql.NullInt64
	var duration, frameRate, exifLat, exifLon, exifAlt, focalLength, fnumber sql.NullFloat64
	var captureTS, exifDTOriginal, exifDTDigitized sql.NullString
	var firstSeen, lastSeen string
	var googleGeoSet bool

	err := row.Scan(
		&idStr, &m.RelativePath, &albumStr, &m.Title, &m.MimeType, &m.FileSize, &m.CRC32, &m.ContentFingerprint,
		&sidecarFP, &width, &height, &duration, &frameRate, &captureTS, &captureSource,
		&exifDTOriginal, &exifDTDigitized, &exifLat, &exifLon, &exifAlt,
		&exifCameraMake, &exifCameraModel, &exifLensMake, &exifLensModel, &focalLength, &fnumber,
		&exifExposure, &isoVal, &orientation, &googleDesc, &m.GoogleGeoLatitude,
		&m.GoogleGeoLongitude, &m.GoogleGeoAltitude, &googleGeoSet, &m.Status, &firstSeen, &lastSeen, &scanRunStr,
	)
	if err != nil {
		return nil, err
	}

	m.ID, _ = uuid.Parse(idStr)
	m.AlbumID, _ = uuid.Parse(albumStr)
	m.ScanRunID, _ = uuid.Parse(scanRunStr)
	m.SidecarFingerprint = sidecarFP.String
	m.CaptureSource = captureSource.String
	m.ExifCameraMake = exifCameraMake.String
	m.ExifCameraModel = exifCameraModel.String
	m.ExifLensMake = exifLensMake.String
	m.ExifLensModel = exifLensModel.String
	m.ExifExposureTime = exifExposure.String
	m.GoogleDescription = googleDesc.String
	m.GoogleGeoSet = googleGeoSet
	m.Width = int(width.Int64)
	m.Height = int(height.Int64)
	m.DurationSecs = duration.Float64
	m.FrameRate = frameRate.Float64
	m.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
	m.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)

	if captureTS.Valid {
		if t, err := time.Parse(time.RFC3339, captureTS.String); err == nil {
			m.CaptureTimestamp = &t
		}
	}
	if exifDTOriginal.Valid {
		if t, err := time.Parse(time.RFC3339, exifDTOriginal.String); err == nil {
			m.ExifDatetimeOriginal = &t
		}
	}
	if exifDTDigitized.Valid {
		if t, err := time.Parse(time.RFC3339, exifDTDigitized.String); err == nil {
			m.ExifDatetimeDigitized = &t
		}
	}
	if exifLat.Valid {
		v := exifLat.Float64
		m.ExifGPSLatitude = &v
	}
	if exifLon.Valid {
		v := exifLon.Float64
		m.ExifGPSLongitude = &v
	}
	if exifAlt.Valid {
		v := exifAlt.Float64
		m.ExifGPSAltitude = &v
	}
	if focalLength.Valid {
		v := focalLength.Float64
		m.ExifFocalLength = &v
	}
	if fnumber.Valid {
		v := fnumber.Float64
		m.ExifFNumber = &v
	}
	if isoVal.Valid {
		v := int(isoVal.Int64)
		m.ExifISO = &v
	}
	if orientation.Valid {
		v := int(orientation.Int64)
		m.ExifOrientation = &v
	}

	return &m, nil
}

// Upsert inserts a new media item row, or, when a row already exists at
// the same relative_path, updates that row in place. The existing row
// keeps its id and first_seen, so m.ID is only used on insert.
func (d *MediaItemDAL) Upsert(m MediaItemRow) error {
	return upsertMediaItem(d.db, m)
}

// UpsertTx is Upsert against an already-open transaction.
func (d *MediaItemDAL) UpsertTx(tx *sql.Tx, m MediaItemRow) error {
	return upsertMediaItem(tx, m)
}

func upsertMediaItem(q execer, m MediaItemRow) error {
	format := func(t *time.Time) interface{} {
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	}
	formatF := func(f *float64) interface{} {
		if f == nil {
			return nil
		}
		return *f
	}
	formatI := func(i *int) interface{} {
		if i == nil {
			return nil
		}
		return *i
	}

	_, err := q.Exec(`
		INSERT INTO media_items (
			id, relative_path, album_id, title, mime_type, file_size, crc32, content_fingerprint, sidecar_fingerprint,
			width, height, duration_seconds, frame_rate, capture_timestamp, capture_source,
			exif_datetime_original, exif_datetime_digitized, exif_gps_latitude, exif_gps_longitude, exif_gps_altitude,
			exif_camera_make, exif_camera_model, exif_lens_make, exif_lens_model, exif_focal_length, exif_fnumber,
			exif_exposure_time, exif_iso, exif_orientation, google_description, google_geo_latitude,
			google_geo_longitude, google_geo_altitude, google_geo_set, status, first_seen, last_seen, scan_run_id
		) VALUES (?,?,?,?,?,?,?,?,?, ?,?,?,?,?,?, ?,?,?,?,?, ?,?,?,?,?,?, ?,?,?,?,?, ?,?,?,?,?,?,?)
		ON CONFLICT(relative_path) DO UPDATE SET
			album_id=excluded.album_id, title=excluded.title, mime_type=excluded.mime_type, file_size=excluded.file_size,
			crc32=excluded.crc32, content_fingerprint=excluded.content_fingerprint, sidecar_fingerprint=excluded.sidecar_fingerprint,
			width=excluded.width, height=excluded.height, duration_seconds=excluded.duration_seconds, frame_rate=excluded.frame_rate,
			capture_timestamp=excluded.capture_timestamp, capture_source=excluded.capture_source,
			exif_datetime_original=excluded.exif_datetime_original, exif_datetime_digitized=excluded.exif_datetime_digitized,
			exif_gps_latitude=excluded.exif_gps_latitude, exif_gps_longitude=excluded.exif_gps_longitude, exif_gps_altitude=excluded.exif_gps_altitude,
			exif_camera_make=excluded.exif_camera_make, exif_camera_model=excluded.exif_camera_model,
			exif_lens_make=excluded.exif_lens_make, exif_lens_model=excluded.exif_lens_model,
			exif_focal_length=excluded.exif_focal_length, exif_fnumber=excluded.exif_fnumber,
			exif_exposure_time=excluded.exif_exposure_time, exif_iso=excluded.exif_iso, exif_orientation=excluded.exif_orientation,
			google_description=excluded.google_description, google_geo_latitude=excluded.google_geo_latitude,
			google_geo_longitude=excluded.google_geo_longitude, google_geo_altitude=excluded.google_geo_altitude,
			google_geo_set=excluded.google_geo_set, status='present', last_seen=excluded.last_seen, scan_run_id=excluded.scan_run_id`,
		m.ID.String(), m.RelativePath, m.AlbumID.String(), m.Title, m.MimeType, m.FileSize, m.CRC32, m.ContentFingerprint, nullIfEmpty(m.SidecarFingerprint),
		m.Width, m.Height, m.DurationSecs, m.FrameRate, format(m.CaptureTimestamp), nullIfEmpty(m.CaptureSource),
		format(m.ExifDatetimeOriginal), format(m.ExifDatetimeDigitized), formatF(m.ExifGPSLatitude), formatF(m.ExifGPSLongitude), formatF(m.ExifGPSAltitude),
		nullIfEmpty(m.ExifCameraMake), nullIfEmpty(m.ExifCameraModel), nullIfEmpty(m.ExifLensMake), nullIfEmpty(m.ExifLensModel), formatF(m.ExifFocalLength), formatF(m.ExifFNumber),
		nullIfEmpty(m.ExifExposureTime), formatI(m.ExifISO), formatI(m.ExifOrientation), nullIfEmpty(m.GoogleDescription), m.GoogleGeoLatitude,
		m.GoogleGeoLongitude, m.GoogleGeoAltitude, m.GoogleGeoSet, m.Status, m.FirstSeen.UTC().Format(time.RFC3339), m.LastSeen.UTC().Format(time.RFC3339), m.ScanRunID.String(),
	)
	if err != nil {
		return fmt.Errorf("upserting media item %s: %w", m.RelativePath, err)
	}
	return nil
}

// MarkMissing sets status='missing' on every media item not sighted
// during currentScanRunID.
func (d *MediaItemDAL) MarkMissing(currentScanRunID uuid.UUID) (int64, error) {
	res, err := d.db.Exec("UPDATE media_items SET status='missing' WHERE scan_run_id != ?", currentScanRunID.String())
	if err != nil {
		return 0, fmt.Errorf("marking missing media items: %w", err)
	}
	return res.RowsAffected()
}

// CountByStatus returns the number of media items with the given status.
func (d *MediaItemDAL) CountByStatus(status string) (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM media_items WHERE status = ?", status).Scan(&n)
	return n, err
}
