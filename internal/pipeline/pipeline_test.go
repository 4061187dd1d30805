package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gphotos321sync/mediascanner/internal/database"
	"github.com/gphotos321sync/mediascanner/internal/database/dal"
)

func writePipelineFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

// TestRunEndToEnd exercises the full discover -> worker pool -> writer
// dataflow against a small Takeout-shaped tree, matching the single JPEG
// plus sidecar scenario.
func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	album := filepath.Join(root, "Photos from 2021")
	writePipelineFile(t, filepath.Join(album, "IMG_1.jpg"), tinyJPEGBytes)
	writePipelineFile(t, filepath.Join(album, "IMG_1.jpg.supplemental-metadata.json"), []byte(`{"title":"one"}`))
	writePipelineFile(t, filepath.Join(album, "IMG_2.jpg"), tinyJPEGBytes)

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	conn, err := database.Open(dbPath)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.ApplyMigrations())

	runs := dal.NewScanRunDAL(conn.DB)
	albums := dal.NewAlbumDAL(conn.DB)
	items := dal.NewMediaItemDAL(conn.DB)
	people := dal.NewPeopleDAL(conn.DB)
	errs := dal.NewProcessingErrorDAL(conn.DB)

	runID, err := runs.Create()
	require.NoError(t, err)
	require.NoError(t, albums.Upsert(dal.AlbumRow{
		ID: uuid.NewSHA1(uuid.NameSpaceURL, []byte("Photos from 2021")),
		FolderPath: "Photos from 2021", Title: "Photos from 2021", ScanRunID: runID,
	}))

	stats, unpaired, err := Run(context.Background(), conn.DB, root, items, albums, people, errs, nil, Options{
		WorkerCount: 2,
		QueueSize:   16,
		Writer:      WriterOptions{ScanRunID: runID, BatchSize: 100},
	})
	require.NoError(t, err)
	assert.Empty(t, unpaired)
	assert.Equal(t, 2, stats.FilesProcessed)
	assert.Equal(t, 2, stats.FilesAdded)

	row, err := items.GetByPath("Photos from 2021/IMG_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "one", row.Title)

	count, err := errs.CountForScanRun(runID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRunRespectsContextCancellation(t *testing.T) {
	root := t.TempDir()
	album := filepath.Join(root, "A")
	writePipelineFile(t, filepath.Join(album, "IMG_1.jpg"), tinyJPEGBytes)

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	conn, err := database.Open(dbPath)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.ApplyMigrations())

	runs := dal.NewScanRunDAL(conn.DB)
	albums := dal.NewAlbumDAL(conn.DB)
	items := dal.NewMediaItemDAL(conn.DB)
	people := dal.NewPeopleDAL(conn.DB)
	errs := dal.NewProcessingErrorDAL(conn.DB)

	runID, err := runs.Create()
	require.NoError(t, err)
	require.NoError(t, albums.Upsert(dal.AlbumRow{ID: uuid.New(), FolderPath: "A", Title: "A", ScanRunID: runID}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = Run(ctx, conn.DB, root, items, albums, people, errs, nil, Options{
		WorkerCount: 1, QueueSize: 4, Writer: WriterOptions{ScanRunID: runID, BatchSize: 100},
	})
	assert.True(t, err == nil || err == context.Canceled)
}
