package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gphotos321sync/mediascanner/internal/discovery"
)

func writeTestFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

var tinyJPEGBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 'J', 'F', 'I', 'F', 0, 1, 0xFF, 0xD9}

func TestProcessFileMediaWithoutSidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_1.jpg")
	writeTestFile(t, path, tinyJPEGBytes)

	fi := discovery.FileInfo{FilePath: path, RelativePath: "IMG_1.jpg", FileSize: int64(len(tinyJPEGBytes))}
	result := ProcessFile(context.Background(), fi, WorkerOptions{})

	require.Nil(t, result.Err)
	require.NotNil(t, result.Record)
	assert.Equal(t, "image/jpeg", result.Record.MimeType)
	assert.NotEmpty(t, result.Record.CRC32)
	assert.NotEmpty(t, result.Record.ContentFingerprint)
	assert.Empty(t, result.Record.SidecarFingerprint)
	assert.Equal(t, "IMG_1", result.Record.Metadata.Title)
}

func TestProcessFileWithSidecar(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "IMG_2.jpg")
	sidecarPath := filepath.Join(dir, "IMG_2.jpg.supplemental-metadata.json")
	writeTestFile(t, mediaPath, tinyJPEGBytes)
	writeTestFile(t, sidecarPath, []byte(`{
		"title": "Beach day",
		"description": "At the shore",
		"photoTakenTime": {"timestamp": "1609459200"},
		"geoData": {"latitude": 1.5, "longitude": 2.5, "altitude": 3.0},
		"people": [{"name": "Alice"}, {"name": "Bob"}]
	}`))

	fi := discovery.FileInfo{
		FilePath: mediaPath, RelativePath: "IMG_2.jpg",
		JSONSidecarPath: sidecarPath, FileSize: int64(len(tinyJPEGBytes)),
	}
	result := ProcessFile(context.Background(), fi, WorkerOptions{})

	require.Nil(t, result.Err)
	require.NotNil(t, result.Record)
	assert.Equal(t, "Beach day", result.Record.Metadata.Title)
	assert.Equal(t, "At the shore", result.Record.Metadata.Description)
	assert.True(t, result.Record.Metadata.GoogleGeoSet)
	assert.Equal(t, "sidecar", result.Record.Metadata.CaptureSource)
	assert.NotEmpty(t, result.Record.SidecarFingerprint)
	assert.Equal(t, []string{"Alice", "Bob"}, result.Record.PeopleNames)
}

func TestProcessFileMissingFileReturnsErrResult(t *testing.T) {
	fi := discovery.FileInfo{FilePath: filepath.Join(t.TempDir(), "missing.jpg"), RelativePath: "missing.jpg"}
	result := ProcessFile(context.Background(), fi, WorkerOptions{})

	require.Nil(t, result.Record)
	require.NotNil(t, result.Err)
	assert.Equal(t, "media_file", result.Err.ErrorType)
	assert.NotEmpty(t, result.Err.Category)
}

func TestProcessFileCorruptSidecarStillProducesMediaItem(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "IMG_3.jpg")
	sidecarPath := filepath.Join(dir, "IMG_3.jpg.supplemental-metadata.json")
	writeTestFile(t, mediaPath, tinyJPEGBytes)
	writeTestFile(t, sidecarPath, []byte(`{not valid json`))

	fi := discovery.FileInfo{FilePath: mediaPath, RelativePath: "IMG_3.jpg", JSONSidecarPath: sidecarPath}
	result := ProcessFile(context.Background(), fi, WorkerOptions{})

	require.Nil(t, result.Err)
	require.NotNil(t, result.Record)
	assert.NotEmpty(t, result.Record.SidecarFingerprint)
	assert.Equal(t, "IMG_3", result.Record.Metadata.Title)

	require.NotNil(t, result.SidecarErr)
	assert.Equal(t, "sidecar", result.SidecarErr.ErrorType)
	assert.Equal(t, "parse_error", result.SidecarErr.Category)
}
