package album

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkAlbum(t *testing.T, root, name string, meta map[string]interface{}) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if meta != nil {
		raw, err := json.Marshal(meta)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), raw, 0o644))
	}
	return dir
}

func TestExtractYearFromFolder(t *testing.T) {
	year, ok := ExtractYearFromFolder("Photos from 2023")
	assert.True(t, ok)
	assert.Equal(t, 2023, year)

	year, ok = ExtractYearFromFolder("photos from 2019")
	assert.True(t, ok)
	assert.Equal(t, 2019, year)

	_, ok = ExtractYearFromFolder("My Vacation")
	assert.False(t, ok)

	_, ok = ExtractYearFromFolder("Photos from 1800")
	assert.False(t, ok)

	_, ok = ExtractYearFromFolder("Photos from 2200")
	assert.False(t, ok)
}

func TestDiscoverUserAlbum(t *testing.T) {
	root := t.TempDir()
	mkAlbum(t, root, "My Vacation", map[string]interface{}{
		"title":       "Summer Vacation 2023",
		"description": "Trip to the beach",
		"access":      "private",
		"date":        map[string]string{"timestamp": "1688169600"},
	})

	albums, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.True(t, albums[0].IsUserAlbum)
	assert.Equal(t, "Summer Vacation 2023", albums[0].Title)
	assert.Equal(t, "private", albums[0].AccessLevel)
	require.NotNil(t, albums[0].CreationTime)
}

func TestDiscoverYearAlbum(t *testing.T) {
	root := t.TempDir()
	mkAlbum(t, root, "Photos from 2023", nil)

	albums, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.False(t, albums[0].IsUserAlbum)
	assert.Equal(t, "Photos from 2023", albums[0].Title)
}

func TestDiscoverPlainFolder(t *testing.T) {
	root := t.TempDir()
	mkAlbum(t, root, "Random Folder", nil)

	albums, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.False(t, albums[0].IsUserAlbum)
	assert.Equal(t, "Random Folder", albums[0].Title)
}

func TestDiscoverInvalidMetadataFallsBackToFolderName(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Invalid Album")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("not valid json{"), 0o644))

	var gotErr error
	albums, err := Discover(context.Background(), root, func(relPath string, e error) { gotErr = e })
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.False(t, albums[0].IsUserAlbum)
	assert.True(t, albums[0].ParseFailed)
	assert.Equal(t, "Invalid Album", albums[0].Title)
	assert.Error(t, gotErr)
}

func TestDiscoverAlbumIDsAreDeterministic(t *testing.T) {
	root := t.TempDir()
	mkAlbum(t, root, "A", nil)

	albums1, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	albums2, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, albums1[0].AlbumID, albums2[0].AlbumID)
}

func TestDiscoverEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	albums, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Empty(t, albums)
}

func TestDiscoverNonexistentPath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does_not_exist")
	albums, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Empty(t, albums)
}

func TestDiscoverNestedAlbums(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "2024", "January")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	raw, _ := json.Marshal(map[string]string{"title": "January Photos"})
	require.NoError(t, os.WriteFile(filepath.Join(nested, "metadata.json"), raw, 0o644))

	albums, err := Discover(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, albums, 2)

	var found bool
	for _, a := range albums {
		if a.Title == "January Photos" {
			found = true
			assert.True(t, a.IsUserAlbum)
		}
	}
	assert.True(t, found)
}
