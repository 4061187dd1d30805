package metadata

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.White)
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestExtractResolutionPNG(t *testing.T) {
	path := writePNG(t, 64, 32)
	res, err := ExtractResolution(path)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 64, res.Width)
	assert.Equal(t, 32, res.Height)
}

func TestExtractResolutionUndecodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	res, err := ExtractResolution(path)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestExtractEXIFBuiltinNoSegment(t *testing.T) {
	path := writePNG(t, 4, 4)
	ex, err := ExtractEXIFBuiltin(path)
	require.NoError(t, err)
	assert.True(t, ex.empty())
}

func TestExifEmpty(t *testing.T) {
	var e *Exif
	assert.True(t, e.empty())

	make_ := "Canon"
	e2 := &Exif{CameraMake: make_}
	assert.False(t, e2.empty())
}

func TestNumericField(t *testing.T) {
	v, ok := numericField(float64(5.6))
	require.True(t, ok)
	assert.Equal(t, 5.6, v)

	v, ok = numericField("24.0 mm")
	require.True(t, ok)
	assert.Equal(t, 24.0, v)

	_, ok = numericField(nil)
	assert.False(t, ok)
}
