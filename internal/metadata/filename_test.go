package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilenameTimestampIMGPattern(t *testing.T) {
	ts := ParseFilenameTimestamp("/a/b/IMG_20210615_143022.jpg")
	require.NotNil(t, ts)
	assert.Equal(t, 2021, ts.Year())
	assert.Equal(t, 14, ts.Hour())
}

func TestParseFilenameTimestampVIDPattern(t *testing.T) {
	ts := ParseFilenameTimestamp("VID_20200101_000000.mp4")
	require.NotNil(t, ts)
	assert.Equal(t, 2020, ts.Year())
}

func TestParseFilenameTimestampBarePattern(t *testing.T) {
	ts := ParseFilenameTimestamp("20190304_081500.heic")
	require.NotNil(t, ts)
	assert.Equal(t, 3, int(ts.Month()))
}

func TestParseFilenameTimestampDateOnly(t *testing.T) {
	ts := ParseFilenameTimestamp("2018-12-25.jpg")
	require.NotNil(t, ts)
	assert.Equal(t, 25, ts.Day())
}

func TestParseFilenameTimestampNoMatch(t *testing.T) {
	ts := ParseFilenameTimestamp("vacation_photo.jpg")
	assert.Nil(t, ts)
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "IMG_1234", TitleFromFilename("/x/y/IMG_1234.jpg"))
}
