package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTitlePrefersSidecar(t *testing.T) {
	m := Aggregate(Sources{
		MediaPath: "IMG_0001.jpg",
		Sidecar:   &Sidecar{Title: "Sunset"},
	})
	assert.Equal(t, "Sunset", m.Title)
}

func TestAggregateTitleFallsBackToFilename(t *testing.T) {
	m := Aggregate(Sources{MediaPath: "/a/IMG_0001.jpg"})
	assert.Equal(t, "IMG_0001", m.Title)
}

func TestAggregateCaptureTimestampPrecedence(t *testing.T) {
	sidecarTime := time.Unix(1000, 0).UTC()
	exifTime := time.Unix(2000, 0).UTC()
	videoTime := time.Unix(3000, 0).UTC()

	m := Aggregate(Sources{
		MediaPath: "IMG_20210615_143022.jpg",
		Sidecar:   &Sidecar{PhotoTakenTime: &sidecarTime},
		Exif:      &Exif{DatetimeOriginal: &exifTime},
		Video:     &Video{CreationTime: &videoTime},
	})
	require.NotNil(t, m.CaptureTimestamp)
	assert.Equal(t, sidecarTime, *m.CaptureTimestamp)
	assert.Equal(t, "sidecar", m.CaptureSource)

	m2 := Aggregate(Sources{
		MediaPath: "IMG_20210615_143022.jpg",
		Exif:      &Exif{DatetimeOriginal: &exifTime},
		Video:     &Video{CreationTime: &videoTime},
	})
	assert.Equal(t, exifTime, *m2.CaptureTimestamp)
	assert.Equal(t, "exif", m2.CaptureSource)

	m3 := Aggregate(Sources{
		MediaPath: "IMG_20210615_143022.jpg",
		Video:     &Video{CreationTime: &videoTime},
	})
	assert.Equal(t, videoTime, *m3.CaptureTimestamp)
	assert.Equal(t, "video", m3.CaptureSource)

	m4 := Aggregate(Sources{MediaPath: "IMG_20210615_143022.jpg"})
	require.NotNil(t, m4.CaptureTimestamp)
	assert.Equal(t, "filename", m4.CaptureSource)
	assert.Equal(t, 2021, m4.CaptureTimestamp.Year())
}

func TestAggregateGoogleGeoDoesNotBackfillFromEXIF(t *testing.T) {
	lat, lon := 10.0, 20.0
	m := Aggregate(Sources{
		MediaPath: "img.jpg",
		Exif:      &Exif{GPSLatitude: &lat, GPSLongitude: &lon},
	})
	assert.False(t, m.GoogleGeoSet)
	require.NotNil(t, m.ExifGPSLatitude)
	assert.Equal(t, lat, *m.ExifGPSLatitude)
}

func TestAggregateResolutionPrefersVideoOverImageHeader(t *testing.T) {
	m := Aggregate(Sources{
		MediaPath:  "clip.mp4",
		Video:      &Video{Width: 1920, Height: 1080},
		Resolution: &Resolution{Width: 100, Height: 100},
	})
	assert.Equal(t, 1920, m.Width)
	assert.Equal(t, 1080, m.Height)
}

func TestAggregateResolutionFallsBackToImageHeader(t *testing.T) {
	m := Aggregate(Sources{
		MediaPath:  "photo.jpg",
		Resolution: &Resolution{Width: 4032, Height: 3024},
	})
	assert.Equal(t, 4032, m.Width)
	assert.Equal(t, 3024, m.Height)
}
