package metadata

import "time"

// MediaMetadata is the fully aggregated record spec §4.5 describes:
// fields from the JSON sidecar, EXIF, video probing and filename
// inference merged under a fixed precedence, with Google's own geo
// reading kept distinct from any EXIF GPS reading rather than merged
// into one ambiguous pair.
type MediaMetadata struct {
	Title              string
	Description        string
	CaptureTimestamp   *time.Time
	CaptureSource      string // "sidecar" | "exif" | "video" | "filename" | ""

	GoogleGeoLatitude  float64
	GoogleGeoLongitude float64
	GoogleGeoAltitude  float64
	GoogleGeoSet       bool

	ExifGPSLatitude  *float64
	ExifGPSLongitude *float64
	ExifGPSAltitude  *float64

	Width  int
	Height int

	DurationSecs float64
	FrameRate    float64

	ExifCameraMake  string
	ExifCameraModel string
	ExifLensMake    string
	ExifLensModel   string
	ExifFocalLength *float64
	ExifFNumber     *float64
	ExifExposure    string
	ExifISO         *int
	ExifOrientation *int
}

// Sources bundles everything the pipeline worker extracted for one media
// file before it is merged. Any of these may be nil/zero when that
// extractor didn't run or found nothing.
type Sources struct {
	MediaPath  string
	Sidecar    *Sidecar
	Exif       *Exif
	Video      *Video
	Resolution *Resolution
}

// Aggregate merges src's extractor outputs using the fixed precedence
// from spec §4.5:
//
//   - title:             sidecar.title  -> filename stem
//   - description:       sidecar.description
//   - capture_timestamp: sidecar.photoTakenTime -> exif.DateTimeOriginal
//                         -> video.creation_time -> filename pattern
//   - google_geo_*:      sidecar geoData only, never backfilled from EXIF
//   - exif_gps_*:        EXIF GPS only, kept alongside (not merged into)
//                         google_geo_*
//   - width/height:      video stream dimensions -> decoded image header
//   - duration/frame_rate: video only
//   - exif_camera/lens/exposure/iso/orientation: EXIF only
func Aggregate(src Sources) MediaMetadata {
	m := MediaMetadata{}

	if src.Sidecar != nil && src.Sidecar.Title != "" {
		m.Title = src.Sidecar.Title
	} else {
		m.Title = TitleFromFilename(src.MediaPath)
	}

	if src.Sidecar != nil {
		m.Description = src.Sidecar.Description
	}

	switch {
	case src.Sidecar != nil && src.Sidecar.PhotoTakenTime != nil:
		m.CaptureTimestamp = src.Sidecar.PhotoTakenTime
		m.CaptureSource = "sidecar"
	case src.Exif != nil && src.Exif.DatetimeOriginal != nil:
		m.CaptureTimestamp = src.Exif.DatetimeOriginal
		m.CaptureSource = "exif"
	case src.Video != nil && src.Video.CreationTime != nil:
		m.CaptureTimestamp = src.Video.CreationTime
		m.CaptureSource = "video"
	default:
		if t := ParseFilenameTimestamp(src.MediaPath); t != nil {
			m.CaptureTimestamp = t
			m.CaptureSource = "filename"
		}
	}

	if src.Sidecar != nil && src.Sidecar.GeoSet {
		m.GoogleGeoLatitude = src.Sidecar.GeoLatitude
		m.GoogleGeoLongitude = src.Sidecar.GeoLongitude
		m.GoogleGeoAltitude = src.Sidecar.GeoAltitude
		m.GoogleGeoSet = true
	}

	if src.Exif != nil {
		m.ExifGPSLatitude = src.Exif.GPSLatitude
		m.ExifGPSLongitude = src.Exif.GPSLongitude
		m.ExifGPSAltitude = src.Exif.GPSAltitude
		m.ExifCameraMake = src.Exif.CameraMake
		m.ExifCameraModel = src.Exif.CameraModel
		m.ExifLensMake = src.Exif.LensMake
		m.ExifLensModel = src.Exif.LensModel
		m.ExifFocalLength = src.Exif.FocalLength
		m.ExifFNumber = src.Exif.FNumber
		m.ExifExposure = src.Exif.ExposureTime
		m.ExifISO = src.Exif.ISO
		m.ExifOrientation = src.Exif.Orientation
	}

	switch {
	case src.Video != nil && src.Video.Width > 0:
		m.Width, m.Height = src.Video.Width, src.Video.Height
	case src.Resolution != nil:
		m.Width, m.Height = src.Resolution.Width, src.Resolution.Height
	}

	if src.Video != nil {
		m.DurationSecs = src.Video.DurationSecs
		m.FrameRate = src.Video.FrameRate
	}

	return m
}
