package metadata

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"
	"time"

	exiftool "github.com/barasher/go-exiftool"
	goexif "github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gphotos321sync/mediascanner/internal/logging"
	"github.com/gphotos321sync/mediascanner/internal/scanerrors"
)

// exifDateLayout is the layout EXIF DateTimeOriginal/DateTimeDigitized
// tags are encoded in.
const exifDateLayout = "2006:01:02 15:04:05"

// Exif holds the canonical fields spec §4.4 lists, independent of which
// backend (built-in decoder or external tool) produced them.
type Exif struct {
	DatetimeOriginal  *time.Time
	DatetimeDigitized *time.Time
	GPSLatitude       *float64
	GPSLongitude      *float64
	GPSAltitude       *float64
	CameraMake        string
	CameraModel       string
	LensMake          string
	LensModel         string
	FocalLength       *float64
	FNumber           *float64
	ExposureTime      string
	ISO               *int
	Orientation       *int
}

func (e *Exif) empty() bool {
	if e == nil {
		return true
	}
	return e.DatetimeOriginal == nil && e.DatetimeDigitized == nil &&
		e.GPSLatitude == nil && e.CameraMake == "" && e.CameraModel == "" &&
		e.FocalLength == nil && e.FNumber == nil && e.ExposureTime == "" && e.ISO == nil
}

// Resolution is a decoded image's pixel dimensions.
type Resolution struct {
	Width  int
	Height int
}

// ExtractResolution returns the pixel dimensions of an image file by
// reading only its header (never decoding full pixel data, which keeps
// even very large images metadata-only per spec §4.4). It returns nil,
// nil on decode failure rather than an error — resolution is
// best-effort.
func ExtractResolution(path string) (*Resolution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scanerrors.NewIOError("opening "+path+" for resolution", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, nil
	}
	return &Resolution{Width: cfg.Width, Height: cfg.Height}, nil
}

// ExtractEXIFBuiltin decodes EXIF tags using the pure-Go goexif decoder.
// It is the first path tried per spec's Open-Question resolution: ExifTool
// is only attempted when this path returns nothing.
func ExtractEXIFBuiltin(path string) (*Exif, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scanerrors.NewIOError("opening "+path+" for EXIF", err)
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		// Absence of an EXIF segment is not corruption; most non-JPEG
		// images simply have none.
		return &Exif{}, nil
	}

	e := &Exif{}

	if t, err := x.DateTime(); err == nil {
		e.DatetimeOriginal = &t
	}
	if tag, err := x.Get(goexif.DateTimeDigitized); err == nil {
		if s, err := tag.StringVal(); err == nil {
			if ts, err := time.Parse(exifDateLayout, s); err == nil {
				e.DatetimeDigitized = &ts
			}
		}
	}

	if lat, lon, err := x.LatLong(); err == nil {
		e.GPSLatitude = &lat
		e.GPSLongitude = &lon
	}
	if tag, err := x.Get(goexif.GPSAltitude); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			alt := float64(num) / float64(den)
			if ref, err := x.Get(goexif.GPSAltitudeRef); err == nil {
				if v, err := ref.Int(0); err == nil && v == 1 {
					alt = -alt
				}
			}
			e.GPSAltitude = &alt
		}
	}

	e.CameraMake = stringTag(x, goexif.Make)
	e.CameraModel = stringTag(x, goexif.Model)
	e.LensMake = stringTag(x, goexif.LensMake)
	e.LensModel = stringTag(x, goexif.LensModel)

	if tag, err := x.Get(goexif.FocalLength); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			v := float64(num) / float64(den)
			e.FocalLength = &v
		}
	}
	if tag, err := x.Get(goexif.FNumber); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			v := float64(num) / float64(den)
			e.FNumber = &v
		}
	}
	if tag, err := x.Get(goexif.ExposureTime); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			e.ExposureTime = fmt.Sprintf("%d/%d", num, den)
		}
	}
	if tag, err := x.Get(goexif.ISOSpeedRatings); err == nil {
		if v, err := tag.Int(0); err == nil {
			e.ISO = &v
		}
	}
	if tag, err := x.Get(goexif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			e.Orientation = &v
		}
	}

	return e, nil
}

func stringTag(x *goexif.Exif, name goexif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.Trim(s, "\x00 ")
}

// ExtractEXIFSmart implements the Open-Question resolution from spec §9:
// attempt ExifTool when, and only when, the built-in decoder returned
// nothing usable and useExiftool is true. et may be nil when the tool was
// not detected at startup, in which case this silently falls back to the
// built-in (possibly empty) result.
func ExtractEXIFSmart(ctx context.Context, path string, useExiftool bool, et *exiftool.Exiftool) (*Exif, error) {
	builtin, err := ExtractEXIFBuiltin(path)
	if err != nil {
		return nil, err
	}
	if !builtin.empty() || !useExiftool || et == nil {
		return builtin, nil
	}

	logger := logging.FromContext(ctx)
	fromTool, err := extractEXIFViaTool(et, path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("exiftool fallback failed")
		return builtin, nil
	}
	return fromTool, nil
}

func extractEXIFViaTool(et *exiftool.Exiftool, path string) (*Exif, error) {
	results := et.ExtractMetadata(path)
	if len(results) == 0 {
		return &Exif{}, nil
	}
	fm := results[0]
	if fm.Err != nil {
		return nil, scanerrors.NewIOError("exiftool extraction for "+path, fm.Err)
	}

	e := &Exif{}
	if s, ok := fm.Fields["DateTimeOriginal"].(string); ok {
		if t, err := time.Parse(exifDateLayout, s); err == nil {
			e.DatetimeOriginal = &t
		}
	}
	if s, ok := fm.Fields["DateTimeDigitized"].(string); ok {
		if t, err := time.Parse(exifDateLayout, s); err == nil {
			e.DatetimeDigitized = &t
		}
	} else if s, ok := fm.Fields["CreateDate"].(string); ok {
		if t, err := time.Parse(exifDateLayout, s); err == nil {
			e.DatetimeDigitized = &t
		}
	}
	if v, ok := fm.Fields["GPSLatitude"].(float64); ok {
		e.GPSLatitude = &v
	}
	if v, ok := fm.Fields["GPSLongitude"].(float64); ok {
		e.GPSLongitude = &v
	}
	if v, ok := fm.Fields["GPSAltitude"].(float64); ok {
		e.GPSAltitude = &v
	}
	if s, ok := fm.Fields["Make"].(string); ok {
		e.CameraMake = s
	}
	if s, ok := fm.Fields["Model"].(string); ok {
		e.CameraModel = s
	}
	if s, ok := fm.Fields["LensMake"].(string); ok {
		e.LensMake = s
	}
	if s, ok := fm.Fields["LensModel"].(string); ok {
		e.LensModel = s
	}
	if v, ok := numericField(fm.Fields["FocalLength"]); ok {
		e.FocalLength = &v
	}
	if v, ok := numericField(fm.Fields["FNumber"]); ok {
		e.FNumber = &v
	}
	if s, ok := fm.Fields["ExposureTime"].(string); ok {
		e.ExposureTime = s
	}
	if v, ok := numericField(fm.Fields["ISO"]); ok {
		iv := int(v)
		e.ISO = &iv
	}
	if v, ok := numericField(fm.Fields["Orientation"]); ok {
		iv := int(v)
		e.Orientation = &iv
	}

	return e, nil
}

func numericField(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(t, " mm"), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
