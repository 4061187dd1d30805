package metadata

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// filenamePattern pairs a regex against a filename stem with the layout
// used to parse the captured groups into a time.Time.
type filenamePattern struct {
	re     *regexp.Regexp
	layout string
}

// filenamePatterns are tried in order; the first match wins, per spec
// §4.5's filename fallback table.
var filenamePatterns = []filenamePattern{
	{regexp.MustCompile(`IMG_(\d{8})_(\d{6})`), "20060102_150405"},
	{regexp.MustCompile(`VID_(\d{8})_(\d{6})`), "20060102_150405"},
	{regexp.MustCompile(`^(\d{8})_(\d{6})`), "20060102_150405"},
	{regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})$`), "2006-01-02"},
}

// ParseFilenameTimestamp attempts each of the filename-timestamp patterns
// from spec §4.5 against the file's stem (extension stripped), in order,
// returning the first match. It returns nil, not an error, when nothing
// matches — filename inference is a last-resort fallback, not a required
// source.
func ParseFilenameTimestamp(path string) *time.Time {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	for _, p := range filenamePatterns {
		m := p.re.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		var joined string
		if len(m) == 3 {
			joined = m[1] + "_" + m[2]
		} else {
			joined = m[1]
		}
		t, err := time.ParseInLocation(p.layout, joined, time.UTC)
		if err != nil {
			continue
		}
		return &t
	}
	return nil
}

// TitleFromFilename derives a fallback title from a media file's path: the
// filename without its extension, per spec §4.5's title precedence
// ("JSON title → filename stem").
func TitleFromFilename(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
