package metadata

import (
	"context"
	"strconv"
	"strings"
	"time"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

// Video holds the video-specific fields spec §4.4 lists. A nil result
// (not an error) means ffprobe was unavailable or the stream carried
// nothing usable.
type Video struct {
	Width          int
	Height         int
	DurationSecs   float64
	FrameRate      float64
	CreationTime   *time.Time
}

// ExtractVideo runs ffprobe against path and maps its output onto Video.
// Per spec §4.4, the absence of the ffprobe binary is not an error: the
// caller is expected to skip this extractor entirely when toolcheck
// reports it missing, but ExtractVideo also degrades gracefully if ffprobe
// returns an unreadable stream.
func ExtractVideo(ctx context.Context, path string) (*Video, error) {
	data, err := ffprobe.ProbeURL(ctx, path)
	if err != nil {
		return nil, nil
	}

	v := &Video{}
	if data.Format != nil {
		if secs, err := strconv.ParseFloat(data.Format.Duration, 64); err == nil {
			v.DurationSecs = secs
		}
	}

	stream := data.FirstVideoStream()
	if stream == nil {
		return v, nil
	}
	v.Width = stream.Width
	v.Height = stream.Height
	v.FrameRate = parseFrameRate(stream.AvgFrameRate)
	if v.FrameRate == 0 {
		v.FrameRate = parseFrameRate(stream.RFrameRate)
	}

	if stream.Tags != nil && stream.Tags.CreationTime != "" {
		if t, err := time.Parse(time.RFC3339, stream.Tags.CreationTime); err == nil {
			v.CreationTime = &t
		}
	}

	return v, nil
}

// parseFrameRate converts ffprobe's "num/den" rational frame-rate strings
// (e.g. "30000/1001") into a float, returning 0 when unparseable.
func parseFrameRate(raw string) float64 {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
