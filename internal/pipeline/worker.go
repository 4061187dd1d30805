package pipeline

import (
	"context"

	exiftool "github.com/barasher/go-exiftool"

	"github.com/gphotos321sync/mediascanner/internal/classify"
	"github.com/gphotos321sync/mediascanner/internal/discovery"
	"github.com/gphotos321sync/mediascanner/internal/fingerprint"
	"github.com/gphotos321sync/mediascanner/internal/metadata"
	"github.com/gphotos321sync/mediascanner/internal/scanerrors"
)

// WorkerOptions configures the per-file pipeline every CPU worker runs.
// It carries no mutable state: every field is read-only configuration
// decided once at pool creation, per spec §5's "workers maintain no
// global state except the configured flags" rule.
type WorkerOptions struct {
	UseExiftool bool
	UseFFprobe  bool
	Exiftool    *exiftool.Exiftool // nil when not probed available
}

// ProcessFile runs one FileInfo through the stateless per-file pipeline
// spec §4.10 step 4 describes. It never touches the database: the
// decision between insert/update/touch-only belongs to the writer.
func ProcessFile(ctx context.Context, fi discovery.FileInfo, opts WorkerOptions) Result {
	mime, err := classify.DetectMIME(fi.FilePath)
	if err != nil {
		return errResult(fi, "media_file", err)
	}

	crc, err := fingerprint.CRC32Hex(fi.FilePath)
	if err != nil {
		return errResult(fi, "media_file", err)
	}
	contentFP, err := fingerprint.ContentFingerprint(fi.FilePath)
	if err != nil {
		return errResult(fi, "media_file", err)
	}

	src := metadata.Sources{MediaPath: fi.FilePath}

	if classify.IsImageMIME(mime) {
		if res, resErr := metadata.ExtractResolution(fi.FilePath); resErr == nil {
			src.Resolution = res
		}
		if exif, exifErr := metadata.ExtractEXIFSmart(ctx, fi.FilePath, opts.UseExiftool, opts.Exiftool); exifErr == nil {
			src.Exif = exif
		}
	}

	if classify.IsVideoMIME(mime) && opts.UseFFprobe {
		if video, videoErr := metadata.ExtractVideo(ctx, fi.FilePath); videoErr == nil {
			src.Video = video
		}
	}

	// A sidecar that fails to hash or parse does not disqualify the media
	// file itself (spec §4.6: "unmatched/unreadable sidecars still leave
	// the media file processed, just without sidecar metadata") — it is
	// recorded as a separate, non-fatal sidecar error alongside the
	// MediaItemRecord instead of discarding it.
	var sidecarFP string
	var sidecarErr *ErrorRecord
	if fi.JSONSidecarPath != "" {
		if fp, fpErr := fingerprint.SidecarFingerprint(fi.JSONSidecarPath); fpErr != nil {
			sidecarErr = sidecarErrResult(fi, fpErr)
		} else {
			sidecarFP = fp

			sc, parseErr := metadata.ParseSidecar(fi.JSONSidecarPath)
			if parseErr != nil {
				sidecarErr = sidecarErrResult(fi, parseErr)
			} else {
				src.Sidecar = sc
			}
		}
	}

	agg := metadata.Aggregate(src)

	var peopleNames []string
	if src.Sidecar != nil {
		peopleNames = src.Sidecar.People
	}

	return Result{
		Record: &MediaItemRecord{
			FileInfo:           fi,
			MimeType:           mime,
			CRC32:              crc,
			ContentFingerprint: contentFP,
			SidecarFingerprint: sidecarFP,
			Metadata:           agg,
			PeopleNames:        peopleNames,
		},
		SidecarErr: sidecarErr,
	}
}

func errResult(fi discovery.FileInfo, errorType string, err error) Result {
	return Result{Err: &ErrorRecord{
		RelativePath: fi.RelativePath,
		ErrorType:    errorType,
		Category:     string(scanerrors.Classify(err)),
		Message:      err.Error(),
	}}
}

func sidecarErrResult(fi discovery.FileInfo, err error) *ErrorRecord {
	return &ErrorRecord{
		RelativePath: fi.RelativePath,
		ErrorType:    "sidecar",
		Category:     string(scanerrors.Classify(err)),
		Message:      err.Error(),
	}
}
