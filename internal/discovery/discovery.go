// Package discovery walks a Google Takeout media root and emits the
// FileInfo records the scanner pipeline consumes, pairing each media file
// with its sidecar along the way via internal/sidecarmatch.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gphotos321sync/mediascanner/internal/classify"
	"github.com/gphotos321sync/mediascanner/internal/identity"
	"github.com/gphotos321sync/mediascanner/internal/logging"
	"github.com/gphotos321sync/mediascanner/internal/metadata"
	"github.com/gphotos321sync/mediascanner/internal/sidecarmatch"
)

// FileInfo is one discovered media file, ready for dispatch onto the
// pipeline's work queue.
type FileInfo struct {
	FilePath        string
	RelativePath    string
	AlbumFolderPath string
	JSONSidecarPath string // empty when unpaired
	FileSize        int64
}

// UnpairedSidecar is a sidecar JSON file discovery could not match to any
// media file in its folder.
type UnpairedSidecar struct {
	Path            string
	AlbumFolderPath string
}

// albumMetaNames are excluded from the media set entirely: they describe
// the album itself, not a photo or video within it.
var albumMetaNames = map[string]bool{
	"metadata.json": true,
}

func isAlbumMetaFile(name string) bool {
	if albumMetaNames[name] {
		return true
	}
	return strings.HasSuffix(name, "-metadata.json")
}

// Walk enumerates root, directory by directory, sending each discovered
// media FileInfo on out and returning the set of sidecars no media file in
// their folder claimed. It tolerates directories it cannot read: the
// failure is logged and the walk continues.
//
// Within each directory, stat and MIME-sniff IO for its entries fans out
// across a bounded pool of ioWorkers goroutines (spec §5's IO-prefetch
// pool, sized max(min_io_workers, 3×CPU) by the caller) so the walk isn't
// serialized behind one syscall at a time. ioWorkers < 1 behaves as 1.
//
// Whatever the filename pass (spec §4.6 step 1) leaves unmatched goes
// through a metadata-timestamp fallback (step 2) before being reported as
// truly unpaired: each remaining sidecar's own photoTakenTime is compared,
// within sidecarTolerance, against each remaining media file's own decoded
// EXIF/video timestamp.
//
// Walk is restartable: it holds no state beyond root and produces the
// same records given the same tree, so a caller can simply re-invoke it
// on retry.
func Walk(ctx context.Context, root string, out chan<- FileInfo, ioWorkers int, sidecarTolerance time.Duration) ([]UnpairedSidecar, error) {
	logger := logging.FromContext(ctx)
	if ioWorkers < 1 {
		ioWorkers = 1
	}
	var unpaired []UnpairedSidecar

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("discovery: skipping inaccessible path")
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("discovery: cannot read directory")
			return nil
		}

		var jsonNames, candidateNames []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if classify.ShouldSkip(name) {
				continue
			}
			if strings.HasSuffix(strings.ToLower(name), ".json") {
				if isAlbumMetaFile(name) {
					continue
				}
				jsonNames = append(jsonNames, name)
				continue
			}
			candidateNames = append(candidateNames, name)
		}

		mediaNames, sizeOf, mimeOf := prefetchMediaEntries(ctx, path, candidateNames, ioWorkers, logger)

		sort.Strings(mediaNames)
		sort.Strings(jsonNames)

		media := make([]sidecarmatch.MediaFile, len(mediaNames))
		for i, n := range mediaNames {
			media[i] = sidecarmatch.MediaFile{Name: n}
		}
		sidecars := make([]sidecarmatch.Sidecar, len(jsonNames))
		for i, n := range jsonNames {
			sidecars[i] = sidecarmatch.Sidecar{Name: n}
		}

		pairs, unmatchedMedia, unmatchedSidecars := sidecarmatch.MatchByFilename(media, sidecars)

		if len(unmatchedMedia) > 0 && len(unmatchedSidecars) > 0 {
			var fallbackPairs map[string]string
			fallbackPairs, unmatchedSidecars = matchByTimestampFallback(ctx, path, unmatchedMedia, unmatchedSidecars, mimeOf, sidecarTolerance, logger)
			for mediaName, sidecarName := range fallbackPairs {
				pairs[mediaName] = sidecarName
			}
		}

		albumRel, albumRelErr := filepath.Rel(root, path)
		if albumRelErr != nil {
			albumRel = path
		}
		albumRel = identity.NormalizePath(albumRel)

		for _, name := range mediaNames {
			rel, relErr := filepath.Rel(root, filepath.Join(path, name))
			if relErr != nil {
				rel = filepath.Join(path, name)
			}
			fi := FileInfo{
				FilePath:        filepath.Join(path, name),
				RelativePath:    identity.NormalizePath(rel),
				AlbumFolderPath: albumRel,
				FileSize:        sizeOf[name],
			}
			if sidecarName, ok := pairs[name]; ok {
				fi.JSONSidecarPath = filepath.Join(path, sidecarName)
			}
			select {
			case out <- fi:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for _, s := range unmatchedSidecars {
			logger.Warn().Str("path", filepath.Join(path, s.Name)).Msg("discovery: unpaired sidecar")
			unpaired = append(unpaired, UnpairedSidecar{
				Path:            filepath.Join(path, s.Name),
				AlbumFolderPath: albumRel,
			})
		}

		return nil
	})

	return unpaired, err
}

// prefetchMediaEntries stats and MIME-sniffs candidateNames in dir across a
// bounded pool of ioWorkers goroutines, mirroring the jobs/results channel
// shape the teacher's own import worker pool uses, and returns the subset
// that classify as image/video media along with their sizes and detected
// MIME types.
func prefetchMediaEntries(ctx context.Context, dir string, candidateNames []string, ioWorkers int, logger zerolog.Logger) ([]string, map[string]int64, map[string]string) {
	type probeResult struct {
		name string
		size int64
		mime string
		ok   bool
	}

	jobs := make(chan string)
	results := make(chan probeResult)

	var wg sync.WaitGroup
	for i := 0; i < ioWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				fullPath := filepath.Join(dir, name)
				info, err := os.Stat(fullPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", fullPath).Msg("discovery: cannot stat file")
					results <- probeResult{name: name}
					continue
				}
				mime, err := classify.DetectMIME(fullPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", fullPath).Msg("discovery: cannot classify file")
					results <- probeResult{name: name}
					continue
				}
				if !classify.IsImageMIME(mime) && !classify.IsVideoMIME(mime) {
					results <- probeResult{name: name}
					continue
				}
				results <- probeResult{name: name, size: info.Size(), mime: mime, ok: true}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, name := range candidateNames {
			select {
			case jobs <- name:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var mediaNames []string
	sizeOf := make(map[string]int64, len(candidateNames))
	mimeOf := make(map[string]string, len(candidateNames))
	for r := range results {
		if r.ok {
			mediaNames = append(mediaNames, r.name)
			sizeOf[r.name] = r.size
			mimeOf[r.name] = r.mime
		}
	}
	return mediaNames, sizeOf, mimeOf
}

// mediaTimestamp returns a media file's own capture timestamp (EXIF
// DatetimeOriginal for images, container CreationTime for video), used
// only to feed the sidecar timestamp-fallback match. Extraction failures
// are not reported here: a file this cheaply-probed fails to yield a
// timestamp simply stays unmatched, which is the same outcome as if no
// sidecar existed for it.
func mediaTimestamp(ctx context.Context, path, mime string) *time.Time {
	if classify.IsImageMIME(mime) {
		exif, err := metadata.ExtractEXIFBuiltin(path)
		if err != nil || exif == nil {
			return nil
		}
		if exif.DatetimeOriginal != nil {
			return exif.DatetimeOriginal
		}
		return exif.DatetimeDigitized
	}
	if classify.IsVideoMIME(mime) {
		video, err := metadata.ExtractVideo(ctx, path)
		if err != nil || video == nil {
			return nil
		}
		return video.CreationTime
	}
	return nil
}

// matchByTimestampFallback implements spec §4.6 step 2 over whatever the
// filename pass left unmatched in one directory: each sidecar's own
// photoTakenTime is compared against each remaining media file's own
// decoded capture timestamp, one-to-one, first match wins. Returns the
// newly formed media-name -> sidecar-name pairs and the sidecars still
// unmatched after this pass.
func matchByTimestampFallback(
	ctx context.Context,
	dir string,
	unmatchedMedia []sidecarmatch.MediaFile,
	unmatchedSidecars []sidecarmatch.Sidecar,
	mimeOf map[string]string,
	tolerance time.Duration,
	logger zerolog.Logger,
) (map[string]string, []sidecarmatch.Sidecar) {
	mediaTimes := make(map[string]*time.Time, len(unmatchedMedia))
	for _, m := range unmatchedMedia {
		mediaTimes[m.Name] = mediaTimestamp(ctx, filepath.Join(dir, m.Name), mimeOf[m.Name])
	}

	sort.Slice(unmatchedSidecars, func(i, j int) bool { return unmatchedSidecars[i].Name < unmatchedSidecars[j].Name })

	remaining := make([]sidecarmatch.MediaFile, len(unmatchedMedia))
	copy(remaining, unmatchedMedia)

	pairs := make(map[string]string)
	var stillUnmatched []sidecarmatch.Sidecar
	for _, sc := range unmatchedSidecars {
		sidecarPath := filepath.Join(dir, sc.Name)
		sidecar, err := metadata.ParseSidecar(sidecarPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", sidecarPath).Msg("discovery: cannot parse sidecar for timestamp fallback")
			stillUnmatched = append(stillUnmatched, sc)
			continue
		}

		mediaName, matched := sidecarmatch.MatchByTimestamp(sc.Name, sidecar.PhotoTakenTime, remaining, mediaTimes, tolerance)
		if !matched {
			stillUnmatched = append(stillUnmatched, sc)
			continue
		}

		pairs[mediaName] = sc.Name
		for i, c := range remaining {
			if c.Name == mediaName {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}

	return pairs, stillUnmatched
}
