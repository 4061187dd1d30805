// Package sidecarmatch pairs Google Takeout media files with their JSON
// sidecars within a single album folder, per the two-pass algorithm
// described by original_source's metadata_matcher.py: a cheap filename
// pass first, then a metadata-timestamp fallback for the handful of
// numbered-duplicate cases filenames alone can't disambiguate.
package sidecarmatch

import (
	"regexp"
	"strings"
	"time"
)

// candidateSuffixes lists the sidecar filename conventions Takeout has
// used, tried in order against a media file's full name. The
// "supplemental-me" spelling is a truncated form an older Takeout export
// style produced and that implementations must still accept.
var candidateSuffixes = []string{
	".json",
	".supplemental-metadata.json",
	".supplemental-me.json",
}

// numberedSuffix captures a Takeout "(N)" duplicate-disambiguation suffix
// immediately before the extension, e.g. "x(1).jpg" -> ("x", "1", ".jpg").
var numberedSuffix = regexp.MustCompile(`^(.*)\((\d+)\)(\.[^.]+)$`)

// MediaFile is the minimal view of a discovered media file sidecarmatch
// needs: its file name within the album folder and, once matched, nothing
// else — identity/path bookkeeping stays in the caller.
type MediaFile struct {
	Name string // base filename, e.g. "IMG_1234.jpg"
}

// Sidecar is the minimal view of a discovered sidecar JSON file within the
// album folder.
type Sidecar struct {
	Name string // base filename, e.g. "IMG_1234.jpg.supplemental-metadata.json"
}

// candidateNames returns, in precedence order, the sidecar filenames that
// would pair with media file name per the filename pass.
func candidateNames(mediaName string) []string {
	names := make([]string, 0, len(candidateSuffixes)+1)
	for _, suf := range candidateSuffixes {
		names = append(names, mediaName+suf)
	}

	stem := strings.TrimSuffix(mediaName, extOf(mediaName))
	names = append(names, stem+".json")

	if m := numberedSuffix.FindStringSubmatch(mediaName); m != nil {
		stemNoNum, num := m[1], m[2]
		// x(1).jpg -> x.supplemental-metadata(1).json
		names = append(names, stemNoNum+".supplemental-metadata("+num+").json")
		names = append(names, stemNoNum+".supplemental-me("+num+").json")
		names = append(names, stemNoNum+"("+num+").json")
	} else {
		// x.jpg -> x(1).supplemental-metadata.json form is not produced by
		// Takeout; the reverse migration (number moves onto the sidecar
		// suffix) is covered above.
		names = append(names,
			mediaName+".supplemental-metadata(1).json",
		)
	}

	return names
}

func extOf(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return name[i:]
}

// MatchByFilename implements spec §4.6's filename pass: for each media
// file, in discovery order, claim the first unclaimed sidecar whose name
// is one of its candidate names. Returns a map of media name -> sidecar
// name for matched pairs, and the remaining unmatched media/sidecar
// names.
func MatchByFilename(media []MediaFile, sidecars []Sidecar) (pairs map[string]string, unmatchedMedia []MediaFile, unmatchedSidecars []Sidecar) {
	pairs = make(map[string]string)
	claimed := make(map[string]bool, len(sidecars))
	sidecarSet := make(map[string]bool, len(sidecars))
	for _, s := range sidecars {
		sidecarSet[s.Name] = true
	}

	for _, m := range media {
		matched := false
		for _, candidate := range candidateNames(m.Name) {
			if sidecarSet[candidate] && !claimed[candidate] {
				pairs[m.Name] = candidate
				claimed[candidate] = true
				matched = true
				break
			}
		}
		if !matched {
			unmatchedMedia = append(unmatchedMedia, m)
		}
	}

	for _, s := range sidecars {
		if !claimed[s.Name] {
			unmatchedSidecars = append(unmatchedSidecars, s)
		}
	}

	return pairs, unmatchedMedia, unmatchedSidecars
}

// TimestampsMatch reports whether two timestamps agree within tolerance,
// per spec §4.6's metadata-timestamp fallback. A nil on either side never
// matches.
func TimestampsMatch(a, b *time.Time, tolerance time.Duration) bool {
	if a == nil || b == nil {
		return false
	}
	diff := a.Sub(*b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// MatchByTimestamp implements spec §4.6's fallback pass: for each
// remaining unmatched sidecar (identified by its own photoTakenTime),
// find the first unmatched media file in the same folder whose own
// timestamp (EXIF datetime_original or video creation_time) is within
// tolerance. First match wins. This call removes nothing from candidates;
// the caller keeps pairing one-to-one by dropping the returned media file
// from the candidates it passes next.
func MatchByTimestamp(
	sidecarName string,
	sidecarTime *time.Time,
	candidates []MediaFile,
	mediaTimes map[string]*time.Time,
	tolerance time.Duration,
) (mediaName string, matched bool) {
	if sidecarTime == nil {
		return "", false
	}
	for _, c := range candidates {
		if TimestampsMatch(sidecarTime, mediaTimes[c.Name], tolerance) {
			return c.Name, true
		}
	}
	return "", false
}
