// Package album classifies every directory under a media root into a
// user album, year album, or plain album, per spec §4.8. It produces
// records only — persistence is the caller's job, done before any
// MediaItem row references an album_id.
package album

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gphotos321sync/mediascanner/internal/identity"
	"github.com/gphotos321sync/mediascanner/internal/logging"
	"github.com/gphotos321sync/mediascanner/internal/metadata"
	"github.com/gphotos321sync/mediascanner/internal/scanerrors"
)

// Info is one discovered album, ready for upsert.
type Info struct {
	AlbumID         uuid.UUID
	FolderPath      string // normalized, relative to root
	IsUserAlbum     bool
	Title           string
	Description     string
	AccessLevel     string
	CreationTime    *time.Time
	MetadataPath    string // empty unless a metadata.json was read
	ParseFailed     bool
}

var yearFolderPattern = regexp.MustCompile(`(?i)^Photos from (\d{4})$`)

// ExtractYearFromFolder returns the year encoded in a "Photos from YYYY"
// folder name (case-insensitive), or (0, false) if the name doesn't match
// the pattern or the year falls outside [1900, 2100].
func ExtractYearFromFolder(name string) (int, bool) {
	m := yearFolderPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year < 1900 || year > 2100 {
		return 0, false
	}
	return year, true
}

// Discover walks every directory under root (root itself excluded) and
// classifies each one into an Info record. It never returns an error for
// a single album's classification failure: a metadata.json parse error
// downgrades that album to its folder-name fallback and is reported via
// onError instead, mirroring spec §4.8's "still inserted... with a
// ProcessingError row" behavior.
func Discover(ctx context.Context, root string, onError func(relPath string, err error)) ([]Info, error) {
	logger := logging.FromContext(ctx)
	var albums []Info

	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("album discovery: skipping inaccessible path")
			return nil
		}
		if !fi.IsDir() || path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = identity.NormalizePath(rel)
		folderName := filepath.Base(path)

		info := Info{
			AlbumID:    identity.AlbumID(rel),
			FolderPath: rel,
			Title:      folderName,
		}

		metadataPath := filepath.Join(path, "metadata.json")
		if _, statErr := os.Stat(metadataPath); statErr == nil {
			am, parseErr := metadata.ParseAlbumMetadata(metadataPath)
			if parseErr != nil {
				info.ParseFailed = true
				if onError != nil {
					onError(rel, scanerrors.NewParseError("album metadata "+metadataPath, parseErr))
				}
			} else {
				info.IsUserAlbum = true
				info.MetadataPath = identity.NormalizePath(metadataPath)
				if am.Title != "" {
					info.Title = am.Title
				}
				info.Description = am.Description
				info.AccessLevel = am.Access
				info.CreationTime = am.CreatedAt
			}
		} else if _, ok := ExtractYearFromFolder(folderName); ok {
			info.Title = folderName
		}

		albums = append(albums, info)
		return nil
	})
	if err != nil {
		return albums, err
	}
	return albums, nil
}
