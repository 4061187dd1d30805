// Package identity implements path normalization and the deterministic and
// random identifiers the catalog uses for albums, media items, and people.
package identity

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// AlbumNamespace is the fixed UUID v5 namespace album ids are derived from.
// It is arbitrary but must never change: changing it would re-mint every
// album id in every existing catalog on the next scan.
var AlbumNamespace = uuid.MustParse("6f9c5b6a-2f2a-4d2a-9c2a-9b8a7c6d5e4f")

// NormalizePath applies canonical Unicode composition (NFC) to the given
// path and rewrites backslashes to forward slashes. It is idempotent:
// NormalizePath(NormalizePath(p)) == NormalizePath(p).
func NormalizePath(path string) string {
	composed := norm.NFC.String(path)
	return strings.ReplaceAll(composed, `\`, "/")
}

// AlbumID derives the deterministic album identifier for a normalized
// relative folder path. The same path always yields the same id, across
// processes and across scans.
func AlbumID(normalizedFolderPath string) uuid.UUID {
	return uuid.NewSHA1(AlbumNamespace, []byte(normalizedFolderPath))
}

// NewMediaItemID mints a fresh random identifier for a newly discovered
// media item. Once assigned it is preserved across rescans by matching on
// normalized relative path, not regenerated here.
func NewMediaItemID() uuid.UUID {
	return uuid.New()
}

// NewPersonID mints a fresh random identifier for a newly sighted person
// name.
func NewPersonID() uuid.UUID {
	return uuid.New()
}
