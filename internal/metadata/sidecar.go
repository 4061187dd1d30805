// Package metadata implements the per-file metadata extractors (JSON
// sidecar, EXIF, video) and the aggregator that merges them into a single
// record with the fixed precedence spec §4.5 requires.
package metadata

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/gphotos321sync/mediascanner/internal/scanerrors"
)

// Sidecar holds the fields recognized from a Google Takeout JSON sidecar.
// Unknown fields are ignored by encoding/json's default decode behavior;
// missing fields are left at their zero value with the corresponding *Set
// flag false.
type Sidecar struct {
	Title             string
	Description       string
	PhotoTakenTime    *time.Time
	GeoLatitude       float64
	GeoLongitude      float64
	GeoAltitude       float64
	GeoSet            bool
	People            []string
}

type sidecarJSON struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	PhotoTakenTime  *struct {
		Timestamp string `json:"timestamp"`
	} `json:"photoTakenTime"`
	GeoData *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Altitude  float64 `json:"altitude"`
	} `json:"geoData"`
	People []struct {
		Name string `json:"name"`
	} `json:"people"`
}

// ParseSidecar reads and parses a Google Takeout JSON sidecar at path.
// Invalid JSON fails with a *scanerrors.ParseError.
func ParseSidecar(path string) (*Sidecar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, scanerrors.NewIOError("reading sidecar "+path, err)
	}

	var doc sidecarJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, scanerrors.NewParseError("parsing sidecar JSON "+path, err)
	}

	sc := &Sidecar{}
	if doc.Title != nil {
		sc.Title = *doc.Title
	}
	if doc.Description != nil {
		sc.Description = *doc.Description
	}
	if doc.PhotoTakenTime != nil && doc.PhotoTakenTime.Timestamp != "" {
		secs, err := strconv.ParseInt(doc.PhotoTakenTime.Timestamp, 10, 64)
		if err != nil {
			return nil, scanerrors.NewParseError("parsing photoTakenTime.timestamp in "+path, err)
		}
		t := time.Unix(secs, 0).UTC()
		sc.PhotoTakenTime = &t
	}
	if doc.GeoData != nil {
		lat, lon, alt := doc.GeoData.Latitude, doc.GeoData.Longitude, doc.GeoData.Altitude
		if lat != 0 || lon != 0 || alt != 0 {
			sc.GeoLatitude, sc.GeoLongitude, sc.GeoAltitude = lat, lon, alt
			sc.GeoSet = true
		}
	}
	for _, p := range doc.People {
		if p.Name != "" {
			sc.People = append(sc.People, p.Name)
		}
	}

	return sc, nil
}

// AlbumMetadata holds the fields recognized from an album metadata.json.
type AlbumMetadata struct {
	Title       string
	Description string
	Access      string
	CreatedAt   *time.Time
}

type albumMetadataJSON struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Access      *string `json:"access"`
	Date        *struct {
		Timestamp string `json:"timestamp"`
	} `json:"date"`
}

// ParseAlbumMetadata reads and parses an album metadata.json at path.
func ParseAlbumMetadata(path string) (*AlbumMetadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, scanerrors.NewIOError("reading album metadata "+path, err)
	}

	var doc albumMetadataJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, scanerrors.NewParseError("parsing album metadata JSON "+path, err)
	}

	am := &AlbumMetadata{}
	if doc.Title != nil {
		am.Title = *doc.Title
	}
	if doc.Description != nil {
		am.Description = *doc.Description
	}
	if doc.Access != nil {
		am.Access = *doc.Access
	}
	if doc.Date != nil && doc.Date.Timestamp != "" {
		secs, err := strconv.ParseInt(doc.Date.Timestamp, 10, 64)
		if err != nil {
			return nil, scanerrors.NewParseError("parsing date.timestamp in "+path, err)
		}
		t := time.Unix(secs, 0).UTC()
		am.CreatedAt = &t
	}

	return am, nil
}
