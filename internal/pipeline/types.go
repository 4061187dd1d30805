// Package pipeline wires discovery, the CPU worker pool, and the single
// writer goroutine into the bounded-queue dataflow spec §4.10 describes:
// the heart of the scanner.
package pipeline

import (
	"time"

	"github.com/gphotos321sync/mediascanner/internal/discovery"
	"github.com/gphotos321sync/mediascanner/internal/metadata"
)

// MediaItemRecord is what a CPU worker produces for one successfully
// processed file: everything the writer needs to upsert a media_items
// row, without the worker ever touching the database itself.
type MediaItemRecord struct {
	FileInfo           discovery.FileInfo
	MimeType           string
	CRC32              string
	ContentFingerprint string
	SidecarFingerprint string // empty when there was no sidecar
	Metadata           metadata.MediaMetadata
	PeopleNames        []string
}

// ErrorRecord is what a CPU worker produces instead, when it could not
// process a file. Category/Type follow the taxonomy in
// internal/scanerrors.
type ErrorRecord struct {
	RelativePath string
	ErrorType    string
	Category     string
	Message      string
}

// Result is the tagged union crossing the results queue, per spec §4.10's
// "Ok(Record) | Err(Category, Message)" contract. Err is set only when the
// media file itself could not be processed at all, discarding the record.
// SidecarErr carries a non-fatal sidecar failure alongside a still-valid
// Record: per spec §4.6, an unreadable or corrupt sidecar does not stop the
// media file from being cataloged, it just leaves it without sidecar
// metadata and logs a processing_errors row.
type Result struct {
	Record     *MediaItemRecord
	Err        *ErrorRecord
	SidecarErr *ErrorRecord
}

// Stats accumulates the counters the orchestrator reports at the end of a
// run.
type Stats struct {
	FilesProcessed   int
	FilesAdded       int
	FilesUpdated     int
	FilesUnchanged   int
	FilesMissing     int
	ErrorsByCategory map[string]int
	BytesProcessed   int64
	StartedAt        time.Time
	FinishedAt       time.Time
}
