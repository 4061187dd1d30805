// Package scanerrors implements the scanner's error taxonomy: a small
// hierarchy of typed failures plus a classifier that maps foreign errors
// (stdlib os errors, JSON parse errors, ...) into storable categories.
package scanerrors

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strconv"

	pkgerrors "github.com/pkg/errors"
)

// Category is the storable classification recorded in processing_errors.
type Category string

const (
	CategoryPermissionDenied  Category = "permission_denied"
	CategoryCorrupted         Category = "corrupted"
	CategoryIOError           Category = "io_error"
	CategoryParseError        Category = "parse_error"
	CategoryUnsupportedFormat Category = "unsupported_format"
)

// ErrorType distinguishes which pipeline stage a ProcessingError row
// originated in.
type ErrorType string

const (
	ErrorTypeMediaFile ErrorType = "media_file"
	ErrorTypeSidecar   ErrorType = "sidecar"
	ErrorTypeAlbum     ErrorType = "album"
	ErrorTypeDiscovery ErrorType = "discovery"
)

// ScannerError is the base of the taxonomy. Every concrete error type below
// embeds it and implements Category() so the writer can classify a failure
// without a type switch chain.
type ScannerError struct {
	cause error
	msg   string
}

func (e *ScannerError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *ScannerError) Unwrap() error { return e.cause }

// Categorizable is implemented by every concrete scanner error type.
type Categorizable interface {
	error
	Category() Category
}

// PermissionDeniedError wraps an OS permission failure.
type PermissionDeniedError struct{ ScannerError }

func (*PermissionDeniedError) Category() Category { return CategoryPermissionDenied }

// NewPermissionDeniedError wraps cause with operator-facing context msg.
func NewPermissionDeniedError(msg string, cause error) *PermissionDeniedError {
	return &PermissionDeniedError{ScannerError{cause: pkgerrors.WithMessage(cause, msg), msg: msg}}
}

// CorruptedFileError indicates the file's bytes could not be decoded as
// the format its extension/MIME claims.
type CorruptedFileError struct{ ScannerError }

func (*CorruptedFileError) Category() Category { return CategoryCorrupted }

func NewCorruptedFileError(msg string, cause error) *CorruptedFileError {
	return &CorruptedFileError{ScannerError{cause: pkgerrors.WithMessage(cause, msg), msg: msg}}
}

// IOError wraps a non-permission OS-level I/O failure.
type IOError struct{ ScannerError }

func (*IOError) Category() Category { return CategoryIOError }

func NewIOError(msg string, cause error) *IOError {
	return &IOError{ScannerError{cause: pkgerrors.WithMessage(cause, msg), msg: msg}}
}

// ParseError wraps a structured-data parse failure (JSON sidecar, EXIF
// tag decode, etc).
type ParseError struct{ ScannerError }

func (*ParseError) Category() Category { return CategoryParseError }

func NewParseError(msg string, cause error) *ParseError {
	return &ParseError{ScannerError{cause: pkgerrors.WithMessage(cause, msg), msg: msg}}
}

// UnsupportedFormatError indicates a MIME/extension the scanner has no
// extractor for.
type UnsupportedFormatError struct{ ScannerError }

func (*UnsupportedFormatError) Category() Category { return CategoryUnsupportedFormat }

func NewUnsupportedFormatError(msg string) *UnsupportedFormatError {
	return &UnsupportedFormatError{ScannerError{msg: msg}}
}

// ToolNotFoundError indicates a configured-required external tool
// (exiftool/ffprobe) is missing from PATH. It stores under the
// unsupported_format category, same as UnsupportedFormatError, but is kept
// distinct so startup can treat it as fatal while per-file instances are
// merely recorded.
type ToolNotFoundError struct{ ScannerError }

func (*ToolNotFoundError) Category() Category { return CategoryUnsupportedFormat }

func NewToolNotFoundError(tool string) *ToolNotFoundError {
	return &ToolNotFoundError{ScannerError{msg: "required tool not found: " + tool}}
}

// Classify maps an arbitrary foreign error into a storable Category. A
// Categorizable error (one of the types above) reports its own category.
// Otherwise: os.ErrPermission-style failures classify as
// permission_denied; other fs.PathErrors/os errors as io_error; JSON
// syntax/type errors and strconv failures as parse_error; anything else
// falls back to parse_error, the safe default for storage. The pipeline
// stores that fallback category as is; no separate "unknown" reason is
// logged.
func Classify(err error) Category {
	if err == nil {
		return CategoryIOError
	}

	var categorizable Categorizable
	if errors.As(err, &categorizable) {
		return categorizable.Category()
	}

	if errors.Is(err, os.ErrPermission) {
		return CategoryPermissionDenied
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		if errors.Is(pathErr.Err, os.ErrPermission) {
			return CategoryPermissionDenied
		}
		return CategoryIOError
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return CategoryParseError
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return CategoryParseError
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return CategoryParseError
	}

	return CategoryParseError
}
