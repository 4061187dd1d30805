package scanerrors

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCategorizableError(t *testing.T) {
	err := NewCorruptedFileError("bad jpeg", errors.New("short read"))
	assert.Equal(t, CategoryCorrupted, Classify(err))
}

func TestClassifyPermissionDenied(t *testing.T) {
	_, err := os.Open(filepath.Join(t.TempDir(), "nonexistent", "x.jpg"))
	assert.NotNil(t, err)
	// a missing parent directory is ENOENT, not permission denied; prove
	// the io_error branch instead, then prove permission explicitly.
	assert.Equal(t, CategoryIOError, Classify(err))
	assert.Equal(t, CategoryPermissionDenied, Classify(os.ErrPermission))
}

func TestClassifyJSONSyntaxError(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{not valid json"), &v)
	assert.Error(t, err)
	assert.Equal(t, CategoryParseError, Classify(err))
}

func TestClassifyFallback(t *testing.T) {
	assert.Equal(t, CategoryParseError, Classify(errors.New("something unexpected")))
}

func TestScannerErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewIOError("reading file", cause)
	assert.ErrorIs(t, err, cause)
}

func TestToolNotFoundCategory(t *testing.T) {
	err := NewToolNotFoundError("exiftool")
	assert.Equal(t, CategoryUnsupportedFormat, err.Category())
}
