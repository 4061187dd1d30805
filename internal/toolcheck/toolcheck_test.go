package toolcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireConfiguredPassesWhenAvailable(t *testing.T) {
	a := Availability{ExiftoolAvailable: true, FFprobeAvailable: true}
	assert.NoError(t, RequireConfigured(a, true, true))
}

func TestRequireConfiguredFailsWhenRequiredToolMissing(t *testing.T) {
	a := Availability{ExiftoolAvailable: false, FFprobeAvailable: true}
	err := RequireConfigured(a, true, true)
	require.Error(t, err)
}

func TestRequireConfiguredIgnoresUnrequiredMissingTool(t *testing.T) {
	a := Availability{ExiftoolAvailable: false, FFprobeAvailable: false}
	assert.NoError(t, RequireConfigured(a, false, false))
}

func TestBinaryAvailableFalseForUnknownBinary(t *testing.T) {
	assert.False(t, binaryAvailable("definitely-not-a-real-binary-xyz", "-version"))
}
