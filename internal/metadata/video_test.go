package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrameRateFraction(t *testing.T) {
	assert.InDelta(t, 29.97, parseFrameRate("30000/1001"), 0.01)
}

func TestParseFrameRateWholeDenominatorOne(t *testing.T) {
	assert.Equal(t, 25.0, parseFrameRate("25/1"))
}

func TestParseFrameRateInvalid(t *testing.T) {
	assert.Equal(t, 0.0, parseFrameRate("garbage"))
	assert.Equal(t, 0.0, parseFrameRate("30/0"))
}
