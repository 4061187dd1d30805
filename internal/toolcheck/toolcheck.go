// Package toolcheck probes for the optional external binaries (ExifTool,
// ffprobe) the scanner can use, at startup, so a misconfiguration that
// demands a missing tool fails fast instead of surfacing as a flood of
// per-file errors partway through a scan.
package toolcheck

import (
	"context"
	"os/exec"

	"github.com/gphotos321sync/mediascanner/internal/logging"
	"github.com/gphotos321sync/mediascanner/internal/scanerrors"
)

// Availability reports whether each optional tool was found on PATH.
type Availability struct {
	ExiftoolAvailable bool
	FFprobeAvailable  bool
}

func binaryAvailable(name string, versionArg string) bool {
	path, err := exec.LookPath(name)
	if err != nil {
		return false
	}
	cmd := exec.Command(path, versionArg)
	return cmd.Run() == nil
}

// Probe checks for exiftool and ffprobe on PATH.
func Probe(ctx context.Context) Availability {
	logger := logging.FromContext(ctx)
	a := Availability{
		ExiftoolAvailable: binaryAvailable("exiftool", "-ver"),
		FFprobeAvailable:  binaryAvailable("ffprobe", "-version"),
	}
	logger.Info().
		Bool("exiftool", a.ExiftoolAvailable).
		Bool("ffprobe", a.FFprobeAvailable).
		Msg("toolcheck: probed optional external tools")
	return a
}

// RequireConfigured fails fatally, per spec §4.10 phase 1, when a tool is
// both configured as required and not found.
func RequireConfigured(a Availability, useExiftool, useFFprobe bool) error {
	if useExiftool && !a.ExiftoolAvailable {
		return scanerrors.NewToolNotFoundError("exiftool")
	}
	if useFFprobe && !a.FFprobeAvailable {
		return scanerrors.NewToolNotFoundError("ffprobe")
	}
	return nil
}
