package pipeline

import (
	"context"
	"time"

	progressbar "github.com/schollz/progressbar/v3"

	"github.com/gphotos321sync/mediascanner/internal/logging"
)

// Progress tracks files_processed, against a total when one has been set,
// computing rate/ETA and emitting a log line every logInterval files,
// per spec §4.10.
type Progress struct {
	bar         *progressbar.ProgressBar
	startedAt   time.Time
	logInterval int
	processed   int
	total       int
}

// NewProgress builds a tracker against totalFiles (0 means unknown: the
// bar runs in spinner mode and no ETA is computed until SetTotal sets a
// total).
func NewProgress(totalFiles int, logInterval int) *Progress {
	bar := progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
	)
	return &Progress{bar: bar, startedAt: time.Now(), logInterval: logInterval, total: totalFiles}
}

// SetTotal updates the denominator. The scan pipeline and orchestrator do
// not call it, so a scan runs with the total given to NewProgress (0 from
// the orchestrator).
func (p *Progress) SetTotal(total int) {
	p.total = total
	p.bar.ChangeMax(total)
}

// Advance records one more file processed and, every logInterval files,
// emits a structured log line with rate and ETA.
func (p *Progress) Advance(ctx context.Context) {
	p.processed++
	p.bar.Add(1)

	if p.logInterval <= 0 || p.processed%p.logInterval != 0 {
		return
	}

	elapsed := time.Since(p.startedAt)
	rate := float64(p.processed) / elapsed.Seconds()

	logger := logging.FromContext(ctx)
	event := logger.Info().
		Int("files_processed", p.processed).
		Float64("files_per_second", rate)

	if p.total > 0 && rate > 0 {
		remaining := p.total - p.processed
		eta := time.Duration(float64(remaining)/rate) * time.Second
		event = event.Dur("eta", eta)
	}
	event.Msg("scan progress")
}

// Finish closes out the progress bar's terminal line.
func (p *Progress) Finish() {
	p.bar.Finish()
}
