package pipeline

import (
	"context"
	"database/sql"
	"sync"
	"time"

	exiftool "github.com/barasher/go-exiftool"

	"github.com/gphotos321sync/mediascanner/internal/database/dal"
	"github.com/gphotos321sync/mediascanner/internal/discovery"
	"github.com/gphotos321sync/mediascanner/internal/logging"
)

// Options configures one Run: the bounded-queue worker pool and the
// single writer's batching, per spec §5.
type Options struct {
	WorkerCount      int
	QueueSize        int
	IOWorkers        int
	SidecarTolerance time.Duration
	Writer           WriterOptions
	WorkerOpts       WorkerOptions
}

// Run drives discovery.Walk's media set through a bounded pool of
// stateless CPU workers into the single writer, wiring the dataflow spec
// §4.10/§5 describe: discovery feeds a work queue, WorkerCount goroutines
// each call ProcessFile and publish onto a shared results queue, and one
// writer goroutine drains results into the catalog. ctx cancellation
// (e.g. from a SIGINT handler upstream) stops discovery and drains the
// pools without leaking goroutines; files already past the worker stage
// when cancellation lands still reach the writer so partial progress is
// not lost.
func Run(ctx context.Context, db *sql.DB, root string, items *dal.MediaItemDAL, albums *dal.AlbumDAL, people *dal.PeopleDAL, errs *dal.ProcessingErrorDAL, progress *Progress, opts Options) (Stats, []discovery.UnpairedSidecar, error) {
	logger := logging.FromContext(ctx)

	workQueue := make(chan discovery.FileInfo, opts.QueueSize)
	resultsQueue := make(chan Result, opts.QueueSize)

	var workerWG sync.WaitGroup
	workerCount := opts.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}
	for i := 0; i < workerCount; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			for fi := range workQueue {
				resultsQueue <- ProcessFile(ctx, fi, opts.WorkerOpts)
			}
		}()
	}

	// The writer runs on its own goroutine so it can drain resultsQueue
	// concurrently with workers still producing into it; closing
	// resultsQueue once every worker has exited is what lets Writer.Run's
	// range loop terminate.
	writer := &Writer{DB: db, Items: items, Albums: albums, People: people, Errors: errs, Progress: progress}
	var stats Stats
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		stats = writer.Run(ctx, resultsQueue, opts.Writer)
	}()

	go func() {
		workerWG.Wait()
		close(resultsQueue)
	}()

	unpaired, walkErr := discovery.Walk(ctx, root, workQueue, opts.IOWorkers, opts.SidecarTolerance)
	close(workQueue)

	<-writerDone

	if walkErr != nil && walkErr != context.Canceled {
		logger.Error().Err(walkErr).Msg("pipeline: discovery walk failed")
		return stats, unpaired, walkErr
	}
	return stats, unpaired, nil
}

// NewExiftool opens an exiftool process if useExiftool is set and the
// binary is available, per spec §4.4's "builtin first, exiftool only as a
// configured fallback" rule. The caller owns closing the returned handle.
func NewExiftool(useExiftool bool) (*exiftool.Exiftool, error) {
	if !useExiftool {
		return nil, nil
	}
	return exiftool.NewExiftool()
}
