// Package orchestrator coordinates the phase sequence spec §4.10/§4.12
// describe: open the catalog, probe optional tools, run the album
// pre-pass, dispatch the scanner pipeline, then flip everything unseen
// to missing and finalize the ScanRun row.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/gphotos321sync/mediascanner/internal/album"
	"github.com/gphotos321sync/mediascanner/internal/config"
	"github.com/gphotos321sync/mediascanner/internal/database"
	"github.com/gphotos321sync/mediascanner/internal/database/dal"
	"github.com/gphotos321sync/mediascanner/internal/logging"
	"github.com/gphotos321sync/mediascanner/internal/pipeline"
	"github.com/gphotos321sync/mediascanner/internal/scanerrors"
	"github.com/gphotos321sync/mediascanner/internal/toolcheck"
)

// Summary is what a scan reports once it finishes: the counters spec
// §4.12 requires logged at the end of every run.
type Summary struct {
	ScanRunID        string
	Status           string
	FilesProcessed   int
	FilesAdded       int
	FilesUpdated     int
	FilesUnchanged   int
	FilesMissing     int
	AlbumsMissing    int
	ErrorsByCategory map[string]int
	BytesProcessed   int64
	Duration         time.Duration
}

// TotalErrors sums ErrorsByCategory, the count the scanner.strict setting
// checks against.
func (s Summary) TotalErrors() int {
	n := 0
	for _, c := range s.ErrorsByCategory {
		n += c
	}
	return n
}

// Run executes one full scan against cfg, per spec §4.10 phase 1-6.
func Run(ctx context.Context, cfg *config.Config) (Summary, error) {
	logger := logging.FromContext(ctx)

	conn, err := database.Open(cfg.Scanner.DatabasePath)
	if err != nil {
		return Summary{}, fmt.Errorf("opening catalog: %w", err)
	}
	defer conn.Close()

	if err := conn.ApplyMigrations(); err != nil {
		return Summary{}, fmt.Errorf("applying migrations: %w", err)
	}

	availability := toolcheck.Probe(ctx)
	if err := toolcheck.RequireConfigured(availability, cfg.Scanner.UseExiftool, cfg.Scanner.UseFFprobe); err != nil {
		return Summary{}, err
	}

	runs := dal.NewScanRunDAL(conn.DB)
	albums := dal.NewAlbumDAL(conn.DB)
	items := dal.NewMediaItemDAL(conn.DB)
	people := dal.NewPeopleDAL(conn.DB)
	errs := dal.NewProcessingErrorDAL(conn.DB)

	scanRunID, err := runs.Create()
	if err != nil {
		return Summary{}, fmt.Errorf("creating scan run: %w", err)
	}
	logger.Info().Str("scan_run_id", scanRunID.String()).Msg("orchestrator: scan started")

	// Every Album row must exist before any MediaItem references its
	// album_id, per spec §4.10 phase 2 and §5's ordering guarantee.
	albumInfos, albumErr := album.Discover(ctx, cfg.Scanner.TargetMediaPath, func(relPath string, err error) {
		if recErr := errs.Insert(dal.ProcessingErrorRow{
			ScanRunID: scanRunID, RelativePath: relPath,
			ErrorType: string(scanerrors.ErrorTypeAlbum), ErrorCategory: string(scanerrors.Classify(err)), Message: err.Error(),
		}); recErr != nil {
			logger.Error().Err(recErr).Str("path", relPath).Msg("orchestrator: failed to record album error")
		}
	})
	if albumErr != nil {
		runs.Finalize(scanRunID, "failed")
		return Summary{}, fmt.Errorf("discovering albums: %w", albumErr)
	}
	for _, a := range albumInfos {
		if err := albums.Upsert(dal.AlbumRow{
			ID: a.AlbumID, FolderPath: a.FolderPath, IsUserAlbum: a.IsUserAlbum,
			Title: a.Title, Description: a.Description, AccessLevel: a.AccessLevel,
			CreationTimestamp: a.CreationTime, MetadataPath: a.MetadataPath, ScanRunID: scanRunID,
		}); err != nil {
			logger.Error().Err(err).Str("folder", a.FolderPath).Msg("orchestrator: album upsert failed")
		}
	}

	exiftoolHandle, err := pipeline.NewExiftool(cfg.Scanner.UseExiftool)
	if err != nil {
		logger.Warn().Err(err).Msg("orchestrator: could not start exiftool, falling back to built-in EXIF only")
	}
	if exiftoolHandle != nil {
		defer exiftoolHandle.Close()
	}

	progress := pipeline.NewProgress(0, 100)

	stats, unpairedSidecars, runErr := pipeline.Run(ctx, conn.DB, cfg.Scanner.TargetMediaPath, items, albums, people, errs, progress, pipeline.Options{
		WorkerCount:      cfg.Scanner.WorkerProcesses,
		QueueSize:        cfg.Scanner.QueueMaxSize,
		IOWorkers:        cfg.Scanner.IOWorkerCount(),
		SidecarTolerance: time.Duration(cfg.Scanner.SidecarToleranceSeconds) * time.Second,
		Writer:           pipeline.WriterOptions{ScanRunID: scanRunID, BatchSize: cfg.Scanner.BatchSize},
		WorkerOpts: pipeline.WorkerOptions{
			UseExiftool: cfg.Scanner.UseExiftool,
			UseFFprobe:  cfg.Scanner.UseFFprobe,
			Exiftool:    exiftoolHandle,
		},
	})
	progress.Finish()

	for _, u := range unpairedSidecars {
		logger.Warn().Str("path", u.Path).Msg("orchestrator: sidecar left unmatched after timestamp fallback")
		if err := errs.Insert(dal.ProcessingErrorRow{
			ScanRunID: scanRunID, RelativePath: u.Path,
			ErrorType: string(scanerrors.ErrorTypeSidecar), ErrorCategory: string(scanerrors.CategoryUnsupportedFormat), Message: "no matching media file found",
		}); err != nil {
			logger.Error().Err(err).Msg("orchestrator: failed to record unpaired sidecar")
		}
	}

	status := "completed"
	if runErr != nil {
		status = "failed"
	}

	missingAlbums, maErr := albums.MarkMissing(scanRunID)
	if maErr != nil {
		logger.Error().Err(maErr).Msg("orchestrator: marking albums missing failed")
	}
	missingItems, miErr := items.MarkMissing(scanRunID)
	if miErr != nil {
		logger.Error().Err(miErr).Msg("orchestrator: marking media items missing failed")
	}
	stats.FilesMissing = int(missingItems)

	totalErrors := 0
	for _, c := range stats.ErrorsByCategory {
		totalErrors += c
	}
	if uErr := runs.UpdateCounters(scanRunID, stats.FilesProcessed, stats.FilesAdded, stats.FilesUpdated, stats.FilesUnchanged, stats.FilesMissing, totalErrors); uErr != nil {
		logger.Error().Err(uErr).Msg("orchestrator: updating scan run counters failed")
	}
	if fErr := runs.Finalize(scanRunID, status); fErr != nil {
		logger.Error().Err(fErr).Msg("orchestrator: finalizing scan run failed")
	}

	summary := Summary{
		ScanRunID: scanRunID.String(), Status: status,
		FilesProcessed: stats.FilesProcessed, FilesAdded: stats.FilesAdded, FilesUpdated: stats.FilesUpdated,
		FilesUnchanged: stats.FilesUnchanged, FilesMissing: stats.FilesMissing, AlbumsMissing: int(missingAlbums),
		ErrorsByCategory: stats.ErrorsByCategory, BytesProcessed: stats.BytesProcessed,
		Duration: stats.FinishedAt.Sub(stats.StartedAt),
	}

	logger.Info().
		Str("scan_run_id", summary.ScanRunID).
		Str("status", summary.Status).
		Int("files_processed", summary.FilesProcessed).
		Int("files_added", summary.FilesAdded).
		Int("files_updated", summary.FilesUpdated).
		Int("files_unchanged", summary.FilesUnchanged).
		Int("files_missing", summary.FilesMissing).
		Int("albums_missing", summary.AlbumsMissing).
		Int("errors_total", summary.TotalErrors()).
		Int64("bytes_processed", summary.BytesProcessed).
		Dur("duration", summary.Duration).
		Msg("orchestrator: scan finished")

	if runErr != nil {
		return summary, fmt.Errorf("pipeline run failed: %w", runErr)
	}
	return summary, nil
}
