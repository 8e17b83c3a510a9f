package scan

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/fossas/vsi-scan/pkg/fingerprint"
	"github.com/fossas/vsi-scan/pkg/logging"
	"github.com/fossas/vsi-scan/pkg/walk"
)

// Options configures a scan Run.
type Options struct {
	// Root is the directory or archive to scan.
	Root string
	// ScanID is the remote scan this run uploads artifacts into.
	ScanID string
	// Walk is forwarded to the archive expansion walker.
	Walk walk.Options
	// Workers bounds the fingerprinting worker pool. Zero selects
	// runtime.NumCPU().
	Workers int
}

// Run walks opts.Root, fingerprints every discovered file across a
// work-stealing pool of goroutines, and uploads the resulting artifacts to
// sink through a single serialized upload consumer. It returns the total
// number of artifacts produced, and an error if that count disagrees with
// the number actually uploaded or if any stage failed.
func Run(ctx context.Context, sink Sink, opts Options, logger *logging.Logger) (int, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	group, gctx := errgroup.WithContext(ctx)

	results, err := walk.Walk(opts.Root, opts.Walk, gctx.Done())
	if err != nil {
		return 0, fmt.Errorf("start walk: %w", err)
	}

	artifacts := make(chan Artifact, ArtifactBufferLimit)
	var produced, uploaded int64

	workerGroup, workerCtx := errgroup.WithContext(gctx)
	for i := 0; i < workers; i++ {
		workerGroup.Go(func() error {
			return fingerprintWorker(workerCtx, results, artifacts, &produced, logger)
		})
	}

	group.Go(func() error {
		err := workerGroup.Wait()
		close(artifacts)
		return err
	})

	group.Go(func() error {
		return runConsumer(gctx, sink, opts.ScanID, artifacts, &uploaded)
	})

	// The progress reporter lives outside the errgroup: it runs until the
	// pipeline finishes rather than participating in its error handling.
	stopProgress := make(chan struct{})
	go reportProgress(stopProgress, &produced, logger)

	err = group.Wait()
	close(stopProgress)
	if err != nil {
		return int(atomic.LoadInt64(&produced)), err
	}

	finalProduced := atomic.LoadInt64(&produced)
	finalUploaded := atomic.LoadInt64(&uploaded)
	if finalProduced != finalUploaded {
		return int(finalProduced), fmt.Errorf("produced %d artifacts but uploaded %d", finalProduced, finalUploaded)
	}
	return int(finalProduced), nil
}

// fingerprintWorker pulls entries from results until it closes, fingerprints
// each one's content, and forwards the resulting artifact to artifacts. It
// is one member of the work-stealing pool described in the concurrency
// model: many of these run concurrently over the same results channel.
func fingerprintWorker(ctx context.Context, results <-chan walk.Result, artifacts chan<- Artifact, produced *int64, logger *logging.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-results:
			if !ok {
				return nil
			}
			if r.Err != nil {
				logger.Warn(r.Err)
				continue
			}

			artifact, fpErr := fingerprintEntry(r.Entry, ctx.Done())
			if releaseErr := r.Entry.Release(); releaseErr != nil {
				logger.Warn(releaseErr)
			}
			if fpErr != nil {
				return fmt.Errorf("fingerprint %s: %w", r.Entry.LogicalPath, fpErr)
			}

			select {
			case artifacts <- artifact:
				atomic.AddInt64(produced, 1)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// fingerprintEntry opens entry via its handle (never via its logical path,
// which may not exist anywhere on disk as written) and computes both
// fingerprint kinds over its content.
func fingerprintEntry(entry *walk.Entry, cancelled <-chan struct{}) (Artifact, error) {
	f, err := entry.Open()
	if err != nil {
		return Artifact{}, err
	}
	defer f.Close()

	combined, err := fingerprint.Compute(f, cancelled)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{LogicalPath: entry.LogicalPath, Fingerprint: combined}, nil
}

// progressInterval is the minimum wall-clock spacing between progress log
// lines.
const progressInterval = time.Second

// reportProgress logs the running fingerprint count on a fixed interval
// until stop is closed. It never returns an error: progress reporting is an
// observability nicety, not something that should abort the scan.
func reportProgress(stop <-chan struct{}, produced *int64, logger *logging.Logger) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n := atomic.LoadInt64(produced)
			logger.Infof("fingerprinted %s files so far", humanize.Comma(n))
		}
	}
}
