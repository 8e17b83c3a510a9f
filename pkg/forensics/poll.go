package forensics

import (
	"context"
	"fmt"
	"time"

	"github.com/fossas/vsi-scan/pkg/logging"
)

// pollInterval is the fixed delay between forensics_status requests.
const pollInterval = time.Second

// StatusFetcher retrieves the current forensics status for a scan. It is
// satisfied by pkg/vsiclient.Client.
type StatusFetcher interface {
	ForensicsStatus(ctx context.Context, scanID string) (Status, error)
}

// ErrAnalysisFailed is returned by Await when the remote service reports
// that forensic analysis failed.
var ErrAnalysisFailed = fmt.Errorf("forensics analysis failed")

// Await polls fetcher on a fixed 1-second interval until analysis reaches a
// terminal state, logging each distinct status transition exactly once (so
// a long run of identical informational statuses doesn't spam the log).
// There is no timeout; the only way to stop an in-progress Await is to
// cancel ctx.
func Await(ctx context.Context, fetcher StatusFetcher, scanID string, logger *logging.Logger) error {
	var last Status
	first := true

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, err := fetcher.ForensicsStatus(ctx, scanID)
		if err != nil {
			return fmt.Errorf("get forensics status: %w", err)
		}

		if first || status != last {
			logger.Infof("forensics status: %s", status)
			last = status
			first = false
		}

		if status.Terminal() {
			if status.IsFailed() {
				return ErrAnalysisFailed
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
