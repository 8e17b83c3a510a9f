package vsiclient

import (
	"context"

	"github.com/fossas/vsi-scan/pkg/forensics"
	"github.com/fossas/vsi-scan/pkg/logging"
	"github.com/fossas/vsi-scan/pkg/scan"
)

// fakeScanID is returned by Devnull.CreateScan in place of a real
// service-assigned identifier.
const fakeScanID = "fake_scan_id"

// Devnull is a dry-run Client that performs no network I/O. It logs every
// call it receives and returns a small, fixed set of synthetic locators,
// letting a scan mode exercise its full pipeline without a live forensics
// service or API key.
type Devnull struct {
	logger *logging.Logger
}

// NewDevnull builds a dry-run client that logs through logger.
func NewDevnull(logger *logging.Logger) *Devnull {
	return &Devnull{logger: logger}
}

// CreateScan implements Client.CreateScan.
func (d *Devnull) CreateScan(ctx context.Context) (string, error) {
	d.logger.Infof("[dryrun] create scan -> %s", fakeScanID)
	return fakeScanID, nil
}

// AppendArtifacts implements scan.Sink (and therefore Client.AppendArtifacts).
func (d *Devnull) AppendArtifacts(ctx context.Context, scanID string, artifacts []scan.Artifact) error {
	d.logger.Infof("[dryrun] append %d artifact(s) to scan %s", len(artifacts), scanID)
	return nil
}

// CompleteScan implements Client.CompleteScan.
func (d *Devnull) CompleteScan(ctx context.Context, scanID string) error {
	d.logger.Infof("[dryrun] complete scan %s", scanID)
	return nil
}

// ForensicsStatus implements forensics.StatusFetcher (and therefore
// Client.ForensicsStatus). It always reports the scan as finished, since
// there is no real analysis running to wait on.
func (d *Devnull) ForensicsStatus(ctx context.Context, scanID string) (forensics.Status, error) {
	d.logger.Infof("[dryrun] forensics status for scan %s -> finished", scanID)
	return forensics.Finished, nil
}

// DownloadForensics implements Client.DownloadForensics. It returns a fixed,
// recognizable locator set so downstream consumers (e.g. --export locators)
// have something concrete to render.
func (d *Devnull) DownloadForensics(ctx context.Context, scanID string) (LocatorSet, error) {
	locators := NewLocatorSet([]Locator{"git+foo$bar", "cargo+baz$bam"})
	d.logger.Infof("[dryrun] download forensics for scan %s -> %d locator(s)", scanID, len(locators))
	return locators, nil
}
