// Package vsiclient implements the remote-service contract for the VSI
// Forensics Service: creating scans, uploading artifact batches, completing
// scans, polling analysis status, and downloading the resulting locators.
package vsiclient

import (
	"context"

	"github.com/fossas/vsi-scan/pkg/forensics"
	"github.com/fossas/vsi-scan/pkg/scan"
)

// Locator is an opaque string identifying an upstream dependency. Clients
// never parse or construct locators; they only transport them.
type Locator string

// LocatorSet is an unordered collection of distinct Locators, matching the
// service's "set of locator strings" contract.
type LocatorSet map[Locator]struct{}

// NewLocatorSet builds a LocatorSet from a slice, deduplicating as it goes.
func NewLocatorSet(locators []Locator) LocatorSet {
	set := make(LocatorSet, len(locators))
	for _, l := range locators {
		set[l] = struct{}{}
	}
	return set
}

// Slice returns the set's members in no particular order.
func (s LocatorSet) Slice() []Locator {
	out := make([]Locator, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	return out
}

// Client is the remote-service contract every scan mode drives. scan.Sink
// is satisfied by any Client via its AppendArtifacts method, and
// forensics.StatusFetcher via its ForensicsStatus method.
type Client interface {
	scan.Sink
	forensics.StatusFetcher

	// CreateScan registers a new scan with the service and returns its
	// opaque identifier.
	CreateScan(ctx context.Context) (string, error)
	// CompleteScan signals that no further artifacts will be uploaded for
	// scanID. It must only be called after every AppendArtifacts call for
	// that scan has returned.
	CompleteScan(ctx context.Context, scanID string) error
	// DownloadForensics fetches the set of locators the forensics service
	// identified for scanID. Only meaningful after ForensicsStatus reports
	// a terminal, successful status.
	DownloadForensics(ctx context.Context, scanID string) (LocatorSet, error)
}
