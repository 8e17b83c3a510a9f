// Package scan implements the producer/consumer pipeline that walks a scan
// root, fingerprints every file in parallel, and uploads the resulting
// artifacts to a remote sink in bounded batches.
package scan

import (
	"context"

	"github.com/fossas/vsi-scan/pkg/fingerprint"
)

// Artifact pairs a file's logical path with its computed fingerprints.
type Artifact struct {
	LogicalPath string
	Fingerprint fingerprint.Combined
}

// Sink receives batches of artifacts for a scan. Implementations are
// responsible for their own retry/backoff policy, if any; the upload
// consumer treats any returned error as fatal for the whole scan.
type Sink interface {
	AppendArtifacts(ctx context.Context, scanID string, artifacts []Artifact) error
}

// ArtifactBufferLimit bounds both the in-flight artifact channel between
// fingerprint workers and the upload consumer, and the consumer's own
// buffer before it flushes a batch to the Sink.
const ArtifactBufferLimit = 1000
