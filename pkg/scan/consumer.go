package scan

import (
	"context"
	"fmt"
	"sync/atomic"
)

// runConsumer buffers artifacts up to ArtifactBufferLimit, flushing each
// full batch to sink. It is the pipeline's single upload consumer: calls to
// sink.AppendArtifacts are always serialized, one in flight at a time, by
// virtue of running on this one goroutine.
func runConsumer(ctx context.Context, sink Sink, scanID string, artifacts <-chan Artifact, uploaded *int64) error {
	buffer := make([]Artifact, 0, ArtifactBufferLimit)

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := sink.AppendArtifacts(ctx, scanID, buffer); err != nil {
			return fmt.Errorf("upload artifacts: %w", err)
		}
		atomic.AddInt64(uploaded, int64(len(buffer)))
		buffer = buffer[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a, ok := <-artifacts:
			if !ok {
				return flush()
			}
			buffer = append(buffer, a)
			if len(buffer) >= ArtifactBufferLimit {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}
