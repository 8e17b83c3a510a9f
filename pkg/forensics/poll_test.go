package forensics

import (
	"context"
	"errors"
	"testing"

	"github.com/fossas/vsi-scan/pkg/logging"
)

type stubFetcher struct {
	statuses []Status
	calls    int
	err      error
}

func (f *stubFetcher) ForensicsStatus(ctx context.Context, scanID string) (Status, error) {
	if f.err != nil {
		return Status{}, f.err
	}
	idx := f.calls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.calls++
	return f.statuses[idx], nil
}

func TestAwaitReturnsOnFinished(t *testing.T) {
	fetcher := &stubFetcher{statuses: []Status{Finished}}
	if err := Await(context.Background(), fetcher, "scan-1", logging.RootLogger); err != nil {
		t.Fatalf("Await() error = %v", err)
	}
}

func TestAwaitReturnsErrorOnFailed(t *testing.T) {
	fetcher := &stubFetcher{statuses: []Status{Failed}}
	err := Await(context.Background(), fetcher, "scan-1", logging.RootLogger)
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("Await() error = %v, want ErrAnalysisFailed", err)
	}
}

func TestAwaitPropagatesFetchError(t *testing.T) {
	wantErr := errors.New("network error")
	fetcher := &stubFetcher{err: wantErr}
	err := Await(context.Background(), fetcher, "scan-1", logging.RootLogger)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Await() error = %v, want wrapping %v", err, wantErr)
	}
}

func TestAwaitStopsOnContextCancellation(t *testing.T) {
	fetcher := &stubFetcher{statuses: []Status{Pending}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Await(ctx, fetcher, "scan-1", logging.RootLogger)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Await() error = %v, want context.Canceled", err)
	}
}
