package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fossas/vsi-scan/pkg/logging"
	"github.com/fossas/vsi-scan/pkg/walk"
)

type recordingSink struct {
	mu         sync.Mutex
	batches    [][]Artifact
	alwaysFail bool
	calls      int
}

func (s *recordingSink) AppendArtifacts(ctx context.Context, scanID string, artifacts []Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.alwaysFail {
		return errors.New("simulated upload failure")
	}
	batch := make([]Artifact, len(artifacts))
	copy(batch, artifacts)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *recordingSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func writeTree(t *testing.T, root string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		path := filepath.Join(root, fmt.Sprintf("file-%d.txt", i))
		if err := os.WriteFile(path, []byte(fmt.Sprintf("content %d\n", i)), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
}

func TestRunProducesAndUploadsAllArtifacts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, 5)

	sink := &recordingSink{}
	produced, err := Run(context.Background(), sink, Options{
		Root:   root,
		ScanID: "scan-1",
		Walk:   walk.DefaultOptions(),
	}, logging.RootLogger)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if produced != 5 {
		t.Errorf("produced = %d, want 5", produced)
	}
	if got := sink.total(); got != 5 {
		t.Errorf("uploaded = %d, want 5", got)
	}
}

func TestRunPropagatesSinkError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, 3)

	sink := &recordingSink{alwaysFail: true}
	_, err := Run(context.Background(), sink, Options{
		Root:   root,
		ScanID: "scan-1",
		Walk:   walk.DefaultOptions(),
	}, logging.RootLogger)
	if err == nil {
		t.Fatal("expected an error when the sink fails")
	}
}

func TestRunOnEmptyDirectoryProducesNothing(t *testing.T) {
	root := t.TempDir()

	sink := &recordingSink{}
	produced, err := Run(context.Background(), sink, Options{
		Root:   root,
		ScanID: "scan-1",
		Walk:   walk.DefaultOptions(),
	}, logging.RootLogger)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if produced != 0 {
		t.Errorf("produced = %d, want 0", produced)
	}
}
