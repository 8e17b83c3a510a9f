package vsiclient

import (
	"context"
	"testing"

	"github.com/fossas/vsi-scan/pkg/logging"
	"github.com/fossas/vsi-scan/pkg/scan"
)

func TestDevnullCreateScanReturnsFixedID(t *testing.T) {
	client := NewDevnull(logging.RootLogger)
	id, err := client.CreateScan(context.Background())
	if err != nil {
		t.Fatalf("CreateScan() error = %v", err)
	}
	if id != fakeScanID {
		t.Errorf("CreateScan() = %q, want %q", id, fakeScanID)
	}
}

func TestDevnullAppendArtifactsSucceeds(t *testing.T) {
	client := NewDevnull(logging.RootLogger)
	err := client.AppendArtifacts(context.Background(), fakeScanID, []scan.Artifact{{LogicalPath: "a"}})
	if err != nil {
		t.Fatalf("AppendArtifacts() error = %v", err)
	}
}

func TestDevnullCompleteScanSucceeds(t *testing.T) {
	client := NewDevnull(logging.RootLogger)
	if err := client.CompleteScan(context.Background(), fakeScanID); err != nil {
		t.Fatalf("CompleteScan() error = %v", err)
	}
}

func TestDevnullForensicsStatusIsFinished(t *testing.T) {
	client := NewDevnull(logging.RootLogger)
	status, err := client.ForensicsStatus(context.Background(), fakeScanID)
	if err != nil {
		t.Fatalf("ForensicsStatus() error = %v", err)
	}
	if !status.Terminal() || status.IsFailed() {
		t.Errorf("ForensicsStatus() = %v, want a successful terminal status", status)
	}
}

func TestDevnullDownloadForensicsReturnsFixedLocators(t *testing.T) {
	client := NewDevnull(logging.RootLogger)
	locators, err := client.DownloadForensics(context.Background(), fakeScanID)
	if err != nil {
		t.Fatalf("DownloadForensics() error = %v", err)
	}

	want := NewLocatorSet([]Locator{"git+foo$bar", "cargo+baz$bam"})
	if len(locators) != len(want) {
		t.Fatalf("DownloadForensics() = %v, want %v", locators, want)
	}
	for l := range want {
		if _, ok := locators[l]; !ok {
			t.Errorf("DownloadForensics() missing locator %q", l)
		}
	}
}
