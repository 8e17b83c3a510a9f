package vsiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fossas/vsi-scan/pkg/fingerprint"
	"github.com/fossas/vsi-scan/pkg/scan"
)

func newFossaAgainst(ts *httptest.Server) *Fossa {
	return NewFossa(ts.URL, "test-api-key", 42, "/tmp/my-project")
}

func TestFossaCreateScan(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/proxy/sherlock/scans", func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.Header.Get("Authorization"), "Bearer test-api-key"; got != want {
			t.Errorf("Authorization header = %q, want %q", got, want)
		}

		var body createScanRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if body.OrganizationID != 42 {
			t.Errorf("OrganizationID = %d, want 42", body.OrganizationID)
		}
		if body.ProjectID != "custom/my-project" {
			t.Errorf("ProjectID = %q, want %q", body.ProjectID, "custom/my-project")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(createScanResponse{ScanID: "scan-123"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newFossaAgainst(ts)
	scanID, err := client.CreateScan(context.Background())
	if err != nil {
		t.Fatalf("CreateScan() error = %v", err)
	}
	if scanID != "scan-123" {
		t.Errorf("CreateScan() = %q, want %q", scanID, "scan-123")
	}
}

func TestFossaCreateScanError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/proxy/sherlock/scans", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, "boom")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newFossaAgainst(ts)
	if _, err := client.CreateScan(context.Background()); err == nil {
		t.Fatal("CreateScan() error = nil, want non-nil")
	}
}

func TestFossaAppendArtifacts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/proxy/sherlock/scans/scan-123/files", func(w http.ResponseWriter, r *http.Request) {
		var body appendArtifactsRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if _, ok := body.ScanData["foo.go"]; !ok {
			t.Errorf("ScanData missing key %q: %v", "foo.go", body.ScanData)
		}
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newFossaAgainst(ts)
	artifacts := []scan.Artifact{
		{
			LogicalPath: "foo.go",
			Fingerprint: fingerprint.Combined{Raw: fingerprint.Fingerprint{Kind: fingerprint.RawSHA256}},
		},
	}
	if err := client.AppendArtifacts(context.Background(), "scan-123", artifacts); err != nil {
		t.Fatalf("AppendArtifacts() error = %v", err)
	}
}

func TestFossaCompleteScan(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/proxy/sherlock/scans/scan-123/complete", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newFossaAgainst(ts)
	if err := client.CompleteScan(context.Background(), "scan-123"); err != nil {
		t.Fatalf("CompleteScan() error = %v", err)
	}
}

func TestFossaForensicsStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/proxy/sherlock/scans/scan-123/status/analysis", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(forensicsStatusResponse{Status: "DONE"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newFossaAgainst(ts)
	status, err := client.ForensicsStatus(context.Background(), "scan-123")
	if err != nil {
		t.Fatalf("ForensicsStatus() error = %v", err)
	}
	if !status.Terminal() || status.IsFailed() {
		t.Errorf("ForensicsStatus() = %v, want a successful terminal status", status)
	}
}

func TestFossaDownloadForensicsWithMissingLocators(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/proxy/sherlock/scans/scan-123/inferences/locator", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newFossaAgainst(ts)
	locators, err := client.DownloadForensics(context.Background(), "scan-123")
	if err != nil {
		t.Fatalf("DownloadForensics() error = %v", err)
	}
	if len(locators) != 0 {
		t.Errorf("DownloadForensics() = %v, want empty set", locators)
	}
}

func TestFossaDownloadForensicsWithLocators(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/proxy/sherlock/scans/scan-123/inferences/locator", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"locators": ["git+foo$bar", "cargo+baz$bam"]}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newFossaAgainst(ts)
	locators, err := client.DownloadForensics(context.Background(), "scan-123")
	if err != nil {
		t.Fatalf("DownloadForensics() error = %v", err)
	}
	if len(locators) != 2 {
		t.Errorf("DownloadForensics() = %v, want 2 locators", locators)
	}
}
