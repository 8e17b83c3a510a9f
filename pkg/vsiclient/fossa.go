package vsiclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fossas/vsi-scan/pkg/buildinfo"
	"github.com/fossas/vsi-scan/pkg/fingerprint"
	"github.com/fossas/vsi-scan/pkg/forensics"
	"github.com/fossas/vsi-scan/pkg/scan"
)

const (
	connectTimeout = 10 * time.Second
	requestTimeout = 300 * time.Second
	apiBasePath    = "/api/proxy/sherlock/"
)

// Fossa talks to the VSI Forensics Service through FOSSA's reverse proxy
// endpoint, using a FOSSA API key for authentication.
type Fossa struct {
	http *resty.Client

	organizationID int
	projectID      string
	revisionID     string
}

// NewFossa builds a client against endpoint, authenticating as
// organizationID/apiKey. scanDir is used only to derive a human-readable
// project identifier for the service's own bookkeeping; it has no bearing
// on which files get scanned.
func NewFossa(endpoint, apiKey string, organizationID int, scanDir string) *Fossa {
	projectName := filepath.Base(scanDir)
	if projectName == "" || projectName == "." || projectName == string(filepath.Separator) {
		projectName = "anonymous_project"
	}

	client := resty.New().
		SetBaseURL(endpoint + apiBasePath).
		SetAuthToken(apiKey).
		SetHeader("User-Agent", buildinfo.UserAgent()).
		SetTimeout(requestTimeout).
		SetTransport(&http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		})

	return &Fossa{
		http:           client,
		organizationID: organizationID,
		projectID:      "custom/" + projectName,
		revisionID:     fmt.Sprintf("%d", time.Now().Unix()),
	}
}

type createScanRequest struct {
	OrganizationID int    `json:"OrganizationID"`
	ProjectID      string `json:"ProjectID"`
	RevisionID     string `json:"RevisionID"`
}

type createScanResponse struct {
	ScanID string `json:"ScanID"`
}

// CreateScan implements Client.CreateScan.
func (f *Fossa) CreateScan(ctx context.Context) (string, error) {
	var body createScanResponse
	resp, err := f.http.R().
		SetContext(ctx).
		SetBody(createScanRequest{
			OrganizationID: f.organizationID,
			ProjectID:      f.projectID,
			RevisionID:     f.revisionID,
		}).
		SetResult(&body).
		Post("scans")
	if err != nil {
		return "", fmt.Errorf("create scan: %w", err)
	}
	if resp.IsError() {
		return "", newHTTPError(resp)
	}
	return body.ScanID, nil
}

type appendArtifactsRequest struct {
	ScanData map[string]fingerprint.Combined `json:"ScanData"`
}

// AppendArtifacts implements scan.Sink (and therefore Client.AppendArtifacts).
func (f *Fossa) AppendArtifacts(ctx context.Context, scanID string, artifacts []scan.Artifact) error {
	data := make(map[string]fingerprint.Combined, len(artifacts))
	for _, a := range artifacts {
		data[a.LogicalPath] = a.Fingerprint
	}

	resp, err := f.http.R().
		SetContext(ctx).
		SetBody(appendArtifactsRequest{ScanData: data}).
		Post(fmt.Sprintf("scans/%s/files", scanID))
	if err != nil {
		return fmt.Errorf("append artifacts: %w", err)
	}
	if resp.IsError() {
		return newHTTPError(resp)
	}
	return nil
}

type completeScanRequest struct {
	FilePath string `json:"FilePath"`
}

// CompleteScan implements Client.CompleteScan.
func (f *Fossa) CompleteScan(ctx context.Context, scanID string) error {
	resp, err := f.http.R().
		SetContext(ctx).
		SetBody(completeScanRequest{FilePath: "/"}).
		Put(fmt.Sprintf("scans/%s/complete", scanID))
	if err != nil {
		return fmt.Errorf("complete scan: %w", err)
	}
	if resp.IsError() {
		return newHTTPError(resp)
	}
	return nil
}

type forensicsStatusResponse struct {
	Status string `json:"Status"`
}

// ForensicsStatus implements forensics.StatusFetcher (and therefore
// Client.ForensicsStatus).
func (f *Fossa) ForensicsStatus(ctx context.Context, scanID string) (forensics.Status, error) {
	var body forensicsStatusResponse
	resp, err := f.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("scans/%s/status/analysis", scanID))
	if err != nil {
		return forensics.Status{}, fmt.Errorf("get forensics status: %w", err)
	}
	if resp.IsError() {
		return forensics.Status{}, newHTTPError(resp)
	}
	return forensics.Parse(body.Status), nil
}

type downloadForensicsResponse struct {
	// Locators defaults to nil (treated as empty) if the field is absent,
	// matching the source contract's tolerance for a missing locators list.
	Locators []Locator `json:"locators"`
}

// DownloadForensics implements Client.DownloadForensics.
func (f *Fossa) DownloadForensics(ctx context.Context, scanID string) (LocatorSet, error) {
	var body downloadForensicsResponse
	resp, err := f.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("scans/%s/inferences/locator", scanID))
	if err != nil {
		return nil, fmt.Errorf("download forensics: %w", err)
	}
	if resp.IsError() {
		return nil, newHTTPError(resp)
	}
	return NewLocatorSet(body.Locators), nil
}
