package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fossas/vsi-scan/pkg/logging"
	"github.com/fossas/vsi-scan/pkg/vsiclient"
	"github.com/fossas/vsi-scan/pkg/walk"
)

// logger is the root logger every subcommand logs through.
var logger = logging.RootLogger

// walkOptionsFromFlags builds walk options from the global --only-paths and
// --exclude-paths flags. A non-default filter is rejected downstream by
// walk.Options.Validate, since filtering is not yet implemented.
func walkOptionsFromFlags() walk.Options {
	opts := walk.DefaultOptions()
	opts.Filter = walk.Filter{
		Include: globalConfiguration.onlyPaths,
		Exclude: globalConfiguration.excludePaths,
	}
	return opts
}

// scanIDExport is the JSON shape printed when --export=scan-id.
type scanIDExport struct {
	ScanID string `json:"scan_id"`
}

// writeExport prints scanID or locators to stdout according to
// --export, matching the scanner's stdout contract.
func writeExport(scanID string, locators vsiclient.LocatorSet) error {
	if globalConfiguration.format != "json" {
		return fmt.Errorf("unsupported --format %q", globalConfiguration.format)
	}

	encoder := json.NewEncoder(os.Stdout)
	switch globalConfiguration.export {
	case exportScanID:
		return encoder.Encode(scanIDExport{ScanID: scanID})
	case exportLocators:
		slice := locators.Slice()
		strs := make([]string, len(slice))
		for i, l := range slice {
			strs[i] = string(l)
		}
		sort.Strings(strs)
		return encoder.Encode(strs)
	default:
		return fmt.Errorf("unsupported --export %q", globalConfiguration.export)
	}
}

// requireFossaAPIKey returns an error if no API key is configured; real scan
// modes cannot authenticate against the forensics service without one.
func requireFossaAPIKey() error {
	if globalConfiguration.fossaAPIKey == "" {
		return fmt.Errorf("--fossa-api-key (or FOSSA_API_KEY) is required")
	}
	return nil
}
