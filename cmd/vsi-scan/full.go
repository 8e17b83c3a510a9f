package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fossas/vsi-scan/pkg/forensics"
	"github.com/fossas/vsi-scan/pkg/scan"
	"github.com/fossas/vsi-scan/pkg/vsiclient"
)

var fullCommand = &cobra.Command{
	Use:   "full <directory>",
	Short: "Create a scan, upload fingerprints, wait for analysis, and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  fullMain,
}

func fullMain(_ *cobra.Command, arguments []string) error {
	scanDir := arguments[0]
	if err := requireFossaAPIKey(); err != nil {
		return err
	}

	client := vsiclient.NewFossa(
		globalConfiguration.endpoint,
		globalConfiguration.fossaAPIKey,
		globalConfiguration.organizationID,
		scanDir,
	)

	return runFullOrDryRun(client, scanDir)
}

// runFullOrDryRun drives the end-to-end scan + wait + download sequence
// shared by the full and dry-run commands; they differ only in which Client
// implementation they construct.
func runFullOrDryRun(client vsiclient.Client, scanDir string) error {
	ctx := context.Background()

	scanID, err := client.CreateScan(ctx)
	if err != nil {
		return fmt.Errorf("create scan: %w", err)
	}

	if _, err := scan.Run(ctx, client, scan.Options{
		Root:   scanDir,
		ScanID: scanID,
		Walk:   walkOptionsFromFlags(),
	}, logger); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if err := client.CompleteScan(ctx, scanID); err != nil {
		return fmt.Errorf("complete scan: %w", err)
	}

	if err := forensics.Await(ctx, client, scanID, logger); err != nil {
		return fmt.Errorf("await forensics: %w", err)
	}

	locators, err := client.DownloadForensics(ctx, scanID)
	if err != nil {
		return fmt.Errorf("download forensics: %w", err)
	}

	return writeExport(scanID, locators)
}
