package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fossas/vsi-scan/cmd"
	"github.com/fossas/vsi-scan/pkg/scan"
	"github.com/fossas/vsi-scan/pkg/vsiclient"
)

var partialCommand = &cobra.Command{
	Use:   "partial <directory>",
	Short: "Walk and upload fingerprints to an existing scan, without completing it or awaiting analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  partialMain,
}

var partialConfiguration struct {
	scanID string
}

func init() {
	flags := partialCommand.Flags()
	flags.StringVar(&partialConfiguration.scanID, "scan-id", "", "Existing scan to upload into (required)")
}

func partialMain(_ *cobra.Command, arguments []string) error {
	scanDir := arguments[0]
	if partialConfiguration.scanID == "" {
		return errors.New("--scan-id is required")
	}
	if err := requireFossaAPIKey(); err != nil {
		return err
	}
	if globalConfiguration.export != exportScanID {
		cmd.Warning("--export has no effect in partial mode; nothing is printed on success")
	}

	client := vsiclient.NewFossa(
		globalConfiguration.endpoint,
		globalConfiguration.fossaAPIKey,
		globalConfiguration.organizationID,
		scanDir,
	)

	ctx := context.Background()
	if _, err := scan.Run(ctx, client, scan.Options{
		Root:   scanDir,
		ScanID: partialConfiguration.scanID,
		Walk:   walkOptionsFromFlags(),
	}, logger); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}
