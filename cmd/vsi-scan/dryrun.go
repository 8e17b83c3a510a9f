package main

import (
	"github.com/spf13/cobra"

	"github.com/fossas/vsi-scan/pkg/vsiclient"
)

var dryRunCommand = &cobra.Command{
	Use:   "dry-run <directory>",
	Short: "Run the full scan sequence against a stub service that performs no network I/O",
	Args:  cobra.ExactArgs(1),
	RunE:  dryRunMain,
}

func dryRunMain(_ *cobra.Command, arguments []string) error {
	scanDir := arguments[0]
	client := vsiclient.NewDevnull(logger)
	return runFullOrDryRun(client, scanDir)
}
