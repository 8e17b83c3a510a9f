package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fossas/vsi-scan/cmd"
	"github.com/fossas/vsi-scan/pkg/buildinfo"
	"github.com/fossas/vsi-scan/pkg/logging"
)

// rootCommand is the top-level vsi-scan command. It performs no action
// itself; every operation lives in one of the three scan-mode subcommands.
// It rejects its own positional arguments so that a typo'd subcommand name
// fails with a clear message rather than being silently swallowed.
var rootCommand = &cobra.Command{
	Use:           buildinfo.Name,
	Short:         "Fingerprint and upload a directory tree for vendored software identification",
	Version:       buildinfo.Version,
	Args:          cmd.DisallowArguments,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
		buildinfo.DebugEnabled = globalConfiguration.debug
		if name := os.Getenv("VSI_LOG_LEVEL"); name != "" {
			level, ok := logging.NameToLevel(name)
			if !ok {
				return fmt.Errorf("invalid VSI_LOG_LEVEL %q", name)
			}
			if level >= logging.LevelDebug {
				buildinfo.DebugEnabled = true
			}
		}
		return nil
	},
}

// globalConfiguration stores the flags shared by every scan mode.
var globalConfiguration struct {
	// debug enables debug-level logging.
	debug bool
	// format selects the output encoding. Only "json" is currently
	// supported.
	format string
	// export selects what full/dry-run print on success.
	export exportMode
	// onlyPaths and excludePaths are the allow/deny filters forwarded to the
	// walker. Both must be empty today; see walk.Filter.
	onlyPaths    []string
	excludePaths []string
	// endpoint is the base URL of the FOSSA instance proxying the
	// forensics service.
	endpoint string
	// fossaAPIKey authenticates requests to the forensics service.
	fossaAPIKey string
	// organizationID scopes the scan to a FOSSA organization.
	organizationID int
}

func init() {
	cobra.EnableCommandSorting = false

	flags := rootCommand.PersistentFlags()
	flags.SortFlags = false
	flags.BoolVar(&globalConfiguration.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&globalConfiguration.format, "format", "json", "Output format (json)")
	globalConfiguration.export = exportScanID
	flags.Var(&globalConfiguration.export, "export", "What to print on success (scan-id|locators)")
	flags.StringSliceVar(&globalConfiguration.onlyPaths, "only-paths", nil, "Logical paths to restrict scanning to (filtering is unsupported: any value is rejected)")
	flags.StringSliceVar(&globalConfiguration.excludePaths, "exclude-paths", nil, "Logical paths to exclude from scanning (filtering is unsupported: any value is rejected)")
	flags.StringVar(&globalConfiguration.endpoint, "endpoint", "https://app.fossa.com", "Base URL of the FOSSA instance")
	flags.StringVar(&globalConfiguration.fossaAPIKey, "fossa-api-key", os.Getenv("FOSSA_API_KEY"), "FOSSA API key (env FOSSA_API_KEY)")
	flags.IntVar(&globalConfiguration.organizationID, "organization-id", defaultOrganizationID(), "FOSSA organization id (env FOSSA_ORG_ID)")

	rootCommand.AddCommand(fullCommand, partialCommand, dryRunCommand)
}

// defaultOrganizationID reads FOSSA_ORG_ID, falling back to 1 if it is
// unset or not a valid integer.
func defaultOrganizationID() int {
	if v := os.Getenv("FOSSA_ORG_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 1
}
