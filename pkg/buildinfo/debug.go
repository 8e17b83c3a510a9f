package buildinfo

import (
	"os"
)

// DebugEnabled controls whether or not debug-level logging is enabled. It is
// set automatically based on the VSI_DEBUG environment variable, but the
// command line entry point also sets it directly in response to --debug.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("VSI_DEBUG") == "1"
}
