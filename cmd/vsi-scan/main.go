// Command vsi-scan walks a directory (expanding any supported archives it
// contains), fingerprints every file it finds, uploads the results to the
// VSI Forensics Service, and optionally waits for and prints the resulting
// vendored-dependency locators.
package main

import (
	"github.com/fossas/vsi-scan/cmd"
)

func main() {
	if err := rootCommand.Execute(); err != nil {
		cmd.Fatal(err)
	}
}
