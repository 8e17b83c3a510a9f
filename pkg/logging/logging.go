package logging

import (
	"log"
	"os"
)

func init() {
	// Set the global logger to use standard error. Standard output is
	// reserved for the scan's single JSON result value, so every log line
	// must stay off it.
	log.SetOutput(os.Stderr)
}
