package main

import (
	"fmt"

	"github.com/spf13/pflag"
)

// exportMode is a pflag.Value implementing the closed set of valid
// --export values, so an invalid value is rejected at flag-parsing time
// with cobra's usual usage message rather than surfacing later as a scan
// failure.
type exportMode string

var _ pflag.Value = (*exportMode)(nil)

const (
	exportScanID   exportMode = "scan-id"
	exportLocators exportMode = "locators"
)

func (m *exportMode) String() string {
	if *m == "" {
		return string(exportScanID)
	}
	return string(*m)
}

func (m *exportMode) Set(value string) error {
	switch exportMode(value) {
	case exportScanID, exportLocators:
		*m = exportMode(value)
		return nil
	default:
		return fmt.Errorf("must be one of %q or %q", exportScanID, exportLocators)
	}
}

func (m *exportMode) Type() string {
	return "string"
}
