package main

import "testing"

func TestExportModeSetAcceptsKnownValues(t *testing.T) {
	var m exportMode
	if err := m.Set("locators"); err != nil {
		t.Fatalf("Set(%q) error = %v", "locators", err)
	}
	if m != exportLocators {
		t.Errorf("Set(%q) = %v, want %v", "locators", m, exportLocators)
	}
}

func TestExportModeSetRejectsUnknownValue(t *testing.T) {
	var m exportMode
	if err := m.Set("everything"); err == nil {
		t.Fatal("Set() error = nil, want non-nil for an unrecognized value")
	}
}

func TestExportModeStringDefaultsToScanID(t *testing.T) {
	var m exportMode
	if got := m.String(); got != string(exportScanID) {
		t.Errorf("String() = %q, want %q", got, exportScanID)
	}
}
