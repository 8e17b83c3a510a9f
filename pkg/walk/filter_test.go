package walk

import "testing"

func TestFilterAllowsEverythingByDefault(t *testing.T) {
	var f Filter
	if !f.allows("any/path.go") {
		t.Error("allows() = false, want true for an empty filter")
	}
}

func TestFilterIncludeRestrictsToMatches(t *testing.T) {
	f := Filter{Include: []string{"src/**/*.go"}}
	if !f.allows("src/pkg/main.go") {
		t.Error("allows() = false, want true for a matching include pattern")
	}
	if f.allows("vendor/lib.go") {
		t.Error("allows() = true, want false for a non-matching path under a non-empty include set")
	}
}

func TestFilterExcludeWinsOverInclude(t *testing.T) {
	f := Filter{
		Include: []string{"vendor/**"},
		Exclude: []string{"vendor/**"},
	}
	if f.allows("vendor/lib/file.go") {
		t.Error("allows() = true, want false: exclude must win even when include also matches")
	}
}
