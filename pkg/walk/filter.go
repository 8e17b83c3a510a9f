package walk

import "github.com/bmatcuk/doublestar/v4"

// allows reports whether logicalPath survives f's include/exclude patterns.
// Exclude is checked first and wins outright, matching the "exclusion wins"
// contract: excluding a parent directory prevents descending into archives
// beneath it even if something under it would otherwise be included.
//
// This is not yet reachable from Walk: Options.Validate rejects any
// non-default Filter before a walk starts. It exists so that lifting that
// restriction is a matter of calling allows from listFiles, not writing the
// matcher from scratch.
func (f Filter) allows(logicalPath string) bool {
	for _, pattern := range f.Exclude {
		if matched, _ := doublestar.Match(pattern, logicalPath); matched {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if matched, _ := doublestar.Match(pattern, logicalPath); matched {
			return true
		}
	}
	return false
}
