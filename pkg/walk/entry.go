package walk

import "os"

// Entry is a single file discovered by the walker.
type Entry struct {
	// LogicalPath is the path reported to clients, rooted at the scan root.
	// For files inside an expanded archive, it includes the archive's
	// rendered postfix segment(s); see Options.ArchivePostfix.
	LogicalPath string
	// ConcretePath is the actual on-disk location of the file's content,
	// which may lie in a temporary directory. It must never be used for
	// anything other than opening the file: callers that need the path a
	// user would recognize must use LogicalPath instead.
	ConcretePath string

	// handle, if non-nil, is the temp-directory reference this entry holds
	// alive. Release must be called exactly once to drop it.
	handle *tempHandle
}

// Open opens the entry's content for reading. Callers must not open
// LogicalPath directly, since it may not exist anywhere on disk as written
// (it can embed virtual archive segments).
func (e *Entry) Open() (*os.File, error) {
	return os.Open(e.ConcretePath)
}

// Release must be called exactly once when the caller is finished with the
// entry. Until every Entry (and the walker itself) derived from a given
// expanded archive has called Release, that archive's temporary directory
// remains on disk.
func (e *Entry) Release() error {
	if e.handle == nil {
		return nil
	}
	return e.handle.release()
}
