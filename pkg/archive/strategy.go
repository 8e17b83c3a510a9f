// Package archive decides whether a file on disk is a supported archive
// format and, if so, expands it into a freshly created temporary directory.
package archive

import (
	"errors"
	"os"
)

// ErrNotSupported is returned by a Strategy when it does not recognize path
// as a format it can expand. It is not a failure: the caller should try the
// next strategy in the registry.
var ErrNotSupported = errors.New("archive: format not supported")

// Strategy decides whether a given path can be expanded as an archive and,
// if so, performs the expansion.
type Strategy interface {
	// Name identifies the strategy for logging.
	Name() string
	// CanExpand performs a cheap check (typically just inspecting the file
	// name) to decide whether Expand is likely to succeed. It must not open
	// or read the file's contents.
	CanExpand(path string) bool
	// Expand extracts path into a newly created temporary directory under
	// root and returns that directory's path. The caller owns the returned
	// directory's lifecycle. Returns ErrNotSupported if path does not
	// actually match this strategy's format once inspected more closely;
	// any other error (including a corrupt or unreadable archive) is fatal
	// for this file.
	Expand(path string, root string) (string, error)
}

// Registry is an ordered list of strategies. The first strategy reporting
// that it can expand a path wins; Expand is tried in that same order so
// that a CanExpand false-positive still falls through to the next
// candidate.
type Registry struct {
	strategies []Strategy
}

// NewRegistry builds a Registry trying each of strategies in order, always
// terminated by Deny so that CanExpand/Expand never panic on an empty
// registry and every unsupported file reaches a well-defined NotSupported
// outcome.
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: append(append([]Strategy{}, strategies...), Deny{})}
}

// DefaultRegistry is the extension-matching registry used by the walker
// unless a different identification method is configured.
func DefaultRegistry() *Registry {
	return NewRegistry(
		ZipStrategy{},
		TarGzStrategy{},
		TarBz2Strategy{},
		TarXzStrategy{},
		TarStrategy{},
		RPMStrategy{},
	)
}

// CanExpand reports whether any registered strategy (other than the
// terminal Deny) claims path.
func (r *Registry) CanExpand(path string) bool {
	for _, s := range r.strategies {
		if s.CanExpand(path) {
			return true
		}
	}
	return false
}

// Expand tries each strategy claiming path, in registry order, until one
// succeeds or returns an error other than ErrNotSupported. tempRoot is the
// directory under which the expansion's temporary directory is created; an
// empty string uses the system default (os.TempDir).
func (r *Registry) Expand(path string, tempRoot string) (string, error) {
	for _, s := range r.strategies {
		if !s.CanExpand(path) {
			continue
		}
		dir, err := s.Expand(path, tempRoot)
		if errors.Is(err, ErrNotSupported) {
			continue
		}
		return dir, err
	}
	return "", ErrNotSupported
}

// Deny is the terminal strategy: it never claims a path, and its Expand is
// unreachable in a correctly constructed registry (NewRegistry always
// appends it last). It exists so the registry's "first strategy wins" rule
// has a concrete zero-value strategy to fall back on instead of needing a
// special case for "no strategy matched."
type Deny struct{}

// Name implements Strategy.Name.
func (Deny) Name() string { return "deny" }

// CanExpand implements Strategy.CanExpand.
func (Deny) CanExpand(string) bool { return false }

// Expand implements Strategy.Expand.
func (Deny) Expand(string, string) (string, error) { return "", ErrNotSupported }

// newExpansionDir creates a fresh temporary directory under root (or the
// system default if root is empty) to hold one archive's expanded contents.
func newExpansionDir(root string) (string, error) {
	return os.MkdirTemp(root, "vsi-scan-*")
}
