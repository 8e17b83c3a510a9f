// Package walk implements the archive-expanding directory traversal: given a
// root directory or archive, it lazily yields every file beneath it,
// transparently descending into nested archives up to a configurable depth
// and rendering their contents as if each archive were a directory.
package walk

import (
	"errors"

	"github.com/fossas/vsi-scan/pkg/archive"
)

// DefaultArchivePostfix is appended to an archive's logical path to form the
// logical parent directory of its extracted contents.
const DefaultArchivePostfix = "!_fossa.virtual_!"

// Recursion controls whether (and how deep) the walker descends into
// archives nested within archives.
type Recursion struct {
	// Enabled turns on archive expansion at all. When false, Walk lists
	// archives as plain files and does not expand them (a root that is
	// itself an archive is still expanded), and ExpandAll expands only the
	// root archive or the archives directly beneath a root directory.
	Enabled bool
	// Depth bounds archive-within-archive descent. The scan root, even if
	// itself an archive, does not count against this bound; it is the
	// number of additional archive layers nested beneath the root.
	Depth int
}

// DefaultRecursion enables expansion with a depth bound high enough to
// never realistically trigger in practice.
var DefaultRecursion = Recursion{Enabled: true, Depth: 1000}

// Identification selects how the walker decides whether a file is an
// archive it should try to expand. It is a closed, extensible set; today
// only extension matching exists.
type Identification int

const (
	// MatchExtension identifies archives by matching file name suffixes
	// against a fixed set of supported extensions.
	MatchExtension Identification = iota
)

// Filter restricts which logical paths are emitted. Both sets are currently
// required to be empty: the walker still carries the matching machinery
// (see allows in filter.go) so that lifting this restriction later is a
// small change, but Options.Validate rejects any non-default value until
// filtering is formally supported.
type Filter struct {
	Include []string
	Exclude []string
}

func (f Filter) isDefault() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}

// Options configures a Walk call.
type Options struct {
	Recursion      Recursion
	Identification Identification
	Filter         Filter
	// ArchivePostfix is appended to rendered archive logical paths. An
	// empty postfix is honored as-is (an archive's contents then render as
	// if the archive were a plain directory of the same name); use
	// DefaultOptions to get the standard postfix.
	ArchivePostfix string
	// Registry resolves whether/how a file is expanded as an archive. A nil
	// Registry uses archive.DefaultRegistry().
	Registry *archive.Registry
	// TempRoot is the directory under which expansion temp directories are
	// created. Empty uses the system default temp directory.
	TempRoot string
}

// DefaultOptions returns the walker's default configuration.
func DefaultOptions() Options {
	return Options{
		Recursion:      DefaultRecursion,
		Identification: MatchExtension,
		ArchivePostfix: DefaultArchivePostfix,
	}
}

// ErrFilterNotSupported is returned by Validate when a non-default filter is
// configured.
var ErrFilterNotSupported = errors.New("walk: non-default include/exclude filters are not yet supported")

// Validate rejects configurations this walker cannot honor, rather than
// silently ignoring them.
func (o Options) Validate() error {
	if !o.Filter.isDefault() {
		return ErrFilterNotSupported
	}
	return nil
}

func (o Options) registry() *archive.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return archive.DefaultRegistry()
}
