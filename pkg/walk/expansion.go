package walk

import (
	"fmt"
	"os"
)

// ErrRecursionLimit marks an archive that was discovered but not expanded
// because it sits deeper than the configured recursion bound. It is
// recorded as a per-path warning, never as a fatal error.
var ErrRecursionLimit = fmt.Errorf("walk: archive exceeds the recursion depth limit")

// attempt is one archive expansion try: the source path and either the
// destination directory it expanded into or the error that prevented it.
type attempt struct {
	source      string
	destination string
	err         error
}

// Expansion is the result of expanding every archive beneath a root in
// batch (non-iterator) mode: a mapping from each archive's source path to
// the temporary directory it was expanded into, plus per-path warnings for
// archives that could not be expanded.
//
// The destinations are temporary directories owned by the Expansion.
// Callers must end every Expansion with exactly one of Cleanup (delete the
// destinations, typically via defer) or Persist (keep them on disk and take
// over their lifecycle). The iterator walker (Walk) is usually preferable:
// it deletes each temporary directory as soon as the walk moves past it,
// keeping disk usage bounded, where batch expansion holds every
// destination on disk at once.
type Expansion struct {
	locations map[string]string
	warnings  map[string][]error
}

// ExpandAll expands root and every archive (transitively, up to the
// recursion bound) found beneath it. If root is a directory, its contents
// are searched for archives; if it is a supported archive, it is itself
// expanded first. A root that is a symbolic link, or a file no strategy
// supports, is an error.
func ExpandAll(root string, opts Options) (*Expansion, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("%w: %s is a symbolic link", ErrInvalidRoot, root)
	}

	registry := opts.registry()
	expansion := &Expansion{
		locations: make(map[string]string),
		warnings:  make(map[string][]error),
	}

	// Queue of (depth, attempt) pairs. The queue grows as newly expanded
	// destinations are themselves searched for archives.
	type queued struct {
		depth   int
		attempt attempt
	}
	var queue []queued

	// expandLayer finds every archive directly reachable under dir (across
	// plain directories, not across archive boundaries) and attempts to
	// expand each one.
	expandLayer := func(dir string) ([]attempt, error) {
		files, err := listFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
		var attempts []attempt
		for _, file := range files {
			if !registry.CanExpand(file) {
				continue
			}
			destination, err := registry.Expand(file, opts.TempRoot)
			attempts = append(attempts, attempt{source: file, destination: destination, err: err})
		}
		return attempts, nil
	}

	if info.IsDir() {
		attempts, err := expandLayer(root)
		if err != nil {
			expansion.mustCleanup()
			return nil, err
		}
		for _, a := range attempts {
			queue = append(queue, queued{depth: 0, attempt: a})
		}
	} else {
		if !registry.CanExpand(root) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
		}
		destination, err := registry.Expand(root, opts.TempRoot)
		// The root archive does not count against the recursion bound, so
		// archives found directly inside it start at depth 0.
		queue = append(queue, queued{depth: -1, attempt: attempt{source: root, destination: destination, err: err}})
	}

	if !opts.Recursion.Enabled {
		for _, q := range queue {
			expansion.record(q.attempt)
		}
		return expansion, nil
	}

	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]

		if q.depth >= opts.Recursion.Depth {
			expansion.warn(q.attempt.source, ErrRecursionLimit)
			// The expansion already happened by the time the bound was
			// checked; don't leak the directory it produced.
			if q.attempt.err == nil {
				os.RemoveAll(q.attempt.destination)
			}
			continue
		}

		expansion.record(q.attempt)
		if q.attempt.err != nil {
			continue
		}

		attempts, err := expandLayer(q.attempt.destination)
		if err != nil {
			for _, leaked := range queue {
				if leaked.attempt.err == nil {
					os.RemoveAll(leaked.attempt.destination)
				}
			}
			expansion.mustCleanup()
			return nil, err
		}
		for _, a := range attempts {
			queue = append(queue, queued{depth: q.depth + 1, attempt: a})
		}
	}

	return expansion, nil
}

// record files a successful attempt into locations, or an unsuccessful one
// into warnings.
func (e *Expansion) record(a attempt) {
	if a.err != nil {
		e.warn(a.source, a.err)
		return
	}
	e.locations[a.source] = a.destination
}

func (e *Expansion) warn(source string, err error) {
	e.warnings[source] = append(e.warnings[source], err)
}

// Locations returns the mapping from each expanded archive's source path to
// the temporary directory holding its contents. The returned map is the
// Expansion's own; it is emptied by Cleanup.
func (e *Expansion) Locations() map[string]string {
	return e.locations
}

// Warnings returns the non-fatal errors encountered during expansion, keyed
// by the source path each was attached to.
func (e *Expansion) Warnings() map[string][]error {
	return e.warnings
}

// Destinations returns every expansion destination currently owned by e.
func (e *Expansion) Destinations() []string {
	destinations := make([]string, 0, len(e.locations))
	for _, d := range e.locations {
		destinations = append(destinations, d)
	}
	return destinations
}

// Cleanup deletes every destination directory and empties the locations
// map, returning any deletion errors as a batch. Calling Cleanup more than
// once is supported; subsequent calls are no-ops regardless of whether the
// first call fully succeeded.
func (e *Expansion) Cleanup() []error {
	if len(e.locations) == 0 {
		return nil
	}

	var errs []error
	for source, destination := range e.locations {
		if err := os.RemoveAll(destination); err != nil {
			errs = append(errs, fmt.Errorf("clean up %s: %w", destination, err))
		}
		delete(e.locations, source)
	}
	return errs
}

// mustCleanup is Cleanup for internal error paths, where deletion errors
// have nowhere useful to go.
func (e *Expansion) mustCleanup() {
	_ = e.Cleanup()
}

// Persist consumes the Expansion, returning its locations and warnings and
// suppressing destination deletion: the caller takes over the lifecycle of
// every destination directory. A later Cleanup call is a no-op.
func (e *Expansion) Persist() (map[string]string, map[string][]error) {
	locations := e.locations
	warnings := e.warnings
	e.locations = make(map[string]string)
	e.warnings = make(map[string][]error)
	return locations, warnings
}
