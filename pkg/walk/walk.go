package walk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/fossas/vsi-scan/pkg/archive"
)

// Result is either a discovered Entry or a walk error. Exactly one field is
// set. Walk errors are non-fatal to the overall walk (they become warnings
// attached to the path that produced them) unless the caller chooses
// otherwise; the walker itself always continues past them.
type Result struct {
	Entry *Entry
	Err   error
}

// walkTarget is one directory (the root, or an archive's expansion) queued
// for traversal.
type walkTarget struct {
	dir string
	// parentLogical is the logical path prefix prepended to every entry
	// rendered from dir; empty for the scan root.
	parentLogical string
	depth         int
	// handle is nil for the root when the root is a real directory (not an
	// expanded archive), and non-nil for every expanded archive, including
	// a root that is itself an archive.
	handle *tempHandle
}

// Walk produces a channel of Result over every file beneath root. The
// channel is closed once traversal completes or cancelled is closed. The
// caller must drain the channel (or close cancelled and continue draining
// until closed) to avoid leaking the walker goroutine, and must call
// Entry.Release on every Entry received.
func Walk(root string, opts Options, cancelled <-chan struct{}) (<-chan Result, error) {
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

	target := walkTarget{dir: root}
	if !info.IsDir() {
		if !registry.CanExpand(root) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
		}
		dir, err := registry.Expand(root, opts.TempRoot)
		if err != nil {
			return nil, fmt.Errorf("expand root archive: %w", err)
		}
		target = walkTarget{dir: dir, handle: newTempHandle(dir)}
	}

	// Rendezvous channel: capacity 0 ties the walker's pace directly to the
	// consumer's, providing the backpressure described in the concurrency
	// model.
	results := make(chan Result)
	go walkInner(results, target, opts, registry, cancelled)
	return results, nil
}

func walkInner(tx chan<- Result, root walkTarget, opts Options, registry *archive.Registry, cancelled <-chan struct{}) {
	defer close(tx)

	queue := []walkTarget{root}
	postfix := opts.ArchivePostfix

	send := func(r Result) bool {
		select {
		case tx <- r:
			return true
		case <-cancelled:
			return false
		}
	}

	releaseAll := func(targets []walkTarget) {
		for _, t := range targets {
			if t.handle != nil {
				t.handle.release()
			}
		}
	}

	for len(queue) > 0 {
		select {
		case <-cancelled:
			releaseAll(queue)
			return
		default:
		}

		target := queue[0]
		queue = queue[1:]

		files, err := listFiles(target.dir)
		if err != nil {
			if !send(Result{Err: fmt.Errorf("walk %s: %w", target.dir, err)}) {
				releaseTarget(target)
				releaseAll(queue)
				return
			}
			releaseTarget(target)
			continue
		}

		cancelledMidTarget := false
		for _, concretePath := range files {
			select {
			case <-cancelled:
				cancelledMidTarget = true
			default:
			}
			if cancelledMidTarget {
				break
			}

			logical, err := renderLogicalPath(target, concretePath)
			if err != nil {
				if !send(Result{Err: err}) {
					cancelledMidTarget = true
					break
				}
				continue
			}

			entry := &Entry{LogicalPath: logical, ConcretePath: concretePath, handle: target.handle}
			if target.handle != nil {
				target.handle.acquire()
			}

			if opts.Recursion.Enabled && registry.CanExpand(concretePath) {
				newDepth := target.depth + 1
				if newDepth <= opts.Recursion.Depth {
					expandedDir, expandErr := registry.Expand(concretePath, opts.TempRoot)
					switch {
					case expandErr == nil:
						queue = append(queue, walkTarget{
							dir:           expandedDir,
							parentLogical: logical + postfix,
							depth:         newDepth,
							handle:        newTempHandle(expandedDir),
						})
					case errors.Is(expandErr, archive.ErrNotSupported):
						// Not actually an archive once inspected more closely;
						// fall through and emit it as a plain file.
					default:
						if !send(Result{Err: fmt.Errorf("expand %s: %w", concretePath, expandErr)}) {
							entry.Release()
							cancelledMidTarget = true
						}
					}
				}
			}
			if cancelledMidTarget {
				break
			}

			if !send(Result{Entry: entry}) {
				entry.Release()
				cancelledMidTarget = true
				break
			}
		}

		releaseTarget(target)
		if cancelledMidTarget {
			releaseAll(queue)
			return
		}
	}
}

func releaseTarget(t walkTarget) {
	if t.handle != nil {
		t.handle.release()
	}
}

// renderLogicalPath computes the logical path of a file found directly
// under target.dir, prefixed by target.parentLogical if set.
func renderLogicalPath(target walkTarget, concretePath string) (string, error) {
	rel, err := filepath.Rel(target.dir, concretePath)
	if err != nil {
		return "", fmt.Errorf("render logical path for %s: %w", concretePath, err)
	}
	rel = filepath.ToSlash(rel)
	if target.parentLogical == "" {
		return rel, nil
	}
	return target.parentLogical + "/" + rel, nil
}

// listFiles recursively collects every regular file under dir, in
// deterministic per-directory lexical order, without following symbolic
// links (symlinks are skipped entirely, whether they point to files or
// directories).
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
