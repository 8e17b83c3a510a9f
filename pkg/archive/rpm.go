package archive

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cavaliergopher/cpio"
	"github.com/cavaliergopher/rpm"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// RPMStrategy expands .rpm packages. An RPM payload is a cpio archive
// wrapped in a compression format declared by the package header; no
// library in the retrieved example pack understands the RPM lead/header
// format or cpio, so both github.com/cavaliergopher/rpm (header parsing)
// and github.com/cavaliergopher/cpio (payload extraction) are added here as
// ecosystem dependencies, chosen because they're pure Go and avoid a cgo
// dependency on librpm.
type RPMStrategy struct{}

// Name implements Strategy.Name.
func (RPMStrategy) Name() string { return "rpm" }

// CanExpand implements Strategy.CanExpand.
func (RPMStrategy) CanExpand(path string) bool {
	return strings.HasSuffix(path, ".rpm")
}

// Expand implements Strategy.Expand.
func (RPMStrategy) Expand(path string, root string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	// Reading the package headers leaves f positioned at the start of the
	// compressed payload.
	pkg, err := rpm.Read(f)
	if err != nil {
		return "", fmt.Errorf("read rpm headers %q: %w", path, err)
	}
	if format := pkg.PayloadFormat(); format != "cpio" {
		return "", fmt.Errorf("rpm %q: unsupported payload format %q", path, format)
	}

	payload, closePayload, err := decompressPayload(f, pkg.PayloadCompression())
	if err != nil {
		return "", fmt.Errorf("rpm %q: %w", path, err)
	}
	defer closePayload()

	dir, err := newExpansionDir(root)
	if err != nil {
		return "", fmt.Errorf("create expansion directory: %w", err)
	}
	if err := extractCpio(payload, dir); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

// decompressPayload wraps r with a decoder for the compression named in the
// package header. The returned closer must be called once the payload has
// been consumed, regardless of which decoder was selected.
func decompressPayload(r io.Reader, compression string) (io.Reader, func(), error) {
	switch compression {
	case "gzip":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip payload: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	case "bzip2":
		return bzip2.NewReader(r), func() {}, nil
	case "xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open xz payload: %w", err)
		}
		return xr, func() {}, nil
	case "lzma":
		lr, err := lzma.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open lzma payload: %w", err)
		}
		return lr, func() {}, nil
	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open zstd payload: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported payload compression %q", compression)
	}
}

// extractCpio streams a decompressed cpio payload into dir. uid/gid
// information in the cpio headers is discarded, matching the tar
// strategies' treatment of ownership metadata.
func extractCpio(r io.Reader, dir string) error {
	cr := cpio.NewReader(r)
	for {
		header, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read cpio header: %w", err)
		}

		// RPM cpio payload entry names are conventionally prefixed with
		// "./"; strip it so extracted paths are rooted directly at dir.
		name := strings.TrimPrefix(header.Name, "./")
		if name == "" || name == "." {
			continue
		}

		target := filepath.Join(dir, filepath.Clean(name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("cpio entry %q escapes extraction directory", header.Name)
		}

		switch {
		case header.Mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %q: %w", target, err)
			}
		case header.Mode.IsRegular():
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create parent directory for %q: %w", target, err)
			}
			if err := writeCpioFile(target, cr, header.Size); err != nil {
				return err
			}
		default:
			// Symlinks, devices, and other special cpio entry types are not
			// materialized; see the equivalent note in extractTar.
			continue
		}
	}
}

func writeCpioFile(target string, r io.Reader, size int64) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create file %q: %w", target, err)
	}
	defer f.Close()

	if _, err := io.CopyN(f, r, size); err != nil && err != io.EOF {
		return fmt.Errorf("write file %q: %w", target, err)
	}
	return nil
}
