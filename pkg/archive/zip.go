package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ZipStrategy expands .zip archives using the standard library's
// archive/zip. No third-party zip reader appears anywhere in the retrieved
// example pack, and the standard library implementation is a complete,
// read-only decoder, so there is nothing to gain by adding a dependency for
// this format.
type ZipStrategy struct{}

// Name implements Strategy.Name.
func (ZipStrategy) Name() string { return "zip" }

// CanExpand implements Strategy.CanExpand.
func (ZipStrategy) CanExpand(path string) bool {
	return strings.HasSuffix(path, ".zip")
}

// Expand implements Strategy.Expand.
func (ZipStrategy) Expand(path string, root string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip %q: %w", path, err)
	}
	defer reader.Close()

	dir, err := newExpansionDir(root)
	if err != nil {
		return "", fmt.Errorf("create expansion directory: %w", err)
	}

	for _, file := range reader.File {
		if err := extractZipEntry(dir, file); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

func extractZipEntry(dir string, file *zip.File) error {
	target := filepath.Join(dir, filepath.Clean(file.Name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return fmt.Errorf("zip entry %q escapes extraction directory", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent directory for %q: %w", target, err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %q: %w", file.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create file %q: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write file %q: %w", target, err)
	}
	return nil
}
