package archive

import "testing"

func TestDefaultRegistryExtensionMatching(t *testing.T) {
	registry := DefaultRegistry()

	supported := []string{
		"archive.zip",
		"archive.tar",
		"archive.tar.gz",
		"archive.tar.xz",
		"archive.tar.bz2",
		"package.rpm",
		// Suffix matching on the full file name means this also matches,
		// even though it isn't really a tar.gz file. This is intentional:
		// see the open-question note on extension identification.
		"not-a-tar.gz",
	}
	for _, name := range supported {
		if !registry.CanExpand(name) {
			t.Errorf("CanExpand(%q) = false, want true", name)
		}
	}

	unsupported := []string{
		"readme.txt",
		"archive.7z",
		// Case-sensitive suffix matching: this deliberately does not match.
		"ARCHIVE.ZIP",
	}
	for _, name := range unsupported {
		if registry.CanExpand(name) {
			t.Errorf("CanExpand(%q) = true, want false", name)
		}
	}
}

func TestRegistryFallsThroughToDeny(t *testing.T) {
	registry := NewRegistry()
	if registry.CanExpand("anything.zip") {
		t.Error("empty registry (aside from Deny) should never claim a path")
	}
	if _, err := registry.Expand("anything.zip", ""); err != ErrNotSupported {
		t.Errorf("Expand() error = %v, want ErrNotSupported", err)
	}
}

type stubStrategy struct {
	name      string
	claims    bool
	expandDir string
	expandErr error
}

func (s stubStrategy) Name() string          { return s.name }
func (s stubStrategy) CanExpand(string) bool { return s.claims }
func (s stubStrategy) Expand(string, string) (string, error) {
	return s.expandDir, s.expandErr
}

func TestRegistryFallsThroughOnNotSupported(t *testing.T) {
	first := stubStrategy{name: "first", claims: true, expandErr: ErrNotSupported}
	second := stubStrategy{name: "second", claims: true, expandDir: "/tmp/expanded"}
	registry := NewRegistry(first, second)

	dir, err := registry.Expand("anything.zip", "")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if dir != "/tmp/expanded" {
		t.Errorf("Expand() = %q, want %q", dir, "/tmp/expanded")
	}
}
