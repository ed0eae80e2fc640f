package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// maxManifestDepth bounds include recursion so a cycle that somehow slips
// past the visited-path check still terminates.
const maxManifestDepth = 32

// manifest is the on-disk TOML shape of a bundle file.
type manifest struct {
	Fragments []string `toml:"fragments"`
	Includes  []string `toml:"includes"`
}

// LoadBundle resolves a manifest file into the concatenated bytes of every DSL
// fragment it names, in order, recursively following `includes` and
// rejecting circular references. Paths in a manifest are resolved relative
// to the directory containing that manifest.
func LoadBundle(path string) ([]byte, error) {
	visited := make(map[string]bool)
	var buf bytes.Buffer
	if err := loadManifest(path, visited, 0, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func loadManifest(path string, visited map[string]bool, depth int, out *bytes.Buffer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("ways: resolving manifest path %q: %w", path, err)
	}
	if visited[abs] {
		return fmt.Errorf("ways: circular manifest reference at %q", path)
	}
	if depth > maxManifestDepth {
		return fmt.Errorf("ways: manifest include depth exceeds %d at %q", maxManifestDepth, path)
	}
	visited[abs] = true

	var m manifest
	if _, err := toml.DecodeFile(abs, &m); err != nil {
		return fmt.Errorf("ways: parsing manifest %q: %w", path, err)
	}

	dir := filepath.Dir(abs)

	for _, inc := range m.Includes {
		incPath := inc
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(dir, incPath)
		}
		// Each include gets its own copy of the visited set along its
		// ancestor chain, so the same manifest reachable through two
		// independent include paths is not mistaken for a cycle -- only
		// a manifest that is its own ancestor is rejected.
		child := make(map[string]bool, len(visited))
		for k := range visited {
			child[k] = true
		}
		if err := loadManifest(incPath, child, depth+1, out); err != nil {
			return err
		}
	}

	for _, frag := range m.Fragments {
		fragPath := frag
		if !filepath.IsAbs(fragPath) {
			fragPath = filepath.Join(dir, fragPath)
		}
		b, err := os.ReadFile(fragPath)
		if err != nil {
			return fmt.Errorf("ways: reading fragment %q: %w", frag, err)
		}
		out.Write(b)
		out.WriteByte('\n')
	}

	return nil
}
