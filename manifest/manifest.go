// Package manifest handles trampolines.toml provisioning configuration.
//
// The manifest lists every signature family the generator should compile and
// how many slots each gets. It is the only place trampoline supply can be
// changed: the registry never grows at run time.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/revcall/sig"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "trampolines.toml"

// Manifest represents a trampolines.toml file.
type Manifest struct {
	Generator Generator `toml:"generator"`
	Families  []Family  `toml:"family"`

	// Dir is the directory containing the manifest (set at load time).
	Dir string `toml:"-"`
}

// Generator configures the emitted Go file.
type Generator struct {
	Package string `toml:"package"`
	Output  string `toml:"output"`
}

// Family provisions Count trampolines for one signature key.
type Family struct {
	Signature string `toml:"signature"`
	Count     int    `toml:"count"`
}

// Load parses the manifest in dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes and validates manifest contents.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	// Defaults
	if m.Generator.Package == "" {
		m.Generator.Package = "stubs"
	}
	if m.Generator.Output == "" {
		m.Generator.Output = "stubs_gen.go"
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a trampolines.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// ErrEmpty is returned by Validate for a manifest with no families.
var ErrEmpty = errors.New("manifest declares no trampoline families")

// Validate checks that at least one family is declared and every family's
// key parses, is unique, carries no by-value structs and has a positive
// count.
func (m *Manifest) Validate() error {
	var errs []error
	if len(m.Families) == 0 {
		errs = append(errs, ErrEmpty)
	}
	seen := make(map[string]bool, len(m.Families))
	for i, f := range m.Families {
		sh, err := sig.Parse(f.Signature)
		if err != nil {
			errs = append(errs, fmt.Errorf("family %d: %w", i, err))
			continue
		}
		if sh.HasStruct() {
			errs = append(errs, fmt.Errorf("family %d: %s: by-value struct trampolines are not supported", i, f.Signature))
		}
		if seen[f.Signature] {
			errs = append(errs, fmt.Errorf("family %d: duplicate signature %s", i, f.Signature))
		}
		seen[f.Signature] = true
		if f.Count < 1 {
			errs = append(errs, fmt.Errorf("family %d: %s: count must be at least 1, got %d", i, f.Signature, f.Count))
		}
	}
	return errors.Join(errs...)
}

// Total returns the number of trampolines the manifest provisions.
func (m *Manifest) Total() int {
	n := 0
	for _, f := range m.Families {
		n += f.Count
	}
	return n
}

// Family returns the family for a signature key.
func (m *Manifest) Family(signature string) (Family, bool) {
	for _, f := range m.Families {
		if f.Signature == signature {
			return f, true
		}
	}
	return Family{}, false
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.Dir, FileName)
}

// OutputPath returns the absolute path of the generated Go file.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Generator.Output) {
		return m.Generator.Output
	}
	return filepath.Join(m.Dir, m.Generator.Output)
}

// Encode renders the manifest as TOML.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	data, err := m.Encode()
	if err != nil {
		return fmt.Errorf("cannot encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}
