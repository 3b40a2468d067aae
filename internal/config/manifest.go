package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// ErrInvalidManifest wraps every validation failure.
var ErrInvalidManifest = errors.New("invalid manifest")

// Job is one IPR computation.
type Job struct {
	Name     string   `yaml:"name" json:"name"`
	Procar   string   `yaml:"procar" json:"procar"`
	Eigenval string   `yaml:"eigenval" json:"eigenval"`
	Output   string   `yaml:"output" json:"output"`
	Spin     string   `yaml:"spin" json:"spin"`
	EFermi   *float64 `yaml:"efermi,omitempty" json:"efermi,omitempty"`
}

// Manifest is a list of jobs.
type Manifest struct {
	Jobs []Job `yaml:"jobs" json:"jobs"`
}

// LoadManifest reads, defaults, validates and resolves a manifest file.
// Relative paths inside the manifest are resolved against its directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.resolve(filepath.Dir(path))
	if err := m.checkOutputs(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes and validates manifest YAML. Paths are left as
// written.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidManifest, err)
	}

	m.applyDefaults()
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	for i := range m.Jobs {
		j := &m.Jobs[i]
		j.Name = norm.NFC.String(strings.TrimSpace(j.Name))
		if j.Spin == "" {
			j.Spin = "up"
		}
		j.Spin = strings.ToLower(j.Spin)
		if j.Output == "" && j.Name != "" {
			j.Output = j.Name + ".csv"
		}
	}
}

func (m *Manifest) validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(ctx.Encode(m))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("%w: %s", ErrInvalidManifest, strings.Join(msgs, "; "))
	}

	seen := make(map[string]int, len(m.Jobs))
	for i, j := range m.Jobs {
		if prev, ok := seen[j.Name]; ok {
			return fmt.Errorf("%w: jobs %d and %d share name %q", ErrInvalidManifest, prev, i, j.Name)
		}
		seen[j.Name] = i
	}
	return nil
}

func (m *Manifest) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range m.Jobs {
		j := &m.Jobs[i]
		j.Procar = abs(j.Procar)
		j.Eigenval = abs(j.Eigenval)
		j.Output = abs(j.Output)
	}
}

// checkOutputs rejects jobs that would write the same file once paths are
// resolved.
func (m *Manifest) checkOutputs() error {
	seen := make(map[string]int, len(m.Jobs))
	for i, j := range m.Jobs {
		out := filepath.Clean(j.Output)
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%w: jobs %d and %d share output %q", ErrInvalidManifest, prev, i, out)
		}
		seen[out] = i
	}
	return nil
}
