package status

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Def is the static definition of a status effect, loaded from YAML.
type Def struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Kind        string  `yaml:"kind"` // burn | bleed | freeze | stun | root | guard
	Rate        float64 `yaml:"rate"` // damage-over-time fraction of max HP; 0 = kind default
}

// Effect builds the runtime effect described by d.
//
// Postcondition: returns an error if Kind is unknown or Rate is negative.
func (d *Def) Effect() (Effect, error) {
	kind, err := ParseKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("status %q: %w", d.ID, err)
	}
	if d.Rate < 0 {
		return nil, fmt.Errorf("status %q: rate must be >= 0", d.ID)
	}
	return New(kind, d.Rate)
}

// Registry holds all known status definitions keyed by ID together with the
// effect built from each.
type Registry struct {
	defs    map[string]*Def
	effects map[string]Effect
}

// NewRegistry creates a Registry preloaded with one definition per kind,
// keyed by the kind name ("burn", "guard", ...).
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]*Def), effects: make(map[string]Effect)}
	for k := KindBurn; k <= KindGuard; k++ {
		_ = r.Register(&Def{ID: k.String(), Name: k.String(), Kind: k.String()})
	}
	return r
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) error {
	if def.ID == "" {
		return fmt.Errorf("status definition: id must not be empty")
	}
	eff, err := def.Effect()
	if err != nil {
		return err
	}
	r.defs[def.ID] = def
	r.effects[def.ID] = eff
	return nil
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Effect returns the effect registered under id, or (nil, false).
func (r *Registry) Effect(id string) (Effect, bool) {
	e, ok := r.effects[id]
	return e, ok
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def, and
// registers it on top of the built-in per-kind definitions.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading status dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("registering %q: %w", path, err)
		}
	}
	return reg, nil
}
