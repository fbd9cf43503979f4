package actor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Template defines a reusable actor archetype loaded from YAML.
type Template struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Class    string      `yaml:"class"`
	Kind     string      `yaml:"kind"`
	Position string      `yaml:"position"`
	Behavior string      `yaml:"behavior"` // AI controller name; empty = aggressive
	Stats    stats.Stats `yaml:"stats"`
	Skills   []string    `yaml:"skills"`
	// Items are carried in the inventory; Equipment is worn at creation.
	Items       []string `yaml:"items"`
	Equipment   []string `yaml:"equipment"`
	Weaknesses  []string `yaml:"weaknesses"`
	Resistances []string `yaml:"resistances"`
	Immunities  []string `yaml:"immunities"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, max_hp >= 1, pools
// and attributes are non-negative, and every enum and element name parses.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("actor template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("actor template %q: name must not be empty", t.ID)
	}
	if t.Stats.MaxHP < 1 {
		return fmt.Errorf("actor template %q: max_hp must be >= 1", t.ID)
	}
	s := t.Stats
	if s.MaxMP < 0 || s.MaxSP < 0 || s.Strength < 0 || s.Intellect < 0 || s.Armor < 0 || s.Speed < 0 {
		return fmt.Errorf("actor template %q: pools and attributes must be >= 0", t.ID)
	}
	if s.DefensePercent < 0 || s.DefensePercent > 100 {
		return fmt.Errorf("actor template %q: defense_percent must be in [0,100]", t.ID)
	}
	if s.CritChance < 0 || s.CritChance > 1 {
		return fmt.Errorf("actor template %q: crit_chance must be in [0,1]", t.ID)
	}
	if _, err := ParseKind(t.Kind); err != nil {
		return fmt.Errorf("actor template %q: %w", t.ID, err)
	}
	if _, err := ParsePosition(t.Position); err != nil {
		return fmt.Errorf("actor template %q: %w", t.ID, err)
	}
	for _, names := range [][]string{t.Weaknesses, t.Resistances, t.Immunities} {
		if _, err := skill.ParseElementSet(names); err != nil {
			return fmt.Errorf("actor template %q: %w", t.ID, err)
		}
	}
	return nil
}

// Catalog bundles the registries a template is built against.
type Catalog struct {
	Skills *skill.Registry
	Items  *inventory.Registry
}

// Build creates a live Actor on team from the template.
//
// Precondition: t has passed Validate.
// Postcondition: HP/MP/SP default to their maxima when zero in the template;
// returns an error if a referenced skill or item is not in cat, or if an
// equipment reference names a non-equipment item.
func (t *Template) Build(team Team, cat Catalog) (*Actor, error) {
	kind, _ := ParseKind(t.Kind)
	pos, _ := ParsePosition(t.Position)

	st := t.Stats
	if st.HP == 0 {
		st.HP = st.MaxHP
	}
	if st.MP == 0 {
		st.MP = st.MaxMP
	}
	if st.SP == 0 {
		st.SP = st.MaxSP
	}

	a := New(t.Name, t.Class, kind, team, st)
	a.Position = pos
	a.Behavior = t.Behavior
	a.Weaknesses, _ = skill.ParseElementSet(t.Weaknesses)
	a.Resistances, _ = skill.ParseElementSet(t.Resistances)
	a.Immunities, _ = skill.ParseElementSet(t.Immunities)

	for _, id := range t.Skills {
		s, ok := cat.Skills.Skill(id)
		if !ok {
			return nil, fmt.Errorf("actor template %q: unknown skill %q", t.ID, id)
		}
		a.Learn(s)
	}
	for _, id := range t.Items {
		it, ok := cat.Items.Item(id)
		if !ok {
			return nil, fmt.Errorf("actor template %q: unknown item %q", t.ID, id)
		}
		a.Inventory.Add(it)
	}
	for _, id := range t.Equipment {
		it, ok := cat.Items.Item(id)
		if !ok {
			return nil, fmt.Errorf("actor template %q: unknown equipment %q", t.ID, id)
		}
		eq, ok := it.(*inventory.Equipment)
		if !ok {
			return nil, fmt.Errorf("actor template %q: item %q is not equipment", t.ID, id)
		}
		a.Equip(eq)
	}
	return a, nil
}

// LoadTemplateFromBytes parses a single actor template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the templates keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse, validate
// or duplicate-ID failure.
func LoadTemplates(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading actor dir %q: %w", dir, err)
	}

	templates := make(map[string]*Template)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := templates[tmpl.ID]; dup {
			return nil, fmt.Errorf("loading %q: duplicate template id %q", path, tmpl.ID)
		}
		templates[tmpl.ID] = tmpl
	}
	return templates, nil
}
