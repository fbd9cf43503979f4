// Package encounter loads battle setups and builds their rosters from actor
// templates.
package encounter

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
)

// Slot places count actors built from one template on a side.
type Slot struct {
	Template string `yaml:"template"`
	// Name overrides the template name; copies get " A", " B", ... suffixes.
	Name string `yaml:"name"`
	// Position overrides the template lane when set.
	Position string `yaml:"position"`
	Count    int    `yaml:"count"`
}

// Encounter describes one battle: who fights on each side.
type Encounter struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Heroes      []Slot `yaml:"heroes"`
	Enemies     []Slot `yaml:"enemies"`
}

type yamlEncounterFile struct {
	Encounter *Encounter `yaml:"encounter"`
}

// Validate checks the encounter without resolving templates.
//
// Postcondition: nil guarantees a non-empty ID, at least one slot per side,
// non-empty template IDs, counts >= 0 and parsable positions.
func (e *Encounter) Validate() error {
	if e.ID == "" {
		return errors.New("encounter: id must not be empty")
	}
	if len(e.Heroes) == 0 || len(e.Enemies) == 0 {
		return fmt.Errorf("encounter %q: both heroes and enemies must be listed", e.ID)
	}
	for _, side := range [][]Slot{e.Heroes, e.Enemies} {
		for i, s := range side {
			if s.Template == "" {
				return fmt.Errorf("encounter %q slot %d: template must not be empty", e.ID, i)
			}
			if s.Count < 0 {
				return fmt.Errorf("encounter %q slot %d: count must be >= 0", e.ID, i)
			}
			if _, err := actor.ParsePosition(s.Position); err != nil {
				return fmt.Errorf("encounter %q slot %d: %w", e.ID, i, err)
			}
		}
	}
	return nil
}

// Load reads and validates one encounter file.
//
// Precondition: path names a YAML file with a top-level "encounter" key.
func Load(path string) (*Encounter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("encounter.Load: reading %s: %w", path, err)
	}
	var f yamlEncounterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("encounter.Load: parsing %s: %w", path, err)
	}
	if f.Encounter == nil {
		return nil, fmt.Errorf("encounter.Load: %s missing top-level 'encounter' key", path)
	}
	if err := f.Encounter.Validate(); err != nil {
		return nil, fmt.Errorf("encounter.Load: %s: %w", path, err)
	}
	return f.Encounter, nil
}

// Build creates fresh actors for both sides.
//
// Precondition: templates holds every template the encounter references.
// Postcondition: actors are returned in slot order; each has a new ID.
func (e *Encounter) Build(templates map[string]*actor.Template, cat actor.Catalog) (heroes, enemies []*actor.Actor, err error) {
	heroes, err = buildSide(e.Heroes, actor.TeamHero, templates, cat)
	if err != nil {
		return nil, nil, fmt.Errorf("encounter %q heroes: %w", e.ID, err)
	}
	enemies, err = buildSide(e.Enemies, actor.TeamEnemy, templates, cat)
	if err != nil {
		return nil, nil, fmt.Errorf("encounter %q enemies: %w", e.ID, err)
	}
	return heroes, enemies, nil
}

func buildSide(slots []Slot, team actor.Team, templates map[string]*actor.Template, cat actor.Catalog) ([]*actor.Actor, error) {
	var out []*actor.Actor
	for _, s := range slots {
		tmpl, ok := templates[s.Template]
		if !ok {
			return nil, fmt.Errorf("unknown template %q", s.Template)
		}
		n := max(1, s.Count)
		for i := 0; i < n; i++ {
			a, err := tmpl.Build(team, cat)
			if err != nil {
				return nil, err
			}
			if s.Name != "" {
				a.Name = s.Name
			}
			if n > 1 {
				a.Name = fmt.Sprintf("%s %c", a.Name, 'A'+i)
			}
			if s.Position != "" {
				a.Position, _ = actor.ParsePosition(s.Position)
			}
			out = append(out, a)
		}
	}
	return out, nil
}
