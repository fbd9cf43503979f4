package skill

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// Def is the YAML form of a Skill.
type Def struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Description    string  `yaml:"description"`
	Element        string  `yaml:"element"`
	BasePower      int     `yaml:"base_power"`
	ScaleStrength  float64 `yaml:"scale_strength"`
	ScaleIntellect float64 `yaml:"scale_intellect"`
	MPCost         int     `yaml:"mp_cost"`
	SPCost         int     `yaml:"sp_cost"`
	Target         string  `yaml:"target"`
	IgnoreLine     bool    `yaml:"ignore_line"`
	PierceArmor    bool    `yaml:"pierce_armor"`
	Status         string  `yaml:"status"`
	StatusDuration int     `yaml:"status_duration"`
}

// Validate checks that the Def satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, err := ParseElement(d.Element); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseTargetShape(d.Target); err != nil {
		errs = append(errs, err)
	}
	if d.MPCost < 0 || d.SPCost < 0 {
		errs = append(errs, errors.New("costs must be >= 0"))
	}
	if d.StatusDuration < 0 {
		errs = append(errs, errors.New("status_duration must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("skill validation failed: %v", errs)
	}
	return nil
}

// Build converts d into a Skill, resolving the attached status against
// statuses. An unknown status reference yields a skill with no status and a
// warning, so bad content never aborts a battle.
//
// Precondition: d.Validate() == nil; statuses and logger must be non-nil.
func (d *Def) Build(statuses *status.Registry, logger *zap.Logger) *Skill {
	elem, _ := ParseElement(d.Element)
	shape, _ := ParseTargetShape(d.Target)
	s := &Skill{
		ID:             d.ID,
		Name:           d.Name,
		Element:        elem,
		BasePower:      d.BasePower,
		ScaleStrength:  d.ScaleStrength,
		ScaleIntellect: d.ScaleIntellect,
		MPCost:         d.MPCost,
		SPCost:         d.SPCost,
		Target:         shape,
		IgnoreLine:     d.IgnoreLine,
		PierceArmor:    d.PierceArmor,
	}
	if d.Status == "" {
		return s
	}
	eff, ok := statuses.Effect(d.Status)
	if !ok || d.StatusDuration <= 0 {
		logger.Warn("skill status ignored",
			zap.String("skill", d.ID),
			zap.String("status", d.Status),
			zap.Int("duration", d.StatusDuration),
		)
		return s
	}
	s.Status = eff
	s.StatusDuration = d.StatusDuration
	return s
}

// Registry indexes skills by ID.
type Registry struct {
	skills map[string]*Skill
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]*Skill)}
}

// Register stores s, overwriting any skill with the same ID.
func (r *Registry) Register(s *Skill) {
	r.skills[s.ID] = s
}

// Skill returns the skill with id, or (nil, false).
func (r *Registry) Skill(id string) (*Skill, bool) {
	s, ok := r.skills[id]
	return s, ok
}

// IDs returns all registered skill IDs in lexical order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.skills))
	for id := range r.skills {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LoadDirectory reads all *.yaml and *.yml files in dir, validates each Def
// and builds the resulting skills.
//
// Precondition: dir is a readable directory; statuses and logger are non-nil.
// Postcondition: returns a populated Registry or the first encountered error.
func LoadDirectory(dir string, statuses *status.Registry, logger *zap.Logger) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDirectory: cannot read directory %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadDirectory: cannot read file %q: %w", path, err)
		}
		var d Def
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadDirectory: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadDirectory: invalid skill in %q: %w", path, err)
		}
		reg.Register(d.Build(statuses, logger))
	}
	return reg, nil
}
