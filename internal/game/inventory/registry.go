package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Kind constants for ItemDef.Kind.
const (
	KindConsumable = "consumable"
	KindEquipment  = "equipment"
)

// ItemDef defines the static properties of an item loaded from YAML.
type ItemDef struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Kind        string      `yaml:"kind"`
	RestoreHP   int         `yaml:"restore_hp"`
	RestoreMP   int         `yaml:"restore_mp"`
	RestoreSP   int         `yaml:"restore_sp"`
	Slot        Slot        `yaml:"slot"`
	Delta       stats.Delta `yaml:"delta"`
	Grants      []string    `yaml:"grants"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	switch d.Kind {
	case KindConsumable:
		if d.RestoreHP < 0 || d.RestoreMP < 0 || d.RestoreSP < 0 {
			errs = append(errs, errors.New("restore amounts must be >= 0"))
		}
	case KindEquipment:
		if _, ok := validSlots[d.Slot]; !ok {
			errs = append(errs, fmt.Errorf("slot %q is not a valid equipment slot", d.Slot))
		}
		if err := d.Delta.Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("Kind must be one of consumable, equipment; got %q", d.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// Registry builds Items by ID. Consumable and Equipment values are shared:
// two potions in one inventory are the same *Consumable.
type Registry struct {
	items map[string]Item
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Item)}
}

// Register stores item under its ID.
func (r *Registry) Register(item Item) {
	r.items[item.ID()] = item
}

// Item returns the item registered under id.
func (r *Registry) Item(id string) (Item, bool) {
	it, ok := r.items[id]
	return it, ok
}

// IDs returns all registered item IDs in lexical order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.items))
	for id := range r.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Build converts d into an Item. Granted skills that are not in skills are
// skipped with a warning.
//
// Precondition: d.Validate() == nil.
func (d *ItemDef) Build(skills *skill.Registry, logger *zap.Logger) Item {
	if d.Kind == KindConsumable {
		return NewConsumable(d.ID, d.Name, d.RestoreHP, d.RestoreMP, d.RestoreSP)
	}
	var grants []*skill.Skill
	for _, id := range d.Grants {
		s, ok := skills.Skill(id)
		if !ok {
			logger.Warn("equipment grants unknown skill",
				zap.String("item", d.ID),
				zap.String("skill", id),
			)
			continue
		}
		grants = append(grants, s)
	}
	return NewEquipment(d.ID, d.Name, d.Slot, d.Delta, grants...)
}

// LoadDirectory reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and registers the built Item.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns a populated Registry or the first encountered error.
func LoadDirectory(dir string, skills *skill.Registry, logger *zap.Logger) (*Registry, error) {
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
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadDirectory: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadDirectory: invalid item in %q: %w", path, err)
		}
		reg.Register(d.Build(skills, logger))
	}
	return reg, nil
}
