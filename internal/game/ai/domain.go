// Package ai implements enemy behaviors: the built-in Aggressive and Tactical
// controllers and a Hierarchical Task Network (HTN) planner.
//
// HTN planning decomposes abstract tasks into primitive operators via ordered
// methods. Method preconditions are evaluated as Lua hooks; operators map to
// combat actions.
package ai

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
)

// RootTask is the task every plan starts from.
const RootTask = "behave"

// Operator actions.
const (
	OpAttack = "attack"
	OpSkill  = "skill"
	OpDefend = "defend"
	OpMove   = "move"
	OpFlee   = "flee"
	OpPass   = "pass"
)

var validActions = map[string]struct{}{
	OpAttack: {}, OpSkill: {}, OpDefend: {}, OpMove: {}, OpFlee: {}, OpPass: {},
}

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
// Precondition: Precondition is a Lua function name; empty means always applicable.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"`
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive action that maps directly to a combat action.
//
// Precondition: ID and Action must be non-empty; Skill is required for
// "skill" and Position for "move".
type Operator struct {
	ID       string `yaml:"id"`
	Action   string `yaml:"action"`
	Target   string `yaml:"target"` // "nearest_enemy", "weakest_enemy", "random_enemy", "weakest_ally", "self", or a name
	Skill    string `yaml:"skill"`
	Position string `yaml:"position"`
}

// Domain holds the full HTN domain loaded from a YAML file.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators"`
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees non-empty ID, at least one Task, valid
// operator actions, no duplicate IDs within any slice, and resolvable
// cross-references.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: ID must not be empty")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("ai.Domain %q: must have at least one task", d.ID)
	}
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("ai.Domain %q: task has empty ID", d.ID)
		}
	}
	for _, m := range d.Methods {
		if m.TaskID == "" || m.ID == "" {
			return fmt.Errorf("ai.Domain %q: method missing TaskID or ID", d.ID)
		}
		if len(m.Subtasks) == 0 {
			return fmt.Errorf("ai.Domain %q method %q: subtasks must not be empty", d.ID, m.ID)
		}
	}
	for _, op := range d.Operators {
		if err := op.validate(); err != nil {
			return fmt.Errorf("ai.Domain %q: %w", d.ID, err)
		}
	}

	taskIDs, err := uniqueIDs(d.ID, "task", d.Tasks, func(t *Task) string { return t.ID })
	if err != nil {
		return err
	}
	if _, err := uniqueIDs(d.ID, "method", d.Methods, func(m *Method) string { return m.ID }); err != nil {
		return err
	}
	operatorIDs, err := uniqueIDs(d.ID, "operator", d.Operators, func(o *Operator) string { return o.ID })
	if err != nil {
		return err
	}

	for _, m := range d.Methods {
		if _, ok := taskIDs[m.TaskID]; !ok {
			return fmt.Errorf("ai.Domain %q method %q: TaskID %q references unknown task", d.ID, m.ID, m.TaskID)
		}
		for _, sub := range m.Subtasks {
			_, isTask := taskIDs[sub]
			_, isOp := operatorIDs[sub]
			if !isTask && !isOp {
				return fmt.Errorf("ai.Domain %q method %q: subtask %q is neither a task nor an operator", d.ID, m.ID, sub)
			}
		}
	}
	return nil
}

func (op *Operator) validate() error {
	if op.ID == "" || op.Action == "" {
		return errors.New("operator missing ID or Action")
	}
	if _, ok := validActions[op.Action]; !ok {
		return fmt.Errorf("operator %q: unknown action %q", op.ID, op.Action)
	}
	switch op.Action {
	case OpSkill:
		if op.Skill == "" {
			return fmt.Errorf("operator %q: skill action requires a skill", op.ID)
		}
	case OpMove:
		if _, err := actor.ParsePosition(op.Position); err != nil || op.Position == "" {
			return fmt.Errorf("operator %q: move action requires position FRONT or BACK", op.ID)
		}
	}
	return nil
}

func uniqueIDs[T any](domain, what string, items []T, id func(T) string) (map[string]struct{}, error) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := id(it)
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("ai.Domain %q: duplicate %s ID %q", domain, what, k)
		}
		seen[k] = struct{}{}
	}
	return seen, nil
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomains reads all *.yaml files from dir and returns parsed Domains.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: reading %q: %w", dir, err)
	}
	var domains []*Domain
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: reading %s: %w", e.Name(), err)
		}
		var f yamlDomainFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: parsing %s: %w", e.Name(), err)
		}
		if f.Domain == nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s missing top-level 'domain' key", e.Name())
		}
		if err := f.Domain.Validate(); err != nil {
			return nil, err
		}
		domains = append(domains, f.Domain)
	}
	return domains, nil
}
