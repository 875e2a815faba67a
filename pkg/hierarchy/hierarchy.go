// Package hierarchy implements per-level node type rules.
//
// A rule set is a graph of named rules. Each rule lists, by name, the rules
// allowed as its children; the distinguished [RootRule] lists what may be
// created directly under the tree root. A node's SelectedType holds the
// display name of the rule it was created with.
//
// When rules are configured, creating a node picks the first allowed child
// type of its parent and fails with FORBIDDEN_ADD when there is none. A nil
// *Rules means no rules: everything is allowed and nodes stay untyped.
//
// Rule sets can be built in Go with [New] or decoded from TOML:
//
//	[rules.ROOT]
//	children = ["DEPT"]
//
//	[rules.DEPT]
//	display_name = "Department"
//	background_color = "#1e88e5"
//	color = "#ffffff"
//	children = ["TEAM"]
//
//	[rules.TEAM]
//	display_name = "Team"
package hierarchy

import (
	"io"
	"maps"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// RootRule names the rule consulted for children of the tree root.
const RootRule = "ROOT"

// Data keys written by [Rules.ApplyDefaults].
const (
	KeyBackgroundColor = "background-color"
	KeyColor           = "color"
)

// Rule is one node type.
type Rule struct {
	// Name is the rule's key in the rule set.
	Name string `toml:"-" json:"name"`
	// DisplayName is stored in a node's SelectedType. Defaults to Name.
	DisplayName     string   `toml:"display_name" json:"display_name"`
	Color           string   `toml:"color" json:"color,omitempty"`
	BackgroundColor string   `toml:"background_color" json:"background_color,omitempty"`
	Children        []string `toml:"children" json:"children"`
}

// Rules is a validated rule graph. The zero value is not usable; a nil
// *Rules disables type checking.
type Rules struct {
	rules     map[string]*Rule
	byDisplay map[string]*Rule
}

// New builds a rule set. Keys of defs are rule names. It fails with
// INVALID_CONFIG when ROOT is missing, a child references an undefined
// rule, or two rules share a display name.
func New(defs map[string]Rule) (*Rules, error) {
	if _, ok := defs[RootRule]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "hierarchy rules must define %s", RootRule)
	}
	r := &Rules{
		rules:     make(map[string]*Rule, len(defs)),
		byDisplay: make(map[string]*Rule, len(defs)),
	}
	for _, name := range slices.Sorted(maps.Keys(defs)) {
		rule := defs[name]
		rule.Name = name
		if rule.DisplayName == "" {
			rule.DisplayName = name
		}
		rule.Children = slices.Clone(rule.Children)
		if prev, dup := r.byDisplay[rule.DisplayName]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"rules %s and %s share display name %q", prev.Name, name, rule.DisplayName)
		}
		r.rules[name] = &rule
		r.byDisplay[rule.DisplayName] = &rule
	}
	for _, rule := range r.rules {
		for _, child := range rule.Children {
			if _, ok := r.rules[child]; !ok {
				return nil, errors.New(errors.ErrCodeInvalidConfig,
					"rule %s references undefined child %q", rule.Name, child)
			}
		}
	}
	return r, nil
}

// File is the TOML document shape accepted by [LoadTOML].
type File struct {
	Rules map[string]Rule `toml:"rules"`
}

// LoadTOML decodes a rule set from TOML. A document without a [rules]
// table yields a nil *Rules and no error.
func LoadTOML(r io.Reader) (*Rules, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode hierarchy rules")
	}
	if len(f.Rules) == 0 {
		return nil, nil
	}
	return New(f.Rules)
}

// Rule returns the rule with the given name.
func (r *Rules) Rule(name string) (*Rule, bool) {
	if r == nil {
		return nil, false
	}
	rule, ok := r.rules[name]
	return rule, ok
}

// Type returns the rule whose display name is display.
func (r *Rules) Type(display string) (*Rule, bool) {
	if r == nil {
		return nil, false
	}
	rule, ok := r.byDisplay[display]
	return rule, ok
}

// Names returns every rule name in sorted order.
func (r *Rules) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.rules))
}

// ruleFor resolves the rule governing parent's children: ROOT for the tree
// root, otherwise the rule whose display name matches parent.SelectedType,
// falling back to ROOT.
func (r *Rules) ruleFor(parent *mind.Node) *Rule {
	if parent == nil || parent.IsRoot() {
		return r.rules[RootRule]
	}
	if rule, ok := r.byDisplay[parent.SelectedType]; ok {
		return rule
	}
	return r.rules[RootRule]
}

// AllowedChildTypes returns the rules allowed under parent, in configured
// order. It returns nil when r is nil.
func (r *Rules) AllowedChildTypes(parent *mind.Node) []*Rule {
	if r == nil {
		return nil
	}
	names := r.ruleFor(parent).Children
	out := make([]*Rule, len(names))
	for i, name := range names {
		out[i] = r.rules[name]
	}
	return out
}

// Choose picks the rule for a node created under parent. With requested
// empty the first allowed type is used; otherwise requested must be the
// display name of an allowed type. Choose fails with FORBIDDEN_ADD when no
// type applies and returns (nil, nil) when r is nil.
func (r *Rules) Choose(parent *mind.Node, requested string) (*Rule, error) {
	if r == nil {
		return nil, nil
	}
	allowed := r.AllowedChildTypes(parent)
	if len(allowed) == 0 {
		return nil, errors.New(errors.ErrCodeForbiddenAdd, "no child type allowed under %q", parent.ID())
	}
	if requested == "" {
		return allowed[0], nil
	}
	for _, rule := range allowed {
		if rule.DisplayName == requested {
			return rule, nil
		}
	}
	return nil, errors.New(errors.ErrCodeForbiddenAdd, "type %q not allowed under %q", requested, parent.ID())
}

// ApplyDefaults merges the rule's colors into data without overwriting
// existing values. data must be non-nil.
func ApplyDefaults(rule *Rule, data map[string]any) {
	if rule == nil {
		return
	}
	if _, ok := data[KeyBackgroundColor]; !ok && rule.BackgroundColor != "" {
		data[KeyBackgroundColor] = rule.BackgroundColor
	}
	if _, ok := data[KeyColor]; !ok && rule.Color != "" {
		data[KeyColor] = rule.Color
	}
}

// EditTypes returns the types n may be retyped to: its current type followed
// by the types allowed under its parent, without duplicates or empty names.
// It returns nil when r is nil.
func (r *Rules) EditTypes(n *mind.Node) []string {
	if r == nil {
		return nil
	}
	var types []string
	if n.SelectedType != "" {
		types = append(types, n.SelectedType)
	}
	for _, rule := range r.AllowedChildTypes(n.Parent()) {
		if !slices.Contains(types, rule.DisplayName) {
			types = append(types, rule.DisplayName)
		}
	}
	return types
}
