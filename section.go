package configmanager

import (
	"fmt"
	"sort"
	"strings"
)

// Section is a composite node: an ordered collection of named items and
// subsections. A parentless section is a configuration tree root.
type Section struct {
	name   string
	parent *Section

	// Insertion order is semantically meaningful; names keeps it while
	// nodes gives O(1) lookup.
	names []string
	nodes map[string]Node

	hooks *Hooks

	// Only set on roots owned by a Config.
	settings *Settings
}

// NewSection creates an empty, free-floating section.
func NewSection() *Section {
	return &Section{nodes: make(map[string]Node)}
}

// Name returns the name under which the section was added to its parent,
// or "" for a root.
func (s *Section) Name() string { return s.name }

// Parent returns the containing section, or nil for a root.
func (s *Section) Parent() *Section { return s.parent }

func (s *Section) IsItem() bool    { return false }
func (s *Section) IsSection() bool { return true }

// Path computes the section's path from the tree root.
func (s *Section) Path() Path { return nodePath(s) }

// Len returns the number of direct children (items and sections), not
// recursive.
func (s *Section) Len() int { return len(s.names) }

// Names returns the direct child names in insertion order.
func (s *Section) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether the path resolves to a node. Does not dispatch the
// not_found hook.
func (s *Section) Has(path ...string) bool {
	_, err := s.lookup(splitPath(path), false)
	return err == nil
}

// Get resolves a path (dotted strings and separate segments are both
// accepted) to the contained node. A miss dispatches the not_found hook; a
// non-nil Node returned by a callback substitutes for the failure,
// otherwise the error wraps ErrNotFound.
func (s *Section) Get(path ...string) (Node, error) {
	return s.lookup(splitPath(path), true)
}

// GetItem resolves a path to an item.
func (s *Section) GetItem(path ...string) (*Item, error) {
	node, err := s.Get(path...)
	if err != nil {
		return nil, err
	}
	item, ok := node.(*Item)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a section, not an item", ErrNotFound, Path(splitPath(path)))
	}
	return item, nil
}

// GetSection resolves a path to a subsection.
func (s *Section) GetSection(path ...string) (*Section, error) {
	node, err := s.Get(path...)
	if err != nil {
		return nil, err
	}
	sub, ok := node.(*Section)
	if !ok {
		return nil, fmt.Errorf("%w: %q is an item, not a section", ErrNotFound, Path(splitPath(path)))
	}
	return sub, nil
}

func (s *Section) lookup(segments []string, withHooks bool) (Node, error) {
	if len(segments) == 0 {
		return s, nil
	}

	current := s
	for idx, segment := range segments {
		node, ok := current.nodes[segment]
		if !ok && withHooks {
			if result := current.dispatch(HookNotFound, &HookContext{Name: segment, Section: current}); result != nil {
				if substitute, isNode := result.(Node); isNode {
					node, ok = substitute, true
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q in section %q", ErrNotFound, segment, current.pathLabel())
		}
		if idx == len(segments)-1 {
			return node, nil
		}
		sub, isSection := node.(*Section)
		if !isSection {
			return nil, fmt.Errorf("%w: %q in section %q is an item, not a section",
				ErrNotFound, segment, current.pathLabel())
		}
		current = sub
	}
	return current, nil
}

// AddItem adds an item to this section under the given name. The name must
// be unique among direct children. Fires item_added_to_section.
func (s *Section) AddItem(name string, item *Item) error {
	if err := s.checkChildName(name); err != nil {
		return err
	}
	if item.section != nil {
		return fmt.Errorf("%w: item %q already belongs to a section", ErrDeclaration, item.pathLabel())
	}

	item.name = name
	item.section = s
	s.put(name, item)

	s.dispatch(HookItemAdded, &HookContext{Name: name, Section: s, Node: item, Item: item})
	return nil
}

// AddSection adds a subsection to this section under the given name. Fires
// section_added_to_section.
func (s *Section) AddSection(name string, sub *Section) error {
	if err := s.checkChildName(name); err != nil {
		return err
	}
	if sub.parent != nil {
		return fmt.Errorf("%w: section %q already belongs to a section", ErrDeclaration, sub.pathLabel())
	}

	sub.name = name
	sub.parent = s
	s.put(name, sub)

	s.dispatch(HookSectionAdded, &HookContext{Name: name, Section: s, Node: sub})
	return nil
}

func (s *Section) checkChildName(name string) error {
	if !isValidKeySegment(name) {
		return fmt.Errorf("%w: invalid name %q", ErrDeclaration, name)
	}
	if _, taken := s.nodes[name]; taken {
		return fmt.Errorf("%w: name %q already declared in section %q", ErrDeclaration, name, s.pathLabel())
	}
	return nil
}

func (s *Section) put(name string, node Node) {
	if s.nodes == nil {
		s.nodes = make(map[string]Node)
	}
	s.names = append(s.names, name)
	s.nodes[name] = node
}

// DumpValues exports the tree of resolved values as a plain nested mapping.
// With withDefaults true (the documented default) items carrying only a
// default are included; with false only explicit custom values are exported
// and sections without any are pruned.
//
// Environment variables are not consulted: the dump reflects the tree.
func (s *Section) DumpValues(withDefaults bool) map[string]any {
	values := make(map[string]any)
	for _, name := range s.names {
		switch node := s.nodes[name].(type) {
		case *Section:
			if sub := node.DumpValues(withDefaults); len(sub) > 0 {
				values[name] = sub
			}
		case *Item:
			if node.hasValue {
				values[name] = node.value
			} else if withDefaults && node.hasDefault {
				values[name] = node.defaultValue
			}
		}
	}
	return values
}

// LoadValues applies a plain nested mapping of values against the matching
// tree shape. Known items are Set (cast failures surface immediately) or,
// with asDefaults, have their default replaced. Unknown names are skipped
// unless asDefaults is true, in which case they are declared: nested
// mappings become subsections and plain values become items with that
// default.
func (s *Section) LoadValues(values map[string]any, asDefaults bool) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		value := values[name]
		node, known := s.nodes[name]
		if !known {
			if !asDefaults {
				continue
			}
			if nested, isMap := value.(map[string]any); isMap {
				sub := NewSection()
				if err := s.AddSection(name, sub); err != nil {
					return err
				}
				if err := sub.LoadValues(nested, asDefaults); err != nil {
					return err
				}
			} else {
				item, err := NewItem(ItemSpec{Name: name, Default: value})
				if err != nil {
					return err
				}
				if err := s.AddItem(name, item); err != nil {
					return err
				}
			}
			continue
		}

		switch n := node.(type) {
		case *Item:
			if asDefaults {
				if err := n.SetDefault(value); err != nil {
					return err
				}
			} else if err := n.Set(value); err != nil {
				return err
			}
		case *Section:
			nested, isMap := value.(map[string]any)
			if !isMap {
				return fmt.Errorf("%w: %q is a section but a %T was supplied", ErrInvalidValue, n.pathLabel(), value)
			}
			if err := n.LoadValues(nested, asDefaults); err != nil {
				return err
			}
		}
	}
	return nil
}

// DumpFlat is DumpValues with dot-joined keys instead of nesting.
func (s *Section) DumpFlat(withDefaults bool) map[string]any {
	return flattenMap(s.DumpValues(withDefaults), "")
}

// LoadFlat is LoadValues for a mapping with dot-joined keys.
func (s *Section) LoadFlat(values map[string]any, asDefaults bool) error {
	nested := make(map[string]any)
	for path, value := range values {
		setNestedValue(nested, path, value)
	}
	return s.LoadValues(nested, asDefaults)
}

// Reset recursively resets every descendant item back to not-set.
func (s *Section) Reset() {
	for _, entry := range s.IterItems(true) {
		entry.Item.Reset()
	}
}

// IsDefault reports whether no descendant item has a custom value set.
func (s *Section) IsDefault() bool {
	for _, entry := range s.IterItems(true) {
		if !entry.Item.IsDefault() {
			return false
		}
	}
	return true
}

// Clone returns a detached deep copy of the section. Hook registrations are
// not copied; the clone starts with an empty registry.
func (s *Section) Clone() *Section {
	clone := NewSection()
	for _, name := range s.names {
		switch node := s.nodes[name].(type) {
		case *Section:
			sub := node.Clone()
			sub.name = name
			sub.parent = clone
			clone.put(name, sub)
		case *Item:
			item := node.clone()
			item.name = name
			item.section = clone
			clone.put(name, item)
		}
	}
	return clone
}

func (s *Section) pathLabel() string {
	p := s.Path()
	if len(p) == 0 {
		return "<root>"
	}
	return p.String()
}

// treeSettings walks to the root for the tree's settings.
func (s *Section) treeSettings() *Settings {
	if s.settings != nil {
		return s.settings
	}
	if s.parent != nil {
		return s.parent.treeSettings()
	}
	return &defaultSettings
}

// splitPath expands path arguments, splitting dotted strings into
// segments.
func splitPath(parts []string) []string {
	var out []string
	for _, part := range parts {
		for _, segment := range strings.Split(part, PathSeparator) {
			if segment != "" {
				out = append(out, segment)
			}
		}
	}
	return out
}
