package configmanager

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Entry is one ordered (name, value) pair of a schema declaration. Use
// []Entry when declaration order matters; plain maps are iterated in
// sorted key order because Go maps carry no order.
type Entry struct {
	Name  string
	Value any
}

// Declare builds sections and items from a schema and merges them into the
// section. Accepted schemas:
//
//   - map[string]any: nested maps become subsections, plain values become
//     items with that default, and maps whose keys start with "@" are item
//     descriptors (meta keys @default, @type, @required, @envvar);
//   - []Entry: like a map, with explicit ordering;
//   - []string: bare names declaring string items with no default;
//   - *Item, ItemSpec, *Section values anywhere a value is expected.
//
// Declaration is all-or-nothing: the schema is staged and validated before
// the tree is touched. Redeclaring an existing item with an identical
// schema is a no-op; a differing redeclaration is an error. Redeclaring a
// section with a mapping merges additively into it.
func (s *Section) Declare(schema any) error {
	staged := NewSection()

	if names, ok := schema.([]string); ok {
		// A bare name list declares string-only items with no defaults.
		// Legal, but usually a schema smell: such items resolve to nothing.
		for _, name := range names {
			item, err := NewItem(ItemSpec{Name: name})
			if err != nil {
				return err
			}
			if err := staged.AddItem(name, item); err != nil {
				return err
			}
		}
	} else {
		node, err := parseSchemaNode(schema)
		if err != nil {
			return err
		}
		sec, isSection := node.(*Section)
		if !isSection {
			return fmt.Errorf("%w: root schema must be a mapping, []Entry or []string, got %T", ErrDeclaration, schema)
		}
		staged = sec
	}

	if err := s.checkMerge(staged); err != nil {
		return err
	}
	s.applyMerge(staged)
	return nil
}

// MustDeclare is like Declare but panics on error.
func (s *Section) MustDeclare(schema any) {
	if err := s.Declare(schema); err != nil {
		panic(err)
	}
}

// checkMerge validates that staged can be merged without conflicts. Nothing
// is mutated.
func (s *Section) checkMerge(staged *Section) error {
	for _, name := range staged.names {
		stagedNode := staged.nodes[name]
		existing, exists := s.nodes[name]
		if !exists {
			if !isValidKeySegment(name) {
				return fmt.Errorf("%w: invalid name %q", ErrDeclaration, name)
			}
			continue
		}

		existingSec, existingIsSec := existing.(*Section)
		stagedSec, stagedIsSec := stagedNode.(*Section)
		if existingIsSec != stagedIsSec {
			return fmt.Errorf("%w: %q redeclared as a different kind in section %q",
				ErrDeclaration, name, s.pathLabel())
		}
		if existingIsSec {
			if err := existingSec.checkMerge(stagedSec); err != nil {
				return err
			}
			continue
		}
		if !existing.(*Item).equivalent(stagedNode.(*Item)) {
			return fmt.Errorf("%w: item %q redeclared with a different schema in section %q",
				ErrDeclaration, name, s.pathLabel())
		}
	}
	return nil
}

// applyMerge commits a staged schema validated by checkMerge.
func (s *Section) applyMerge(staged *Section) {
	for _, name := range staged.names {
		stagedNode := staged.nodes[name]
		if existing, exists := s.nodes[name]; exists {
			if existingSec, isSec := existing.(*Section); isSec {
				existingSec.applyMerge(stagedNode.(*Section))
			}
			// Identical item redeclaration: no-op.
			continue
		}

		switch node := stagedNode.(type) {
		case *Item:
			node.section = nil
			_ = s.AddItem(name, node) // validated by checkMerge
		case *Section:
			node.parent = nil
			_ = s.AddSection(name, node)
		}
	}
}

func parseSchemaNode(value any) (Node, error) {
	switch v := value.(type) {
	case *Item:
		if v.section != nil {
			return nil, fmt.Errorf("%w: item %q already belongs to a section", ErrDeclaration, v.pathLabel())
		}
		return v, nil
	case *Section:
		if v.parent != nil {
			return nil, fmt.Errorf("%w: section %q already belongs to a section", ErrDeclaration, v.pathLabel())
		}
		return v, nil
	case ItemSpec:
		return NewItem(v)
	case map[string]any:
		return parseSchemaMap(v)
	case []Entry:
		sec := NewSection()
		for _, entry := range v {
			if err := attachSchemaChild(sec, entry.Name, entry.Value); err != nil {
				return nil, err
			}
		}
		return sec, nil
	default:
		// A plain value declares an item with that default.
		return NewItem(ItemSpec{Default: value})
	}
}

func parseSchemaMap(m map[string]any) (Node, error) {
	meta := make(map[string]any)
	plainKeys := make([]string, 0, len(m))
	for key, value := range m {
		switch {
		case strings.HasPrefix(key, "@"):
			meta[key[1:]] = value
		case strings.HasPrefix(key, "_"):
			// Private names are ignored, as in module-based declarations.
		default:
			plainKeys = append(plainKeys, key)
		}
	}

	if len(meta) > 0 {
		if len(plainKeys) > 0 {
			return nil, fmt.Errorf("%w: mapping mixes meta keys with plain keys", ErrDeclaration)
		}
		return itemFromMeta(meta)
	}

	sort.Strings(plainKeys)
	sec := NewSection()
	for _, key := range plainKeys {
		if err := attachSchemaChild(sec, key, m[key]); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func attachSchemaChild(sec *Section, name string, value any) error {
	node, err := parseSchemaNode(value)
	if err != nil {
		return err
	}
	switch n := node.(type) {
	case *Item:
		return sec.AddItem(name, n)
	case *Section:
		return sec.AddSection(name, n)
	}
	return fmt.Errorf("%w: unsupported schema node %T", ErrDeclaration, node)
}

func itemFromMeta(meta map[string]any) (*Item, error) {
	spec := ItemSpec{}
	for key, value := range meta {
		switch key {
		case "default":
			spec.Default = value
		case "type":
			tag, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: @type must be a string, got %T", ErrDeclaration, value)
			}
			spec.Type = tag
		case "required":
			required, err := toBool(value)
			if err != nil {
				return nil, fmt.Errorf("%w: @required: %v", ErrDeclaration, err)
			}
			spec.Required = required
		case "envvar":
			spec.Envvar = value
		default:
			return nil, fmt.Errorf("%w: unknown meta key %q", ErrDeclaration, "@"+key)
		}
	}
	return NewItem(spec)
}

// DeclareStruct declares sections and items from a struct carrying default
// values, using `toml` field tags for names. Nested structs become
// subsections; struct field order is the declaration order. A non-empty
// dotted prefix nests the whole struct under that path.
func (s *Section) DeclareStruct(prefix string, defaults any) error {
	v := reflect.ValueOf(defaults)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("%w: DeclareStruct requires a non-nil struct or struct pointer", ErrDeclaration)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("%w: DeclareStruct requires a struct, got %T", ErrDeclaration, defaults)
	}

	staged := NewSection()
	target := staged
	for _, segment := range splitPath([]string{prefix}) {
		sub := NewSection()
		if err := target.AddSection(segment, sub); err != nil {
			return err
		}
		target = sub
	}

	if err := declareStructFields(target, v); err != nil {
		return err
	}

	if err := s.checkMerge(staged); err != nil {
		return err
	}
	s.applyMerge(staged)
	return nil
}

func declareStructFields(sec *Section, v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("toml")
		if tag == "-" {
			continue
		}

		name := field.Name
		if tag != "" {
			if tagName := strings.Split(tag, ",")[0]; tagName != "" {
				name = tagName
			}
		}

		isStruct := fieldValue.Kind() == reflect.Struct
		isPtrToStruct := fieldValue.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct

		if isStruct || isPtrToStruct {
			nested := fieldValue
			if isPtrToStruct {
				if fieldValue.IsNil() {
					continue
				}
				nested = fieldValue.Elem()
			}
			sub := NewSection()
			if err := sec.AddSection(name, sub); err != nil {
				return err
			}
			if err := declareStructFields(sub, nested); err != nil {
				return err
			}
			continue
		}

		item, err := NewItem(ItemSpec{Name: name, Default: fieldValue.Interface()})
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		if err := sec.AddItem(name, item); err != nil {
			return err
		}
	}
	return nil
}
