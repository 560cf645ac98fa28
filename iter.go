package configmanager

// NodeEntry pairs a node with its path relative to the section being
// iterated.
type NodeEntry struct {
	Path Path
	Node Node
}

// ItemEntry pairs an item with its relative path.
type ItemEntry struct {
	Path Path
	Item *Item
}

// SectionEntry pairs a subsection with its relative path.
type SectionEntry struct {
	Path    Path
	Section *Section
}

// IterAll returns every descendant node in depth-first, insertion order. A
// section always precedes its own descendants. With recursive false only
// direct children are returned.
func (s *Section) IterAll(recursive bool) []NodeEntry {
	var out []NodeEntry
	s.walk(nil, recursive, func(path Path, node Node) {
		out = append(out, NodeEntry{Path: path, Node: node})
	})
	return out
}

// IterItems returns descendant items in depth-first, insertion order.
func (s *Section) IterItems(recursive bool) []ItemEntry {
	var out []ItemEntry
	s.walk(nil, recursive, func(path Path, node Node) {
		if item, ok := node.(*Item); ok {
			out = append(out, ItemEntry{Path: path, Item: item})
		}
	})
	return out
}

// IterSections returns descendant sections in depth-first, insertion order.
func (s *Section) IterSections(recursive bool) []SectionEntry {
	var out []SectionEntry
	s.walk(nil, recursive, func(path Path, node Node) {
		if sub, ok := node.(*Section); ok {
			out = append(out, SectionEntry{Path: path, Section: sub})
		}
	})
	return out
}

// IterPaths returns the relative paths of every descendant node in
// depth-first, insertion order.
func (s *Section) IterPaths(recursive bool) []Path {
	var out []Path
	s.walk(nil, recursive, func(path Path, _ Node) {
		out = append(out, path)
	})
	return out
}

// ItemsByName collects descendant items keyed by their bare name. With
// recursive true a name reachable through several subsections keeps the
// first occurrence in iteration order.
func (s *Section) ItemsByName(recursive bool) map[string]*Item {
	byName := make(map[string]*Item)
	for _, entry := range s.IterItems(recursive) {
		if _, seen := byName[entry.Item.Name()]; !seen {
			byName[entry.Item.Name()] = entry.Item
		}
	}
	return byName
}

func (s *Section) walk(prefix Path, recursive bool, visit func(Path, Node)) {
	for _, name := range s.names {
		node := s.nodes[name]
		path := prefix.Join(name)
		visit(path, node)
		if recursive {
			if sub, ok := node.(*Section); ok {
				sub.walk(path, recursive, visit)
			}
		}
	}
}
