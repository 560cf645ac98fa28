package configmanager

import "strings"

// PathSeparator joins path segments in dotted string paths.
const PathSeparator = "."

// Path is the ordered sequence of names from a reference section down to a
// node. Paths are derived, never stored: a node only knows its direct
// parent.
type Path []string

// String returns the dotted form of the path.
func (p Path) String() string { return strings.Join(p, PathSeparator) }

// Name returns the last segment, or "" for an empty path.
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Join returns a new path with name appended.
func (p Path) Join(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Node is anything placed in the configuration tree: an *Item or a
// *Section. Use IsItem/IsSection to discriminate.
type Node interface {
	// Name is the name under which the node was added to its parent.
	// The tree root has no name.
	Name() string

	// Parent is the section containing this node, or nil for a root.
	Parent() *Section

	IsItem() bool
	IsSection() bool

	// Path computes the node's path from its root by walking parent links.
	Path() Path
}

func nodePath(n Node) Path {
	parent := n.Parent()
	if parent == nil {
		if n.Name() == "" {
			return Path{}
		}
		return Path{n.Name()}
	}
	return parent.Path().Join(n.Name())
}
