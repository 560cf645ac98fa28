package configmanager

import (
	"os"
	"strings"
)

// Envvar returns the environment variable name declared for the item and
// whether one is declared at all. Auto-derived names are the item's path,
// uppercased and joined with underscores, behind the tree's env prefix.
func (i *Item) Envvar() (string, bool) {
	switch {
	case i.envvarFunc != nil:
		return i.envvarFunc(i.Path()), true
	case i.envvarExplicit != "":
		return i.envvarExplicit, true
	case i.envvarAuto:
		name := strings.ToUpper(strings.Join(i.Path(), "_"))
		if i.section != nil {
			if prefix := i.section.treeSettings().EnvPrefix; prefix != "" {
				name = prefix + name
			}
		}
		return name, true
	}
	return "", false
}

// DiscoverEnv reports which declared environment variables are currently
// present, keyed by variable name. Values are the raw, uncast strings.
func (s *Section) DiscoverEnv() map[string]string {
	found := make(map[string]string)
	for _, entry := range s.IterItems(true) {
		name, declared := entry.Item.Envvar()
		if !declared {
			continue
		}
		if raw, ok := os.LookupEnv(name); ok {
			found[name] = raw
		}
	}
	return found
}
