// Package configmanager provides a declarative configuration tree.
//
// Configuration is modeled as a tree of sections containing typed items.
// Items are self-describing: each carries its type, optional default,
// optional custom value, required flag and environment variable source.
// Value resolution follows a fixed order: custom value, then default, then
// environment variable, then a caller-supplied fallback; when nothing
// resolves the item reports a missing required value.
//
// Trees are declared from schemas (nested maps, ordered Entry lists, or
// structs with toml tags), addressed with dotted paths, and moved in and
// out of TOML, JSON and YAML files through adapters that keep the tree
// itself format-agnostic. Hooks fire on tree mutations, and changesets
// record which items changed inside a scope, which also powers file
// watching with per-reload change reporting.
//
// Basic usage:
//
//	cfg := configmanager.MustQuick(map[string]any{
//		"uploads": map[string]any{
//			"enabled": false,
//			"threads": int64(1),
//		},
//	}, "MYAPP_", "myapp.toml")
//
//	threads, err := cfg.Int64("uploads.threads")
package configmanager
