package configmanager

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions controls how a config file is located when no
// explicit path is given. Sources are consulted in order: command line
// flag, environment variable, then each search path with each extension.
type FileDiscoveryOptions struct {
	// Name is the base file name without extension, e.g. "config".
	Name string

	// Extensions to try, in order, with the leading dot.
	Extensions []string

	// Paths are extra directories to search, checked before the standard
	// locations.
	Paths []string

	// EnvVar names an environment variable holding the file path.
	EnvVar string

	// CLIFlag is the long flag (without dashes) naming the file on the
	// command line, e.g. "config" for --config.
	CLIFlag string

	// UseXDG includes $XDG_CONFIG_HOME (or ~/.config) in the search.
	UseXDG bool

	// UseCurrentDir includes the working directory in the search.
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns the conventional discovery setup for an
// application name: ./<app>.toml, then XDG config, then /etc/<app>/,
// overridable with --config and <APP>_CONFIG.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".json", ".yaml", ".yml"},
		Paths:         []string{filepath.Join("/etc", appName)},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// Discover resolves the config file path, or "" when nothing is found.
// Flag and environment variable results are returned as-is, even if the
// file does not exist, so the caller can report the bad path instead of
// silently falling back.
func (o FileDiscoveryOptions) Discover(args []string) string {
	if path := o.flagValue(args); path != "" {
		return path
	}
	if o.EnvVar != "" {
		if path := os.Getenv(o.EnvVar); path != "" {
			return path
		}
	}

	var dirs []string
	if o.UseCurrentDir {
		dirs = append(dirs, ".")
	}
	if o.UseXDG {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dirs = append(dirs, filepath.Join(xdg, o.Name))
		} else if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".config", o.Name))
		}
	}
	dirs = append(dirs, o.Paths...)

	for _, dir := range dirs {
		for _, ext := range o.Extensions {
			candidate := filepath.Join(dir, o.Name+ext)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate
			}
		}
	}
	return ""
}

func (o FileDiscoveryOptions) flagValue(args []string) string {
	if o.CLIFlag == "" {
		return ""
	}
	long := "--" + o.CLIFlag
	for i, arg := range args {
		if arg == long && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, long+"=") {
			return strings.TrimPrefix(arg, long+"=")
		}
	}
	return ""
}

// WithFileDiscovery enables config file discovery for builds without an
// explicit WithFile path.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	b.discovery = &opts
	return b
}
