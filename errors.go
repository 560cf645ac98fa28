package configmanager

import "errors"

// Sentinel errors. Wrapped errors carry the offending path and value; use
// errors.Is to classify.
var (
	// ErrNotFound indicates a path or name lookup failed. It can be
	// intercepted by a not_found hook whose non-nil return value
	// substitutes for the failure.
	ErrNotFound = errors.New("configmanager: not found")

	// ErrRequiredValueMissing indicates value resolution reached the end of
	// the chain: no custom value, no default, no environment variable, and
	// no fallback.
	ErrRequiredValueMissing = errors.New("configmanager: required value missing")

	// ErrInvalidValue indicates a value could not be cast to an item's type.
	ErrInvalidValue = errors.New("configmanager: invalid value")

	// ErrDeclaration indicates an invalid schema declaration: a duplicate
	// name, a conflicting redeclaration, or an unusable descriptor.
	ErrDeclaration = errors.New("configmanager: invalid declaration")

	// ErrConfigNotFound indicates a configuration file does not exist.
	// Callers usually treat this as non-fatal and proceed with defaults.
	ErrConfigNotFound = errors.New("configmanager: config file not found")
)
