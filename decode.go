package configmanager

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes the section's resolved values (defaults included) into a
// struct pointer, matching fields by `toml` tag. Conversion is lenient:
// strings parse into durations, comma-separated strings split into slices,
// and numeric kinds convert across widths.
func (s *Section) Scan(target any) error {
	if target == nil {
		return fmt.Errorf("%w: scan target must be a non-nil pointer", ErrInvalidValue)
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("%w: scan target must be a non-nil pointer, got %T", ErrInvalidValue, target)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}

	if err := decoder.Decode(s.DumpValues(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}
