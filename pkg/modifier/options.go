package modifier

import (
	"fmt"

	"github.com/mcuadros/go-defaults"
	"github.com/mitchellh/mapstructure"
)

// decodeOptions fills out with its `default` tags, then with the matching
// entries of opts.
func decodeOptions(opts Options, out interface{}) error {
	defaults.SetDefaults(out)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create options decoder: %w", err)
	}
	if err := dec.Decode(map[string]interface{}(opts)); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
