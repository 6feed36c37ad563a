package hardware

import (
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/takehaya/flowgen/pkg/modifier"
)

// Descriptor lists the flows of the hardware and, in order, the modifiers
// every flow is made of.
type Descriptor struct {
	// Source is the file the descriptor was read from, if any.
	Source    string
	Instances int
	Modifiers []ModifierDescriptor
}

type ModifierDescriptor struct {
	Type   string
	Config modifier.Options
}

// LoadDescriptor reads a JSON or YAML descriptor from fs. The format is
// picked from the file extension.
func LoadDescriptor(fs afero.Fs, path string) (*Descriptor, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read descriptor %s", path)
	}
	return ParseDescriptor(path, v.AllSettings())
}

// ParseDescriptor validates a decoded descriptor document:
//
//	flow_generator:
//	  instances: 4
//	  modifiers:
//	    - type: skeleton_sender
//	      config: {id: 0}
func ParseDescriptor(source string, raw map[string]interface{}) (*Descriptor, error) {
	fail := func(key, msg string) error {
		return &DescriptorError{Path: source, Key: key, Message: msg}
	}

	fg, ok := raw["flow_generator"].(map[string]interface{})
	if !ok {
		return nil, fail("flow_generator", "a flow_generator section is required")
	}
	instances, ok := asInt(fg["instances"])
	if !ok || instances < 1 {
		return nil, fail("instances", "the number of flows should be a positive integer")
	}
	list, ok := fg["modifiers"].([]interface{})
	if !ok {
		return nil, fail("modifiers", "a list of modifiers is required")
	}

	d := &Descriptor{Source: source, Instances: instances}
	for _, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, fail("modifiers", "every modifier should be a map with type and config keys")
		}
		tag, ok := entry["type"].(string)
		if !ok || tag == "" {
			return nil, fail("type", "the modifier type should be a string")
		}
		if _, ok := modifier.Lookup(tag); !ok {
			return nil, fail("type", "unknown modifier type "+tag)
		}
		config, ok := entry["config"].(map[string]interface{})
		if !ok {
			return nil, fail("config", "the configuration of "+tag+" should be a map")
		}
		if _, ok := asInt(config["id"]); !ok {
			return nil, fail("id", "the identifier of "+tag+" should be an integer")
		}
		opts := make(modifier.Options, len(config))
		for k, v := range config {
			opts[k] = v
		}
		d.Modifiers = append(d.Modifiers, ModifierDescriptor{Type: tag, Config: opts})
	}
	return d, nil
}

// asInt accepts the integer forms produced by the JSON and YAML decoders.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
