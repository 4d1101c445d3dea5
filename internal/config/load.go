package config

import (
	"fmt"
	"os"

	yamlv3 "gopkg.in/yaml.v3"
)

// LoadProfiles reads a YAML file of per-device-type receiver profiles and
// merges them over the built-in defaults. A file entry for a known type
// replaces that type's profile wholesale; entries for new types add
// profiles. Example:
//
//	radio.rtlsdr:
//	  centerFreq: 27120000
//	  sampleRate: 2400000
//	  gainMode: 1
//	  gainValue: 40
//	  mixerAgc: 0
//	  tunerAgc: 0
func LoadProfiles(path string) (map[string]Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var raw map[string]map[string]any
	if err := yamlv3.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	profiles := ReceiverDefaults()
	for device, params := range raw {
		tree, err := fromYAML(params)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", device, err)
		}
		profiles[device] = tree
	}
	return profiles, nil
}

// fromYAML converts a decoded YAML mapping into a Tree.
func fromYAML(m map[string]any) (Tree, error) {
	tree := make(Tree, len(m))
	for key, val := range m {
		converted, err := valueFromYAML(val)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		tree[key] = converted
	}
	return tree, nil
}

func valueFromYAML(v any) (Value, error) {
	switch x := v.(type) {
	case int:
		return Num(float64(x)), nil
	case int64:
		return Num(float64(x)), nil
	case float64:
		return Num(x), nil
	case string:
		return Str(x), nil
	case bool:
		return Bool(x), nil
	case map[string]any:
		sub, err := fromYAML(x)
		if err != nil {
			return Value{}, err
		}
		return Sub(sub), nil
	default:
		return Value{}, fmt.Errorf("unsupported value %T", v)
	}
}
