package config

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const exampleHeader = "Susquehanna Valley Mesh site configuration.\nCopy this file to config.yaml (or config.toml) and customize as needed."

// Example renders cfg as a config file in the given format, "yaml" or
// "toml". Durations are written as strings such as "10s" so the file loads
// back through Load.
func Example(cfg *Config, format string) ([]byte, error) {
	tree := toTree(reflect.ValueOf(cfg).Elem(), format)

	var buf bytes.Buffer
	for _, line := range strings.Split(exampleHeader, "\n") {
		buf.WriteString("# " + line + "\n")
	}
	buf.WriteString("\n")

	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(tree); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	return buf.Bytes(), nil
}

// toTree converts a config struct into nested maps keyed by the field tags
// of format.
func toTree(v reflect.Value, format string) any {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() {
	case reflect.Struct:
		tag := "yaml"
		if format == "toml" {
			tag = "toml"
		}
		out := make(map[string]any, v.NumField())
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get(tag), ",")
			if name == "" || name == "-" {
				continue
			}
			out[name] = toTree(v.Field(i), format)
		}
		return out
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = toTree(v.Index(i), format)
		}
		return out
	default:
		return v.Interface()
	}
}
