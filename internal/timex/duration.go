// Package timex holds time helpers for configuration files.
package timex

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that config files may spell either as a
// Go duration string ("3s", "1m30s") or as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		return d.parse(value)
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid duration at line %d", node.Line)
	}
	if n, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
