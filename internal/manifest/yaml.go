package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func parseYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UnmarshalYAML decodes a mapping of subcommands, keeping the order the
// keys are written in. A plain string value is shorthand for {run: ...}.
func (c *Commands) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: commands must be a mapping", value.Line)
	}
	*c = NewCommands()
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, body := value.Content[i], value.Content[i+1]
		if _, dup := c.Get(key.Value); dup {
			return fmt.Errorf("line %d: duplicate command %q", key.Line, key.Value)
		}
		cmd := &Command{}
		if body.Kind == yaml.ScalarNode && body.Tag == "!!str" {
			cmd.Run = body.Value
		} else if err := body.Decode(cmd); err != nil {
			return err
		}
		c.Set(key.Value, cmd)
	}
	return nil
}
