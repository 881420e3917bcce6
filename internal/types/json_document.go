package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// JSONDocument holds a JSON payload exactly as written in a request
// definition. Keeping the raw bytes preserves object key order, which a
// round trip through map[string]any would lose.
type JSONDocument []byte

// MarshalJSON returns the stored document
func (d JSONDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON stores a copy of the raw document. A JSON null leaves d
// empty.
func (d *JSONDocument) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*d = nil
		return nil
	}
	*d = append((*d)[:0], data...)
	return nil
}

// UnmarshalYAML converts a YAML node to JSON in document order
func (d *JSONDocument) UnmarshalYAML(node *yaml.Node) error {
	var buf bytes.Buffer
	if err := writeNodeJSON(&buf, node); err != nil {
		return err
	}
	*d = buf.Bytes()
	return nil
}

// IsZero reports whether no document was given
func (d JSONDocument) IsZero() bool {
	return len(d) == 0
}

func writeNodeJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNodeJSON(buf, node.Content[0])

	case yaml.AliasNode:
		return writeNodeJSON(buf, node.Alias)

	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNodeJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		buf.Write(data)
		return nil
	}

	return fmt.Errorf("line %d: unsupported YAML node", node.Line)
}
