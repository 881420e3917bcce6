package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"gopkg.in/yaml.v3"
)

// Fields is a string to string mapping that remembers insertion order.
// It backs request headers and form payloads, where the generated code
// must list entries in the order the user gave them.
//
// Setting an existing key replaces its value in place. The zero value is
// an empty mapping ready to use.
type Fields struct {
	m *linkedhashmap.Map
}

// NewFields builds Fields from alternating key/value arguments.
// A trailing key without a value is ignored.
func NewFields(kv ...string) *Fields {
	f := &Fields{m: linkedhashmap.New()}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i], kv[i+1])
	}
	return f
}

// Set stores value under key, keeping the original position of key if present
func (f *Fields) Set(key, value string) {
	if f.m == nil {
		f.m = linkedhashmap.New()
	}
	f.m.Put(key, value)
}

// Get returns the value stored under key
func (f *Fields) Get(key string) (string, bool) {
	if f == nil || f.m == nil {
		return "", false
	}
	v, ok := f.m.Get(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// GetFold looks a key up case-insensitively, as HTTP header names compare
func (f *Fields) GetFold(key string) (string, bool) {
	var (
		found string
		ok    bool
	)
	f.Each(func(k, v string) {
		if !ok && strings.EqualFold(k, key) {
			found, ok = v, true
		}
	})
	return found, ok
}

// Delete removes key if present
func (f *Fields) Delete(key string) {
	if f == nil || f.m == nil {
		return
	}
	f.m.Remove(key)
}

// Len returns the number of entries. A nil *Fields has length 0.
func (f *Fields) Len() int {
	if f == nil || f.m == nil {
		return 0
	}
	return f.m.Size()
}

// Keys returns the keys in insertion order
func (f *Fields) Keys() []string {
	keys := make([]string, 0, f.Len())
	f.Each(func(k, _ string) {
		keys = append(keys, k)
	})
	return keys
}

// Each calls fn for every entry in insertion order
func (f *Fields) Each(fn func(key, value string)) {
	if f == nil || f.m == nil {
		return
	}
	it := f.m.Iterator()
	for it.Next() {
		fn(it.Key().(string), it.Value().(string))
	}
}

// Clone returns an independent copy
func (f *Fields) Clone() *Fields {
	c := NewFields()
	f.Each(c.Set)
	return c
}

// Encode renders the entries as an application/x-www-form-urlencoded
// string (spaces become '+'), keeping insertion order.
func (f *Fields) Encode() string {
	var sb strings.Builder
	f.Each(func(k, v string) {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(v))
	})
	return sb.String()
}

// String implements fmt.Stringer with the form encoding
func (f *Fields) String() string {
	return f.Encode()
}

// ParseQuery decodes a form-encoded string into Fields, preserving the
// order of first appearance. A repeated key keeps its first position and
// takes the last value. Malformed escapes are kept as written.
func ParseQuery(query string) *Fields {
	f := NewFields()
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		f.Set(UnescapeQuery(key), UnescapeQuery(value))
	}
	return f
}

// UnescapeQuery decodes '+' and each well-formed %XX escape in s. A '%'
// not followed by two hex digits is kept as written.
func UnescapeQuery(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			sb.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			sb.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	}
	return c - 'A' + 10
}

// MarshalJSON encodes the entries as a JSON object in insertion order
func (f *Fields) MarshalJSON() ([]byte, error) {
	if f == nil || f.m == nil {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	first := true
	var err error
	f.Each(func(key, value string) {
		if err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err = enc.Encode(key); err != nil {
			return
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err = enc.Encode(value); err != nil {
			return
		}
		trimNewline(&buf)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// trimNewline drops the newline json.Encoder appends after each value
func trimNewline(buf *bytes.Buffer) {
	buf.Truncate(buf.Len() - 1)
}

// UnmarshalJSON accepts an object of scalars, or an array of scalars which
// is stored under the keys "0".."n-1".
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	*f = Fields{m: linkedhashmap.New()}

	switch tok {
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			value, err := scalarToken(dec)
			if err != nil {
				return fmt.Errorf("field %q: %w", keyTok, err)
			}
			f.Set(keyTok.(string), value)
		}
	case json.Delim('['):
		for i := 0; dec.More(); i++ {
			value, err := scalarToken(dec)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			f.Set(strconv.Itoa(i), value)
		}
	case nil:
		return nil
	default:
		return fmt.Errorf("expected an object or array, got %v", tok)
	}

	// closing delimiter
	_, err = dec.Token()
	return err
}

func scalarToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	switch v := tok.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("nested values are not supported")
	}
}

// UnmarshalYAML accepts a mapping of scalars, or a sequence of scalars
// which is stored under the keys "0".."n-1".
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	*f = Fields{m: linkedhashmap.New()}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: field %q must be a scalar", value.Line, key.Value)
			}
			f.Set(key.Value, scalarValue(value))
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: item %d must be a scalar", item.Line, i)
			}
			f.Set(strconv.Itoa(i), scalarValue(item))
		}
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		return fmt.Errorf("line %d: expected a mapping, got %q", node.Line, node.Value)
	default:
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	return nil
}

func scalarValue(node *yaml.Node) string {
	if node.Tag == "!!null" {
		return ""
	}
	return node.Value
}
