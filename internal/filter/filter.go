package filter

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/studiowebux/curlgen/internal/types"
)

// Apply applies a JMESPath expression to a JSON document and returns the
// indented JSON result
func Apply(body string, expression string) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	result, err := Search(data, expression)
	if err != nil {
		return "", err
	}

	// Handle null result
	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(output), nil
}

// Search evaluates expression against decoded JSON data
func Search(data interface{}, expression string) (interface{}, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}
	return result, nil
}

// SelectInto evaluates expression against the JSON document and decodes the
// result into out. A single object result is wrapped in an array when out
// points to a slice, so "[0]" and "[?cond]" both select entries.
func SelectInto(doc []byte, expression string, out interface{}) error {
	var data interface{}
	if err := json.Unmarshal(doc, &data); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	result, err := Search(data, expression)
	if err != nil {
		return err
	}
	if obj, ok := result.(map[string]interface{}); ok {
		result = []interface{}{obj}
	}
	if result == nil {
		result = []interface{}{}
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return fmt.Errorf("query result has an unexpected shape: %w", err)
	}
	return nil
}

// IsValidJMESPath checks if an expression is valid JMESPath syntax
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

// MatchRequests returns the definitions whose title matches pattern.
// Patterns containing *, ? or [ are shell globs; anything else is a
// case-insensitive substring. An empty pattern matches everything.
func MatchRequests(defs []types.RequestDefinition, pattern string) []types.RequestDefinition {
	if pattern == "" {
		return defs
	}

	glob := strings.ContainsAny(pattern, "*?[")
	needle := strings.ToLower(pattern)

	var matched []types.RequestDefinition
	for _, def := range defs {
		title := def.Title()
		if glob {
			ok, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(title))
			if err != nil || !ok {
				continue
			}
		} else if !strings.Contains(strings.ToLower(title), needle) {
			continue
		}
		matched = append(matched, def)
	}
	return matched
}

// FindRequest returns the definition whose title equals name, ignoring case
func FindRequest(defs []types.RequestDefinition, name string) (*types.RequestDefinition, bool) {
	for i := range defs {
		if strings.EqualFold(defs[i].Title(), name) {
			return &defs[i], true
		}
	}
	return nil, false
}
