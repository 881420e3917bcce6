package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/curlgen/internal/types"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Supported definition file formats
const (
	FormatHTTP = "http"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ParseYAMLFile parses a YAML or JSON file containing request definitions
func ParseYAMLFile(filePath string) ([]types.RequestDefinition, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if strings.ToLower(filepath.Ext(filePath)) == ".json" {
		return parseJSON(data)
	}
	return parseYAML(data)
}

// parseJSON parses JSON format. Comments and trailing commas are allowed.
func parseJSON(data []byte) ([]types.RequestDefinition, error) {
	data = jsonc.ToJSON(data)

	// Try to unmarshal as array first
	var requests []types.RequestDefinition
	if err := json.Unmarshal(data, &requests); err == nil {
		return requests, nil
	}

	// Try to unmarshal as single request
	var request types.RequestDefinition
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return []types.RequestDefinition{request}, nil
}

// parseYAML parses YAML format
func parseYAML(data []byte) ([]types.RequestDefinition, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var requests []types.RequestDefinition
		if err := doc.Decode(&requests); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		setLines(requests, doc.Content)
		return requests, nil
	}

	var request types.RequestDefinition
	if err := doc.Decode(&request); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	request.Line = doc.Line
	return []types.RequestDefinition{request}, nil
}

func setLines(requests []types.RequestDefinition, nodes []*yaml.Node) {
	for i := range requests {
		if i < len(nodes) {
			requests[i].Line = nodes[i].Line
		}
	}
}

// DetectFormat detects whether a file is traditional .http format, YAML or JSON
func DetectFormat(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".http", ".rest":
		// For .http files, we need to peek at the content
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}

		content := strings.TrimSpace(string(data))
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return FormatJSON, nil
		}
		if strings.HasPrefix(content, "---") {
			return FormatYAML, nil
		}
		return FormatHTTP, nil
	default:
		return FormatHTTP, nil
	}
}

// Parse is the main entry point for parsing any supported file format
func Parse(filePath string) (*types.RequestFile, error) {
	format, err := DetectFormat(filePath)
	if err != nil {
		return nil, err
	}

	var requests []types.RequestDefinition
	switch format {
	case FormatYAML:
		requests, err = ParseYAMLFile(filePath)
	case FormatJSON:
		requests, err = parseJSONFile(filePath)
	case FormatHTTP:
		requests, err = ParseHTTPFile(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	return &types.RequestFile{Path: filePath, Format: format, Requests: requests}, nil
}

// parseJSONFile reads JSON content regardless of the file extension
func parseJSONFile(filePath string) ([]types.RequestDefinition, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return parseJSON(data)
}
