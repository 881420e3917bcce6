package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/studiowebux/curlgen/internal/codegen"
	"github.com/studiowebux/curlgen/internal/types"
)

// ParseHTTPFile parses a traditional .http file with ### separators
func ParseHTTPFile(filePath string) ([]types.RequestDefinition, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseHTTP(file)
}

// httpBlock accumulates one request while scanning
type httpBlock struct {
	def       types.RequestDefinition
	bodyLines []string
	inBody    bool
}

func (b *httpBlock) finish() (types.RequestDefinition, bool) {
	if b.def.Method == "" {
		return types.RequestDefinition{}, false
	}

	// trailing blank lines separate requests and are not part of the body
	lines := b.bodyLines
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		b.def.Body = strings.Join(lines, "\n")
	}
	return b.def, true
}

// ParseHTTP reads requests in .http format from r.
//
// Content before the first ### separator forms an unnamed request. Comment
// lines starting with # may carry annotations:
//
//	# @payload <kind>
//	# @timeout <seconds>
//	# @connect-timeout <seconds>
//	# @description <text>
//
// Any other comment becomes the description when none is set.
func ParseHTTP(r io.Reader) ([]types.RequestDefinition, error) {
	var requests []types.RequestDefinition
	current := &httpBlock{}

	flush := func() {
		if def, ok := current.finish(); ok {
			requests = append(requests, def)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		// New request separator
		if strings.HasPrefix(line, "###") {
			flush()
			current = &httpBlock{}
			current.def.Name = strings.TrimSpace(strings.TrimPrefix(line, "###"))
			continue
		}

		// Annotations and comments, outside of the body only
		if strings.HasPrefix(line, "#") && !current.inBody {
			if err := applyAnnotation(&current.def, line, lineNum); err != nil {
				return nil, err
			}
			continue
		}

		// Request line (e.g., POST https://example.com/users HTTP/1.1)
		if current.def.Method == "" {
			if strings.TrimSpace(line) == "" {
				continue
			}
			parts := strings.Fields(line)
			if len(parts) < 2 {
				return nil, fmt.Errorf("line %d: expected \"METHOD URL\", got %q", lineNum, line)
			}
			method, err := codegen.ParseMethod(parts[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			current.def.Method = method.String()
			current.def.URL = parts[1]
			current.def.Line = lineNum
			continue
		}

		// Empty line after headers starts body
		if !current.inBody && strings.TrimSpace(line) == "" {
			current.inBody = true
			continue
		}

		if !current.inBody {
			if isHeaderLine(line) {
				name, value, err := codegen.ParseHeaderLine(line)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				if current.def.Headers == nil {
					current.def.Headers = types.NewFields()
				}
				current.def.Headers.Set(name, value)
				continue
			}
			// Anything else right after the headers is body content
			current.inBody = true
		}

		current.bodyLines = append(current.bodyLines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	flush()

	return requests, nil
}

// isHeaderLine reports whether line looks like "Name: value". Indented
// lines and names containing spaces, quotes or braces are body content.
func isHeaderLine(line string) bool {
	if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
		return false
	}
	key, _, ok := strings.Cut(line, ":")
	if !ok {
		return false
	}
	key = strings.TrimSpace(key)
	return key != "" && !strings.ContainsAny(key, " \t{[\"'")
}

func applyAnnotation(def *types.RequestDefinition, line string, lineNum int) error {
	text := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	if !strings.HasPrefix(text, "@") {
		if def.Description == "" {
			def.Description = text
		}
		return nil
	}

	name, value, _ := strings.Cut(text[1:], " ")
	value = strings.TrimSpace(value)

	switch name {
	case "payload":
		def.PayloadKind = string(codegen.NormalizePayloadKind(value))
	case "description":
		def.Description = value
	case "timeout", "connect-timeout":
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return fmt.Errorf("line %d: @%s expects a number of seconds, got %q", lineNum, name, value)
		}
		if name == "timeout" {
			def.Timeout = seconds
		} else {
			def.ConnectTimeout = seconds
		}
	}
	// unknown annotations are ignored so files shared with other tools still parse
	return nil
}
