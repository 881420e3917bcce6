package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/studiowebux/curlgen/internal/types"
)

// Variable placeholder pattern: {{varName}}
var varPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// VariableResolver substitutes {{name}} placeholders in request definitions.
// Names are looked up in the command-line variables; {{env.NAME}} reads the
// environment map instead. Placeholders that cannot be resolved are left in
// place and reported by GetUnresolvedVariables.
type VariableResolver struct {
	cliVars    map[string]string // CLI vars from -e flag
	envVars    map[string]string // Environment variables (accessed via {{env.VAR_NAME}})
	unresolved []string
}

// NewVariableResolver creates a new variable resolver
// cliVars and envVars can be nil if not using them
func NewVariableResolver(cliVars map[string]string, envVars map[string]string) *VariableResolver {
	if cliVars == nil {
		cliVars = make(map[string]string)
	}
	if envVars == nil {
		envVars = make(map[string]string)
	}

	return &VariableResolver{
		cliVars: cliVars,
		envVars: envVars,
	}
}

// Set adds or replaces a command-line variable
func (vr *VariableResolver) Set(name, value string) {
	vr.cliVars[name] = value
}

// GetUnresolvedVariables returns the unique names that couldn't be resolved
func (vr *VariableResolver) GetUnresolvedVariables() []string {
	seen := make(map[string]bool)
	unique := []string{}
	for _, v := range vr.unresolved {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return unique
}

// ExtractVariableNames extracts all unique variable names from a string
// Returns variable names without the {{ }} brackets
func ExtractVariableNames(input string) []string {
	matches := varPattern.FindAllStringSubmatch(input, -1)
	seen := make(map[string]bool)
	var names []string
	for _, match := range matches {
		name := strings.TrimSpace(match[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// ExtractRequestVariables extracts all unique variable names from a request
// Includes variables from URL, headers, form fields, body and JSON payload
func ExtractRequestVariables(def *types.RequestDefinition) []string {
	seen := make(map[string]bool)
	var names []string

	addNames := func(s string) {
		for _, name := range ExtractVariableNames(s) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	addNames(def.URL)
	def.Headers.Each(func(_, v string) { addNames(v) })
	def.Form.Each(func(_, v string) { addNames(v) })
	addNames(def.Body)
	addNames(string(def.JSON))

	return names
}

// LoadEnvFile reads KEY=value pairs from a dotenv file. Quoting, export
// prefixes and comments follow godotenv.
func LoadEnvFile(path string) (map[string]string, error) {
	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return envVars, nil
}

// LoadSystemEnv loads all system environment variables
func LoadSystemEnv() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		if key, value, ok := strings.Cut(env, "="); ok {
			envVars[key] = value
		}
	}
	return envVars
}

// ResolveRequest returns a copy of def with placeholders substituted in the
// URL, header values, form values, body and JSON payload.
func (vr *VariableResolver) ResolveRequest(def *types.RequestDefinition) *types.RequestDefinition {
	resolved := *def
	resolved.URL = vr.Resolve(def.URL)
	resolved.Body = vr.Resolve(def.Body)
	resolved.Headers = vr.resolveFields(def.Headers)
	resolved.Form = vr.resolveFields(def.Form)
	if !def.JSON.IsZero() {
		resolved.JSON = types.JSONDocument(vr.Resolve(string(def.JSON)))
	}
	return &resolved
}

func (vr *VariableResolver) resolveFields(f *types.Fields) *types.Fields {
	if f == nil {
		return nil
	}
	out := types.NewFields()
	f.Each(func(k, v string) {
		out.Set(k, vr.Resolve(v))
	})
	return out
}

// Resolve resolves {{varName}} placeholders in a string
func (vr *VariableResolver) Resolve(input string) string {
	return varPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := strings.TrimSpace(match[2 : len(match)-2])

		// Check for env.VAR_NAME syntax
		if envKey, ok := strings.CutPrefix(varName, "env."); ok {
			if value, ok := vr.envVars[envKey]; ok {
				return value
			}
			vr.unresolved = append(vr.unresolved, varName)
			return match
		}

		if value, ok := vr.cliVars[varName]; ok {
			return value
		}

		vr.unresolved = append(vr.unresolved, varName)
		return match
	})
}

// ParseVariableFlags parses repeated key=value flag values
func ParseVariableFlags(values []string) (map[string]string, error) {
	vars := make(map[string]string, len(values))
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", kv)
		}
		vars[key] = value
	}
	return vars, nil
}
