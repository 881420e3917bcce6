package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/curlgen/internal/codegen"
	"github.com/studiowebux/curlgen/internal/config"
	"github.com/studiowebux/curlgen/internal/generate"
	"github.com/studiowebux/curlgen/internal/logging"
	"github.com/studiowebux/curlgen/internal/types"
	"gopkg.in/yaml.v3"
)

// Organization strategies for OpenAPI2PhpOptions.OrganizeBy
const (
	OrganizeByTags  = "tags"
	OrganizeByPaths = "paths"
	OrganizeFlat    = "flat"
)

// fallbackBaseURL is used when the spec lists no server and none is given
const fallbackBaseURL = "http://localhost"

// maxSchemaDepth bounds example generation for recursive schemas
const maxSchemaDepth = 8

// OpenAPI2PhpOptions contains options for openapi2php conversion
type OpenAPI2PhpOptions struct {
	SpecPath   string // file path or http(s) URL
	OutputDir  string
	OrganizeBy string // tags, paths, or flat
	BaseURL    string // overrides servers[0].url

	Display        codegen.DisplayMode
	Render         codegen.RenderOptions
	Timeout        int
	ConnectTimeout int
	Workers        int

	// HTTPClient fetches remote specs; defaults to http.DefaultClient
	HTTPClient *http.Client

	Logger logrus.FieldLogger
	Stderr io.Writer
}

// OpenAPISpec is the subset of an OpenAPI 3 document used for generation
type OpenAPISpec struct {
	OpenAPI    string                     `json:"openapi" yaml:"openapi"`
	Info       OpenAPIInfo                `json:"info" yaml:"info"`
	Servers    []OpenAPIServer            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths      map[string]OpenAPIPathItem `json:"paths" yaml:"paths"`
	Components *OpenAPIComponents         `json:"components,omitempty" yaml:"components,omitempty"`
}

// OpenAPIComponents represents reusable components (schemas, etc.)
type OpenAPIComponents struct {
	Schemas map[string]map[string]any `json:"schemas,omitempty" yaml:"schemas,omitempty"`
}

type OpenAPIInfo struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

type OpenAPIServer struct {
	URL string `json:"url" yaml:"url"`
}

type OpenAPIPathItem struct {
	Get     *OpenAPIOperation `json:"get,omitempty" yaml:"get,omitempty"`
	Post    *OpenAPIOperation `json:"post,omitempty" yaml:"post,omitempty"`
	Put     *OpenAPIOperation `json:"put,omitempty" yaml:"put,omitempty"`
	Delete  *OpenAPIOperation `json:"delete,omitempty" yaml:"delete,omitempty"`
	Head    *OpenAPIOperation `json:"head,omitempty" yaml:"head,omitempty"`
	Options *OpenAPIOperation `json:"options,omitempty" yaml:"options,omitempty"`
	Patch   *OpenAPIOperation `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Parameters shared by every operation of the path
	Parameters []OpenAPIParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type OpenAPIOperation struct {
	OperationID string              `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters  []OpenAPIParameter  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *OpenAPIRequestBody `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
}

type OpenAPIParameter struct {
	Name     string         `json:"name" yaml:"name"`
	In       string         `json:"in" yaml:"in"` // query, path, header, cookie
	Required bool           `json:"required,omitempty" yaml:"required,omitempty"`
	Schema   map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Example  any            `json:"example,omitempty" yaml:"example,omitempty"`
}

type OpenAPIRequestBody struct {
	Required bool                        `json:"required,omitempty" yaml:"required,omitempty"`
	Content  map[string]OpenAPIMediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type OpenAPIMediaType struct {
	Schema  map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Example any            `json:"example,omitempty" yaml:"example,omitempty"`
}

// pathOperation pairs an operation with its method and path
type pathOperation struct {
	method    codegen.Method
	path      string
	operation *OpenAPIOperation
	shared    []OpenAPIParameter
}

// operations lists the operations of item in matrix method order
func (item OpenAPIPathItem) operations(path string) []pathOperation {
	candidates := []struct {
		method codegen.Method
		op     *OpenAPIOperation
	}{
		{codegen.MethodGet, item.Get},
		{codegen.MethodPost, item.Post},
		{codegen.MethodPut, item.Put},
		{codegen.MethodDelete, item.Delete},
		{codegen.MethodHead, item.Head},
		{codegen.MethodOptions, item.Options},
		{codegen.MethodPatch, item.Patch},
	}

	var ops []pathOperation
	for _, c := range candidates {
		if c.op != nil {
			ops = append(ops, pathOperation{method: c.method, path: path, operation: c.op, shared: item.Parameters})
		}
	}
	return ops
}

// Openapi2Php writes one PHP cURL file per operation of an OpenAPI spec
func Openapi2Php(ctx context.Context, opts OpenAPI2PhpOptions) (int, error) {
	log := logging.OrDiscard(opts.Logger)
	stderr := logging.WriterOr(opts.Stderr, os.Stderr)

	spec, err := loadOpenAPISpec(ctx, opts.SpecPath, opts.HTTPClient)
	if err != nil {
		return 0, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "requests"
	}
	if err := os.MkdirAll(outputDir, config.DirPermissions); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" && len(spec.Servers) > 0 {
		baseURL = strings.TrimSuffix(spec.Servers[0].URL, "/")
	}
	if baseURL == "" {
		log.Warnf("spec has no servers, using %s", fallbackBaseURL)
		baseURL = fallbackBaseURL
	}

	paths := make([]string, 0, len(spec.Paths))
	for path := range spec.Paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var jobs []renderJob
	used := make(map[string]int)
	ext := outputExtension(opts.Display)

	for _, path := range paths {
		for _, po := range spec.Paths[path].operations(path) {
			def := operationToDefinition(po, baseURL, spec)
			dir, stem := operationOutputPath(outputDir, po, opts.OrganizeBy)
			key := filepath.Join(dir, stem)
			filename := uniqueFilename(used, key, ext)
			jobs = append(jobs, renderJob{
				label: fmt.Sprintf("%s %s", po.method, path),
				def:   def,
				path:  filename,
			})
		}
	}

	if len(jobs) == 0 {
		return 0, fmt.Errorf("no operations found in spec")
	}

	files, err := renderAll(ctx, jobs, generate.Options{
		Timeout:        opts.Timeout,
		ConnectTimeout: opts.ConnectTimeout,
		Display:        opts.Display,
		Render:         opts.Render,
	}, opts.Workers, log)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(stderr, "Generated %d %s files in %s\n", len(files), ext, outputDir)
	return len(files), nil
}

// loadOpenAPISpec loads an OpenAPI spec from a file or URL. JSON specs
// parse through the YAML decoder.
func loadOpenAPISpec(ctx context.Context, path string, client *http.Client) (*OpenAPISpec, error) {
	var data []byte

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch spec from URL: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch spec from URL: %s", resp.Status)
		}
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec file: %w", err)
		}
	}

	var spec OpenAPISpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse spec as JSON or YAML: %w", err)
	}
	if len(spec.Paths) == 0 {
		return nil, fmt.Errorf("spec has no paths")
	}
	return &spec, nil
}

var pathParamPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// operationToDefinition converts an operation to a request definition.
// Path, query and header parameters become {{name}} placeholders.
func operationToDefinition(po pathOperation, baseURL string, spec *OpenAPISpec) types.RequestDefinition {
	op := po.operation

	name := op.Summary
	if name == "" {
		name = op.OperationID
	}
	if name == "" {
		name = fmt.Sprintf("%s %s", po.method, po.path)
	}

	def := types.RequestDefinition{
		Name:        name,
		Description: strings.TrimSpace(op.Description),
		Method:      po.method.String(),
		URL:         baseURL + pathParamPattern.ReplaceAllString(po.path, "{{$1}}"),
		Headers:     types.NewFields(),
	}

	query := types.NewFields()
	for _, param := range mergeParameters(po.shared, op.Parameters) {
		placeholder := "{{" + param.Name + "}}"
		switch param.In {
		case "query":
			query.Set(param.Name, placeholder)
		case "header":
			def.Headers.Set(param.Name, placeholder)
		}
	}

	if query.Len() > 0 {
		if po.method == codegen.MethodGet {
			def.Form = query
			def.PayloadKind = string(codegen.PayloadURLEncode)
		} else {
			def.URL += "?" + joinPlaceholderQuery(query)
		}
	}

	// GET and HEAD cannot carry the body
	if op.RequestBody != nil && po.method != codegen.MethodGet && po.method != codegen.MethodHead {
		applyRequestBody(&def, op.RequestBody, spec)
	}

	return def
}

// mergeParameters lets operation parameters override shared ones with the
// same name and location
func mergeParameters(shared, own []OpenAPIParameter) []OpenAPIParameter {
	merged := make([]OpenAPIParameter, 0, len(shared)+len(own))
	overridden := make(map[string]bool, len(own))
	for _, p := range own {
		overridden[p.In+":"+p.Name] = true
	}
	for _, p := range shared {
		if !overridden[p.In+":"+p.Name] {
			merged = append(merged, p)
		}
	}
	return append(merged, own...)
}

// joinPlaceholderQuery keeps {{name}} values readable in the URL
func joinPlaceholderQuery(query *types.Fields) string {
	parts := make([]string, 0, query.Len())
	query.Each(func(k, v string) {
		parts = append(parts, k+"="+v)
	})
	return strings.Join(parts, "&")
}

// preferredContentTypes are tried before the remaining types in name order
var preferredContentTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

func pickContentType(content map[string]OpenAPIMediaType) (string, bool) {
	for _, ct := range preferredContentTypes {
		if _, ok := content[ct]; ok {
			return ct, true
		}
	}
	names := make([]string, 0, len(content))
	for ct := range content {
		names = append(names, ct)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// applyRequestBody fills the payload of def from the first usable media type
func applyRequestBody(def *types.RequestDefinition, body *OpenAPIRequestBody, spec *OpenAPISpec) {
	contentType, ok := pickContentType(body.Content)
	if !ok {
		return
	}
	media := body.Content[contentType]
	kind := codegen.KindForContentType(contentType)
	if !codegen.Allows(codegen.Method(def.Method), kind) {
		return
	}

	example := media.Example
	if example == nil && media.Schema != nil {
		example = exampleFromSchema(media.Schema, spec, 0)
	}

	switch kind {
	case codegen.PayloadJSON:
		if example == nil {
			example = map[string]any{}
		}
		data, err := json.Marshal(example)
		if err != nil {
			return
		}
		def.JSON = types.JSONDocument(data)
	case codegen.PayloadURLEncode, codegen.PayloadMultipart:
		obj, ok := example.(map[string]any)
		if !ok {
			return
		}
		def.Form = types.NewFields()
		for _, key := range sortedKeys(obj) {
			def.Form.Set(key, scalarText(obj[key]))
		}
	default:
		if s, ok := example.(string); ok {
			def.Body = s
		}
	}

	def.PayloadKind = string(kind)
	def.Headers.Set("Content-Type", contentType)
}

// resolveSchema follows a local $ref and picks the first non-null
// alternative of anyOf/oneOf
func resolveSchema(schema map[string]any, spec *OpenAPISpec) map[string]any {
	if ref, ok := schema["$ref"].(string); ok {
		if name, found := strings.CutPrefix(ref, "#/components/schemas/"); found &&
			spec.Components != nil && spec.Components.Schemas != nil {
			if resolved, ok := spec.Components.Schemas[name]; ok {
				return resolved
			}
		}
	}

	for _, key := range []string{"anyOf", "oneOf", "allOf"} {
		alternatives, ok := schema[key].([]any)
		if !ok {
			continue
		}
		for _, alt := range alternatives {
			if m, ok := alt.(map[string]any); ok && m["type"] != "null" {
				return resolveSchema(m, spec)
			}
		}
	}

	return schema
}

// exampleFromSchema builds an example value: example, then default, then
// the first enum value, then a zero value of the schema type
func exampleFromSchema(schema map[string]any, spec *OpenAPISpec, depth int) any {
	if depth > maxSchemaDepth {
		return nil
	}
	schema = resolveSchema(schema, spec)

	for _, key := range []string{"example", "default"} {
		if v, ok := schema[key]; ok {
			return v
		}
	}
	if enum, ok := schema["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}

	schemaType, _ := schema["type"].(string)
	if schemaType == "" {
		if _, ok := schema["properties"]; ok {
			schemaType = "object"
		}
	}

	switch schemaType {
	case "object":
		result := make(map[string]any)
		if properties, ok := schema["properties"].(map[string]any); ok {
			for key, prop := range properties {
				if propMap, ok := prop.(map[string]any); ok {
					result[key] = exampleFromSchema(propMap, spec, depth+1)
				}
			}
		}
		return result
	case "array":
		if items, ok := schema["items"].(map[string]any); ok {
			return []any{exampleFromSchema(items, spec, depth+1)}
		}
		return []any{}
	case "string":
		return "string"
	case "integer", "number":
		return 0
	case "boolean":
		return false
	default:
		return nil
	}
}

// operationOutputPath returns the directory and filename stem for po
func operationOutputPath(baseDir string, po pathOperation, organizeBy string) (string, string) {
	method := strings.ToLower(po.method.String())
	stem := method + "-" + sanitizeFilename(po.path)

	switch organizeBy {
	case OrganizeByTags:
		tag := "untagged"
		if len(po.operation.Tags) > 0 {
			tag = sanitizeFilename(po.operation.Tags[0])
		}
		return filepath.Join(baseDir, tag), stem

	case OrganizeByPaths:
		// Mirror the API path, leaving out parameter segments
		parts := strings.Split(strings.Trim(po.path, "/"), "/")
		var dirParts []string
		for _, part := range parts[:len(parts)-1] {
			if part != "" && !strings.HasPrefix(part, "{") {
				dirParts = append(dirParts, sanitizeFilename(part))
			}
		}
		last := sanitizeFilename(parts[len(parts)-1])
		return filepath.Join(append([]string{baseDir}, dirParts...)...), method + "-" + last

	default:
		return baseDir, stem
	}
}

// sanitizeFilename creates a safe filename from a path
func sanitizeFilename(path string) string {
	path = strings.Trim(path, "/")
	path = strings.ReplaceAll(path, "/", "-")
	path = strings.NewReplacer("{", "", "}", "").Replace(path)
	path = invalidFilenameChars.ReplaceAllString(strings.ToLower(path), "_")
	if path == "" {
		path = "root"
	}
	return path
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scalarText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}
