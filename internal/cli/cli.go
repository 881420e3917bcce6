package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
	"github.com/studiowebux/curlgen/internal/codegen"
	"github.com/studiowebux/curlgen/internal/config"
	"github.com/studiowebux/curlgen/internal/converter"
	"github.com/studiowebux/curlgen/internal/filter"
	"github.com/studiowebux/curlgen/internal/generate"
	"github.com/studiowebux/curlgen/internal/highlight"
	"github.com/studiowebux/curlgen/internal/logging"
	"github.com/studiowebux/curlgen/internal/parser"
	"github.com/studiowebux/curlgen/internal/types"
)

// copyToClipboard is swapped out in tests
var copyToClipboard = clipboard.WriteAll

// promptForVariable prompts the user to enter a value for a variable
func promptForVariable(name string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter value for '%s': ", name)
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// IsInteractive checks if stdin is a terminal (not piped)
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// OutputOptions controls how a snippet is rendered and where it goes
type OutputOptions struct {
	Display     string // raw, html or highlight
	Style       string
	LineNumbers bool

	// Timeout and ConnectTimeout apply when the request sets none
	Timeout        int
	ConnectTimeout int

	File  string // empty or "-" writes to Stdout
	Copy  bool
	Color bool // highlight raw output on a terminal

	Stdout io.Writer
	Stderr io.Writer
}

// GenerateOptions describes a request given entirely on the command line
type GenerateOptions struct {
	URL             string
	Method          string
	PayloadKind     string
	Data            string
	Form            []string // key=value
	Headers         []string // "Name: value"
	Timeout         int
	ConnectTimeout  int
	DefaultTimeouts bool

	Output OutputOptions
	Logger logrus.FieldLogger
}

// Generate builds a snippet from command-line flags
func Generate(opts GenerateOptions) error {
	log := logging.OrDiscard(opts.Logger)

	method := opts.Method
	if method == "" {
		method = string(codegen.MethodGet)
	}

	def := &types.RequestDefinition{
		Method:         method,
		URL:            opts.URL,
		PayloadKind:    opts.PayloadKind,
		Body:           opts.Data,
		Timeout:        opts.Timeout,
		ConnectTimeout: opts.ConnectTimeout,
	}

	if len(opts.Form) > 0 {
		form, err := parseFormFlags(opts.Form)
		if err != nil {
			return err
		}
		def.Form = form
	}

	if len(opts.Headers) > 0 {
		headers, err := parseHeaderFlags(opts.Headers)
		if err != nil {
			return err
		}
		def.Headers = headers
	}

	if opts.DefaultTimeouts {
		if def.Timeout == 0 {
			def.Timeout = codegen.DefaultTimeout
		}
		if def.ConnectTimeout == 0 {
			def.ConnectTimeout = codegen.DefaultConnectTimeout
		}
	}

	log.WithFields(logrus.Fields{
		"method": def.Method,
		"url":    def.URL,
	}).Debug("generating snippet")

	return emit(def, opts.Output)
}

// RunOptions contains options for generating code from a definition file
type RunOptions struct {
	FilePath    string
	Name        string   // request name or glob; empty selects interactively or the first
	Workdir     string   // directory searched after the current one
	ExtraVars   []string // key=value pairs from -e flag
	EnvFile     string   // path to .env file
	Interactive bool

	Output OutputOptions
	Logger logrus.FieldLogger
}

// Run generates the snippet for one request of a definition file
func Run(opts RunOptions) error {
	log := logging.OrDiscard(opts.Logger)

	workdir, err := config.GetWorkingDirectory(opts.Workdir)
	if err != nil {
		return err
	}

	// Resolve file path (supports extension-less names like "get-user" -> "get-user.http")
	filePath, err := resolveFilePath(opts.FilePath, workdir)
	if err != nil {
		return err
	}

	file, err := parser.Parse(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}
	if len(file.Requests) == 0 {
		return fmt.Errorf("no requests found in file: %s", filePath)
	}
	log.WithFields(logrus.Fields{
		"file":     filePath,
		"format":   file.Format,
		"requests": len(file.Requests),
	}).Debug("parsed definition file")

	var pick func([]types.RequestDefinition) (int, error)
	if opts.Interactive {
		pick = pickRequest
	}
	request, err := selectRequest(file.Requests, opts.Name, pick)
	if err != nil {
		return err
	}

	cliVars, err := parser.ParseVariableFlags(opts.ExtraVars)
	if err != nil {
		return err
	}

	envVars := parser.LoadSystemEnv()
	if opts.EnvFile != "" {
		fileEnvVars, err := parser.LoadEnvFile(opts.EnvFile)
		if err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		// File vars override system vars
		for k, v := range fileEnvVars {
			envVars[k] = v
		}
	}

	if opts.Interactive {
		for _, name := range missingVariables(request, cliVars, envVars) {
			value, err := promptForVariable(name)
			if err != nil {
				return fmt.Errorf("failed to read input for '%s': %w", name, err)
			}
			cliVars[name] = value
		}
	}

	resolver := parser.NewVariableResolver(cliVars, envVars)
	resolved := resolver.ResolveRequest(request)

	if unresolved := resolver.GetUnresolvedVariables(); len(unresolved) > 0 {
		log.WithField("request", request.Title()).Warnf("unresolved variables: %s", strings.Join(unresolved, ", "))
	}

	return emit(resolved, opts.Output)
}

// missingVariables lists the placeholders of def not covered by cli or env
func missingVariables(def *types.RequestDefinition, cliVars, envVars map[string]string) []string {
	var missing []string
	for _, name := range parser.ExtractRequestVariables(def) {
		if _, ok := cliVars[name]; ok {
			continue
		}
		if envKey, ok := strings.CutPrefix(name, "env."); ok {
			if _, found := envVars[envKey]; found {
				continue
			}
		}
		missing = append(missing, name)
	}
	return missing
}

// selectRequest picks the request named by name (exact title, then glob or
// substring). Without a name it asks pick, or takes the first request.
func selectRequest(defs []types.RequestDefinition, name string, pick func([]types.RequestDefinition) (int, error)) (*types.RequestDefinition, error) {
	candidates := defs
	if name != "" {
		if def, ok := filter.FindRequest(defs, name); ok {
			return def, nil
		}
		candidates = filter.MatchRequests(defs, name)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no request matches %q", name)
		}
	}

	if len(candidates) == 1 {
		return &candidates[0], nil
	}

	if pick == nil {
		if name != "" {
			titles := make([]string, len(candidates))
			for i := range candidates {
				titles[i] = candidates[i].Title()
			}
			return nil, fmt.Errorf("%q matches %d requests: %s", name, len(candidates), strings.Join(titles, ", "))
		}
		return &candidates[0], nil
	}

	idx, err := pick(candidates)
	if err != nil {
		return nil, err
	}
	return &candidates[idx], nil
}

// ListOptions contains options for listing the requests of a file
type ListOptions struct {
	FilePath string
	Workdir  string
	Pattern  string
	Stdout   io.Writer
}

// List prints the requests of a definition file as a table
func List(opts ListOptions) error {
	workdir, err := config.GetWorkingDirectory(opts.Workdir)
	if err != nil {
		return err
	}
	filePath, err := resolveFilePath(opts.FilePath, workdir)
	if err != nil {
		return err
	}

	file, err := parser.Parse(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	requests := file.Requests
	if opts.Pattern != "" {
		requests = filter.MatchRequests(requests, opts.Pattern)
	}

	return renderRequestTable(logging.WriterOr(opts.Stdout, os.Stdout), requests)
}

// emit renders def and delivers it to the clipboard, a file or stdout
func emit(def *types.RequestDefinition, o OutputOptions) error {
	display := o.Display
	if display == "" {
		display = codegen.DisplayRaw.String()
	}
	mode, err := codegen.ParseDisplayMode(display)
	if err != nil {
		return err
	}

	code, err := generate.Snippet(def, generate.Options{
		Timeout:        o.Timeout,
		ConnectTimeout: o.ConnectTimeout,
		Display:        mode,
		Render: codegen.RenderOptions{
			Style:       o.Style,
			LineNumbers: o.LineNumbers,
		},
	})
	if err != nil {
		return err
	}

	stdout := logging.WriterOr(o.Stdout, os.Stdout)
	stderr := logging.WriterOr(o.Stderr, os.Stderr)

	if o.Copy {
		if err := copyToClipboard(code); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(stderr, "Copied to clipboard")
	}

	if o.File != "" && o.File != "-" {
		if err := converter.ValidateOutputFile(o.File); err != nil {
			return err
		}
		if err := os.WriteFile(o.File, []byte(code), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintf(stderr, "Created %s\n", o.File)
		return nil
	}

	// --copy alone stays quiet; "-o -" prints as well
	if o.Copy && o.File == "" {
		return nil
	}

	if o.Color && mode == codegen.DisplayRaw && isTerminal(stdout) {
		colored, err := highlight.Terminal(code, highlight.Options{Style: o.Style})
		if err == nil {
			code = colored
		}
	}
	_, err = fmt.Fprintln(stdout, code)
	return err
}

func parseFormFlags(values []string) (*types.Fields, error) {
	form := types.NewFields()
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid form field %q, expected key=value", kv)
		}
		form.Set(key, value)
	}
	return form, nil
}

func parseHeaderFlags(values []string) (*types.Fields, error) {
	headers := types.NewFields()
	for _, line := range values {
		name, value, err := codegen.ParseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		headers.Set(name, value)
	}
	return headers, nil
}

// resolveFilePath attempts to find the actual file path, trying common extensions
// if the exact path doesn't exist. Returns the resolved path and any error.
func resolveFilePath(basePath, workdir string) (string, error) {
	// Supported extensions in priority order (empty string = exact match first)
	extensions := []string{"", ".http", ".yaml", ".yml", ".json"}

	exists := func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && !info.IsDir()
	}

	// If absolute path, only check with extensions
	if filepath.IsAbs(basePath) {
		for _, ext := range extensions {
			if candidate := basePath + ext; exists(candidate) {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("file not found: %s (tried .http, .yaml, .yml, .json extensions)", basePath)
	}

	// Check in current directory first
	for _, ext := range extensions {
		if candidate := basePath + ext; exists(candidate) {
			return candidate, nil
		}
	}

	if workdir != "" {
		for _, ext := range extensions {
			if candidate := filepath.Join(workdir, basePath+ext); exists(candidate) {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("file not found: %s (searched current directory and %s, tried .http, .yaml, .yml, .json extensions)", basePath, workdir)
}
