package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/curlgen/internal/codegen"
	"github.com/studiowebux/curlgen/internal/config"
	"github.com/studiowebux/curlgen/internal/filter"
	"github.com/studiowebux/curlgen/internal/generate"
	"github.com/studiowebux/curlgen/internal/logging"
	"github.com/studiowebux/curlgen/internal/types"
)

// Har2PhpOptions contains options for har2php conversion
type Har2PhpOptions struct {
	HarFile       string
	OutputDir     string
	ImportHeaders bool   // If true, include sensitive headers
	Filter        string // Keep entries whose URL contains this substring (optional)
	Query         string // JMESPath expression over log.entries (optional)

	Display        codegen.DisplayMode
	Render         codegen.RenderOptions
	Timeout        int
	ConnectTimeout int

	// Workers bounds concurrent rendering; defaults to GOMAXPROCS
	Workers int

	Logger logrus.FieldLogger
	Stderr io.Writer
}

// Har2PhpResult summarizes a conversion
type Har2PhpResult struct {
	Total     int
	Converted int
	Files     []string
}

// HARFile represents the HAR file structure
type HARFile struct {
	Log HARLog `json:"log"`
}

// HARLog represents the log section of HAR
type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Entries []HAREntry `json:"entries"`
}

// HARCreator represents the tool that created the HAR
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HAREntry represents a single HTTP request/response
type HAREntry struct {
	Request  HARRequest  `json:"request"`
	Response HARResponse `json:"response"`
}

// HARRequest represents the request part of an entry
type HARRequest struct {
	Method      string         `json:"method"`
	URL         string         `json:"url"`
	HTTPVersion string         `json:"httpVersion"`
	Headers     []HARNameValue `json:"headers"`
	QueryString []HARNameValue `json:"queryString"`
	PostData    *HARPostData   `json:"postData,omitempty"`
}

// HARResponse represents the response part of an entry
type HARResponse struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
}

// HARNameValue is a header, query parameter or form parameter
type HARNameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARPostData represents POST data
type HARPostData struct {
	MimeType string         `json:"mimeType"`
	Text     string         `json:"text"`
	Params   []HARNameValue `json:"params,omitempty"`
}

// Har2Php converts the entries of a HAR file to PHP cURL snippets, one
// file per entry. Entries that cannot be converted are skipped with a
// warning.
func Har2Php(ctx context.Context, opts Har2PhpOptions) (*Har2PhpResult, error) {
	log := logging.OrDiscard(opts.Logger)
	stderr := logging.WriterOr(opts.Stderr, os.Stderr)

	entries, err := readHAREntries(opts.HarFile, opts.Query)
	if err != nil {
		return nil, err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "requests"
	}
	if err := os.MkdirAll(outputDir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &Har2PhpResult{Total: len(entries)}
	jobs := make([]renderJob, 0, len(entries))
	used := make(map[string]int)

	for i, entry := range entries {
		// Filter by URL pattern if specified
		if opts.Filter != "" && !strings.Contains(entry.Request.URL, opts.Filter) {
			continue
		}

		// Skip non-HTTP(S) requests
		if !strings.HasPrefix(entry.Request.URL, "http://") && !strings.HasPrefix(entry.Request.URL, "https://") {
			log.WithField("entry", i).Debugf("skipping non-HTTP URL %s", entry.Request.URL)
			continue
		}

		def, err := entryToDefinition(entry, opts.ImportHeaders)
		if err != nil {
			log.WithField("entry", i).Warnf("failed to convert entry: %v", err)
			continue
		}

		filename := uniqueFilename(used, suggestFilenameFromURL(def.URL, def.Method, i), outputExtension(opts.Display))
		jobs = append(jobs, renderJob{
			label: fmt.Sprintf("entry %d", i),
			def:   *def,
			path:  filepath.Join(outputDir, filename),
		})
	}

	files, err := renderAll(ctx, jobs, generate.Options{
		Timeout:        opts.Timeout,
		ConnectTimeout: opts.ConnectTimeout,
		Display:        opts.Display,
		Render:         opts.Render,
	}, opts.Workers, log)
	if err != nil {
		return nil, err
	}
	result.Converted = len(files)
	result.Files = files

	fmt.Fprintf(stderr, "Converted %d/%d entries to %s/\n", result.Converted, result.Total, outputDir)
	return result, nil
}

// readHAREntries parses the HAR file and applies the optional JMESPath query
// to log.entries
func readHAREntries(path, query string) ([]HAREntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HAR file: %w", err)
	}

	var raw struct {
		Log struct {
			Entries json.RawMessage `json:"entries"`
		} `json:"log"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse HAR file: %w", err)
	}
	if len(raw.Log.Entries) == 0 {
		return nil, fmt.Errorf("no entries found in HAR file")
	}

	var entries []HAREntry
	if query != "" {
		if err := filter.SelectInto(raw.Log.Entries, query, &entries); err != nil {
			return nil, fmt.Errorf("failed to apply query: %w", err)
		}
		return entries, nil
	}

	if err := json.Unmarshal(raw.Log.Entries, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse HAR entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries found in HAR file")
	}
	return entries, nil
}

// entryToDefinition converts a HAR request to a request definition.
// GET query parameters become form fields so they render through
// http_build_query.
func entryToDefinition(entry HAREntry, importHeaders bool) (*types.RequestDefinition, error) {
	req := entry.Request

	method, err := codegen.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	def := &types.RequestDefinition{
		Name:    fmt.Sprintf("%s %s", method, extractPath(req.URL)),
		Method:  method.String(),
		URL:     req.URL,
		Headers: types.NewFields(),
	}

	for _, h := range req.Headers {
		// Skip pseudo-headers and lengths that no longer match the re-encoded body
		if strings.HasPrefix(h.Name, ":") || strings.EqualFold(h.Name, "Content-Length") {
			continue
		}
		if !importHeaders && isSensitiveHeader(h.Name) {
			continue
		}
		def.Headers.Set(h.Name, h.Value)
	}

	if method == codegen.MethodGet {
		base, query, found := strings.Cut(req.URL, "?")
		if found {
			def.URL = base
			if len(req.QueryString) > 0 {
				def.Form = types.NewFields()
				for _, p := range req.QueryString {
					def.Form.Set(p.Name, p.Value)
				}
			} else {
				def.Form = types.ParseQuery(query)
			}
			if def.Form.Len() > 0 {
				def.PayloadKind = string(codegen.PayloadURLEncode)
			}
		}
		return def, nil
	}

	if pd := req.PostData; pd != nil {
		kind := codegen.KindForContentType(pd.MimeType)
		if kind == codegen.PayloadURLEncode && len(pd.Params) > 0 && pd.Text == "" {
			def.Form = types.NewFields()
			for _, p := range pd.Params {
				def.Form.Set(p.Name, p.Value)
			}
		} else {
			def.Body = pd.Text
		}
		if def.HasPayload() && kind != codegen.PayloadNone {
			def.PayloadKind = string(kind)
		}
	}

	return def, nil
}

// suggestFilenameFromURL generates a filename stem from URL and method
func suggestFilenameFromURL(urlStr, method string, index int) string {
	path := extractPath(urlStr)

	// Clean path for filename
	filename := strings.ReplaceAll(path, "/", "-")
	filename = strings.Trim(filename, "-")
	filename = strings.ToLower(filename)
	filename = invalidFilenameChars.ReplaceAllString(filename, "-")

	m := strings.ToLower(method)
	if filename == "" {
		return fmt.Sprintf("%s-request-%d", m, index)
	}
	return m + "-" + filename
}

// uniqueFilename appends -2, -3, ... to stems already handed out
func uniqueFilename(used map[string]int, stem, ext string) string {
	used[stem]++
	if n := used[stem]; n > 1 {
		return fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	return stem + ext
}

// extractPath extracts the path from a URL
func extractPath(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
