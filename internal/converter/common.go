package converter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/curlgen/internal/codegen"
	"github.com/studiowebux/curlgen/internal/config"
	"github.com/studiowebux/curlgen/internal/generate"
	"github.com/studiowebux/curlgen/internal/types"
	"golang.org/x/sync/errgroup"
)

// sensitiveHeaders are dropped or masked unless headers are imported explicitly
var sensitiveHeaders = []string{
	"authorization",
	"cookie",
	"x-api-key",
	"api-key",
	"apikey",
	"x-auth-token",
	"auth-token",
	"proxy-authorization",
}

var invalidFilenameChars = regexp.MustCompile(`[^a-z0-9-_]`)

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, sensitive := range sensitiveHeaders {
		if lower == sensitive {
			return true
		}
	}
	return false
}

// maskSensitiveHeaders replaces sensitive header values with a {{name}}
// placeholder so the generated code shows where a secret belongs
func maskSensitiveHeaders(headers *types.Fields) {
	for _, key := range headers.Keys() {
		if isSensitiveHeader(key) {
			headers.Set(key, "{{"+key+"}}")
		}
	}
}

// outputExtension is .html for the HTML display modes and .php otherwise
func outputExtension(mode codegen.DisplayMode) string {
	if mode == codegen.DisplayRaw {
		return ".php"
	}
	return ".html"
}

// ValidateOutputFile validates and creates the directory for an output file
func ValidateOutputFile(path string) error {
	if path == "" || path == "-" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return nil
}

// ReadCurlFromStdin reads a cURL command from r
func ReadCurlFromStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// renderJob is one definition queued for rendering to path
type renderJob struct {
	label string
	def   types.RequestDefinition
	path  string
}

// renderAll renders jobs concurrently and returns the paths written, in job
// order. Jobs that fail are logged and left out; only context cancellation
// aborts the run.
func renderAll(ctx context.Context, jobs []renderJob, opts generate.Options, workers int, log logrus.FieldLogger) ([]string, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		written = make([]bool, len(jobs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for n, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := renderJobFile(job, opts); err != nil {
				log.WithField("job", job.label).Warnf("failed to convert: %v", err)
				return nil
			}
			mu.Lock()
			written[n] = true
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []string
	for n, ok := range written {
		if ok {
			files = append(files, jobs[n].path)
		}
	}
	return files, nil
}

func renderJobFile(job renderJob, opts generate.Options) error {
	code, err := generate.Snippet(&job.def, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(job.path), config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(job.path, []byte(code), config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
