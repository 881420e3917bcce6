package converter

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/sirupsen/logrus"
	"github.com/studiowebux/curlgen/internal/codegen"
	"github.com/studiowebux/curlgen/internal/config"
	"github.com/studiowebux/curlgen/internal/generate"
	"github.com/studiowebux/curlgen/internal/logging"
	"github.com/studiowebux/curlgen/internal/types"
)

// Curl2PhpOptions contains options for curl2php conversion
type Curl2PhpOptions struct {
	CurlCommand   string
	OutputFile    string // "-" writes to Stdout; empty derives a name from the URL
	ImportHeaders bool   // If true, include sensitive headers

	Display        codegen.DisplayMode
	Render         codegen.RenderOptions
	Timeout        int
	ConnectTimeout int

	Logger logrus.FieldLogger
	Stdout io.Writer
	Stderr io.Writer
}

var numericSegment = regexp.MustCompile(`^\d+$`)

// Curl2Php converts a cURL command to a PHP cURL snippet
func Curl2Php(opts Curl2PhpOptions) error {
	log := logging.OrDiscard(opts.Logger)

	def, err := ParseCurl(opts.CurlCommand)
	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}
	log.WithField("method", def.Method).Debugf("parsed cURL command for %s", def.URL)

	// Filter sensitive headers unless explicitly importing them
	if !opts.ImportHeaders {
		maskSensitiveHeaders(def.Headers)
	}

	code, err := generate.Snippet(def, generate.Options{
		Timeout:        opts.Timeout,
		ConnectTimeout: opts.ConnectTimeout,
		Display:        opts.Display,
		Render:         opts.Render,
	})
	if err != nil {
		return err
	}

	outputFile := opts.OutputFile
	if outputFile == "" {
		outputFile = suggestFilename(def.URL) + outputExtension(opts.Display)
	}

	// Write to file or stdout
	if outputFile == "-" {
		_, err := fmt.Fprintln(logging.WriterOr(opts.Stdout, os.Stdout), code)
		return err
	}

	if err := ValidateOutputFile(outputFile); err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, []byte(code), config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(logging.WriterOr(opts.Stderr, os.Stderr), "Created %s\n", outputFile)
	return nil
}

// curl flags that take a value which does not affect the generated code
var ignoredValueFlags = map[string]bool{
	"-o": true, "--output": true, "-w": true, "--write-out": true,
	"-x": true, "--proxy": true, "-c": true, "--cookie-jar": true,
	"-E": true, "--cert": true, "--key": true, "--cacert": true,
	"-r": true, "--range": true, "--retry": true, "--resolve": true,
	"-T": true, "--upload-file": true, "--limit-rate": true,
}

// short flags that accept an attached value, as in -XPOST
var attachedShortFlags = "XHdFumAebo"

// ParseCurl parses a cURL command line into a request definition.
//
// Without -X the method is POST when data is given and GET otherwise;
// -G moves data into the query string and -I selects HEAD. Data without
// a Content-Type header is form-encoded, as curl sends it.
func ParseCurl(curlCmd string) (*types.RequestDefinition, error) {
	args, err := splitShellWords(curlCmd)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 && (args[0] == "curl" || strings.HasSuffix(args[0], "/curl")) {
		args = args[1:]
	}

	def := &types.RequestDefinition{Headers: types.NewFields()}
	var (
		data      []string
		form      *types.Fields
		getMode   bool
		headMode  bool
		jsonMode  bool
		rawMethod string
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// split attached short values (-XPOST) and --flag=value
		flag, value, hasValue := arg, "", false
		if strings.HasPrefix(arg, "--") {
			if f, v, ok := strings.Cut(arg, "="); ok {
				flag, value, hasValue = f, v, true
			}
		} else if len(arg) > 2 && arg[0] == '-' && strings.IndexByte(attachedShortFlags, arg[1]) >= 0 {
			flag, value, hasValue = arg[:2], arg[2:], true
		}

		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("option %s requires a value", flag)
			}
			i++
			return args[i], nil
		}

		switch flag {
		case "-X", "--request":
			if rawMethod, err = next(); err != nil {
				return nil, err
			}
		case "-H", "--header":
			line, err := next()
			if err != nil {
				return nil, err
			}
			if name, v, err := codegen.ParseHeaderLine(line); err == nil {
				def.Headers.Set(name, v)
			}
		case "-d", "--data", "--data-raw", "--data-binary", "--data-ascii":
			v, err := next()
			if err != nil {
				return nil, err
			}
			data = append(data, v)
		case "--data-urlencode":
			v, err := next()
			if err != nil {
				return nil, err
			}
			data = append(data, urlencodeData(v))
		case "--json":
			v, err := next()
			if err != nil {
				return nil, err
			}
			data = append(data, v)
			jsonMode = true
		case "-F", "--form", "--form-string":
			v, err := next()
			if err != nil {
				return nil, err
			}
			name, fieldValue, _ := strings.Cut(v, "=")
			if form == nil {
				form = types.NewFields()
			}
			form.Set(name, fieldValue)
		case "-u", "--user":
			v, err := next()
			if err != nil {
				return nil, err
			}
			def.Headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(v)))
		case "-A", "--user-agent":
			v, err := next()
			if err != nil {
				return nil, err
			}
			def.Headers.Set("User-Agent", v)
		case "-e", "--referer":
			v, err := next()
			if err != nil {
				return nil, err
			}
			def.Headers.Set("Referer", v)
		case "-b", "--cookie":
			v, err := next()
			if err != nil {
				return nil, err
			}
			def.Headers.Set("Cookie", v)
		case "-m", "--max-time":
			v, err := next()
			if err != nil {
				return nil, err
			}
			if def.Timeout, err = parseSeconds(flag, v); err != nil {
				return nil, err
			}
		case "--connect-timeout":
			v, err := next()
			if err != nil {
				return nil, err
			}
			if def.ConnectTimeout, err = parseSeconds(flag, v); err != nil {
				return nil, err
			}
		case "--url":
			if def.URL, err = next(); err != nil {
				return nil, err
			}
		case "-G", "--get":
			getMode = true
		case "-I", "--head":
			headMode = true
		default:
			if ignoredValueFlags[flag] {
				if _, err := next(); err != nil {
					return nil, err
				}
				continue
			}
			if strings.HasPrefix(arg, "-") {
				// boolean flags such as -s, -L, -k, --compressed
				continue
			}
			if def.URL == "" {
				def.URL = arg
			}
		}
	}

	if def.URL == "" {
		return nil, fmt.Errorf("could not find URL in cURL command")
	}

	body := strings.Join(data, "&")
	if jsonMode {
		body = strings.Join(data, "")
		if _, ok := def.Headers.GetFold("Content-Type"); !ok {
			def.Headers.Set("Content-Type", "application/json")
		}
		if _, ok := def.Headers.GetFold("Accept"); !ok {
			def.Headers.Set("Accept", "application/json")
		}
	}

	switch {
	case rawMethod != "":
		def.Method = strings.ToUpper(rawMethod)
	case headMode:
		def.Method = "HEAD"
	case getMode:
		def.Method = "GET"
	case body != "" || form != nil:
		def.Method = "POST"
	default:
		def.Method = "GET"
	}

	switch {
	case getMode && body != "":
		// -G appends the data to the query string
		def.Form = types.ParseQuery(body)
		def.PayloadKind = string(codegen.PayloadURLEncode)
	case form != nil:
		def.Form = form
		def.PayloadKind = string(codegen.PayloadMultipart)
	case body != "":
		def.Body = body
		contentType, ok := def.Headers.GetFold("Content-Type")
		if !ok {
			def.PayloadKind = string(codegen.PayloadURLEncode)
		} else {
			def.PayloadKind = string(codegen.KindForContentType(contentType))
		}
	}

	if strings.EqualFold(def.Method, string(codegen.MethodCustom)) {
		def.PayloadKind = ""
	}

	return def, nil
}

// urlencodeData applies curl's --data-urlencode rules for "name=content"
// and plain "content"
func urlencodeData(v string) string {
	if name, content, ok := strings.Cut(v, "="); ok {
		if name == "" {
			return url.QueryEscape(content)
		}
		return name + "=" + url.QueryEscape(content)
	}
	return url.QueryEscape(v)
}

// parseSeconds accepts fractional seconds and rounds up
func parseSeconds(flag, v string) (int, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("option %s expects seconds, got %q", flag, v)
	}
	return int(math.Ceil(f)), nil
}

// suggestFilename suggests a filename stem based on the URL path
func suggestFilename(urlStr string) string {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "request"
	}

	// Get last part of path
	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if last := pathParts[len(pathParts)-1]; last != "" {
		if !numericSegment.MatchString(last) {
			return sanitizeStem(last)
		}
		// If last part is ID, use second-to-last
		if len(pathParts) > 1 {
			return sanitizeStem(pathParts[len(pathParts)-2])
		}
	}

	// Fallback to host
	if hostname := parsedURL.Hostname(); hostname != "" {
		return strings.ReplaceAll(hostname, ".", "_")
	}

	return "request"
}

func sanitizeStem(s string) string {
	stem := invalidFilenameChars.ReplaceAllString(strings.ToLower(s), "-")
	if strings.Trim(stem, "-") == "" {
		return "request"
	}
	return stem
}

// lineContinuations joins the backslash-newline breaks of multi-line commands
var lineContinuations = strings.NewReplacer("\\\r\n", " ", "\\\n", " ")

// splitShellWords splits a command line into words with go-shellwords.
// Variables, backticks and $(...) are not expanded. Line continuations
// and bash $'...' strings are rewritten first since the parser does not
// know them.
func splitShellWords(s string) ([]string, error) {
	s, err := rewriteANSICQuotes(lineContinuations.Replace(s))
	if err != nil {
		return nil, err
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false
	words, err := parser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("failed to split command: %w", err)
	}
	return words, nil
}

// rewriteANSICQuotes turns each $'...' word start into a plain single-quoted
// string holding the decoded text, as browsers emit it in "Copy as cURL".
func rewriteANSICQuotes(s string) (string, error) {
	if !strings.Contains(s, "$'") {
		return s, nil
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		atWordStart := i == 0 || s[i-1] == ' ' || s[i-1] == '\t' || s[i-1] == '\n'
		if !atWordStart || !strings.HasPrefix(s[i:], "$'") {
			sb.WriteByte(s[i])
			continue
		}

		var text strings.Builder
		j := i + 2
		for ; j < len(s) && s[j] != '\''; j++ {
			if s[j] == '\\' && j+1 < len(s) {
				j++
				text.WriteString(ansiCEscape(s[j]))
				continue
			}
			text.WriteByte(s[j])
		}
		if j >= len(s) {
			return "", fmt.Errorf("unterminated $' quote")
		}

		sb.WriteString("'" + strings.ReplaceAll(text.String(), "'", `'\''`) + "'")
		i = j
	}
	return sb.String(), nil
}

func ansiCEscape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '\'', '"':
		return string(c)
	}
	return "\\" + string(c)
}
