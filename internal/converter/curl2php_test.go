package converter

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/studiowebux/curlgen/internal/codegen"
)

func TestSplitShellWords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`curl http://e.com`, []string{"curl", "http://e.com"}},
		{`curl -H 'Accept: */*' "http://e.com/a b"`, []string{"curl", "-H", "Accept: */*", "http://e.com/a b"}},
		{"curl \\\n  -X POST \\\n  http://e.com", []string{"curl", "-X", "POST", "http://e.com"}},
		{`-d "say \"hi\" \$HOME"`, []string{"-d", `say "hi" $HOME`}},
		{`-d 'it'\''s'`, []string{"-d", "it's"}},
		{`--data-raw $'line1\nline2 \'q\''`, []string{"--data-raw", "line1\nline2 'q'"}},
		{`a\ b`, []string{"a b"}},
		{`''`, []string{""}},
		{"curl \\\r\n  http://e.com", []string{"curl", "http://e.com"}},
		{`-H $'X-Note: a\tb' -d $'{"k":"v"}'`, []string{"-H", "X-Note: a\tb", "-d", `{"k":"v"}`}},
		{`-d 'price$'`, []string{"-d", "price$"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := splitShellWords(tt.input)
			if err != nil {
				t.Fatalf("splitShellWords() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitShellWords() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitShellWords_Unterminated(t *testing.T) {
	for _, input := range []string{`'abc`, `"abc`, `$'abc`} {
		if _, err := splitShellWords(input); err == nil {
			t.Errorf("splitShellWords(%q) expected error", input)
		}
	}
}

func TestRewriteANSICQuotes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`curl http://e.com`, `curl http://e.com`},
		{`-d $'a\nb'`, "-d 'a\nb'"},
		{`-d $'it\'s'`, `-d 'it'\''s'`},
		{`-d 'cost$'`, `-d 'cost$'`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := rewriteANSICQuotes(tt.input)
			if err != nil {
				t.Fatalf("rewriteANSICQuotes() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("rewriteANSICQuotes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCurl(t *testing.T) {
	tests := []struct {
		name        string
		cmd         string
		wantMethod  string
		wantURL     string
		wantKind    string
		wantBody    string
		wantHeaders []string
	}{
		{
			name:       "plain get",
			cmd:        `curl https://api.example.com/users`,
			wantMethod: "GET",
			wantURL:    "https://api.example.com/users",
		},
		{
			name:        "json post",
			cmd:         `curl -X POST https://api.example.com/users -H "Content-Type: application/json" -d '{"name":"ada"}'`,
			wantMethod:  "POST",
			wantURL:     "https://api.example.com/users",
			wantKind:    "JSON",
			wantBody:    `{"name":"ada"}`,
			wantHeaders: []string{"Content-Type"},
		},
		{
			name:       "data implies post and form encoding",
			cmd:        `curl http://e.com/login -d user=ada -d pass=x`,
			wantMethod: "POST",
			wantURL:    "http://e.com/login",
			wantKind:   "URL-ENCODE",
			wantBody:   "user=ada&pass=x",
		},
		{
			name:       "attached method and url flag",
			cmd:        `curl -XPATCH --url=http://e.com/items/1 --data-raw 'a=1'`,
			wantMethod: "PATCH",
			wantURL:    "http://e.com/items/1",
			wantKind:   "URL-ENCODE",
			wantBody:   "a=1",
		},
		{
			name:        "json flag",
			cmd:         `curl --json '{"a":1}' http://e.com`,
			wantMethod:  "POST",
			wantURL:     "http://e.com",
			wantKind:    "JSON",
			wantBody:    `{"a":1}`,
			wantHeaders: []string{"Content-Type", "Accept"},
		},
		{
			name:        "ignored flags",
			cmd:         `curl -sSL -k -o out.txt --compressed -A agent/1 http://e.com`,
			wantMethod:  "GET",
			wantURL:     "http://e.com",
			wantHeaders: []string{"User-Agent"},
		},
		{
			name:       "head",
			cmd:        `curl -I http://e.com`,
			wantMethod: "HEAD",
			wantURL:    "http://e.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := ParseCurl(tt.cmd)
			if err != nil {
				t.Fatalf("ParseCurl() error: %v", err)
			}
			if def.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", def.Method, tt.wantMethod)
			}
			if def.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", def.URL, tt.wantURL)
			}
			if def.PayloadKind != tt.wantKind {
				t.Errorf("PayloadKind = %q, want %q", def.PayloadKind, tt.wantKind)
			}
			if def.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", def.Body, tt.wantBody)
			}
			if got := def.Headers.Keys(); len(tt.wantHeaders) > 0 && !reflect.DeepEqual(got, tt.wantHeaders) {
				t.Errorf("headers = %v, want %v", got, tt.wantHeaders)
			}
		})
	}
}

func TestParseCurl_GetModeAndTimeouts(t *testing.T) {
	def, err := ParseCurl(`curl -G http://e.com/search --data-urlencode 'q=a b' -d page=2 -m 2.5 --connect-timeout 4`)
	if err != nil {
		t.Fatalf("ParseCurl() error: %v", err)
	}
	if def.Method != "GET" || def.PayloadKind != "URL-ENCODE" {
		t.Errorf("method %q kind %q", def.Method, def.PayloadKind)
	}
	if v, _ := def.Form.Get("q"); v != "a b" {
		t.Errorf("form q = %q", v)
	}
	if got := def.Form.Keys(); !reflect.DeepEqual(got, []string{"q", "page"}) {
		t.Errorf("form keys = %v", got)
	}
	if def.Timeout != 3 || def.ConnectTimeout != 4 {
		t.Errorf("timeouts = %d, %d, want 3, 4", def.Timeout, def.ConnectTimeout)
	}
}

func TestParseCurl_FormAndUser(t *testing.T) {
	def, err := ParseCurl(`curl -F name=ada -F file=@a.txt -u ada:secret http://e.com/upload`)
	if err != nil {
		t.Fatalf("ParseCurl() error: %v", err)
	}
	if def.Method != "POST" || def.PayloadKind != "MULTIPART" {
		t.Errorf("method %q kind %q", def.Method, def.PayloadKind)
	}
	if def.Form.Len() != 2 {
		t.Errorf("form = %v", def.Form.Keys())
	}
	if v, _ := def.Headers.Get("Authorization"); v != "Basic YWRhOnNlY3JldA==" {
		t.Errorf("Authorization = %q", v)
	}
}

func TestParseCurl_Errors(t *testing.T) {
	for _, cmd := range []string{`curl -s`, `curl http://e.com -X`, `curl 'unterminated`, `curl -m soon http://e.com`} {
		if _, err := ParseCurl(cmd); err == nil {
			t.Errorf("ParseCurl(%q) expected error", cmd)
		}
	}
}

func TestCurl2Php_Stdout(t *testing.T) {
	var stdout bytes.Buffer
	err := Curl2Php(Curl2PhpOptions{
		CurlCommand: `curl -H 'Authorization: Bearer abc' -H 'Accept: text/plain' https://api.example.com/me`,
		OutputFile:  "-",
		Stdout:      &stdout,
	})
	if err != nil {
		t.Fatalf("Curl2Php() error: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, `"Authorization: {{Authorization}}",`) {
		t.Errorf("sensitive header not masked:\n%s", out)
	}
	if !strings.Contains(out, `curl_setopt($ch, CURLOPT_URL, "https://api.example.com/me");`) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "abc") {
		t.Error("token leaked into output")
	}
}

func TestCurl2Php_File(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer

	out := filepath.Join(dir, "nested", "user.html")
	err := Curl2Php(Curl2PhpOptions{
		CurlCommand:   `curl -H 'Authorization: Bearer abc' https://api.example.com/users/42`,
		OutputFile:    out,
		ImportHeaders: true,
		Display:       codegen.DisplayHTML,
		Stderr:        &stderr,
	})
	if err != nil {
		t.Fatalf("Curl2Php() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "<pre>&lt;?php") || !strings.Contains(string(data), "Bearer abc") {
		t.Errorf("output = %s", data)
	}
	if !strings.Contains(stderr.String(), "Created "+out) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestCurl2Php_InvalidMethod(t *testing.T) {
	err := Curl2Php(Curl2PhpOptions{CurlCommand: `curl -X PROPFIND http://e.com`, OutputFile: "-", Stdout: &bytes.Buffer{}})
	if err == nil {
		t.Error("Curl2Php() expected error for unsupported method")
	}
}

func TestSuggestFilename(t *testing.T) {
	tests := map[string]string{
		"https://api.example.com/users":      "users",
		"https://api.example.com/users/42":   "users",
		"https://api.example.com/":           "api_example_com",
		"https://api.example.com/v1/Items.X": "items-x",
	}
	for input, want := range tests {
		if got := suggestFilename(input); got != want {
			t.Errorf("suggestFilename(%q) = %q, want %q", input, got, want)
		}
	}
}
