package converter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
)

const sampleHAR = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "browser", "version": "1"},
    "entries": [
      {
        "request": {
          "method": "GET",
          "url": "https://api.example.com/search?q=go%20lang&page=2",
          "headers": [
            {"name": ":authority", "value": "api.example.com"},
            {"name": "Accept", "value": "application/json"},
            {"name": "Cookie", "value": "session=secret"}
          ],
          "queryString": [
            {"name": "q", "value": "go lang"},
            {"name": "page", "value": "2"}
          ]
        },
        "response": {"status": 200, "statusText": "OK"}
      },
      {
        "request": {
          "method": "POST",
          "url": "https://api.example.com/users",
          "headers": [
            {"name": "Content-Type", "value": "application/json"},
            {"name": "Content-Length", "value": "14"},
            {"name": "Authorization", "value": "Bearer abc"}
          ],
          "postData": {"mimeType": "application/json", "text": "{\"name\":\"ada\"}"}
        },
        "response": {"status": 201, "statusText": "Created"}
      },
      {
        "request": {
          "method": "POST",
          "url": "https://api.example.com/users",
          "headers": [],
          "postData": {
            "mimeType": "application/x-www-form-urlencoded",
            "params": [{"name": "name", "value": "grace"}]
          }
        },
        "response": {"status": 500, "statusText": "Error"}
      },
      {
        "request": {"method": "CONNECT", "url": "https://api.example.com:443", "headers": []},
        "response": {"status": 200}
      },
      {
        "request": {"method": "GET", "url": "wss://api.example.com/socket", "headers": []},
        "response": {"status": 101}
      },
      {
        "request": {
          "method": "HEAD",
          "url": "https://cdn.example.com/",
          "headers": [],
          "postData": {"mimeType": "text/plain", "text": "unexpected"}
        },
        "response": {"status": 200}
      }
    ]
  }
}`

func writeHAR(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.har")
	if err := os.WriteFile(path, []byte(sampleHAR), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestHar2Php(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	var stderr bytes.Buffer

	result, err := Har2Php(context.Background(), Har2PhpOptions{
		HarFile:   writeHAR(t),
		OutputDir: outDir,
		Workers:   2,
		Stderr:    &stderr,
	})
	if err != nil {
		t.Fatalf("Har2Php() error: %v", err)
	}

	// CONNECT is rejected, wss is skipped and HEAD cannot carry its body
	if result.Total != 6 || result.Converted != 3 {
		t.Errorf("result = %+v, want 3 of 6 converted", result)
	}

	files := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, filepath.Base(f))
	}
	sort.Strings(files)
	want := []string{"get-search.php", "post-users-2.php", "post-users.php"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}

	search := readOutput(t, filepath.Join(outDir, "get-search.php"))
	for _, s := range []string{
		"    'q' => 'go lang',\n    'page' => '2'\n]);",
		`curl_setopt($ch, CURLOPT_URL, "https://api.example.com/search?" . $payloads);`,
		`"Accept: application/json",`,
	} {
		if !strings.Contains(search, s) {
			t.Errorf("get-search.php missing %q\n%s", s, search)
		}
	}
	if strings.Contains(search, "authority") || strings.Contains(search, "Cookie") {
		t.Errorf("pseudo or sensitive header kept:\n%s", search)
	}

	users := readOutput(t, filepath.Join(outDir, "post-users.php"))
	if !strings.Contains(users, `$payloads = "{\"name\":\"ada\"}";`) {
		t.Errorf("post-users.php payload wrong:\n%s", users)
	}
	if strings.Contains(users, "Content-Length") || strings.Contains(users, "Bearer") {
		t.Errorf("post-users.php kept a dropped header:\n%s", users)
	}

	form := readOutput(t, filepath.Join(outDir, "post-users-2.php"))
	if !strings.Contains(form, `$payloads = "name=grace";`) {
		t.Errorf("post-users-2.php payload wrong:\n%s", form)
	}

	if !strings.Contains(stderr.String(), "Converted 3/6 entries") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestHar2Php_FilterQueryAndHeaders(t *testing.T) {
	outDir := t.TempDir()

	result, err := Har2Php(context.Background(), Har2PhpOptions{
		HarFile:       writeHAR(t),
		OutputDir:     outDir,
		Query:         "[?response.status==`201`]",
		ImportHeaders: true,
		Timeout:       12,
		Stderr:        &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Har2Php() error: %v", err)
	}
	if result.Total != 1 || result.Converted != 1 {
		t.Fatalf("result = %+v", result)
	}

	code := readOutput(t, result.Files[0])
	if !strings.Contains(code, `"Authorization: Bearer abc",`) {
		t.Errorf("imported header missing:\n%s", code)
	}
	if !strings.Contains(code, "CURLOPT_TIMEOUT, 12);") {
		t.Errorf("default timeout missing:\n%s", code)
	}

	result, err = Har2Php(context.Background(), Har2PhpOptions{
		HarFile:   writeHAR(t),
		OutputDir: outDir,
		Filter:    "cdn.example.com",
		Stderr:    &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Har2Php() error: %v", err)
	}
	if result.Converted != 0 {
		t.Errorf("Converted = %d, want 0", result.Converted)
	}
}

func TestHar2Php_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.har")
	os.WriteFile(empty, []byte(`{"log":{"entries":[]}}`), 0644)
	broken := filepath.Join(dir, "broken.har")
	os.WriteFile(broken, []byte(`{"log":`), 0644)

	tests := []struct {
		name string
		opts Har2PhpOptions
	}{
		{"missing file", Har2PhpOptions{HarFile: filepath.Join(dir, "nope.har")}},
		{"no entries", Har2PhpOptions{HarFile: empty}},
		{"invalid json", Har2PhpOptions{HarFile: broken}},
		{"invalid query", Har2PhpOptions{HarFile: writeHAR(t), Query: "[?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.OutputDir = dir
			if _, err := Har2Php(context.Background(), tt.opts); err == nil {
				t.Error("Har2Php() expected error")
			}
		})
	}
}

func TestHar2Php_HTMLDisplayUsesHTMLExtension(t *testing.T) {
	if got := outputExtension(1); got != ".html" {
		t.Errorf("outputExtension(html) = %q", got)
	}
	if got := outputExtension(0); got != ".php" {
		t.Errorf("outputExtension(raw) = %q", got)
	}
}

func TestSuggestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url    string
		method string
		want   string
	}{
		{"https://api.example.com/v1/users", "GET", "get-v1-users"},
		{"https://api.example.com/", "POST", "post-request-3"},
		{"https://api.example.com/a.b/C_d", "DELETE", "delete-a-b-c_d"},
	}
	for _, tt := range tests {
		if got := suggestFilenameFromURL(tt.url, tt.method, 3); got != tt.want {
			t.Errorf("suggestFilenameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestUniqueFilename(t *testing.T) {
	used := map[string]int{}
	got := []string{
		uniqueFilename(used, "get-x", ".php"),
		uniqueFilename(used, "get-x", ".php"),
		uniqueFilename(used, "get-y", ".php"),
		uniqueFilename(used, "get-x", ".php"),
	}
	want := []string{"get-x.php", "get-x-2.php", "get-y.php", "get-x-3.php"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("uniqueFilename() sequence = %v, want %v", got, want)
	}
}
