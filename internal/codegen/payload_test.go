package codegen

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/studiowebux/curlgen/internal/types"
)

func TestEncodeForm(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{name: "ordered fields", raw: types.NewFields("b", "2", "a", "1"), want: "b=2&a=1"},
		{name: "reserved characters", raw: types.NewFields("q", "a b&c=d"), want: "q=a+b%26c%3Dd"},
		{name: "string map sorted", raw: map[string]string{"b": "2", "a": "1"}, want: "a=1&b=2"},
		{name: "any map scalars", raw: map[string]any{"n": 3, "ok": true, "s": "x"}, want: "n=3&ok=true&s=x"},
		{name: "url values", raw: url.Values{"k": {"1", "2"}}, want: "k=1&k=2"},
		{name: "encoded string is canonicalised", raw: "a=1%202&b", want: "a=1+2&b="},
		{name: "nil", raw: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeForm(tt.raw)
			if err != nil {
				t.Fatalf("encodeForm() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("encodeForm() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeForm_Rejects(t *testing.T) {
	for name, raw := range map[string]any{
		"nested map": map[string]any{"a": map[string]any{"b": 1}},
		"slice":      []string{"a", "b"},
		"number":     42,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := encodeForm(raw); !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("encodeForm() error = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestEncodeJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{name: "map", raw: map[string]string{"x": "y"}, want: `{\"x\":\"y\"}`},
		{name: "raw message keeps order", raw: json.RawMessage(`{"b": 1, "a": [1, 2]}`), want: `{\"b\":1,\"a\":[1,2]}`},
		{name: "fields keep order", raw: types.NewFields("z", "1", "a", "2"), want: `{\"z\":\"1\",\"a\":\"2\"}`},
		{name: "html not escaped", raw: map[string]string{"h": "<b>&"}, want: `{\"h\":\"<b>&\"}`},
		{name: "fields html not escaped", raw: types.NewFields("h", "<b>&"), want: `{\"h\":\"<b>&\"}`},
		{name: "plain string", raw: "hello", want: `\"hello\"`},
		{name: "number", raw: 12, want: `12`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeJSON(tt.raw)
			if err != nil {
				t.Fatalf("encodeJSON() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("encodeJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeJSON_InvalidRawMessage(t *testing.T) {
	if _, err := encodeJSON(json.RawMessage(`{"a":`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("encodeJSON() error = %v, want ErrInvalidPayload", err)
	}
}

func TestEncodePayload_VerbatimKinds(t *testing.T) {
	raw := "<note>\"quoted\"</note>"
	for _, k := range []PayloadKind{PayloadXML, PayloadText, PayloadBinary, PayloadCustom, PayloadGraphQL, PayloadYAML, PayloadHTML, PayloadOptional, PayloadMultipart} {
		got, err := encodePayload(k, raw)
		if err != nil {
			t.Fatalf("encodePayload(%s) unexpected error: %v", k, err)
		}
		if got != raw {
			t.Errorf("encodePayload(%s) = %v, want the raw value", k, got)
		}
	}
}

func TestNormalizePayloadKind(t *testing.T) {
	tests := map[string]PayloadKind{
		"json":       PayloadJSON,
		"Url-Encode": PayloadURLEncode,
		"URL_ENCODE": PayloadURLEncode,
		"form":       PayloadURLEncode,
		"graphql":    PayloadGraphQL,
		"weird":      PayloadKind("WEIRD"),
	}
	for input, want := range tests {
		if got := NormalizePayloadKind(input); got != want {
			t.Errorf("NormalizePayloadKind(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestKindForContentType(t *testing.T) {
	tests := map[string]PayloadKind{
		"":                                  PayloadNone,
		"application/json":                  PayloadJSON,
		"application/json; charset=utf-8":   PayloadJSON,
		"application/vnd.api+json":          PayloadJSON,
		"application/graphql":               PayloadGraphQL,
		"application/x-www-form-urlencoded": PayloadURLEncode,
		"multipart/form-data; boundary=xyz": PayloadMultipart,
		"application/xml":                   PayloadXML,
		"text/xml":                          PayloadXML,
		"application/x-yaml":                PayloadYAML,
		"text/html":                         PayloadHTML,
		"application/octet-stream":          PayloadBinary,
		"text/plain":                        PayloadText,
		"application/pdf":                   PayloadText,
	}
	for ct, want := range tests {
		if got := KindForContentType(ct); got != want {
			t.Errorf("KindForContentType(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestAllowedKinds_ReturnsCopy(t *testing.T) {
	kinds := AllowedKinds(MethodGet)
	kinds[0] = PayloadJSON

	if Allows(MethodGet, PayloadJSON) {
		t.Error("modifying AllowedKinds result changed the matrix")
	}
}

func TestPayloadText(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"bytes", []byte("raw"), "raw"},
		{"fields", types.NewFields("a", "1"), "a=1"},
		{"number", 7, "7"},
	}
	for _, tt := range tests {
		if got := payloadText(tt.v); got != tt.want {
			t.Errorf("%s: payloadText() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
