package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/studiowebux/curlgen/internal/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		method     string
		wantMethod Method
		wantErr    error
	}{
		{name: "get", url: "http://e.com/x", method: "GET", wantMethod: MethodGet},
		{name: "lowercase method", url: "https://api.example.com/users?id=1", method: "post", wantMethod: MethodPost},
		{name: "mixed case custom", url: "http://localhost:8080", method: "Custom", wantMethod: MethodCustom},
		{name: "unknown method", url: "http://e.com", method: "FETCH", wantErr: ErrInvalidMethod},
		{name: "trace is not accepted", url: "http://e.com", method: "TRACE", wantErr: ErrInvalidMethod},
		{name: "empty method", url: "http://e.com", method: "", wantErr: ErrInvalidMethod},
		{name: "method checked first", url: "not a url", method: "FETCH", wantErr: ErrInvalidMethod},
		{name: "not a url", url: "not a url", method: "GET", wantErr: ErrInvalidURL},
		{name: "relative path", url: "/relative/path", method: "GET", wantErr: ErrInvalidURL},
		{name: "missing host", url: "http://", method: "GET", wantErr: ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := New(tt.url, tt.method)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				if req != nil {
					t.Error("New() returned a request alongside an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if req.Method() != tt.wantMethod {
				t.Errorf("Method() = %q, want %q", req.Method(), tt.wantMethod)
			}
			if req.URL() != tt.url {
				t.Errorf("URL() = %q, want %q", req.URL(), tt.url)
			}
		})
	}
}

// expectedMatrix is written out independently of allowedPayloads
var expectedMatrix = map[Method][]PayloadKind{
	MethodGet:     {PayloadNone, PayloadURLEncode},
	MethodPost:    {PayloadNone, PayloadURLEncode, PayloadJSON, PayloadXML, PayloadMultipart, PayloadText, PayloadBinary, PayloadCustom, PayloadGraphQL, PayloadYAML, PayloadHTML},
	MethodPut:     {PayloadNone, PayloadURLEncode, PayloadJSON, PayloadXML, PayloadText, PayloadBinary, PayloadCustom, PayloadGraphQL, PayloadYAML, PayloadHTML},
	MethodDelete:  {PayloadNone, PayloadURLEncode, PayloadJSON, PayloadXML, PayloadText, PayloadBinary, PayloadCustom, PayloadGraphQL, PayloadYAML, PayloadHTML},
	MethodHead:    {PayloadNone},
	MethodOptions: {PayloadNone, PayloadXML, PayloadJSON},
	MethodPatch:   {PayloadNone, PayloadURLEncode, PayloadJSON, PayloadYAML},
	MethodCustom:  {PayloadOptional},
}

func contains(kinds []PayloadKind, k PayloadKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func TestSetPayload_Matrix(t *testing.T) {
	for _, m := range Methods() {
		allowed, ok := expectedMatrix[m]
		if !ok {
			t.Fatalf("Methods() returned %q which has no expected matrix row", m)
		}

		for _, k := range PayloadKinds() {
			t.Run(string(m)+"/"+string(k), func(t *testing.T) {
				req, err := New("http://e.com/x", string(m))
				if err != nil {
					t.Fatalf("New() unexpected error: %v", err)
				}

				// seed a payload so a rejected call can be checked for side effects
				seedKind := allowed[len(allowed)-1]
				if err := req.SetPayload(string(seedKind), "keep"); err != nil {
					t.Fatalf("seeding %s payload: %v", seedKind, err)
				}
				before := req.Code()

				err = req.SetPayload(strings.ToLower(string(k)), "value")
				want := contains(allowed, k)

				if want && err != nil {
					t.Fatalf("SetPayload(%s) on %s: unexpected error %v", k, m, err)
				}
				if !want {
					if !errors.Is(err, ErrIncompatiblePayload) {
						t.Fatalf("SetPayload(%s) on %s: error = %v, want ErrIncompatiblePayload", k, m, err)
					}
					if req.Code() != before {
						t.Error("rejected SetPayload changed the request")
					}
					if req.PayloadKind() != seedKind {
						t.Errorf("PayloadKind() = %q after rejected call, want %q", req.PayloadKind(), seedKind)
					}
				}
				if got := Allows(m, k); got != want {
					t.Errorf("Allows(%s, %s) = %v, want %v", m, k, got, want)
				}
			})
		}
	}
}

func TestSetPayload_ErrorNamesKindAndMethod(t *testing.T) {
	req, err := New("http://e.com", "GET")
	if err != nil {
		t.Fatal(err)
	}

	err = req.SetPayload("json", map[string]string{"a": "b"})

	var payloadErr *PayloadError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("SetPayload() error = %v, want *PayloadError", err)
	}
	if payloadErr.Kind != PayloadJSON || payloadErr.Method != MethodGet {
		t.Errorf("PayloadError = %+v, want kind JSON and method GET", payloadErr)
	}
	msg := err.Error()
	if !strings.Contains(msg, "JSON") || !strings.Contains(msg, "GET") {
		t.Errorf("error message %q does not name both kind and method", msg)
	}
}

func TestSetPayload_UnknownKind(t *testing.T) {
	req, _ := New("http://e.com", "POST")
	if err := req.SetPayload("protobuf", "x"); !errors.Is(err, ErrIncompatiblePayload) {
		t.Errorf("SetPayload(protobuf) error = %v, want ErrIncompatiblePayload", err)
	}
}

func TestSetPayload_TraceAcceptsNothing(t *testing.T) {
	req := &Request{url: "http://e.com", method: MethodTrace}

	for _, k := range PayloadKinds() {
		if err := req.SetPayload(string(k), "x"); !errors.Is(err, ErrIncompatiblePayload) {
			t.Errorf("SetPayload(%s) on TRACE error = %v, want ErrIncompatiblePayload", k, err)
		}
	}
	if len(AllowedKinds(MethodTrace)) != 0 {
		t.Errorf("AllowedKinds(TRACE) = %v, want empty", AllowedKinds(MethodTrace))
	}
}

func TestSetPayload_URLEncodeAliases(t *testing.T) {
	for _, alias := range []string{"URL-ENCODE", "url-encode", "URL_ENCODE", "urlencode"} {
		req, _ := New("http://e.com", "POST")
		if err := req.SetPayload(alias, map[string]string{"a": "1"}); err != nil {
			t.Errorf("SetPayload(%q) unexpected error: %v", alias, err)
			continue
		}
		if req.PayloadKind() != PayloadURLEncode {
			t.Errorf("SetPayload(%q) kind = %q, want URL-ENCODE", alias, req.PayloadKind())
		}
	}
}

func TestSetPayload_InvalidValueKeepsState(t *testing.T) {
	req, _ := New("http://e.com", "POST")
	if err := req.SetPayload("TEXT", "hello"); err != nil {
		t.Fatal(err)
	}
	before := req.Code()

	err := req.SetPayload("JSON", make(chan int))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("SetPayload(chan) error = %v, want ErrInvalidPayload", err)
	}
	if req.Code() != before || req.PayloadKind() != PayloadText {
		t.Error("failed SetPayload changed the request")
	}
}

func TestSetPayload_NoneClearsPayload(t *testing.T) {
	req, _ := New("http://e.com", "POST")
	if err := req.SetPayload("TEXT", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := req.SetPayload("NONE", "ignored"); err != nil {
		t.Fatal(err)
	}
	if req.HasPayload() {
		t.Error("HasPayload() = true after NONE payload")
	}
	if strings.Contains(req.Code(), "$payloads") {
		t.Error("Code() mentions $payloads after NONE payload")
	}
}

func TestSetHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers *types.Fields
		wantErr bool
	}{
		{name: "nil", headers: nil, wantErr: true},
		{name: "empty mapping", headers: types.NewFields(), wantErr: true},
		{name: "positional list", headers: types.NewFields("0", "a", "1", "b"), wantErr: true},
		{name: "single positional item", headers: types.NewFields("0", "Accept: */*"), wantErr: true},
		{name: "empty name", headers: types.NewFields("", "x"), wantErr: true},
		{name: "authorization", headers: types.NewFields("Authorization", "Bearer x")},
		{name: "numeric but not sequential", headers: types.NewFields("1", "a")},
		{name: "several", headers: types.NewFields("Accept", "application/json", "X-Trace", "abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := New("http://e.com", "GET")
			previous := types.NewFields("X-Previous", "1")
			if err := req.SetHeaders(previous); err != nil {
				t.Fatal(err)
			}

			err := req.SetHeaders(tt.headers)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHeaders) {
					t.Fatalf("SetHeaders() error = %v, want ErrInvalidHeaders", err)
				}
				if got, _ := req.Headers().Get("X-Previous"); got != "1" || req.Headers().Len() != 1 {
					t.Error("rejected SetHeaders changed the stored headers")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetHeaders() unexpected error: %v", err)
			}
			if req.Headers().Len() != tt.headers.Len() {
				t.Errorf("Headers().Len() = %d, want %d", req.Headers().Len(), tt.headers.Len())
			}
		})
	}
}

func TestSetHeaders_StoresCopy(t *testing.T) {
	req, _ := New("http://e.com", "GET")
	h := types.NewFields("Accept", "text/plain")
	if err := req.SetHeaders(h); err != nil {
		t.Fatal(err)
	}

	h.Set("Accept", "changed")
	h.Set("X-New", "1")

	got := req.Headers()
	if v, _ := got.Get("Accept"); v != "text/plain" || got.Len() != 1 {
		t.Errorf("stored headers changed with the caller's value: %v", got.Keys())
	}
}

func TestSetTimeouts(t *testing.T) {
	req, _ := New("http://e.com", "GET")

	if timeout, connect := req.Timeouts(); timeout != 0 || connect != 0 {
		t.Errorf("default Timeouts() = %d, %d, want 0, 0", timeout, connect)
	}

	req.SetDefaultTimeouts()
	if timeout, connect := req.Timeouts(); timeout != DefaultTimeout || connect != DefaultConnectTimeout {
		t.Errorf("Timeouts() = %d, %d, want %d, %d", timeout, connect, DefaultTimeout, DefaultConnectTimeout)
	}

	req.SetTimeouts(5, 0)
	if timeout, connect := req.Timeouts(); timeout != 5 || connect != 0 {
		t.Errorf("Timeouts() = %d, %d, want 5, 0", timeout, connect)
	}
}
