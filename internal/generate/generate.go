// Package generate turns request definitions read from files or converters
// into codegen requests and rendered snippets.
package generate

import (
	"encoding/json"
	"fmt"

	"github.com/studiowebux/curlgen/internal/codegen"
	"github.com/studiowebux/curlgen/internal/types"
)

// Options controls Snippet
type Options struct {
	// Timeout and ConnectTimeout apply when the definition sets none
	Timeout        int
	ConnectTimeout int

	Display codegen.DisplayMode
	Render  codegen.RenderOptions
}

// Build validates def and returns the equivalent codegen.Request
func Build(def *types.RequestDefinition) (*codegen.Request, error) {
	req, err := codegen.New(def.URL, def.Method)
	if err != nil {
		return nil, fmt.Errorf("invalid request %q: %w", def.Title(), err)
	}

	kind := PayloadKind(def)
	if kind != codegen.PayloadNone {
		if err := req.SetPayload(string(kind), payloadValue(def, kind)); err != nil {
			return nil, fmt.Errorf("invalid payload for %q: %w", def.Title(), err)
		}
	}

	if def.Headers.Len() > 0 {
		if err := req.SetHeaders(def.Headers); err != nil {
			return nil, fmt.Errorf("invalid headers for %q: %w", def.Title(), err)
		}
	}

	if def.Timeout > 0 || def.ConnectTimeout > 0 {
		req.SetTimeouts(def.Timeout, def.ConnectTimeout)
	}

	return req, nil
}

// Snippet builds def and renders it
func Snippet(def *types.RequestDefinition, opts Options) (string, error) {
	withDefaults := *def
	if withDefaults.Timeout == 0 {
		withDefaults.Timeout = opts.Timeout
	}
	if withDefaults.ConnectTimeout == 0 {
		withDefaults.ConnectTimeout = opts.ConnectTimeout
	}

	req, err := Build(&withDefaults)
	if err != nil {
		return "", err
	}
	return req.RenderWith(opts.Display, opts.Render)
}

// PayloadKind returns the payload kind for def. An explicit kind wins.
// Otherwise CUSTOM requests with a payload use OPTIONAL, form fields
// imply URL-ENCODE, a JSON document implies JSON, and a text body is
// classified by its Content-Type header (URL-ENCODE for GET, TEXT
// elsewhere when the header is missing).
func PayloadKind(def *types.RequestDefinition) codegen.PayloadKind {
	if def.PayloadKind != "" {
		return codegen.NormalizePayloadKind(def.PayloadKind)
	}
	if !def.HasPayload() {
		return codegen.PayloadNone
	}

	method, _ := codegen.ParseMethod(def.Method)
	switch {
	case method == codegen.MethodCustom:
		return codegen.PayloadOptional
	case !def.JSON.IsZero():
		return codegen.PayloadJSON
	case def.Body == "" && def.Form.Len() > 0:
		return codegen.PayloadURLEncode
	}

	contentType, _ := def.Headers.GetFold("Content-Type")
	kind := codegen.KindForContentType(contentType)
	if kind == codegen.PayloadNone {
		if method == codegen.MethodGet {
			return codegen.PayloadURLEncode
		}
		return codegen.PayloadText
	}
	return kind
}

// payloadValue picks the definition field that feeds kind
func payloadValue(def *types.RequestDefinition, kind codegen.PayloadKind) any {
	switch kind {
	case codegen.PayloadURLEncode:
		if def.Form.Len() > 0 {
			return def.Form
		}
		return def.Body

	case codegen.PayloadJSON:
		switch {
		case !def.JSON.IsZero():
			return json.RawMessage(def.JSON)
		case def.Body != "" && json.Valid([]byte(def.Body)):
			return json.RawMessage(def.Body)
		case def.Body != "":
			return def.Body
		default:
			return def.Form
		}
	}

	switch {
	case def.Body != "":
		return def.Body
	case !def.JSON.IsZero():
		return string(def.JSON)
	case def.Form.Len() > 0:
		return def.Form.Encode()
	}
	return ""
}
