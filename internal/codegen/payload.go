package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/studiowebux/curlgen/internal/types"
)

// PayloadKind selects how a payload is encoded into the generated code
type PayloadKind string

const (
	PayloadNone      PayloadKind = "NONE"
	PayloadURLEncode PayloadKind = "URL-ENCODE"
	PayloadJSON      PayloadKind = "JSON"
	PayloadXML       PayloadKind = "XML"
	PayloadMultipart PayloadKind = "MULTIPART"
	PayloadText      PayloadKind = "TEXT"
	PayloadBinary    PayloadKind = "BINARY"
	PayloadCustom    PayloadKind = "CUSTOM"
	PayloadGraphQL   PayloadKind = "GRAPHQL"
	PayloadYAML      PayloadKind = "YAML"
	PayloadHTML      PayloadKind = "HTML"
	PayloadOptional  PayloadKind = "OPTIONAL"
)

var kindOrder = []PayloadKind{
	PayloadNone,
	PayloadURLEncode,
	PayloadJSON,
	PayloadXML,
	PayloadMultipart,
	PayloadText,
	PayloadBinary,
	PayloadCustom,
	PayloadGraphQL,
	PayloadYAML,
	PayloadHTML,
	PayloadOptional,
}

// bodyKinds is shared by PUT and DELETE
var bodyKinds = []PayloadKind{
	PayloadNone, PayloadURLEncode, PayloadJSON, PayloadXML, PayloadText,
	PayloadBinary, PayloadCustom, PayloadGraphQL, PayloadYAML, PayloadHTML,
}

// allowedPayloads is the method to payload kind compatibility matrix.
// TRACE is deliberately absent.
var allowedPayloads = map[Method][]PayloadKind{
	MethodGet: {PayloadNone, PayloadURLEncode},
	MethodPost: {
		PayloadNone, PayloadURLEncode, PayloadJSON, PayloadXML, PayloadMultipart,
		PayloadText, PayloadBinary, PayloadCustom, PayloadGraphQL, PayloadYAML, PayloadHTML,
	},
	MethodPut:     bodyKinds,
	MethodDelete:  bodyKinds,
	MethodHead:    {PayloadNone},
	MethodOptions: {PayloadNone, PayloadXML, PayloadJSON},
	MethodPatch:   {PayloadNone, PayloadURLEncode, PayloadJSON, PayloadYAML},
	MethodCustom:  {PayloadOptional},
}

// PayloadKinds returns every payload kind
func PayloadKinds() []PayloadKind {
	out := make([]PayloadKind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// AllowedKinds returns the payload kinds accepted by m. The result is
// empty for methods without a matrix entry.
func AllowedKinds(m Method) []PayloadKind {
	kinds := allowedPayloads[m]
	out := make([]PayloadKind, len(kinds))
	copy(out, kinds)
	return out
}

// Allows reports whether m accepts payload kind k
func Allows(m Method, k PayloadKind) bool {
	for _, allowed := range allowedPayloads[m] {
		if allowed == k {
			return true
		}
	}
	return false
}

// NormalizePayloadKind upper-cases s and maps URL_ENCODE and URLENCODE to
// URL-ENCODE. Unknown names are returned upper-cased; the matrix check
// rejects them.
func NormalizePayloadKind(s string) PayloadKind {
	k := strings.ToUpper(s)
	switch k {
	case "URL_ENCODE", "URLENCODE", "FORM":
		return PayloadURLEncode
	}
	return PayloadKind(k)
}

// KindForContentType maps a Content-Type header value to a payload kind.
// Unrecognised types map to TEXT; an empty type maps to NONE.
func KindForContentType(contentType string) PayloadKind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	switch {
	case ct == "":
		return PayloadNone
	case strings.Contains(ct, "graphql"):
		return PayloadGraphQL
	case strings.Contains(ct, "json"):
		return PayloadJSON
	case ct == "application/x-www-form-urlencoded":
		return PayloadURLEncode
	case strings.HasPrefix(ct, "multipart/"):
		return PayloadMultipart
	case strings.Contains(ct, "xml"):
		return PayloadXML
	case strings.Contains(ct, "yaml"):
		return PayloadYAML
	case ct == "text/html":
		return PayloadHTML
	case ct == "application/octet-stream":
		return PayloadBinary
	default:
		return PayloadText
	}
}

// encodePayload converts raw into the value stored on a Request.
// URL-ENCODE and JSON produce strings; other kinds keep raw as given.
func encodePayload(kind PayloadKind, raw any) (any, error) {
	switch kind {
	case PayloadNone:
		return nil, nil
	case PayloadURLEncode:
		return encodeForm(raw)
	case PayloadJSON:
		return encodeJSON(raw)
	default:
		return raw, nil
	}
}

func encodeForm(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case *types.Fields:
		return v.Encode(), nil
	case url.Values:
		return v.Encode(), nil
	case map[string]string:
		f := types.NewFields()
		for _, k := range sortedKeys(v) {
			f.Set(k, v[k])
		}
		return f.Encode(), nil
	case map[string]any:
		f := types.NewFields()
		for _, k := range sortedKeys(v) {
			s, ok := scalarString(v[k])
			if !ok {
				return "", fmt.Errorf("%w: form field %q is not a scalar", ErrInvalidPayload, k)
			}
			f.Set(k, s)
		}
		return f.Encode(), nil
	case string:
		// re-encode so the stored query is canonical
		return types.ParseQuery(v).Encode(), nil
	default:
		return "", fmt.Errorf("%w: cannot form-encode %T", ErrInvalidPayload, raw)
	}
}

func encodeJSON(raw any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	doc := strings.TrimSuffix(buf.String(), "\n")

	// the document is embedded in a double-quoted PHP string
	return strings.ReplaceAll(doc, `"`, `\"`), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return fmt.Sprint(s), true
	}
	return "", false
}

// payloadText returns the stored payload as it is written into the code
func payloadText(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case []byte:
		return string(p)
	case json.RawMessage:
		return string(p)
	case fmt.Stringer:
		return p.String()
	}
	return fmt.Sprint(v)
}

func isEmptyPayload(v any) bool {
	switch p := v.(type) {
	case nil:
		return true
	case *types.Fields:
		return p.Len() == 0
	}
	return payloadText(v) == ""
}
