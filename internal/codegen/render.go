package codegen

import (
	"fmt"
	"strings"

	"github.com/studiowebux/curlgen/internal/types"
)

// curlOptions is the method-specific part of the generated code
type curlOptions struct {
	flag          string // boolean CURLOPT_* set to true, or ""
	customRequest string // CURLOPT_CUSTOMREQUEST value, or ""
	attachPayload bool
}

func optionsFor(m Method) curlOptions {
	switch m {
	case MethodGet:
		return curlOptions{flag: "CURLOPT_HTTPGET"}
	case MethodPost:
		return curlOptions{flag: "CURLOPT_POST", attachPayload: true}
	case MethodPut, MethodDelete, MethodOptions, MethodPatch, MethodCustom:
		return curlOptions{customRequest: string(m), attachPayload: true}
	case MethodHead:
		return curlOptions{flag: "CURLOPT_NOBODY"}
	case MethodTrace:
		return curlOptions{customRequest: string(MethodTrace)}
	}
	panic(fmt.Sprintf("codegen: no curl options for method %q", m))
}

// Code returns the generated PHP source. The output depends only on the
// Request state, so repeated calls return identical strings.
func (r *Request) Code() string {
	var sb strings.Builder
	hasPayload := r.HasPayload()
	hasHeaders := r.headers.Len() > 0

	sb.WriteString("<?php\n\n")

	if hasPayload {
		if r.method == MethodGet {
			writeQueryBuilder(&sb, payloadText(r.payload))
		} else {
			fmt.Fprintf(&sb, "$payloads = \"%s\";\n\n", payloadText(r.payload))
		}
	}

	if hasHeaders {
		sb.WriteString("$headers = [\n    ")
		r.headers.Each(func(name, value string) {
			fmt.Fprintf(&sb, "\"%s: %s\",\n    ", escapeDoubleQuotes(name), escapeDoubleQuotes(value))
		})
		sb.WriteString("];\n\n")
	}

	sb.WriteString("$ch = curl_init();\n\n")

	if r.method == MethodGet && hasPayload {
		fmt.Fprintf(&sb, "curl_setopt($ch, CURLOPT_URL, \"%s?\" . $payloads);\n", decodeURL(r.url))
	} else {
		fmt.Fprintf(&sb, "curl_setopt($ch, CURLOPT_URL, \"%s\");\n", r.url)
	}

	opts := optionsFor(r.method)
	if opts.flag != "" {
		fmt.Fprintf(&sb, "curl_setopt($ch, %s, true);\n", opts.flag)
	} else {
		fmt.Fprintf(&sb, "curl_setopt($ch, CURLOPT_CUSTOMREQUEST, \"%s\");\n", opts.customRequest)
	}
	if opts.attachPayload && hasPayload {
		sb.WriteString("curl_setopt($ch, CURLOPT_POSTFIELDS, $payloads);\n")
	}
	if hasHeaders {
		sb.WriteString("curl_setopt($ch, CURLOPT_HTTPHEADER, $headers);\n")
	}

	sb.WriteString("curl_setopt($ch, CURLOPT_RETURNTRANSFER, true);\n")
	if r.timeout > 0 {
		fmt.Fprintf(&sb, "curl_setopt($ch, CURLOPT_TIMEOUT, %d);\n", r.timeout)
	}
	if r.connectTimeout > 0 {
		fmt.Fprintf(&sb, "curl_setopt($ch, CURLOPT_CONNECTTIMEOUT, %d);\n", r.connectTimeout)
	}
	sb.WriteString("$response = curl_exec($ch);\n\n")
	sb.WriteString("curl_close($ch);\n\n")
	sb.WriteString("echo $response;")

	return sb.String()
}

// writeQueryBuilder re-parses an encoded query and emits it as a PHP array
// passed through http_build_query, one entry per line in query order.
func writeQueryBuilder(sb *strings.Builder, query string) {
	fields := types.ParseQuery(query)

	entries := make([]string, 0, fields.Len())
	fields.Each(func(key, value string) {
		entries = append(entries, fmt.Sprintf("    '%s' => '%s'", escapeSingleQuotes(key), escapeSingleQuotes(value)))
	})

	sb.WriteString("$payloads = http_build_query([\n")
	sb.WriteString(strings.Join(entries, ",\n"))
	sb.WriteString("\n]);\n\n")
}

// decodeURL reverses form encoding in the URL literal. Malformed escapes
// stay as written while the valid ones around them are decoded.
func decodeURL(raw string) string {
	return types.UnescapeQuery(raw)
}

func escapeDoubleQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

var singleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeSingleQuotes(s string) string {
	return singleQuoteEscaper.Replace(s)
}
