/*
Package codegen turns request parameters into a ready-to-run PHP cURL snippet.

# Overview

A Request is created from a URL and a method, configured with optional
payload, headers and timeouts, then rendered:

	req, err := codegen.New("https://api.example.com/users", "post")
	if err != nil {
		return err
	}
	if err := req.SetPayload("json", map[string]string{"name": "ada"}); err != nil {
		return err
	}
	req.SetDefaultTimeouts()
	code, err := req.Render(codegen.DisplayRaw)

Every setter validates its input immediately and leaves the Request
untouched on failure. Rendering never fails for a valid Request except for
an unknown display mode.

# Validation

New accepts the methods GET, POST, PUT, DELETE, HEAD, OPTIONS, PATCH and
CUSTOM (case-insensitive). The URL must have a scheme and a host.

Each method accepts a fixed set of payload kinds:

	GET      NONE, URL-ENCODE
	POST     NONE, URL-ENCODE, JSON, XML, MULTIPART, TEXT, BINARY, CUSTOM, GRAPHQL, YAML, HTML
	PUT      NONE, URL-ENCODE, JSON, XML, TEXT, BINARY, CUSTOM, GRAPHQL, YAML, HTML
	DELETE   same as PUT
	HEAD     NONE
	OPTIONS  NONE, XML, JSON
	PATCH    NONE, URL-ENCODE, JSON, YAML
	CUSTOM   OPTIONAL

TRACE can be rendered but accepts no payload kind.

Headers must be a non-empty ordered mapping. A mapping whose keys are
"0".."n-1" is treated as a list and rejected.

# Payload encoding

URL-ENCODE payloads become a form-encoded query string. JSON payloads are
marshalled and every double quote is backslash-escaped so the document can
sit inside a double-quoted PHP string. Other kinds are embedded as given.

For GET, the encoded query is parsed back and emitted as an array passed to
http_build_query, and the URL literal is form-decoded before the query is
appended.

# Display modes

	DisplayRaw        the code as is
	DisplayHTML       HTML-escaped inside <pre></pre>
	DisplayHighlight  chroma-highlighted HTML with inline styles

# Errors

All errors wrap one of the package sentinels and can be tested with
errors.Is. A rejected payload kind returns a *PayloadError naming the kind
and the method.
*/
package codegen
