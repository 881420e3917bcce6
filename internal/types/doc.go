/*
Package types defines the data structures shared by curlgen packages.

# Request definitions

RequestDefinition is the loosely typed form of a request as it appears in
a definition file or a converted HAR/cURL input:
  - Method and URL, validated later by codegen.New
  - PayloadKind, or empty to let the parser infer it from Content-Type
  - one payload source: Body (text), Form (ordered fields) or JSON
  - Headers and timeouts

# Ordered fields

Fields is an insertion-ordered string mapping. Generated code lists
headers and form fields in the order they were written, so plain Go maps
cannot be used. Fields decodes from JSON objects and YAML mappings in
document order. Arrays and sequences decode to the keys "0".."n-1", which
lets the code generator recognise a list given where a mapping is
expected.

JSONDocument keeps a JSON payload as raw bytes for the same reason; when
read from YAML the node tree is converted to JSON in document order.
*/
package types
