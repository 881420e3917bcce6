package types

// RequestDefinition describes one request as written in a definition file
// (.http, .yaml, .json) or produced by a converter. It carries loosely
// typed input; validation happens when it is turned into a codegen.Request.
type RequestDefinition struct {
	Name           string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description    string       `json:"description,omitempty" yaml:"description,omitempty"`
	Method         string       `json:"method" yaml:"method"`
	URL            string       `json:"url" yaml:"url"`
	PayloadKind    string       `json:"payloadKind,omitempty" yaml:"payloadKind,omitempty"`
	Body           string       `json:"body,omitempty" yaml:"body,omitempty"`
	Form           *Fields      `json:"form,omitempty" yaml:"form,omitempty"`
	JSON           JSONDocument `json:"json,omitempty" yaml:"json,omitempty"`
	Headers        *Fields      `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timeout        int          `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	ConnectTimeout int          `json:"connectTimeout,omitempty" yaml:"connectTimeout,omitempty"`

	// Line is the 1-based line where the request starts in an .http file
	Line int `json:"-" yaml:"-"`
}

// HasPayload reports whether any payload source is set
func (d *RequestDefinition) HasPayload() bool {
	return d.Body != "" || d.Form.Len() > 0 || !d.JSON.IsZero()
}

// Title returns the name, or "METHOD URL" when the request is unnamed
func (d *RequestDefinition) Title() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Method + " " + d.URL
}

// RequestFile is a parsed definition file
type RequestFile struct {
	Path     string
	Format   string
	Requests []RequestDefinition
}
