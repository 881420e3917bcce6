// Package highlight renders source code with chroma, either as inline-styled
// HTML for web display or as ANSI escapes for terminals.
package highlight

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	// DefaultStyle is used when Options.Style is empty or unknown
	DefaultStyle = "github"

	// DefaultLanguage is the lexer for generated snippets
	DefaultLanguage = "php"

	terminalFormatter = "terminal256"
)

// Options controls highlighting
type Options struct {
	Style       string
	Language    string
	LineNumbers bool
}

func (o Options) style() *chroma.Style {
	name := o.Style
	if name == "" {
		name = DefaultStyle
	}
	return styles.Get(name)
}

func (o Options) lexer() chroma.Lexer {
	name := o.Language
	if name == "" {
		name = DefaultLanguage
	}
	lexer := lexers.Get(name)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// HTML returns code as a <pre> block with inline styles
func HTML(code string, opts Options) (string, error) {
	formatter := chromahtml.New(
		chromahtml.WithClasses(false),
		chromahtml.WithLineNumbers(opts.LineNumbers),
	)
	return format(code, opts, formatter)
}

// Terminal returns code with 256-color ANSI escapes
func Terminal(code string, opts Options) (string, error) {
	return format(code, opts, formatters.Get(terminalFormatter))
}

func format(code string, opts Options, formatter chroma.Formatter) (string, error) {
	iterator, err := opts.lexer().Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise code: %w", err)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, opts.style(), iterator); err != nil {
		return "", fmt.Errorf("failed to format code: %w", err)
	}
	return buf.String(), nil
}

// Styles lists the available style names
func Styles() []string {
	return styles.Names()
}

// HasStyle reports whether name is a registered style
func HasStyle(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}
