package codegen

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/studiowebux/curlgen/internal/highlight"
)

// DisplayMode selects the post-processing applied by Render
type DisplayMode int

const (
	// DisplayRaw returns the code unchanged
	DisplayRaw DisplayMode = iota
	// DisplayHTML escapes the code and wraps it in <pre>
	DisplayHTML
	// DisplayHighlight returns syntax-highlighted HTML
	DisplayHighlight
)

var displayNames = map[DisplayMode]string{
	DisplayRaw:       "raw",
	DisplayHTML:      "html",
	DisplayHighlight: "highlight",
}

func (m DisplayMode) String() string {
	if name, ok := displayNames[m]; ok {
		return name
	}
	return "DisplayMode(" + strconv.Itoa(int(m)) + ")"
}

// ParseDisplayMode accepts a mode name or its number
func ParseDisplayMode(s string) (DisplayMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range displayNames {
		if s == name || s == strconv.Itoa(int(mode)) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (use raw, html or highlight)", ErrUnsupportedDisplayMode, s)
}

// RenderOptions tunes DisplayHighlight output
type RenderOptions struct {
	Style       string
	LineNumbers bool
}

// Render returns Code transformed for mode
func (r *Request) Render(mode DisplayMode) (string, error) {
	return r.RenderWith(mode, RenderOptions{})
}

// RenderWith is Render with highlighting options
func (r *Request) RenderWith(mode DisplayMode, opts RenderOptions) (string, error) {
	code := r.Code()

	switch mode {
	case DisplayRaw:
		return code, nil
	case DisplayHTML:
		return "<pre>" + html.EscapeString(code) + "</pre>", nil
	case DisplayHighlight:
		out, err := highlight.HTML(code, highlight.Options{
			Style:       opts.Style,
			LineNumbers: opts.LineNumbers,
		})
		if err != nil {
			return "", fmt.Errorf("failed to highlight code: %w", err)
		}
		return out, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnsupportedDisplayMode, int(mode))
	}
}
