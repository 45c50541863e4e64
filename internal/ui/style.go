// Package ui holds the terminal collaborators of the scaffolder: text
// styling, interactive prompts and path display. Nothing in here knows
// about the pipeline; it only renders text and asks questions.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

// Style names a semantic text style.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleCommand
	StylePath
	StyleProgress
)

// ansiStyles maps each Style to an mgutz/ansi style spec.
var ansiStyles = map[Style]string{
	StyleSuccess:  "green",
	StyleError:    "red",
	StyleInfo:     "cyan",
	StyleCommand:  "blue",
	StylePath:     "white+b",
	StyleProgress: "magenta",
}

// Styler renders text in a Style.
type Styler interface {
	Render(text string, style Style) string
}

// ANSIStyler colours text with ANSI escape sequences when enabled.
type ANSIStyler struct {
	enabled bool
	funcs   map[Style]func(string) string
}

// NewStyler returns a styler that colours output only when enabled.
func NewStyler(enabled bool) *ANSIStyler {
	s := &ANSIStyler{enabled: enabled, funcs: make(map[Style]func(string) string, len(ansiStyles))}
	for style, spec := range ansiStyles {
		s.funcs[style] = ansi.ColorFunc(spec)
	}
	return s
}

// NewStylerFor enables colour when w is a terminal and NO_COLOR is unset.
func NewStylerFor(w io.Writer) *ANSIStyler {
	return NewStyler(ColorEnabled(w))
}

// ColorEnabled reports whether ANSI colour should be written to w.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render returns text wrapped in the escape sequences for style, or text
// unchanged when colour is disabled.
func (s *ANSIStyler) Render(text string, style Style) string {
	if !s.enabled {
		return text
	}
	fn, ok := s.funcs[style]
	if !ok {
		return text
	}
	return fn(text)
}

// Plain is a Styler that never adds escape sequences.
type Plain struct{}

// Render returns text unchanged.
func (Plain) Render(text string, _ Style) string { return text }
