// Package diag implements the diagnostic taxonomy used across the ways
// translator: syntax errors, semantic errors, and non-fatal warnings, all
// carrying the 1-based source position they were raised at.
package diag

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// Severity distinguishes a fatal Diagnostic from a Warning.
type Severity int

const (
	// Error aborts translation: the first one raised is returned from the
	// translator and no further pipeline stages run.
	Error Severity = iota
	// Warning is recorded but does not fail the build.
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Kind is the category of an Error-severity Diagnostic, per spec section 7.
type Kind string

const (
	// Syntax marks a missing keyword, delimiter, or malformed identifier
	// or string literal.
	Syntax Kind = "syntax"
	// Semantic marks a structurally valid but meaningless rule: unknown
	// target state, empty character set, conflicting options, and so on.
	Semantic Kind = "semantic"
	// None is used for warnings, which are not categorized by kind.
	None Kind = ""
)

// Diagnostic is one error or warning raised during translation.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Line     int
	Column   int
}

// String renders a Diagnostic using the "<line;column>" position format
// spec section 6 specifies for the diagnostic stream.
func (d Diagnostic) String() string {
	if d.Kind == None {
		return fmt.Sprintf("%s: <%d;%d> %s", d.Severity, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s: <%d;%d> %s: %s", d.Severity, d.Line, d.Column, d.Kind, d.Message)
}

// Error implements the error interface so a Diagnostic of Error severity
// can be returned directly as the translator's failure.
func (d Diagnostic) Error() string {
	return d.String()
}

// Collector accumulates diagnostics over one translation. The first
// Error-severity diagnostic raised is latched as Fatal; the policy
// (spec section 7) is that the first error aborts translation, so callers
// should stop feeding the collector and unwind as soon as Fatal is
// non-nil.
type Collector struct {
	all   []Diagnostic
	fatal *Diagnostic
}

// Errorf records an Error-severity diagnostic and returns it as an error
// value. Only the first call's diagnostic is latched as Fatal; subsequent
// calls are still recorded (useful for tests that want to see what would
// have come next) but do not change Fatal.
func (c *Collector) Errorf(kind Kind, line, col int, format string, args ...interface{}) error {
	d := Diagnostic{Severity: Error, Kind: kind, Message: fmt.Sprintf(format, args...), Line: line, Column: col}
	c.all = append(c.all, d)
	if c.fatal == nil {
		c.fatal = &d
	}
	return d
}

// Warnf records a Warning-severity diagnostic. Warnings never abort
// translation.
func (c *Collector) Warnf(line, col int, format string, args ...interface{}) {
	d := Diagnostic{Severity: Warning, Kind: None, Message: fmt.Sprintf(format, args...), Line: line, Column: col}
	c.all = append(c.all, d)
}

// Fatal returns the first Error-severity diagnostic raised, or nil if none
// has been raised yet.
func (c *Collector) Fatal() error {
	if c.fatal == nil {
		return nil
	}
	return *c.fatal
}

// All returns every diagnostic recorded, errors and warnings alike, in the
// order they were raised.
func (c *Collector) All() []Diagnostic {
	return c.all
}

// Warnings returns only the Warning-severity diagnostics.
func (c *Collector) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.all {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}

// Render renders every diagnostic as one message per line, wrapping each
// message body to width columns.
func (c *Collector) Render(width int) string {
	var out string
	for i, d := range c.all {
		if i > 0 {
			out += "\n"
		}
		prefix := fmt.Sprintf("%s: <%d;%d> ", d.Severity, d.Line, d.Column)
		if d.Kind != None {
			prefix += string(d.Kind) + ": "
		}
		out += prefix + rosed.Edit(d.Message).Wrap(width).String()
	}
	return out
}
