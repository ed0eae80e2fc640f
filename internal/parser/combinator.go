package parser

import (
	"strings"

	"github.com/db47h/ways/diag"
	"github.com/db47h/ways/internal/srcscan"
)

// scan wraps a srcscan.Scanner with the small set of combinators the
// grammar is built from. Each combinator either consumes input and
// returns true, or leaves the scanner position untouched and returns
// false: it is never the caller's job to rewind by hand. The one exception
// is stringLit on a malformed literal, which reports a syntax error
// instead (see its doc).
type scan struct {
	s     *srcscan.Scanner
	diags *diag.Collector
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// ws skips whitespace. It always "succeeds" (it never needs to rewind)
// and is not itself a checkpointed attempt.
func (p *scan) ws() {
	p.s.GetWhile(func(b byte, _ int) bool { return isSpace(b) })
}

// pos captures the current position, after skipping leading whitespace.
// Per spec section 7, diagnostics reference the position before the
// failing combinator consumed any input, so callers capture pos() first
// and attribute errors to it even if the combinator that follows fails
// partway through.
func (p *scan) pos() (line, col int) {
	p.ws()
	return p.s.Position()
}

// keyword attempts to match an exact identifier-like keyword (e.g.
// "state", "transition", "initial", "on"). It skips leading whitespace,
// then requires the keyword not be followed by another identifier
// character (so "stateful" does not match "state"). On failure the
// scanner position is restored exactly.
func (p *scan) keyword(kw string) bool {
	p.ws()
	p.s.BeginCheckpoint(true)
	word := p.s.GetWhile(func(b byte, _ int) bool { return isIdentCont(b) })
	if word != kw {
		p.s.Rollback(0)
		return false
	}
	p.s.BeginCheckpoint(false)
	return true
}

// ident matches a DSL identifier: [A-Za-z_][A-Za-z0-9_]*.
func (p *scan) ident() (string, bool) {
	p.ws()
	p.s.BeginCheckpoint(true)
	b, ok := p.s.GetByte()
	if !ok || !isIdentStart(b) {
		p.s.Rollback(0)
		return "", false
	}
	rest := p.s.GetWhile(func(b byte, _ int) bool { return isIdentCont(b) })
	p.s.BeginCheckpoint(false)
	return string(b) + rest, true
}

// byteLit matches a single literal delimiter byte such as '(' ')' ':' ';'.
func (p *scan) byteLit(want byte) bool {
	p.ws()
	p.s.BeginCheckpoint(true)
	b, ok := p.s.GetByte()
	if !ok || b != want {
		p.s.Rollback(0)
		return false
	}
	p.s.BeginCheckpoint(false)
	return true
}

// stringLit matches a quoted string literal and decodes its escapes per
// the grammar's `escape` production. It reports the decoded contents and
// whether a literal was present at all; an unterminated escape or an
// unterminated literal is reported through diags and returns ok=false
// (the scanner has still consumed the opening quote and everything up to
// the error, since a malformed string is not a "no match", it's a syntax
// error).
func (p *scan) stringLit() (value string, ok bool) {
	p.ws()
	p.s.BeginCheckpoint(true)
	b, got := p.s.GetByte()
	if !got || b != '"' {
		p.s.Rollback(0)
		return "", false
	}

	var out strings.Builder
	for {
		c, got := p.s.GetByte()
		if !got {
			line, col := p.s.Position()
			p.diags.Errorf(diag.Syntax, line, col, "unterminated string literal")
			p.s.BeginCheckpoint(false)
			return "", false
		}
		if c == '"' {
			p.s.BeginCheckpoint(false)
			return out.String(), true
		}
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		e, got := p.s.GetByte()
		if !got {
			line, col := p.s.Position()
			p.diags.Errorf(diag.Syntax, line, col, "unterminated escape in string literal")
			p.s.BeginCheckpoint(false)
			return "", false
		}
		switch e {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case 'f':
			out.WriteByte('\f')
		case 'v':
			out.WriteByte('\v')
		default:
			// \x -> x for any other byte, including \\ and \"
			out.WriteByte(e)
		}
	}
}
