// Copyright 2017-2018 Denis Bernard <db047h@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package parser

import (
	"io"

	"github.com/db47h/ways/diag"
	"github.com/db47h/ways/internal/srcscan"
)

// Parse reads a complete ways DSL document from r and returns its
// intermediate representation. diags accumulates both errors and
// warnings raised along the way; per the first-error-aborts policy, Parse
// returns a non-nil error as soon as diags.Fatal() becomes non-nil, but
// diags itself always reflects everything seen up to that point.
func Parse(r io.Reader) (*Document, *diag.Collector, error) {
	diags := &diag.Collector{}
	p := &scan{s: srcscan.New(r), diags: diags}

	doc := &Document{StateMap: make(map[string]int)}
	initialSeen := false

	for {
		p.ws()
		if p.s.AtEnd() {
			break
		}
		if !p.parseState(doc, &initialSeen) {
			return doc, diags, diags.Fatal()
		}
		if diags.Fatal() != nil {
			return doc, diags, diags.Fatal()
		}
	}

	if len(doc.Groups) == 0 {
		diags.Errorf(diag.Syntax, 1, 1, "empty document: expected at least one state")
		return doc, diags, diags.Fatal()
	}
	if !initialSeen {
		doc.InitialIndex = 0
		doc.Groups[0].Initial = true
	}

	return doc, diags, nil
}

func (p *scan) parseState(doc *Document, initialSeen *bool) bool {
	line, col := p.pos()
	if !p.keyword("state") {
		p.diags.Errorf(diag.Syntax, line, col, "expected %q", "state")
		return false
	}

	nameLine, nameCol := p.pos()
	name, ok := p.ident()
	if !ok {
		p.diags.Errorf(diag.Syntax, nameLine, nameCol, "expected state name")
		return false
	}

	isInitial := p.keyword("initial")

	if !p.byteLit(':') {
		l, c := p.pos()
		p.diags.Errorf(diag.Syntax, l, c, "expected %q after state name", ":")
		return false
	}

	idx, exists := doc.StateMap[name]
	if !exists {
		idx = len(doc.Groups)
		doc.StateMap[name] = idx
		doc.Groups = append(doc.Groups, RuleGroup{Name: name, Line: nameLine, Column: nameCol})
	} else {
		p.diags.Warnf(nameLine, nameCol, "state %q redeclared; rules are appended to the existing declaration", name)
	}
	group := &doc.Groups[idx]

	if isInitial {
		switch {
		case group.Initial:
			// Either this is the second `initial` marker on the very
			// same state's accumulated declarations, or the state was
			// already marked initial by an earlier fragment -- first
			// occurrence wins, idempotent duplicates just warn.
			p.diags.Warnf(nameLine, nameCol, "duplicate %q marker on state %q", "initial", name)
		case *initialSeen:
			p.diags.Errorf(diag.Semantic, nameLine, nameCol, "multiple states marked initial")
			return false
		default:
			group.Initial = true
			doc.InitialIndex = idx
			*initialSeen = true
		}
	}

	ruleCount := 0
	for {
		l, c := p.pos()
		if p.byteLit(';') {
			break
		}
		if p.s.AtEnd() {
			p.diags.Errorf(diag.Syntax, l, c, "expected %q to close state %q", ";", name)
			return false
		}
		rule, ok := p.parseTransition(doc, group)
		if !ok {
			return false
		}
		if rule.IsDefault() {
			for _, existing := range group.Rules {
				if existing.IsDefault() {
					p.diags.Errorf(diag.Semantic, rule.Line, rule.Column, "more than one default rule (a rule omitting %q) for state %q", "on", name)
					return false
				}
			}
		}
		group.Rules = append(group.Rules, rule)
		ruleCount++
	}

	if ruleCount == 0 {
		p.diags.Warnf(group.Line, group.Column, "state %q declared with zero rules", name)
	}

	return true
}

func (p *scan) parseTransition(doc *Document, group *RuleGroup) (Rule, bool) {
	line, col := p.pos()
	if !p.keyword("transition") {
		p.diags.Errorf(diag.Syntax, line, col, "expected %q", "transition")
		return Rule{}, false
	}

	rule := Rule{Line: line, Column: col}

	var hasOn, hasGo, hasToken, hasFailure, hasKeep, hasSkip, hasClear bool

	for {
		if p.byteLit(';') {
			break
		}
		if p.s.AtEnd() {
			l, c := p.pos()
			p.diags.Errorf(diag.Syntax, l, c, "expected %q to close transition", ";")
			return Rule{}, false
		}

		optLine, optCol := p.pos()
		switch {
		case p.keyword("on"):
			if !p.byteLit('(') {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected %q after %q", "(", "on")
				return Rule{}, false
			}
			chars, isEOS, ok := p.parseOnArg()
			if !ok {
				return Rule{}, false
			}
			if !p.byteLit(')') {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected %q to close %q", ")", "on(")
				return Rule{}, false
			}
			if hasOn {
				p.diags.Errorf(diag.Semantic, optLine, optCol, "duplicate %q option", "on")
				return Rule{}, false
			}
			if !isEOS && len(chars) == 0 {
				p.diags.Errorf(diag.Semantic, optLine, optCol, "empty character set in %q", "on")
				return Rule{}, false
			}
			hasOn = true
			rule.HasOn = true
			rule.OnChars = chars
			rule.OnEOS = isEOS

		case p.keyword("go"):
			if !p.byteLit('(') {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected %q after %q", "(", "go")
				return Rule{}, false
			}
			name, ok := p.ident()
			if !ok {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected target state name in %q", "go(")
				return Rule{}, false
			}
			if !p.byteLit(')') {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected %q to close %q", ")", "go(")
				return Rule{}, false
			}
			if hasGo {
				p.diags.Errorf(diag.Semantic, optLine, optCol, "duplicate %q option", "go")
				return Rule{}, false
			}
			hasGo = true
			rule.HasGo = true
			rule.Go = name

		case p.keyword("token"):
			if !p.byteLit('(') {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected %q after %q", "(", "token")
				return Rule{}, false
			}
			name, ok := p.ident()
			if !ok {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected token name in %q", "token(")
				return Rule{}, false
			}
			if !p.byteLit(')') {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected %q to close %q", ")", "token(")
				return Rule{}, false
			}
			if hasToken {
				p.diags.Errorf(diag.Semantic, optLine, optCol, "duplicate %q option", "token")
				return Rule{}, false
			}
			hasToken = true
			rule.HasToken = true
			rule.Token = name

		case p.keyword("failure"):
			if !p.byteLit('(') {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected %q after %q", "(", "failure")
				return Rule{}, false
			}
			msg, ok := p.stringLit()
			if !ok {
				if p.diags.Fatal() == nil {
					p.diags.Errorf(diag.Syntax, optLine, optCol, "expected a string literal in %q", "failure(")
				}
				return Rule{}, false
			}
			if !p.byteLit(')') {
				p.diags.Errorf(diag.Syntax, optLine, optCol, "expected %q to close %q", ")", "failure(")
				return Rule{}, false
			}
			if hasFailure {
				p.diags.Errorf(diag.Semantic, optLine, optCol, "duplicate %q option", "failure")
				return Rule{}, false
			}
			hasFailure = true
			rule.HasFailure = true
			rule.Failure = msg

		case p.keyword("keep"):
			if hasKeep {
				p.diags.Warnf(optLine, optCol, "duplicate %q option", "keep")
			}
			hasKeep = true
			rule.Keep = true

		case p.keyword("skip"):
			if hasSkip {
				p.diags.Warnf(optLine, optCol, "duplicate %q option", "skip")
			}
			hasSkip = true
			rule.Skip = true

		case p.keyword("clear"):
			if hasClear {
				p.diags.Warnf(optLine, optCol, "duplicate %q option", "clear")
			}
			hasClear = true
			rule.Clear = true

		default:
			p.diags.Errorf(diag.Syntax, optLine, optCol, "unrecognized transition option")
			return Rule{}, false
		}
	}

	if rule.Keep && rule.Skip {
		p.diags.Errorf(diag.Semantic, rule.Line, rule.Column, "%q and %q are mutually exclusive", "keep", "skip")
		return Rule{}, false
	}
	if rule.HasFailure && (rule.HasGo || rule.Clear || rule.HasToken) {
		p.diags.Errorf(diag.Semantic, rule.Line, rule.Column, "%q is incompatible with %q, %q, %q", "failure", "go", "clear", "token")
		return Rule{}, false
	}
	if rule.HasToken && rule.Clear {
		p.diags.Errorf(diag.Semantic, rule.Line, rule.Column, "%q is incompatible with %q", "token", "clear")
		return Rule{}, false
	}
	if !rule.Keep && !rule.Skip && !rule.HasGo && !rule.HasFailure {
		p.diags.Errorf(diag.Semantic, rule.Line, rule.Column, "rule makes no progress: one of %q, %q, %q, %q is required", "keep", "skip", "go", "failure")
		return Rule{}, false
	}

	return rule, true
}

// parseOnArg parses the argument of `on(...)`: either the bare keyword
// `end` or a quoted string naming a literal byte set.
func (p *scan) parseOnArg() (chars []byte, isEOS bool, ok bool) {
	if p.keyword("end") {
		return nil, true, true
	}

	line, col := p.pos()
	s, matched := p.stringLit()
	if !matched {
		p.diags.Errorf(diag.Syntax, line, col, "expected %q or a string literal in %q", "end", "on(")
		return nil, false, false
	}

	seen := make(map[byte]bool, len(s))
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if seen[b] {
			p.diags.Errorf(diag.Semantic, line, col, "byte %q repeated within one %q set", string(b), "on")
			return nil, false, false
		}
		seen[b] = true
		out = append(out, b)
	}
	return out, false, true
}
