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

// Package table implements the transition-table materializer: it resolves
// each state's accumulated rules into typed Transition cells, fills
// default transitions, and interns token names and failure messages.
package table

import (
	"github.com/db47h/ways/diag"
	"github.com/db47h/ways/internal/classes"
	"github.com/db47h/ways/internal/parser"
)

// Action is the effect a Transition has on the downstream lexer.
type Action byte

const (
	Invalid Action = iota
	Continue
	Clear
	Token
	Failure
)

// Mode controls how the downstream lexer's lexeme buffer is edited.
type Mode byte

const (
	Leave Mode = iota
	Keep
	Skip
)

// Transition is the materialized outcome for one (state, class) cell.
type Transition struct {
	NextState int
	Action    Action
	Mode      Mode
	Arg       int
}

// Model is the complete materialized result: the transition matrix plus
// the interning tables and metadata an emitter needs.
type Model struct {
	CharsetSize     int
	ClassCount      int
	StateCount      int
	InitialStateID  int
	ClassMap        [256]byte
	Tokens          []string
	FailureMessages []string
	Transitions     [][]Transition
}

type interner struct {
	index map[string]int
	names []string
}

func (in *interner) intern(name string) int {
	if in.index == nil {
		in.index = make(map[string]int)
	}
	if id, ok := in.index[name]; ok {
		return id
	}
	id := len(in.names)
	in.index[name] = id
	in.names = append(in.names, name)
	return id
}

// Materialize resolves a parsed Document's rules into a complete Model,
// running the class compressor over every rule's `on` set first.
func Materialize(doc *parser.Document, diags *diag.Collector) (*Model, bool) {
	comp := classes.New()

	for _, g := range doc.Groups {
		for _, r := range g.Rules {
			if !r.HasOn || r.OnEOS {
				continue
			}
			if !comp.Process(r.OnChars, r.Line, r.Column, diags) {
				return nil, false
			}
		}
	}

	classCount := comp.ClassCount()
	eosClass := comp.EOSClass()
	stateCount := len(doc.Groups)

	var tokens, failures interner

	m := &Model{
		CharsetSize:    256,
		ClassCount:     classCount,
		StateCount:     stateCount,
		InitialStateID: doc.InitialIndex,
		ClassMap:       comp.ClassMap(),
		Transitions:    make([][]Transition, stateCount),
	}

	for si, g := range doc.Groups {
		row := make([]Transition, classCount)
		for ci := range row {
			row[ci] = Transition{NextState: si, Action: Invalid}
		}

		var (
			haveDefault bool
			defaultT    Transition
		)
		claimed := make([]bool, classCount)

		for _, r := range g.Rules {
			t, ok := resolveRule(r, si, doc.StateMap, &tokens, &failures, diags)
			if !ok {
				return nil, false
			}

			if !r.HasOn {
				if haveDefault {
					diags.Errorf(diag.Semantic, r.Line, r.Column, "more than one default rule (a rule omitting %q) for state %q", "on", g.Name)
					return nil, false
				}
				haveDefault = true
				defaultT = t
				continue
			}

			if r.OnEOS {
				row[eosClass] = t
				claimed[eosClass] = true
				continue
			}

			for _, b := range r.OnChars {
				cid := comp.ClassOf(b)
				row[cid] = t
				claimed[cid] = true
			}
		}

		if haveDefault {
			for ci := range row {
				if !claimed[ci] {
					row[ci] = defaultT
				}
			}
		}

		m.Transitions[si] = row
	}

	m.Tokens = tokens.names
	m.FailureMessages = failures.names

	return m, true
}

func resolveRule(r parser.Rule, currentState int, stateMap map[string]int, tokens, failures *interner, diags *diag.Collector) (Transition, bool) {
	t := Transition{NextState: currentState, Action: Continue}

	if r.HasFailure {
		t.Action = Failure
		t.Arg = failures.intern(r.Failure)
	}

	if r.HasGo {
		idx, ok := stateMap[r.Go]
		if !ok {
			diags.Errorf(diag.Semantic, r.Line, r.Column, "unknown target state %q", r.Go)
			return Transition{}, false
		}
		t.NextState = idx
	}

	if r.HasToken {
		t.Action = Token
		t.Arg = tokens.intern(r.Token)
	}

	if r.Clear {
		t.Action = Clear
	}

	switch {
	case r.Keep:
		t.Mode = Keep
	case r.Skip:
		t.Mode = Skip
	default:
		t.Mode = Leave
	}

	return t, true
}
