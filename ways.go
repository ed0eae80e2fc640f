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

// Package ways implements the translator pipeline for the ways lexer
// generator DSL: a byte scanner feeds a grammar parser, whose
// intermediate representation is resolved by a character-class compressor
// and a transition-table materializer into a Model ready for one of the
// emit package's renderers.
package ways

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/db47h/ways/diag"
	"github.com/db47h/ways/internal/parser"
	"github.com/db47h/ways/internal/table"
)

// Model is the complete, emitter-facing result of a translation: the
// transition matrix plus the class map and interning tables needed to
// drive it.
type Model = table.Model

// Transition is the materialized outcome for one (state, class) cell.
type Transition = table.Transition

// Action/Mode re-exports, so callers of Translate need not import
// internal/table themselves.
type (
	Action = table.Action
	Mode   = table.Mode
)

const (
	Invalid  = table.Invalid
	Continue = table.Continue
	Clear    = table.Clear
	Token    = table.Token
	Failure  = table.Failure
)

const (
	Leave = table.Leave
	Keep  = table.Keep
	Skip  = table.Skip
)

// RunInfo is recorded per translation for history/audit purposes. It is
// not part of the translator's core contract; it is a side channel
// produced by Translate for callers that want to log runs (see
// internal/history).
type RunInfo struct {
	ID              uuid.UUID
	StartedAt       time.Time
	SourceDigest    string
	StateCount      int
	ClassCount      int
	TokenCount      int
	FailureCount    int
	OK              bool
	FirstDiagnostic string
}

// Translate runs one source document through the full pipeline: parse,
// compress classes, materialize transitions. It returns the resulting
// Model (nil on failure), the full diagnostics collected along the way,
// and a RunInfo summarizing the attempt for audit purposes.
//
// Translate never partially applies options from a manifest and a direct
// reader: WithManifest replaces r's role entirely, reading fragment files
// named by the manifest at path instead.
func Translate(r io.Reader, opts ...Option) (*Model, *diag.Collector, RunInfo, error) {
	o := buildOptions(opts)

	run := RunInfo{
		ID:        newRunID(),
		StartedAt: time.Now(),
	}

	src, err := resolveSource(r, o)
	if err != nil {
		return nil, nil, run, err
	}
	run.SourceDigest = digest(src)

	doc, diags, err := parser.Parse(bytes.NewReader(src))
	if err != nil {
		run.OK = false
		if f := diags.Fatal(); f != nil {
			run.FirstDiagnostic = f.Error()
		}
		return nil, diags, run, err
	}

	model, ok := table.Materialize(doc, diags)
	if !ok {
		run.OK = false
		if f := diags.Fatal(); f != nil {
			run.FirstDiagnostic = f.Error()
		}
		return nil, diags, run, diags.Fatal()
	}

	run.OK = true
	run.StateCount = model.StateCount
	run.ClassCount = model.ClassCount
	run.TokenCount = len(model.Tokens)
	run.FailureCount = len(model.FailureMessages)

	return model, diags, run, nil
}

func resolveSource(r io.Reader, o options) ([]byte, error) {
	if o.manifestPath != "" {
		return parser.LoadBundle(o.manifestPath)
	}
	return io.ReadAll(r)
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// newRunID is a var so tests can stub it; production code uses a random
// v4 UUID, or the zero UUID if random generation fails.
var newRunID = func() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.UUID{}
	}
	return id
}
