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

package emit

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/width"

	"github.com/db47h/ways/internal/table"
)

// Go renders m as a Go source file declaring the table data as package
// level vars, under package pkg. It is the direct descendant of the
// original translator's source-emitting pass: same table shape, same
// byte-escaping rules (escapeByte/escapeString), with one addition --
// each class gets a column-aligned comment listing the bytes it covers,
// to make a generated file reviewable without cross-referencing the
// class map by hand.
func Go(w io.Writer, m *table.Model, pkg string) error {
	bw := &errWriter{w: w}

	bw.printf("// Code generated by ways. DO NOT EDIT.\n\n")
	bw.printf("package %s\n\n", pkg)

	bw.printf("const CharsetSize = %d\n", m.CharsetSize)
	bw.printf("const ClassCount = %d\n", m.ClassCount)
	bw.printf("const StateCount = %d\n", m.StateCount)
	bw.printf("const InitialStateID = %d\n\n", m.InitialStateID)

	writeClassMap(bw, m)
	writeFailureMessages(bw, m)
	writeTokens(bw, m)
	writeTransitions(bw, m)

	return bw.err
}

func writeClassMap(bw *errWriter, m *table.Model) {
	byClass := classMembers(m)

	comments := make([]string, len(m.ClassMap))
	maxWidth := 0
	for i, c := range m.ClassMap {
		comment := fmt.Sprintf("/* %s */", byClass[c])
		comments[i] = comment
		if wd := visualWidth(comment); wd > maxWidth {
			maxWidth = wd
		}
	}

	bw.printf("var ClassMap = [%d]byte{\n", len(m.ClassMap))
	for i, c := range m.ClassMap {
		pad := maxWidth - visualWidth(comments[i])
		bw.printf("\t%3d, %s%*s// byte %d\n", c, comments[i], pad, "", i)
	}
	bw.printf("}\n\n")
}

// classMembers returns, for every class id, a description of the bytes
// mapped to it, e.g. `'a','b'` or `EOS` for the synthetic end-of-input
// class.
func classMembers(m *table.Model) map[byte]string {
	members := make(map[byte][]byte)
	for b, c := range m.ClassMap {
		members[c] = append(members[c], byte(b))
	}

	out := make(map[byte]string, m.ClassCount)
	for c := 0; c < m.ClassCount; c++ {
		bytes := members[byte(c)]
		if c == m.ClassCount-1 {
			out[byte(c)] = "EOS"
			continue
		}
		sort.Slice(bytes, func(i, j int) bool { return bytes[i] < bytes[j] })
		out[byte(c)] = joinBytes(bytes)
	}
	return out
}

func joinBytes(bytes []byte) string {
	if len(bytes) == 0 {
		return "-"
	}
	s := ""
	for i, b := range bytes {
		if i > 0 {
			s += ","
		}
		s += "'" + escapeByte(b) + "'"
	}
	return s
}

// visualWidth sums the terminal column width of each rune, using
// golang.org/x/text/width to account for full-width / wide / ambiguous
// East Asian forms that a plain len() would miscount.
func visualWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianFullwidth, width.EastAsianWide:
			w += 2
		case width.EastAsianAmbiguous:
			w++
		default:
			w++
		}
	}
	return w
}

func writeFailureMessages(bw *errWriter, m *table.Model) {
	if len(m.FailureMessages) == 0 {
		return
	}
	bw.printf("var FailureMessages = []string{\n")
	for _, msg := range m.FailureMessages {
		bw.printf("\t\"%s\",\n", escapeString(msg))
	}
	bw.printf("}\n\n")
}

func writeTokens(bw *errWriter, m *table.Model) {
	if len(m.Tokens) == 0 {
		return
	}
	bw.printf("type Token int\n\n")
	bw.printf("const (\n")
	for i, name := range m.Tokens {
		bw.printf("\tToken%s Token = %d\n", name, i)
	}
	bw.printf(")\n\n")
}

func writeTransitions(bw *errWriter, m *table.Model) {
	bw.printf("type Transition struct {\n")
	bw.printf("\tNextState uint32\n")
	bw.printf("\tAction    uint8\n")
	bw.printf("\tMode      uint8\n")
	bw.printf("\tArg       uint32\n")
	bw.printf("}\n\n")

	bw.printf("var Transitions = [%d][%d]Transition{\n", m.StateCount, m.ClassCount)
	for _, row := range m.Transitions {
		bw.printf("\t{\n")
		for _, t := range row {
			bw.printf("\t\t{NextState: %d, Action: %d, Mode: %d, Arg: %d},\n", t.NextState, t.Action, t.Mode, t.Arg)
		}
		bw.printf("\t},\n")
	}
	bw.printf("}\n")
}

// errWriter lets the writeX helpers above ignore per-call errors and
// check once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
