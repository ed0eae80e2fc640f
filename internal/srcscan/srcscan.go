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

// Package srcscan implements the byte-oriented, look-ahead source reader
// that drives the ways DSL parser.
//
// A Scanner wraps an io.Reader and adds three things a raw reader does
// not have: checkpoint/rollback (so a parser combinator can try a match
// and undo it byte-exact, line/column included, if it fails), 1-based
// line/column tracking, and a sticky "ok" flag that a chain of
// combinators can use to short-circuit once one of them fails (the
// Scanner's own methods do not consult it).
//
// The rollback contract: bytes consumed while a checkpoint is
// rollbackable are held in an internal buffer and not "committed" (i.e.
// their effect on line/column is not yet applied) until either the
// checkpoint is rolled back, discarding them, or a later, non-rollbackable
// checkpoint begins, which commits and discards everything consumed since
// the last checkpoint.
package srcscan

import (
	"bufio"
	"io"
)

// trimThreshold is the buffered-byte count above which a committed prefix
// is dropped from the backing buffer. It bounds buffer growth to roughly
// the longest rollbackable attempt the DSL grammar ever makes (one
// keyword or one quoted string).
const trimThreshold = 256

// Scanner is a look-ahead byte scanner with checkpoint/rollback.
type Scanner struct {
	r   *bufio.Reader
	buf []byte

	begin        int // index of the start of the current checkpoint
	front        int // index of the next byte to read
	rollbackable bool

	line, col int // 0-based internally; Position() reports 1-based

	eof bool
	ok  bool
}

// New returns a Scanner reading from r.
func New(r io.Reader) *Scanner {
	return &Scanner{
		r:  bufio.NewReader(r),
		ok: true,
	}
}

// OK returns the scanner's sticky status flag.
func (s *Scanner) OK() bool { return s.ok }

// SetOK sets the scanner's sticky status flag. No Scanner method reads or
// changes the flag; it is left to callers that chain attempts to clear it
// on failure and reset it.
func (s *Scanner) SetOK(ok bool) { s.ok = ok }

// Position returns the current 1-based line and column.
func (s *Scanner) Position() (line, col int) {
	return s.line + 1, s.col + 1
}

// BeginCheckpoint opens a new attempt at the current position. While
// rollbackable is true, bytes consumed by GetByte/GetWhile are buffered
// and Rollback can restore the position exactly. Opening a
// non-rollbackable checkpoint commits (applies to line/column) the bytes
// consumed under a previous rollbackable checkpoint and may drop them from
// the buffer; buffered bytes not yet consumed are kept.
func (s *Scanner) BeginCheckpoint(rollbackable bool) {
	if s.rollbackable {
		for s.begin < s.front {
			s.commit(s.buf[s.begin])
			s.begin++
		}
		if s.begin > trimThreshold {
			s.buf = append(s.buf[:0], s.buf[s.begin:]...)
			s.begin, s.front = 0, 0
		}
	}
	s.rollbackable = rollbackable
}

// Rollbackable returns the number of bytes consumed since the current
// checkpoint began that are still eligible for Rollback.
func (s *Scanner) Rollbackable() int {
	return s.front - s.begin
}

// Rollback restores the scanner position. If count is 0, it restores to
// the most recent checkpoint; otherwise it pushes back exactly count
// previously consumed bytes. It returns false (and does nothing) if fewer
// than count bytes are available to push back.
func (s *Scanner) Rollback(count int) bool {
	if s.front-s.begin < count {
		return false
	}
	if count != 0 {
		s.front -= count
	} else {
		s.front = s.begin
	}
	return true
}

// GetByte advances and returns one byte. The second result is false at
// end of input.
func (s *Scanner) GetByte() (byte, bool) {
	if s.front < len(s.buf) {
		b := s.buf[s.front]
		s.front++
		if !s.rollbackable {
			s.commit(b)
			s.begin = s.front
		}
		return b, true
	}
	b, err := s.r.ReadByte()
	if err != nil {
		s.eof = true
		return 0, false
	}
	if s.rollbackable {
		s.buf = append(s.buf, b)
		s.front++
	} else {
		s.commit(b)
	}
	return b, true
}

// GetWhile consumes the maximal prefix of the remaining input for which
// predicate returns true, where predicate receives the zero-based index
// of the byte within the match. It returns the matched bytes as a string.
func (s *Scanner) GetWhile(predicate func(b byte, index int) bool) string {
	var out []byte
	index := 0

	for s.front < len(s.buf) {
		b := s.buf[s.front]
		if !predicate(b, index) {
			return string(out)
		}
		s.front++
		index++
		out = append(out, b)
		if !s.rollbackable {
			s.commit(b)
			s.begin = s.front
		}
	}

	for {
		b, err := s.r.ReadByte()
		if err != nil {
			s.eof = true
			return string(out)
		}
		if !predicate(b, index) {
			if uerr := s.r.UnreadByte(); uerr != nil {
				panic("srcscan: UnreadByte after ReadByte must not fail")
			}
			return string(out)
		}
		index++
		out = append(out, b)
		if s.rollbackable {
			s.buf = append(s.buf, b)
			s.front++
		} else {
			s.commit(b)
		}
	}
}

// AtEnd reports whether there is no more input left to read: nothing
// buffered ahead of the current position, and the underlying reader is
// exhausted.
func (s *Scanner) AtEnd() bool {
	if s.front < len(s.buf) {
		return false
	}
	if s.eof {
		return true
	}
	if _, err := s.r.Peek(1); err != nil {
		s.eof = true
		return true
	}
	return false
}

func (s *Scanner) commit(b byte) {
	if b == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
}
