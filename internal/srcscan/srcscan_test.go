package srcscan_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/ways/internal/srcscan"
)

func TestGetByte(t *testing.T) {
	s := srcscan.New(strings.NewReader("ab"))

	b, ok := s.GetByte()
	require.True(t, ok)
	assert.Equal(t, byte('a'), b)

	b, ok = s.GetByte()
	require.True(t, ok)
	assert.Equal(t, byte('b'), b)

	_, ok = s.GetByte()
	assert.False(t, ok)
	assert.True(t, s.AtEnd())
}

func TestRollbackRestoresPosition(t *testing.T) {
	s := srcscan.New(strings.NewReader("abc\ndef"))

	s.BeginCheckpoint(true)
	s.GetByte() // a
	s.GetByte() // b
	s.GetByte() // c
	s.GetByte() // \n

	line, col := s.Position()
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	ok := s.Rollback(0)
	require.True(t, ok)

	line, col = s.Position()
	assert.Equal(t, 1, line, "rollback must not have advanced the line counter")
	assert.Equal(t, 1, col)

	b, ok := s.GetByte()
	require.True(t, ok)
	assert.Equal(t, byte('a'), b, "rollback must restore the exact byte position")
}

func TestRollbackPartialCount(t *testing.T) {
	s := srcscan.New(strings.NewReader("abcd"))

	s.BeginCheckpoint(true)
	s.GetByte()
	s.GetByte()
	s.GetByte()

	ok := s.Rollback(2)
	require.True(t, ok)

	b, _ := s.GetByte()
	assert.Equal(t, byte('b'), b)
}

func TestRollbackFailsWhenNotEnoughBuffered(t *testing.T) {
	s := srcscan.New(strings.NewReader("a"))

	s.BeginCheckpoint(true)
	s.GetByte()

	assert.False(t, s.Rollback(5))
}

func TestLineColumnTracking(t *testing.T) {
	s := srcscan.New(strings.NewReader("ab\ncd"))

	s.BeginCheckpoint(false)
	for i := 0; i < 4; i++ {
		s.GetByte()
	}
	line, col := s.Position()
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
}

func TestGetWhile(t *testing.T) {
	s := srcscan.New(strings.NewReader("abc123"))

	s.BeginCheckpoint(false)
	letters := s.GetWhile(func(b byte, _ int) bool {
		return b >= 'a' && b <= 'z'
	})
	assert.Equal(t, "abc", letters)

	digits := s.GetWhile(func(b byte, _ int) bool {
		return b >= '0' && b <= '9'
	})
	assert.Equal(t, "123", digits)

	assert.True(t, s.AtEnd())
}

func TestGetWhileRollback(t *testing.T) {
	s := srcscan.New(strings.NewReader("foobar"))

	s.BeginCheckpoint(true)
	word := s.GetWhile(func(b byte, _ int) bool { return b != ' ' })
	assert.Equal(t, "foobar", word)

	require.True(t, s.Rollback(0))
	b, ok := s.GetByte()
	require.True(t, ok)
	assert.Equal(t, byte('f'), b)
}

func TestOKStickyFlag(t *testing.T) {
	s := srcscan.New(strings.NewReader(""))
	assert.True(t, s.OK())
	s.SetOK(false)
	assert.False(t, s.OK())
	s.SetOK(true)
	assert.True(t, s.OK())
}

func TestBufferTrimAcrossManyCheckpoints(t *testing.T) {
	input := strings.Repeat("x", 1000)
	s := srcscan.New(strings.NewReader(input))

	count := 0
	for !s.AtEnd() {
		s.BeginCheckpoint(true)
		if _, ok := s.GetByte(); ok {
			count++
		}
	}
	assert.Equal(t, 1000, count)
}
