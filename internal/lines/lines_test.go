package lines

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceWithNeighbours(t *testing.T) {
	src := NewSource(strings.NewReader("one\ntwo\nthree\n"), 3)

	_, ok := src.Current()
	assert.False(t, ok, "no current line before the first advance")

	line, ok := src.Advance()
	require.True(t, ok)
	assert.Equal(t, "one", line)
	_, ok = src.Previous()
	assert.False(t, ok)
	next, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, "two", next)

	line, _ = src.Advance()
	assert.Equal(t, "two", line)
	prev, _ := src.Previous()
	assert.Equal(t, "one", prev)
	assert.Equal(t, 2, src.Line())

	line, _ = src.Advance()
	assert.Equal(t, "three", line)
	_, ok = src.Next()
	assert.False(t, ok)

	_, ok = src.Advance()
	assert.False(t, ok)
	prev, ok = src.Previous()
	require.True(t, ok)
	assert.Equal(t, "three", prev)
	require.NoError(t, src.Err())
}

func TestRewind(t *testing.T) {
	src := NewSource(strings.NewReader("a\nb\nc\n"), 3)

	src.Advance()
	src.Advance()
	require.NoError(t, src.Rewind())
	cur, _ := src.Current()
	assert.Equal(t, "a", cur)

	line, _ := src.Advance()
	assert.Equal(t, "b", line, "rewound line is read again")

	err := NewSource(strings.NewReader("a\n"), 3).Rewind()
	assert.True(t, errors.Is(err, ErrRewindUnderflow))
}

func TestWindowEviction(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("line\n")
	}
	src := NewSource(strings.NewReader(b.String()), 4)

	for i := 0; i < 10; i++ {
		_, ok := src.Advance()
		require.True(t, ok)
	}
	require.NoError(t, src.Rewind(), "previous line stays retained")
	err := src.Rewind()
	require.NoError(t, err)
	assert.True(t, errors.Is(src.Reset(), ErrRewindUnderflow))
}

func TestResetWithinWindow(t *testing.T) {
	src := NewSource(strings.NewReader("x\ny\nz\n"), 5)
	for {
		if _, ok := src.Advance(); !ok {
			break
		}
	}
	require.NoError(t, src.Reset())
	line, _ := src.Advance()
	assert.Equal(t, "x", line)
}

func TestFinalLineWithoutNewline(t *testing.T) {
	src := NewSource(strings.NewReader("a\r\nb"), 3)
	first, _ := src.Advance()
	second, ok := src.Advance()
	require.True(t, ok)
	assert.Equal(t, "a", first)
	assert.Equal(t, "b", second)
}

func TestReadError(t *testing.T) {
	src := NewSource(iotest.ErrReader(errors.New("boom")), 3)
	_, ok := src.Advance()
	assert.False(t, ok)
	assert.EqualError(t, src.Err(), "boom")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain\n", "plain"},
		{"crlf\r\n", "crlf"},
		{"\tx", "    x"},
		{"ab\tx", "ab  x"},
		{"abcd\tx", "abcd    x"},
		{"日\tx", "日  x"},
		{"cut\rrest\n", "cut"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "%q", tt.in)
	}
}
