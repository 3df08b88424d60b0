package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/sidediff/internal/codec"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := ParseArgs(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Column)
	assert.Equal(t, 30, cfg.Window)
	assert.Equal(t, codec.Unknown, cfg.Encoding)
	assert.Empty(t, cfg.File)
	assert.Empty(t, cfg.LookupDirs)
}

func TestParseArgs(t *testing.T) {
	cfg, err := ParseArgs([]string{"-c", "60", "-l", "a,b", "--lookup-dir", "c", "-m", "--to-utf8", "x.diff"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Column)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.LookupDirs)
	assert.True(t, cfg.Markdown)
	assert.True(t, cfg.ToUTF8)
	assert.Equal(t, "x.diff", cfg.File)
}

func TestEncodingHintFirstWins(t *testing.T) {
	tests := []struct {
		args []string
		want codec.Encoding
	}{
		{[]string{"--sjis"}, codec.ShiftJIS},
		{[]string{"--euc", "--sjis"}, codec.EUC},
		{[]string{"--utf8", "--euc"}, codec.UTF8},
		{[]string{"--encoding", "euc-jp", "--sjis"}, codec.EUC},
		{[]string{"--sjis", "--encoding=utf8"}, codec.ShiftJIS},
		{[]string{"--encoding=auto"}, codec.Unknown},
	}
	for _, tt := range tests {
		cfg, err := ParseArgs(tt.args, &bytes.Buffer{})
		require.NoError(t, err, "%v", tt.args)
		assert.Equal(t, tt.want, cfg.Encoding, "%v", tt.args)
	}

	_, err := ParseArgs([]string{"--encoding", "latin1"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestInformational(t *testing.T) {
	for _, arg := range []string{"-h", "--help", "-v", "--version", "--usage"} {
		t.Run(arg, func(t *testing.T) {
			var out bytes.Buffer
			cfg, err := ParseArgs([]string{arg, "-c", "40"}, &out)
			assert.Nil(t, cfg)
			assert.True(t, errors.Is(err, ErrInformational))
			assert.NotEmpty(t, out.String())
		})
	}

	var out bytes.Buffer
	_, err := ParseArgs([]string{"--help"}, &out)
	require.True(t, errors.Is(err, ErrInformational))
	assert.Contains(t, out.String(), "--column")
}

func TestParseArgsRejects(t *testing.T) {
	tests := map[string][]string{
		"narrow column":    {"-c", "1"},
		"small window":     {"-w", "2"},
		"unknown flag":     {"--bogus"},
		"file and dir":     {"-f", "a.diff", "-d", "old"},
		"file twice":       {"-f", "a.diff", "b.diff"},
		"extra arguments":  {"a.diff", "b.diff"},
		"non-numeric flag": {"-c", "wide"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseArgs(args, &bytes.Buffer{})
			assert.Error(t, err)
			assert.False(t, errors.Is(err, ErrInformational))
		})
	}
}
