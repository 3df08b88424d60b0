package sidediff

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/sidediff/cli"
	"github.com/sokinpui/sidediff/internal/codec"
	"github.com/sokinpui/sidediff/internal/source"
	"github.com/sokinpui/sidediff/internal/ui"
)

const width = 10

func init() {
	ui.Quiet = true
}

// row builds one expected output line for ASCII text at width.
func row(lno int, left string, tag byte, rno int, right string) string {
	num := func(n int) string {
		if n == 0 {
			return ""
		}
		return fmt.Sprint(n)
	}
	return fmt.Sprintf("%5s %-10s |%c| %5s %-10s", num(lno), left, tag, num(rno), right)
}

func separator() string {
	return "------" + strings.Repeat("-", width) + "-+-+-------" + strings.Repeat("-", width)
}

func section(name string, rows ...string) []string {
	out := []string{row(0, "org: "+name, ' ', 0, "new: "+name), separator()}
	out = append(out, rows...)
	return append(out, "", "")
}

func joined(sections ...[]string) string {
	var all []string
	for _, s := range sections {
		all = append(all, s...)
	}
	return strings.Join(all, "\n") + "\n"
}

func renderString(t *testing.T, diff string, dirs ...string) string {
	t.Helper()
	if len(dirs) == 0 {
		dirs = []string{t.TempDir()}
	}
	var out bytes.Buffer
	err := Render(strings.NewReader(diff), &out, Config{Width: width, LookupDirs: dirs})
	require.NoError(t, err)
	return out.String()
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestHunkWithoutFileUsesContextLines(t *testing.T) {
	got := renderString(t, "@@ -1,2 +1,2 @@\n-foo\n+bar\n context\n")
	want := joined(section("",
		row(1, "foo", 'M', 1, "bar"),
		row(2, "context", ' ', 2, "context"),
	))
	assert.Equal(t, want, got)
}

func TestUnifiedWithFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.txt", "a\nB\nc\nd\ne\n")

	diff := "--- a/f.txt\n+++ b/f.txt\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n"
	want := joined(section("f.txt",
		row(1, "a", ' ', 1, "a"),
		row(2, "b", 'M', 2, "B"),
		row(3, "c", ' ', 3, "c"),
		row(4, "d", ' ', 4, "d"),
		row(5, "e", ' ', 5, "e"),
	))
	assert.Equal(t, want, renderString(t, diff, dir))
}

func TestContextFormatWithFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.txt", "one\nTWO\nthree\nfour\nfive\n")

	diff := "diff old/x.txt ./x.txt\n2c2\n< two\n---\n> TWO\n3a4\n> four\n"
	want := joined(section("x.txt",
		row(1, "one", ' ', 1, "one"),
		row(2, "two", 'M', 2, "TWO"),
		row(3, "three", ' ', 3, "three"),
		row(0, "", 'A', 4, "four"),
		row(4, "five", ' ', 5, "five"),
	))
	assert.Equal(t, want, renderString(t, diff, dir))
}

func TestDeleteAndFoldedLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "g.txt", "keep\n")

	diff := "Index: g.txt\n@@ -1,2 +1,1 @@\n keep\n-0123456789abc\n"
	want := joined(section("g.txt",
		row(1, "keep", ' ', 1, "keep"),
		row(2, "0123456789", 'D', 0, ""),
		row(0, "abc", 'D', 0, ""),
	))
	assert.Equal(t, want, renderString(t, diff, dir))
}

func TestMultipleSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x\n")
	writeFile(t, dir, "b.txt", "1\n2\n")

	diff := "" +
		"Index: a.txt\n@@ -1 +1 @@\n-y\n+x\n" +
		"Index: b.txt\n@@ -1,1 +1,2 @@\n 1\n+2\n"
	want := joined(
		section("a.txt", row(1, "y", 'M', 1, "x")),
		section("b.txt",
			row(1, "1", ' ', 1, "1"),
			row(0, "", 'A', 2, "2"),
		),
	)
	assert.Equal(t, want, renderString(t, diff, dir))
}

func TestGapWithoutContextIsSkipped(t *testing.T) {
	diff := "@@ -1,2 +1,2 @@\n a\n-b\n+B\n@@ -10,2 +10,2 @@\n j\n-k\n+K\n"
	want := joined(section("",
		row(1, "a", ' ', 1, "a"),
		row(2, "b", 'M', 2, "B"),
		row(10, "j", ' ', 10, "j"),
		row(11, "k", 'M', 11, "K"),
	))
	assert.Equal(t, want, renderString(t, diff))
}

func TestRenderShiftJISToUTF8(t *testing.T) {
	diff := "@@ -1 +1 @@\n-\x82\xa0\n+\x82\xa2\n"
	var out bytes.Buffer
	err := Render(strings.NewReader(diff), &out, Config{
		Width:      4,
		Encoding:   "sjis",
		LookupDirs: []string{t.TempDir()},
		ToUTF8:     true,
	})
	require.NoError(t, err)
	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "    1 あ   |M|     1 い  ", lines[2])
}

func TestRenderRejectsBadConfig(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, Render(strings.NewReader(""), &out, Config{Width: 1}))
	assert.Error(t, Render(strings.NewReader(""), &out, Config{Encoding: "latin1"}))
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, renderString(t, ""))
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.txt", "new\n")
	diffPath := filepath.Join(dir, "change.diff")
	writeFile(t, dir, "change.diff", "Index: f.txt\n1c1\n< old\n---\n> new\n")

	app, err := New(&cli.Config{
		Column:     width,
		Window:     30,
		File:       diffPath,
		LookupDirs: []string{dir},
		Encoding:   codec.Unknown,
	})
	require.NoError(t, err)
	var out bytes.Buffer
	app.SetOutput(&out)
	require.NoError(t, app.Execute())
	assert.Equal(t, joined(section("f.txt", row(1, "old", 'M', 1, "new"))), out.String())
}

func TestExecuteMarkdownInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "m.go", "package m\n")

	app, err := New(&cli.Config{Column: width, Window: 30, Markdown: true, LookupDirs: []string{dir}})
	require.NoError(t, err)
	app.SetInput(strings.NewReader("Rename in `m.go`:\n\n```diff\n@@ -1 +1 @@\n-package x\n+package m\n```\n"))
	var out bytes.Buffer
	app.SetOutput(&out)
	require.NoError(t, app.Execute())
	assert.Equal(t, joined(section("m.go", row(1, "package x", 'M', 1, "package m"))), out.String())

	app.SetInput(strings.NewReader("no code here\n"))
	err = app.Execute()
	assert.True(t, errors.Is(err, source.ErrNoInput))
}

func TestDetailedErrorUnwraps(t *testing.T) {
	base := errors.New("boom")
	var err error = &DetailedError{Err: base, Stack: []byte("stack")}
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, "boom", err.Error())
}

func TestHunkStateEndsWithSection(t *testing.T) {
	got := renderString(t, "Index: a.txt\n@@ -5 +5 @@\n-y\n+x\nIndex: b.txt\n\n@@ -1 +1 @@\n-p\n+q\n")
	want := joined(
		section("a.txt", row(5, "y", 'M', 5, "x")),
		section("b.txt", row(1, "p", 'M', 1, "q")),
	)
	assert.Equal(t, want, got)
}

func TestTrailingBlankLineIsNotContext(t *testing.T) {
	got := renderString(t, "@@ -1 +1 @@\n-a\n+b\n\n")
	assert.Equal(t, joined(section("", row(1, "a", 'M', 1, "b"))), got)
}

func TestLargeGapsAreSkipped(t *testing.T) {
	got := renderString(t, "@@ -2000000000,2 +2000000000,2 @@\n a\n-b\n+B\n")
	want := joined(section("",
		row(2000000000, "a", ' ', 2000000000, "a"),
		row(2000000001, "b", 'M', 2000000001, "B"),
	))
	assert.Equal(t, want, got)

	dir := t.TempDir()
	writeFile(t, dir, "f.txt", "x\n")
	got = renderString(t, "Index: f.txt\n@@ -1000000000 +1000000000 @@\n-a\n+b\n", dir)
	want = joined(section("f.txt",
		row(1, "x", ' ', 1, "x"),
		row(1000000000, "a", 'M', 1000000000, "b"),
	))
	assert.Equal(t, want, got)
}

func TestContextFallbackKeepsNumbering(t *testing.T) {
	diff := "@@ -3,2 +3,2 @@\n c\n-d\n+D\n@@ -7,3 +7,3 @@\n g\n-h\n+H\n i\n"
	want := joined(section("",
		row(3, "c", ' ', 3, "c"),
		row(4, "d", 'M', 4, "D"),
		row(7, "g", ' ', 7, "g"),
		row(8, "h", 'M', 8, "H"),
		row(9, "i", ' ', 9, "i"),
	))
	assert.Equal(t, want, renderString(t, diff))
}

func TestMissingFileWarningListsLookupDirs(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevQuiet := ui.Output, ui.Quiet
	ui.Output, ui.Quiet = &buf, false
	t.Cleanup(func() { ui.Output, ui.Quiet = prevOut, prevQuiet })

	dir := t.TempDir()
	renderString(t, "Index: gone.txt\n@@ -1 +1 @@\n-a\n+b\n", dir)
	assert.Contains(t, buf.String(), "file 'gone.txt' not found")
	assert.Contains(t, buf.String(), "  "+dir)
}
