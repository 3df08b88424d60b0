package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock represents a parsed code block from markdown content.
type CodeBlock struct {
	// Hint is the content of the paragraph immediately preceding the code block.
	Hint string
	// Lang is the first word of the info string (e.g., "diff", "patch").
	Lang string
	// Content is the raw text inside the code block.
	Content string
}

var pathInHintRegex = regexp.MustCompile("`([^`\n]+)`")

// ExtractCodeBlocks uses a markdown AST to find all fenced code blocks
// and their preceding paragraph, which is treated as a hint.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fencedCodeBlock, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var block CodeBlock
		block.Lang = string(fencedCodeBlock.Language(source))

		block.Content = segmentsText(fencedCodeBlock.Lines(), source)

		if prev := fencedCodeBlock.PreviousSibling(); prev != nil {
			if p, ok := prev.(*ast.Paragraph); ok {
				block.Hint = strings.TrimSpace(segmentsText(p.Lines(), source))
			}
		}

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	return blocks, nil
}

// segmentsText returns the raw source of lines, markup included.
func segmentsText(lines *text.Segments, source []byte) string {
	var b bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	return b.String()
}

// ExtractDiffText joins the bodies of all ```diff and ```patch blocks into
// one diff stream. A block without its own filename line gets an "Index:"
// line built from a `path` in the paragraph before it. It returns the number
// of blocks used.
func ExtractDiffText(source []byte) (string, int, error) {
	blocks, err := ExtractCodeBlocks(source)
	if err != nil {
		return "", 0, err
	}

	var b strings.Builder
	n := 0
	for _, block := range blocks {
		if block.Lang != "diff" && block.Lang != "patch" {
			continue
		}
		if path := extractPathFromHint(block.Hint); path != "" && !hasFilenameLine(block.Content) {
			b.WriteString("Index: " + path + "\n")
		}
		b.WriteString(block.Content)
		if !strings.HasSuffix(block.Content, "\n") {
			b.WriteString("\n")
		}
		n++
	}
	return b.String(), n, nil
}

func hasFilenameLine(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if _, ok := parseFilename(line); ok {
			return true
		}
	}
	return false
}

func extractPathFromHint(hint string) string {
	// A path hint must be enclosed in backticks, e.g., `path/to/file.go`
	if match := pathInHintRegex.FindStringSubmatch(hint); len(match) > 1 {
		path := strings.TrimSpace(match[1])
		// Disallow spaces to avoid capturing commands like `go run main.go` as a path.
		if !strings.Contains(path, " ") {
			return path
		}
	}
	return ""
}
