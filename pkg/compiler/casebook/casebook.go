// Package casebook extracts golden compiler test cases from Markdown.
//
// A case starts at a heading of the form "Test: <name>" and holds exactly
// one ```parl fence with the program, followed by one or more assertion
// fences:
//
//	```ir      the exact generated IR
//	```output  the lines the program prints when run
//	```error   a substring of the expected compile error
//
// Code blocks without a language are prose and ignored.
package casebook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// SourceFence is the fence language of a case's program.
const SourceFence = "parl"

// Kind is an assertion fence language.
type Kind string

const (
	KindIR     Kind = "ir"
	KindOutput Kind = "output"
	KindError  Kind = "error"
)

func (k Kind) valid() bool {
	return k == KindIR || k == KindOutput || k == KindError
}

// Assertion is one expectation of a case.
type Assertion struct {
	Kind    Kind
	Content string // fence body without the trailing newline
	Line    int
}

// Case is one extracted test case.
type Case struct {
	Name       string
	Source     string
	Line       int // line of the heading
	Assertions []Assertion
}

// Find returns the first assertion of the given kind.
func (c *Case) Find(kind Kind) (Assertion, bool) {
	for _, a := range c.Assertions {
		if a.Kind == kind {
			return a, true
		}
	}
	return Assertion{}, false
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case
	haveSource := false

	finish := func() error {
		if current == nil {
			return nil
		}
		if !haveSource {
			return fmt.Errorf("line %d: test %q has no %s fence", current.Line, current.Name, SourceFence)
		}
		if len(current.Assertions) == 0 {
			return fmt.Errorf("line %d: test %q has no assertion fences", current.Line, current.Name)
		}
		if _, ok := current.Find(KindError); ok && len(current.Assertions) > 1 {
			return fmt.Errorf("line %d: test %q mixes an error fence with other assertions", current.Line, current.Name)
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			title := headingText(n, markdown)
			if !strings.HasPrefix(title, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(title, "Test: ")),
				Line: lineOf(n, markdown),
			}
			haveSource = false

		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			if lang == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, markdown)
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test", line, lang)
			}
			body := strings.TrimRight(blockText(n, markdown), "\n")

			switch {
			case lang == SourceFence:
				if haveSource {
					return ast.WalkStop, fmt.Errorf("line %d: multiple %s fences in test %q", line, SourceFence, current.Name)
				}
				current.Source = body
				haveSource = true
			case Kind(lang).valid():
				current.Assertions = append(current.Assertions, Assertion{Kind: Kind(lang), Content: body, Line: line})
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, lang, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func headingText(h *ast.Heading, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockText(b *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := b.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of node's first content line. Headings
// and fences report the line their text starts on.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
