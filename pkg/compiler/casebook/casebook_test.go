package casebook

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func doc(parts ...string) []byte {
	return []byte(strings.Join(parts, "\n") + "\n")
}

func TestExtract_Basic(t *testing.T) {
	md := doc(
		"# Printing",
		"",
		"## Test: print literal",
		fence+"parl",
		"__print 1;",
		fence,
		fence+"output",
		"1",
		fence,
		"",
		"## Test: print sum",
		fence+"parl",
		"__print 1 + 2;",
		fence,
		fence+"ir",
		"push 2",
		"push 1",
		"add",
		fence,
		fence+"output",
		"3",
		fence,
	)

	cases, err := Extract(md)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "print literal")
	be.Equal(t, cases[0].Source, "__print 1;")
	be.Equal(t, cases[0].Line, 3)
	be.Equal(t, len(cases[0].Assertions), 1)
	be.Equal(t, cases[0].Assertions[0].Kind, KindOutput)
	be.Equal(t, cases[0].Assertions[0].Content, "1")

	be.Equal(t, cases[1].Name, "print sum")
	be.Equal(t, len(cases[1].Assertions), 2)
	ir, ok := cases[1].Find(KindIR)
	be.True(t, ok)
	be.Equal(t, ir.Content, "push 2\npush 1\nadd")
	_, ok = cases[1].Find(KindError)
	be.True(t, !ok)
}

func TestExtract_ProseFencesIgnored(t *testing.T) {
	md := doc(
		"Some notes:",
		fence,
		"not a test",
		fence,
		"## Test: error",
		fence+"parl",
		"let x:int = true;",
		fence,
		fence+"error",
		"Type mismatch",
		fence,
	)

	cases, err := Extract(md)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, cases[0].Assertions[0].Kind, KindError)
	be.Equal(t, cases[0].Assertions[0].Content, "Type mismatch")
}

func TestExtract_HeadingsWithoutPrefixAreSections(t *testing.T) {
	md := doc(
		"## Test: one",
		fence+"parl",
		"__print 1;",
		fence,
		"### Details",
		fence+"output",
		"1",
		fence,
	)

	cases, err := Extract(md)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, len(cases[0].Assertions), 1)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name string
		md   []byte
		want string
	}{
		{
			name: "fence outside test",
			md:   doc(fence+"parl", "__print 1;", fence),
			want: "outside of a test",
		},
		{
			name: "unknown language",
			md:   doc("## Test: x", fence+"parl", "__print 1;", fence, fence+"asm", "nop", fence),
			want: `unknown fence language "asm"`,
		},
		{
			name: "two sources",
			md:   doc("## Test: x", fence+"parl", "__print 1;", fence, fence+"parl", "__print 2;", fence),
			want: "multiple parl fences",
		},
		{
			name: "missing source",
			md:   doc("## Test: x", fence+"output", "1", fence),
			want: "has no parl fence",
		},
		{
			name: "missing assertion",
			md:   doc("## Test: x", fence+"parl", "__print 1;", fence),
			want: "has no assertion fences",
		},
		{
			name: "error mixed with output",
			md:   doc("## Test: x", fence+"parl", "__print 1;", fence, fence+"error", "boom", fence, fence+"output", "1", fence),
			want: "mixes an error fence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.md)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), tt.want))
		})
	}
}
