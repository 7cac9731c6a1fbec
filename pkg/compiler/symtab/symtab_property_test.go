package symtab

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/parlc/pkg/compiler/diag"
	"github.com/zurustar/parlc/pkg/compiler/types"
)

// TestProperty_DuplicateAndShadowing checks that redeclaring in the same
// scope fails while redeclaring in a nested scope shadows only for the
// nested scope's lifetime.
func TestProperty_DuplicateAndShadowing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("same-scope redeclaration fails", prop.ForAll(
		func(name string) bool {
			tab := New()
			tab.EnterScope()
			if _, err := tab.Declare(name, types.Int); err != nil {
				return false
			}
			_, err := tab.Declare(name, types.Int)
			return diag.Is(err, diag.DuplicateDeclaration)
		},
		gen.Identifier(),
	))

	properties.Property("nested redeclaration shadows then restores", prop.ForAll(
		func(name string, depth int) bool {
			tab := New()
			tab.EnterScope()
			outer, _ := tab.Declare(name, types.Int)

			for i := 0; i < depth; i++ {
				tab.EnterScope()
			}
			inner, err := tab.Declare(name, types.Float)
			if err != nil {
				return false
			}
			if got, _ := tab.Lookup(name); got != inner {
				return false
			}
			for i := 0; i < depth; i++ {
				tab.ExitScope()
			}
			got, _ := tab.Lookup(name)
			return got == outer
		},
		gen.Identifier(),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// TestProperty_AccessLevel checks access_level = use depth - declaring depth.
func TestProperty_AccessLevel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("access level counts nested scopes", prop.ForAll(
		func(name string, declDepth, extra int) bool {
			tab := New()
			for i := 0; i <= declDepth; i++ {
				tab.EnterScope()
			}
			sym, _ := tab.Declare(name, types.Int)
			if tab.AccessLevel(sym) != 0 {
				return false
			}
			for i := 0; i < extra; i++ {
				tab.EnterScope()
			}
			found, err := tab.Lookup(name)
			return err == nil && tab.AccessLevel(found) == extra
		},
		gen.Identifier(),
		gen.IntRange(0, 5),
		gen.IntRange(0, 5),
	))

	properties.Property("frame indices are contiguous", prop.ForAll(
		func(sizes []int) bool {
			tab := New()
			tab.EnterScope()
			want := 0
			for i, n := range sizes {
				sym, err := tab.Declare(string(rune('a'+i%26))+string(rune('a'+i/26)), types.ArrayOf(types.Int), WithSize(n))
				if err != nil || sym.Index != want {
					return false
				}
				want += n
			}
			return tab.FrameSize() == want
		},
		gen.SliceOfN(20, gen.IntRange(1, 16)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
