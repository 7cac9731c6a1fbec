package vm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/parlc/pkg/ir"
)

func runText(text string) (string, error) {
	prog, err := ir.Parse(text)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	err = New(prog, WithOutput(&out), WithLogger(quietLogger()), WithSeed(7)).Run(context.Background())
	return strings.TrimRight(out.String(), "\n"), err
}

// TestProperty_Arithmetic checks each binary instruction against Go's
// operators with the left operand pushed last.
func TestProperty_Arithmetic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	ops := map[string]func(a, b float64) float64{
		"add": func(a, b float64) float64 { return a + b },
		"sub": func(a, b float64) float64 { return a - b },
		"mul": func(a, b float64) float64 { return a * b },
		"lt":  func(a, b float64) float64 { return truth(a < b) },
		"ge":  func(a, b float64) float64 { return truth(a >= b) },
		"eq":  func(a, b float64) float64 { return truth(a == b) },
	}
	names := []interface{}{"add", "sub", "mul", "lt", "ge", "eq"}

	properties.Property("binary ops compute left op right", prop.ForAll(
		func(a, b int, op string) bool {
			out, err := runText(fmt.Sprintf("push %d\npush %d\n%s\nprint\n", b, a, op))
			if err != nil {
				return false
			}
			return out == FormatValue(ops[op](float64(a), float64(b)))
		},
		gen.IntRange(-10000, 10000),
		gen.IntRange(-10000, 10000),
		gen.OneConstOf(names...),
	))

	properties.Property("division by non-zero matches float division", prop.ForAll(
		func(a, b int) bool {
			if b == 0 {
				b = 1
			}
			out, err := runText(fmt.Sprintf("push %d\npush %d\ndiv\nprint\n", b, a))
			return err == nil && out == FormatValue(float64(a)/float64(b))
		},
		gen.IntRange(-1000, 1000),
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// TestProperty_ArrayRoundTrip stores values with sta and reads them back
// with pusha and with offsets.
func TestProperty_ArrayRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("sta then offset reads return each element", prop.ForAll(
		func(values []int) bool {
			n := len(values)
			var sb strings.Builder
			fmt.Fprintf(&sb, "push %d\noframe\n", n)
			for i := n - 1; i >= 0; i-- {
				fmt.Fprintf(&sb, "push %d\n", values[i])
			}
			fmt.Fprintf(&sb, "push %d\npush 0\npush 0\nsta\n", n)
			for i := range n {
				fmt.Fprintf(&sb, "push %d\npush +[0:0]\nprint\n", i)
			}
			// pusha leaves the last element on top
			fmt.Fprintf(&sb, "push %d\npusha [0:0]\n", n)
			for range n {
				sb.WriteString("print\n")
			}

			out, err := runText(sb.String())
			if err != nil {
				return false
			}
			var want []string
			for _, v := range values {
				want = append(want, FormatValue(float64(v)))
			}
			for i := n - 1; i >= 0; i-- {
				want = append(want, FormatValue(float64(values[i])))
			}
			return out == strings.Join(want, "\n")
		},
		gen.SliceOfN(8, gen.IntRange(-500, 500)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
