package interpreter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waveguide-lang/waveguide/internal/lower"
	"github.com/waveguide-lang/waveguide/internal/scope"
	"github.com/waveguide-lang/waveguide/parser"
)

func TestArithmeticEndToEnd(t *testing.T) {
	// Waveguide has no operator precedence: operators are grouped strictly
	// left to right, so x + y * 2 means (x + y) * 2, not x + (y * 2).
	prog, errs := parser.Parse(`
Int x = 2;
Int y = 3;
Int z = x + y * 2;
`)
	require.Empty(t, errs)
	root, err := lower.Lower(prog)
	require.NoError(t, err)
	_, err = Run(root)
	require.NoError(t, err)

	main, ok := root.LookupFunc("main", false)
	require.True(t, ok)
	z, ok := main.LookupVar("z", false)
	require.True(t, ok)
	require.EqualValues(t, 10, z.AsInt())
}

func TestFloatWideningEndToEnd(t *testing.T) {
	prog, errs := parser.Parse(`
Int n = 3;
Float f = n + 1.5;
`)
	require.Empty(t, errs)
	root, err := lower.Lower(prog)
	require.NoError(t, err)
	_, err = Run(root)
	require.NoError(t, err)

	main, _ := root.LookupFunc("main", false)
	f, ok := main.LookupVar("f", false)
	require.True(t, ok)
	require.InDelta(t, 4.5, f.AsFloat(), 0.0001)
}

func TestForLoopSumEndToEnd(t *testing.T) {
	prog, errs := parser.Parse(`
Int[5] xs = [1, 2, 3, 4, 5];
Int total = 0;
for v in xs {
	total = total + v;
}
`)
	require.Empty(t, errs)
	root, err := lower.Lower(prog)
	require.NoError(t, err)
	_, err = Run(root)
	require.NoError(t, err)

	main, _ := root.LookupFunc("main", false)
	total, ok := main.LookupVar("total", false)
	require.True(t, ok)
	require.EqualValues(t, 15, total.AsInt())
}

func TestArrayIndexingEndToEnd(t *testing.T) {
	prog, errs := parser.Parse(`
Int[4] xs = [10, 20, 30, 40];
Int y = xs[1 + 1];
`)
	require.Empty(t, errs)
	root, err := lower.Lower(prog)
	require.NoError(t, err)
	_, err = Run(root)
	require.NoError(t, err)

	main, _ := root.LookupFunc("main", false)
	y, ok := main.LookupVar("y", false)
	require.True(t, ok)
	require.EqualValues(t, 30, y.AsInt())
}

func TestFunctionCallAndHoistingEndToEnd(t *testing.T) {
	prog, errs := parser.Parse(`
Int r = double(21);

def double(Int n):(Int out) {
	out = n * 2;
	return out;
}
`)
	require.Empty(t, errs)
	root, err := lower.Lower(prog)
	require.NoError(t, err)
	_, err = Run(root)
	require.NoError(t, err)

	main, _ := root.LookupFunc("main", false)
	r, ok := main.LookupVar("r", false)
	require.True(t, ok)
	require.EqualValues(t, 42, r.AsInt())
}

func TestIfElseBothBranchesEndToEnd(t *testing.T) {
	thenSrc := `
Int x = 1;
Int y = 0;
if (x == 1) {
	y = 10;
} else {
	y = 20;
}
`
	prog, errs := parser.Parse(thenSrc)
	require.Empty(t, errs)
	root, err := lower.Lower(prog)
	require.NoError(t, err)
	_, err = Run(root)
	require.NoError(t, err)
	main, _ := root.LookupFunc("main", false)
	y, ok := main.LookupVar("y", false)
	require.True(t, ok)
	require.EqualValues(t, 10, y.AsInt())

	elseSrc := `
Int x = 2;
Int y = 0;
if (x == 1) {
	y = 10;
} else {
	y = 20;
}
`
	prog2, errs2 := parser.Parse(elseSrc)
	require.Empty(t, errs2)
	root2, err := lower.Lower(prog2)
	require.NoError(t, err)
	_, err = Run(root2)
	require.NoError(t, err)
	main2, _ := root2.LookupFunc("main", false)
	y2, ok := main2.LookupVar("y", false)
	require.True(t, ok)
	require.EqualValues(t, 20, y2.AsInt())
}

func TestWhileLoopIsReserved(t *testing.T) {
	// while parses but is reserved, not implemented: lowering it reports
	// ErrKindUnsupported rather than running a loop.
	prog, errs := parser.Parse(`
Int i = 0;
while (i < 5) {
	i = i + 1;
}
`)
	require.Empty(t, errs)
	_, err := lower.Lower(prog)
	require.Error(t, err)

	lerr, ok := err.(*lower.Error)
	require.True(t, ok)
	require.Equal(t, lower.ErrKindUnsupported, lerr.Kind)
}

func TestReturnExitsEarlyFromBranch(t *testing.T) {
	prog, errs := parser.Parse(`
Int r = pick(1);

def pick(Int n):(Int out) {
	if (n == 1) {
		out = 100;
		return out;
	}
	out = 200;
	return out;
}
`)
	require.Empty(t, errs)
	root, err := lower.Lower(prog)
	require.NoError(t, err)
	_, err = Run(root)
	require.NoError(t, err)

	main, _ := root.LookupFunc("main", false)
	r, ok := main.LookupVar("r", false)
	require.True(t, ok)
	require.EqualValues(t, 100, r.AsInt())
}

func TestMissingMainIsError(t *testing.T) {
	// Lower always wraps top-level statements in an implicit main, so
	// construct a root without one to exercise the ErrKindMissingMain path.
	root := scope.New(nil)
	_, err := Run(root)
	require.Error(t, err)
	ierr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrKindMissingMain, ierr.Kind)
}
