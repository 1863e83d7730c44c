package builtins

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waveguide-lang/waveguide/internal/datatype"
	"github.com/waveguide-lang/waveguide/internal/scope"
)

func TestGetIsSingleton(t *testing.T) {
	a := Get()
	b := Get()
	require.Same(t, a, b)
}

func TestArithmeticSignatures(t *testing.T) {
	r := Get()
	require.Len(t, r.Add.Inputs, 2)
	require.Len(t, r.Add.Outputs, 1)
	require.Same(t, r.UpcastWildcard, r.Add.Outputs[0].Type)

	require.Len(t, r.Recip.Outputs, 1)
	require.Same(t, datatype.Float, r.Recip.Outputs[0].Type)
}

func TestComparisonOutputsAreBool(t *testing.T) {
	r := Get()
	for _, s := range []*scope.Scope{r.Eq, r.Neq, r.Lte, r.Gte, r.Lt, r.Gt} {
		require.Len(t, s.Outputs, 1)
		require.Same(t, datatype.Bool, s.Outputs[0].Type)
	}
}

func TestConversionSignatures(t *testing.T) {
	r := Get()
	require.Same(t, datatype.Int, r.Itof.Inputs[0].Type)
	require.Same(t, datatype.Float, r.Itof.Outputs[0].Type)
	require.Same(t, datatype.Float, r.Ftoi.Inputs[0].Type)
	require.Same(t, datatype.Int, r.Ftoi.Outputs[0].Type)
}

func TestCopySignature(t *testing.T) {
	r := Get()
	require.Len(t, r.Copy.Inputs, 2)
	require.Same(t, r.Wildcard, r.Copy.Inputs[0].Type)
	require.Same(t, datatype.Int, r.Copy.Inputs[1].Type)
	require.Same(t, r.Wildcard, r.Copy.Outputs[0].Type)
}

func TestInstallSeedsRootScope(t *testing.T) {
	r := Get()
	root := scope.New(nil)
	Install(root, r)

	fn, ok := root.LookupFunc("!ADD", false)
	require.True(t, ok)
	require.Same(t, r.Add, fn)

	logFn, ok := root.LookupFunc("log", false)
	require.True(t, ok)
	require.Same(t, r.Log, logFn)

	dt, ok := root.LookupType("Int", false)
	require.True(t, ok)
	require.Same(t, datatype.Int, dt)
}

func TestIdentityResolvesUserFacingName(t *testing.T) {
	r := Get()
	require.Equal(t, "log", r.Identity(r.Log))
	require.Equal(t, "", r.Identity(r.Add))
}
