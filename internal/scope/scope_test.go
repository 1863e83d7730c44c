package scope

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waveguide-lang/waveguide/internal/datatype"
	"github.com/waveguide-lang/waveguide/internal/value"
)

func TestDeclareAndLookupVarNearestBinding(t *testing.T) {
	root := New(nil)
	outer := value.New(datatype.Int)
	root.DeclareVar("a", outer)

	child := New(root)
	inner := value.New(datatype.Int)
	child.DeclareVar("a", inner)

	got, ok := child.LookupVar("a", true)
	require.True(t, ok)
	require.Same(t, inner, got)

	gotRoot, ok := root.LookupVar("a", true)
	require.True(t, ok)
	require.Same(t, outer, gotRoot)
}

func TestLookupVarWalksParents(t *testing.T) {
	root := New(nil)
	v := value.New(datatype.Int)
	root.DeclareVar("x", v)

	child := New(root)
	got, ok := child.LookupVar("x", true)
	require.True(t, ok)
	require.Same(t, v, got)

	_, ok = child.LookupVar("x", false)
	require.False(t, ok)
}

func TestLookupVarMissing(t *testing.T) {
	root := New(nil)
	_, ok := root.LookupVar("nope", true)
	require.False(t, ok)
}

func TestAutoAddAppendsToSignature(t *testing.T) {
	fn := NewFunction(nil)
	fn.AutoAdd = AutoAddInputs

	in1 := value.New(datatype.Int)
	fn.DeclareVar("x", in1)
	require.Len(t, fn.Inputs, 1)
	require.Same(t, in1, fn.Inputs[0])

	fn.AutoAdd = AutoAddOutputs
	out1 := value.New(datatype.Float)
	fn.DeclareVar("r", out1)
	require.Len(t, fn.Outputs, 1)
	require.Same(t, out1, fn.Outputs[0])

	fn.AutoAdd = AutoAddNone
	extra := value.New(datatype.Bool)
	fn.DeclareVar("tmp", extra)
	require.Len(t, fn.Inputs, 1)
	require.Len(t, fn.Outputs, 1)
}

func TestDeclareFuncAndLookup(t *testing.T) {
	root := New(nil)
	fn := NewFunction(root)
	root.DeclareFunc("add", fn)

	got, ok := root.LookupFunc("add", true)
	require.True(t, ok)
	require.Same(t, fn, got)
}

func TestDeclareTempFuncAndVar(t *testing.T) {
	root := New(nil)
	tmpFn := NewFunction(root)
	root.DeclareTempFunc(tmpFn)
	require.Len(t, root.tempFuncs, 1)

	tmpVar := value.New(datatype.Int)
	root.DeclareTempVar(tmpVar)
	require.Len(t, root.tempVars, 1)
}

func TestAddCommandAppendsInOrder(t *testing.T) {
	root := New(nil)
	callee := NewFunction(root)

	c1 := &Command{Callee: callee}
	c2 := &Command{Callee: callee}
	root.AddCommand(c1)
	root.AddCommand(c2)

	require.Equal(t, []*Command{c1, c2}, root.Commands)
}

func TestReprIncludesVarsAndCommands(t *testing.T) {
	root := New(nil)
	v := value.New(datatype.Int)
	root.DeclareVar("a", v)

	callee := NewFunction(root)
	root.AddCommand(&Command{Callee: callee, Aug: &Augmentation{Kind: AugDoIf}})

	repr := root.Repr()
	require.Contains(t, repr, "var a: Int")
	require.Contains(t, repr, "DO_IF")
}

func TestRootScopeHasNoSignature(t *testing.T) {
	root := New(nil)
	require.False(t, root.HasSignature)

	fn := NewFunction(root)
	require.True(t, fn.HasSignature)
}
