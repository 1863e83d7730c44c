package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waveguide-lang/waveguide/ast"
)

func TestParseVarDecWithInitializer(t *testing.T) {
	prog, errs := Parse(`Int x = 5;`)
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 1)

	vd, ok := prog.Statements[0].(*ast.VarDec)
	require.True(t, ok)
	require.Equal(t, "Int", vd.Type.Name)
	require.Equal(t, "x", vd.Name)
	require.NotNil(t, vd.Initializer)
}

func TestParseArrayTypeDeclaration(t *testing.T) {
	prog, errs := Parse(`Int[3][4] grid;`)
	require.Empty(t, errs)

	vd := prog.Statements[0].(*ast.VarDec)
	require.Equal(t, "Int", vd.Type.Name)
	require.Len(t, vd.Type.ArraySizes, 2)
}

func TestOperatorListHasNoPrecedence(t *testing.T) {
	prog, errs := Parse(`Int x = 1 + 2 * 3;`)
	require.Empty(t, errs)

	vd := prog.Statements[0].(*ast.VarDec)
	ol, ok := vd.Initializer.(*ast.OperatorList)
	require.True(t, ok)
	require.Equal(t, []string{"+", "*"}, ol.Operators)
	require.Len(t, ol.Operands, 3)
}

func TestSingleOperandCollapsesToBareExpression(t *testing.T) {
	prog, errs := Parse(`Int x = 5;`)
	require.Empty(t, errs)
	vd := prog.Statements[0].(*ast.VarDec)
	_, isOperatorList := vd.Initializer.(*ast.OperatorList)
	require.False(t, isOperatorList)
	_, isIntLiteral := vd.Initializer.(*ast.IntLiteral)
	require.True(t, isIntLiteral)
}

func TestFunctionDecNestedLambdasPopulated(t *testing.T) {
	prog, errs := Parse(`
def outer():(Int out) {
	def inner():(Int r) {
		r = 1;
		return r;
	}
	out = inner();
	return out;
}
`)
	require.Empty(t, errs)
	fd := prog.Statements[0].(*ast.FunctionDec)
	require.Len(t, fd.NestedLambdas, 1)
	require.Equal(t, "inner", fd.NestedLambdas[0].Name)
}

func TestElifDesugarsToNestedBranch(t *testing.T) {
	prog, errs := Parse(`
if (x == 1) {
	y = 1;
} elif (x == 2) {
	y = 2;
} else {
	y = 3;
}
`)
	require.Empty(t, errs)
	b := prog.Statements[0].(*ast.Branch)
	require.Len(t, b.Else, 1)

	nested, ok := b.Else[0].(*ast.Branch)
	require.True(t, ok)
	require.NotNil(t, nested.Else)
}

func TestForEachParsesCounterAndIterable(t *testing.T) {
	prog, errs := Parse(`
for i in xs {
	y = i;
}
`)
	require.Empty(t, errs)
	fe := prog.Statements[0].(*ast.ForEach)
	require.Equal(t, "i", fe.Counter)
	ref, ok := fe.Iterable.(*ast.VariableRef)
	require.True(t, ok)
	require.Equal(t, "xs", ref.Name)
}

func TestWhileParsesConditionAndBody(t *testing.T) {
	prog, errs := Parse(`
while (i < 5) {
	i = i + 1;
}
`)
	require.Empty(t, errs)
	w := prog.Statements[0].(*ast.While)
	require.Len(t, w.Body, 1)
}

func TestRangeLiteralWithAndWithoutStep(t *testing.T) {
	prog, errs := Parse(`Int[5] xs = {0, 5};`)
	require.Empty(t, errs)
	vd := prog.Statements[0].(*ast.VarDec)
	r := vd.Initializer.(*ast.Range)
	require.Nil(t, r.Step)

	prog2, errs2 := Parse(`Int[5] xs = {0, 10, 2};`)
	require.Empty(t, errs2)
	vd2 := prog2.Statements[0].(*ast.VarDec)
	r2 := vd2.Initializer.(*ast.Range)
	require.NotNil(t, r2.Step)
}

func TestArrayLiteralParsesElements(t *testing.T) {
	prog, errs := Parse(`Int[3] xs = [1, 2, 3];`)
	require.Empty(t, errs)
	vd := prog.Statements[0].(*ast.VarDec)
	al := vd.Initializer.(*ast.ArrayLiteral)
	require.Len(t, al.Elements, 3)
}

func TestIndexExpressionOrderedOutermostFirst(t *testing.T) {
	prog, errs := Parse(`Int y = grid[1][2];`)
	require.Empty(t, errs)
	vd := prog.Statements[0].(*ast.VarDec)
	ie := vd.Initializer.(*ast.IndexExpression)
	require.Equal(t, "grid", ie.Root.Name)
	require.Len(t, ie.Indices, 2)
}

func TestAssignToArrayElement(t *testing.T) {
	prog, errs := Parse(`xs[0] = 5;`)
	require.Empty(t, errs)
	a := prog.Statements[0].(*ast.Assign)
	_, ok := a.Left.(*ast.IndexExpression)
	require.True(t, ok)
}

func TestFunctionCallStatementVsExpression(t *testing.T) {
	prog, errs := Parse(`foo();`)
	require.Empty(t, errs)
	_, ok := prog.Statements[0].(*ast.FunctionCall)
	require.True(t, ok)
}

func TestSignedExpressionParsesOperatorAndOperand(t *testing.T) {
	prog, errs := Parse(`Int x = -5;`)
	require.Empty(t, errs)
	vd := prog.Statements[0].(*ast.VarDec)
	s := vd.Initializer.(*ast.Signed)
	require.Equal(t, "-", s.Operator)
}

func TestSyntaxErrorIsReported(t *testing.T) {
	_, errs := Parse(`Int x = ;`)
	require.NotEmpty(t, errs)
}
