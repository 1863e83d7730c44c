// Package lower implements the AST-to-IR lowerer: a visitor over the
// closed AST variant (package ast) that emits commands into a
// [scope.Scope] tree, resolving names, desugaring operators, lowering
// array access and literals, constant-folding ranges, and lowering
// control flow.
//
// The visitor shape is a single struct threading a mutable cursor
// (the current [scope.Scope]) through a big type-switch over AST node
// kinds, a common compiler structure: instead of a package-level scope
// stack pushed and popped for nested function compilation, this
// package passes the current *scope.Scope explicitly through each
// visit call, since a single lowerer value may need to resume
// lowering a deferred function body (the two-pass hoisting walk)
// after already having moved on to a sibling statement.
package lower

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/waveguide-lang/waveguide/ast"
	"github.com/waveguide-lang/waveguide/internal/builtins"
	"github.com/waveguide-lang/waveguide/internal/datatype"
	"github.com/waveguide-lang/waveguide/internal/scope"
	"github.com/waveguide-lang/waveguide/internal/value"
)

// ErrKind discriminates the closed set of lowering failures.
type ErrKind int

const (
	ErrKindNameUnresolved ErrKind = iota
	ErrKindArityMismatch
	ErrKindNonConstant
	ErrKindTypeMismatch
	ErrKindUnsupported
	ErrKindProxyInvariant
	ErrKindInternal
)

// String names an ErrKind for diagnostics.
func (k ErrKind) String() string {
	switch k {
	case ErrKindNameUnresolved:
		return "name unresolved"
	case ErrKindArityMismatch:
		return "arity mismatch"
	case ErrKindNonConstant:
		return "non-constant where constant required"
	case ErrKindTypeMismatch:
		return "type mismatch"
	case ErrKindUnsupported:
		return "unsupported construct"
	case ErrKindProxyInvariant:
		return "proxy chain invariant violated"
	default:
		return "internal error"
	}
}

// Error is the lowerer's single error type: every failure the lowerer
// reports carries a Kind drawn from a closed taxonomy plus a
// human-readable Message.
type Error struct {
	Kind ErrKind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// Lower lowers a complete parsed program into its root Scope. The
// program's top-level statements become the body of an implicitly
// declared "main" function scope, nested under the root alongside the
// installed built-ins, so the interpreter's "look up main and invoke
// it" contract holds even though Waveguide source never writes an
// explicit `def main`.
//
// Fatal, programmer-error conditions the lowerer does not expect to
// hit in well-formed input (a malformed, non-terminating proxy chain)
// are raised as panics internally and recovered here: a panic carrying
// an *Error is returned as that error, and any other panic becomes an
// *Error of kind ErrKindInternal (no recovered panic is reported as
// ErrKindProxyInvariant). This keeps the error channel a plain returned
// value without threading a recovery path through every call site.
func Lower(program *ast.Program) (root *scope.Scope, err error) {
	defer func() {
		if r := recover(); r != nil {
			if lerr, ok := r.(*Error); ok {
				root, err = nil, lerr
				return
			}
			root, err = nil, &Error{Kind: ErrKindInternal, Message: fmt.Sprintf("%v", r)}
		}
	}()

	reg := builtins.Get()
	root = scope.New(nil)
	builtins.Install(root, reg)

	l := &lowerer{reg: reg}

	mainScope := scope.NewFunction(root)
	if err := l.lowerBlock(program.Statements, mainScope); err != nil {
		return nil, err
	}
	root.DeclareFunc("main", mainScope)

	return root, nil
}

// lowerer holds the built-in registry; the mutable cursor (current
// scope, current value, current type) is threaded as explicit
// parameters and return values instead of struct fields, since nested
// two-pass block lowering needs to resume several cursors concurrently
// (a deferred function body alongside its enclosing block).
type lowerer struct {
	reg *builtins.Registry
}

func (l *lowerer) errf(kind ErrKind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// lowerBlock lowers a statement list into s, applying a two-pass
// function-hoisting contract: every function
// declaration anywhere in the block has its signature registered
// before any statement in the block is lowered — including a call
// that textually precedes its def — so that within one block, every
// function is resolvable from every other regardless of order; then
// bodies are lowered once every sibling signature is visible.
func (l *lowerer) lowerBlock(stmts []ast.Statement, s *scope.Scope) error {
	type pendingFunc struct {
		decl *ast.FunctionDec
		child *scope.Scope
	}
	var pending []pendingFunc

	for _, stmt := range stmts {
		fd, ok := stmt.(*ast.FunctionDec)
		if !ok {
			continue
		}
		child, err := l.declareFunctionSignature(fd, s)
		if err != nil {
			return err
		}
		pending = append(pending, pendingFunc{fd, child})
	}

	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.FunctionDec); ok {
			continue
		}
		if err := l.lowerStatement(stmt, s); err != nil {
			return err
		}
	}

	for _, p := range pending {
		if err := l.lowerBlock(p.decl.Body, p.child); err != nil {
			return err
		}
	}
	return nil
}

func (l *lowerer) declareFunctionSignature(fd *ast.FunctionDec, s *scope.Scope) (*scope.Scope, error) {
	child := scope.NewFunction(s)

	child.AutoAdd = scope.AutoAddInputs
	for _, p := range fd.Inputs {
		dt, err := l.resolveDataType(p.Type, s)
		if err != nil {
			return nil, err
		}
		child.DeclareVar(p.Name, value.New(dt))
	}

	child.AutoAdd = scope.AutoAddOutputs
	for _, p := range fd.Outputs {
		dt, err := l.resolveDataType(p.Type, s)
		if err != nil {
			return nil, err
		}
		child.DeclareVar(p.Name, value.New(dt))
	}
	child.AutoAdd = scope.AutoAddNone

	s.DeclareFunc(fd.Name, child)
	return child, nil
}

func (l *lowerer) resolveDataType(dt *ast.DataType, s *scope.Scope) (*datatype.DataType, error) {
	base, ok := s.LookupType(dt.Name, true)
	if !ok {
		return nil, l.errf(ErrKindNameUnresolved, "undefined type %q", dt.Name)
	}

	sizes := make([]int, len(dt.ArraySizes))
	for i, szExpr := range dt.ArraySizes {
		szVal, err := l.lowerExpression(szExpr, s)
		if err != nil {
			return nil, err
		}
		if !szVal.Known {
			return nil, l.errf(ErrKindNonConstant, "array size must be a compile-time constant")
		}
		sizes[i] = int(asInt64(szVal))
	}

	cur := base
	for i := len(sizes) - 1; i >= 0; i-- {
		cur = datatype.NewArray(cur, sizes[i])
	}
	return cur, nil
}

func (l *lowerer) lowerStatement(stmt ast.Statement, s *scope.Scope) error {
	switch st := stmt.(type) {
	case *ast.VarDec:
		return l.lowerVarDec(st, s)
	case *ast.Assign:
		return l.lowerAssign(st, s)
	case *ast.Return:
		return l.lowerReturn(st, s)
	case *ast.FunctionCall:
		_, err := l.lowerFunctionCall(st, s, true)
		return err
	case *ast.Branch:
		return l.lowerBranch(st, s)
	case *ast.ForEach:
		return l.lowerForEach(st, s)
	case *ast.While:
		return l.lowerWhile(st, s)
	case *ast.FunctionDec:
		return l.errf(ErrKindInternal, "function declaration reached statement dispatch outside lowerBlock")
	default:
		return l.errf(ErrKindUnsupported, "unsupported statement %T", stmt)
	}
}

func (l *lowerer) lowerVarDec(vd *ast.VarDec, s *scope.Scope) error {
	dt, err := l.resolveDataType(vd.Type, s)
	if err != nil {
		return err
	}
	v := value.New(dt)
	s.DeclareVar(vd.Name, v)

	if vd.Initializer != nil {
		init, err := l.lowerExpression(vd.Initializer, s)
		if err != nil {
			return err
		}
		l.emitCopy(s, init, l.zero(), v)
	}
	return nil
}

func (l *lowerer) lowerAssign(a *ast.Assign, s *scope.Scope) error {
	rhs, err := l.lowerExpression(a.Value, s)
	if err != nil {
		return err
	}

	switch left := a.Left.(type) {
	case *ast.VariableRef:
		target, ok := s.LookupVar(left.Name, true)
		if !ok {
			return l.errf(ErrKindNameUnresolved, "undefined variable %q", left.Name)
		}
		l.emitCopy(s, rhs, l.zero(), target)
	case *ast.IndexExpression:
		acc, err := l.lowerIndexAccess(left, s)
		if err != nil {
			return err
		}
		l.writeAccess(s, acc, rhs)
	default:
		return l.errf(ErrKindUnsupported, "unsupported assignment target %T", a.Left)
	}
	return nil
}

// enclosingFunction walks up from s to the nearest scope that is a
// genuine function (named or the implicit main), skipping synthetic
// if/for body scopes along the way.
func enclosingFunction(s *scope.Scope) *scope.Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.HasSignature && !cur.IsBlockBody {
			return cur
		}
	}
	return nil
}

func (l *lowerer) lowerReturn(r *ast.Return, s *scope.Scope) error {
	v, err := l.lowerExpression(r.Value, s)
	if err != nil {
		return err
	}

	fn := enclosingFunction(s)
	if fn == nil {
		return l.errf(ErrKindInternal, "return statement outside any function scope")
	}

	retSlot, ok := fn.LookupVar("return", false)
	if !ok {
		retSlot = value.New(v.Type)
		fn.AutoAdd = scope.AutoAddOutputs
		fn.DeclareVar("return", retSlot)
		fn.AutoAdd = scope.AutoAddNone
	}

	l.emitCopy(s, v, l.zero(), retSlot)
	s.AddCommand(&scope.Command{Callee: l.reg.Return, Inputs: []*value.Value{v}})
	return nil
}

func (l *lowerer) lowerBranch(b *ast.Branch, s *scope.Scope) error {
	cond, err := l.lowerExpression(b.Condition, s)
	if err != nil {
		return err
	}

	thenScope := scope.NewBlockBody(s)
	if err := l.lowerBlock(b.Consequent, thenScope); err != nil {
		return err
	}
	s.AddCommand(&scope.Command{Callee: thenScope, Aug: &scope.Augmentation{Kind: scope.AugDoIf, Cond: cond}})

	if b.Else != nil {
		elseScope := scope.NewBlockBody(s)
		if err := l.lowerBlock(b.Else, elseScope); err != nil {
			return err
		}
		s.AddCommand(&scope.Command{Callee: elseScope, Aug: &scope.Augmentation{Kind: scope.AugDoIfNot, Cond: cond}})
	}
	return nil
}

func (l *lowerer) lowerForEach(fe *ast.ForEach, s *scope.Scope) error {
	iterVal, err := l.lowerExpression(fe.Iterable, s)
	if err != nil {
		return err
	}

	if !iterVal.Type.IsArray() {
		bodyScope := scope.NewBlockBody(s)
		bodyScope.AutoAdd = scope.AutoAddInputs
		bodyScope.DeclareVar(fe.Counter, value.New(iterVal.Type))
		bodyScope.AutoAdd = scope.AutoAddNone
		if err := l.lowerBlock(fe.Body, bodyScope); err != nil {
			return err
		}
		s.AddCommand(&scope.Command{Callee: bodyScope, Inputs: []*value.Value{iterVal}})
		return nil
	}

	elemType := iterVal.Type.Element
	bodyScope := scope.NewBlockBody(s)
	bodyScope.AutoAdd = scope.AutoAddInputs
	bodyScope.DeclareVar(fe.Counter, value.New(elemType))
	bodyScope.AutoAdd = scope.AutoAddNone
	if err := l.lowerBlock(fe.Body, bodyScope); err != nil {
		return err
	}

	length := iterVal.Type.Length
	elemSize := elemType.ByteLength()

	if iterVal.Known {
		for i := 0; i < length; i++ {
			elem := value.NewProxyAt(elemType, iterVal, i*elemSize)
			s.AddCommand(&scope.Command{Callee: bodyScope, Inputs: []*value.Value{elem}})
		}
		return nil
	}

	for i := 0; i < length; i++ {
		offset := l.literalOfType(datatype.Int, float64(i*elemSize))
		temp := value.New(elemType)
		s.DeclareTempVar(temp)
		l.emitCopy(s, iterVal, offset, temp)
		s.AddCommand(&scope.Command{Callee: bodyScope, Inputs: []*value.Value{temp}})
	}
	return nil
}

// lowerWhile is unimplemented: while is reserved syntax the parser
// accepts but the lowerer does not yet resolve. Guessing at
// re-evaluation semantics here would invent behavior the language has
// never specified.
func (l *lowerer) lowerWhile(w *ast.While, s *scope.Scope) error {
	return l.errf(ErrKindUnsupported, "while loops are reserved and not yet implemented")
}

func (l *lowerer) lowerExpression(expr ast.Expression, s *scope.Scope) (*value.Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		v := value.New(datatype.Int)
		v.SetInt(int32(e.Value))
		v.Known = true
		return v, nil
	case *ast.FloatLiteral:
		v := value.New(datatype.Float)
		v.SetFloat(float32(e.Value))
		v.Known = true
		return v, nil
	case *ast.BoolLiteral:
		v := value.New(datatype.Bool)
		v.SetBool(e.Value)
		v.Known = true
		return v, nil
	case *ast.VariableRef:
		v, ok := s.LookupVar(e.Name, true)
		if !ok {
			return nil, l.errf(ErrKindNameUnresolved, "undefined variable %q", e.Name)
		}
		return v, nil
	case *ast.Signed:
		return l.lowerSigned(e, s)
	case *ast.OperatorList:
		return l.lowerOperatorList(e, s)
	case *ast.FunctionCall:
		return l.lowerFunctionCall(e, s, false)
	case *ast.IndexExpression:
		acc, err := l.lowerIndexAccess(e, s)
		if err != nil {
			return nil, err
		}
		return l.readAccess(s, acc), nil
	case *ast.ArrayLiteral:
		return l.lowerArrayLiteral(e, s)
	case *ast.Range:
		return l.lowerRange(e, s)
	default:
		return nil, l.errf(ErrKindUnsupported, "unsupported expression %T", expr)
	}
}

func (l *lowerer) lowerSigned(sg *ast.Signed, s *scope.Scope) (*value.Value, error) {
	right, err := l.lowerExpression(sg.Right, s)
	if err != nil {
		return nil, err
	}
	if sg.Operator == "+" {
		return right, nil
	}
	return l.emitWidening(s, l.reg.Mul, []*value.Value{right, l.literalOfType(right.Type, -1)}), nil
}

// opInfo names the built-in and join behavior an operator categorizes
// to; boolOut forces a Bool output regardless of
// input rank (the comparison family), as opposed to widening the
// inputs together.
type opInfo struct {
	callee *scope.Scope
	join bool
	boolOut bool
}

func (l *lowerer) categorize(op string) (opInfo, error) {
	switch op {
	case "+", "-":
		return opInfo{callee: l.reg.Add, join: true}, nil
	case "*", "/":
		return opInfo{callee: l.reg.Mul, join: true}, nil
	case "band":
		return opInfo{callee: l.reg.Band, join: true}, nil
	case "bor":
		return opInfo{callee: l.reg.Bor, join: true}, nil
	case "bxor":
		return opInfo{callee: l.reg.Bxor, join: true}, nil
	case "%":
		return opInfo{callee: l.reg.Mod, join: false}, nil
	case "and":
		return opInfo{callee: l.reg.And, join: false}, nil
	case "or":
		return opInfo{callee: l.reg.Or, join: false}, nil
	case "xor":
		return opInfo{callee: l.reg.Xor, join: false}, nil
	case "==":
		return opInfo{callee: l.reg.Eq, join: false, boolOut: true}, nil
	case "!=":
		return opInfo{callee: l.reg.Neq, join: false, boolOut: true}, nil
	case "<":
		return opInfo{callee: l.reg.Lt, join: false, boolOut: true}, nil
	case "<=":
		return opInfo{callee: l.reg.Lte, join: false, boolOut: true}, nil
	case ">":
		return opInfo{callee: l.reg.Gt, join: false, boolOut: true}, nil
	case ">=":
		return opInfo{callee: l.reg.Gte, join: false, boolOut: true}, nil
	default:
		return opInfo{}, l.errf(ErrKindUnsupported, "unknown operator %q", op)
	}
}

// fold transforms an operand before it joins a running command's
// inputs: subtraction folds into ADD(prev, MUL(operand, -1)) and
// division folds into MUL(prev, RECIP(operand)).
func (l *lowerer) fold(s *scope.Scope, op string, v *value.Value) *value.Value {
	switch op {
	case "-":
		return l.emitWidening(s, l.reg.Mul, []*value.Value{v, l.literalOfType(v.Type, -1)})
	case "/":
		return l.emitRecip(s, v)
	default:
		return v
	}
}

func (l *lowerer) lowerOperatorList(ol *ast.OperatorList, s *scope.Scope) (*value.Value, error) {
	result, err := l.lowerExpression(ol.Operands[0], s)
	if err != nil {
		return nil, err
	}

	i := 0
	for i < len(ol.Operators) {
		op := ol.Operators[i]
		info, err := l.categorize(op)
		if err != nil {
			return nil, err
		}

		operand, err := l.lowerExpression(ol.Operands[i+1], s)
		if err != nil {
			return nil, err
		}
		inputs := []*value.Value{result, l.fold(s, op, operand)}
		i++

		for i < len(ol.Operators) && ol.Operators[i] == op && info.join {
			next, err := l.lowerExpression(ol.Operands[i+1], s)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, l.fold(s, op, next))
			i++
		}

		if info.boolOut {
			result = l.emitBoolOut(s, info.callee, inputs)
		} else {
			result = l.emitWidening(s, info.callee, inputs)
		}
	}
	return result, nil
}

func (l *lowerer) lowerFunctionCall(fc *ast.FunctionCall, s *scope.Scope, discard bool) (*value.Value, error) {
	callee, ok := s.LookupFunc(fc.Function, true)
	if !ok {
		return nil, l.errf(ErrKindNameUnresolved, "undefined function %q", fc.Function)
	}
	if len(fc.Arguments) != len(callee.Inputs) {
		return nil, l.errf(ErrKindArityMismatch, "call to %q: got %d arguments, want %d", fc.Function, len(fc.Arguments), len(callee.Inputs))
	}

	inputs := make([]*value.Value, len(fc.Arguments))
	for i, arg := range fc.Arguments {
		v, err := l.lowerExpression(arg, s)
		if err != nil {
			return nil, err
		}
		inputs[i] = v
	}

	outs := make([]*value.Value, len(callee.Outputs))
	var result *value.Value
	for i, o := range callee.Outputs {
		switch {
		case discard:
			outs[i] = nil
		case i == 0:
			t := value.New(o.Type)
			s.DeclareTempVar(t)
			outs[i] = t
			result = t
		default:
			outs[i] = nil
		}
	}

	s.AddCommand(&scope.Command{Callee: callee, Inputs: inputs, Outputs: outs})
	return result, nil
}

// arrayAccess is the intermediate result of lowering an index chain:
// the root value, an accumulated byte offset, and the element type at
// that offset.
type arrayAccess struct {
	root *value.Value
	offset *value.Value
	elemType *datatype.DataType
}

func (l *lowerer) lowerIndexAccess(ie *ast.IndexExpression, s *scope.Scope) (*arrayAccess, error) {
	root, ok := s.LookupVar(ie.Root.Name, true)
	if !ok {
		return nil, l.errf(ErrKindNameUnresolved, "undefined variable %q", ie.Root.Name)
	}

	curType := root.Type
	offset := l.literalOfType(datatype.Int, 0)

	for _, idxExpr := range ie.Indices {
		if !curType.IsArray() {
			return nil, l.errf(ErrKindTypeMismatch, "too many indices into %q", ie.Root.Name)
		}
		idxVal, err := l.lowerExpression(idxExpr, s)
		if err != nil {
			return nil, err
		}
		elemType := curType.Element
		sizeLit := l.literalOfType(datatype.Int, float64(elemType.ByteLength()))
		mulOut := l.emitWidening(s, l.reg.Mul, []*value.Value{idxVal, sizeLit})
		offset = l.emitWidening(s, l.reg.Add, []*value.Value{offset, mulOut})
		curType = elemType
	}

	return &arrayAccess{root: root, offset: offset, elemType: curType}, nil
}

func (l *lowerer) readAccess(s *scope.Scope, acc *arrayAccess) *value.Value {
	out := value.New(acc.elemType)
	s.DeclareTempVar(out)
	l.emitCopy(s, acc.root, acc.offset, out)
	return out
}

func (l *lowerer) writeAccess(s *scope.Scope, acc *arrayAccess, src *value.Value) {
	l.emitCopy(s, src, acc.offset, acc.root)
}

func (l *lowerer) lowerArrayLiteral(al *ast.ArrayLiteral, s *scope.Scope) (*value.Value, error) {
	if len(al.Elements) == 0 {
		return nil, l.errf(ErrKindUnsupported, "empty array literal")
	}

	elems := make([]*value.Value, len(al.Elements))
	for i, e := range al.Elements {
		v, err := l.lowerExpression(e, s)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}

	wide := elems[0].Type
	for _, e := range elems[1:] {
		wide = datatype.BiggerOf(wide, e.Type)
	}

	out := value.New(datatype.NewArray(wide, len(elems)))
	s.DeclareTempVar(out)
	for i, e := range elems {
		offset := l.literalOfType(datatype.Int, float64(i*wide.ByteLength()))
		l.emitCopy(s, e, offset, out)
	}
	return out, nil
}

func (l *lowerer) lowerRange(r *ast.Range, s *scope.Scope) (*value.Value, error) {
	startV, err := l.lowerExpression(r.Start, s)
	if err != nil {
		return nil, err
	}
	endV, err := l.lowerExpression(r.End, s)
	if err != nil {
		return nil, err
	}

	var stepV *value.Value
	if r.Step != nil {
		stepV, err = l.lowerExpression(r.Step, s)
		if err != nil {
			return nil, err
		}
	} else {
		stepV = l.literalOfType(startV.Type, 1)
	}

	if !startV.Known || !endV.Known || !stepV.Known {
		return nil, l.errf(ErrKindNonConstant, "range endpoints must be compile-time constants")
	}

	wide := datatype.BiggerOf(datatype.BiggerOf(startV.Type, endV.Type), stepV.Type)

	if wide.Kind == datatype.KindFloat {
		start, end, step := asFloat64(startV), asFloat64(endV), asFloat64(stepV)
		if step == 0 {
			return nil, l.errf(ErrKindUnsupported, "range step must be nonzero")
		}
		count := int(math.Ceil((end - start) / step))
		if count < 0 {
			count = 0
		}
		out := value.New(datatype.NewArray(datatype.Float, count))
		out.Known = true
		buf := out.Bytes()
		for i := 0; i < count; i++ {
			binary.LittleEndian.PutUint32(buf[i*datatype.FloatByteLength:], math.Float32bits(float32(start+float64(i)*step)))
		}
		return out, nil
	}

	start, end, step := asInt64(startV), asInt64(endV), asInt64(stepV)
	if step == 0 {
		return nil, l.errf(ErrKindUnsupported, "range step must be nonzero")
	}
	count := int((end - start + step - 1) / step)
	if count < 0 {
		count = 0
	}
	out := value.New(datatype.NewArray(datatype.Int, count))
	out.Known = true
	buf := out.Bytes()
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint32(buf[i*datatype.IntByteLength:], uint32(int32(start+int64(i)*step)))
	}
	return out, nil
}

// emitWidening allocates a fresh temporary typed as the BiggerOf all
// inputs, emits a command calling callee with it as the sole output,
// and returns it.
func (l *lowerer) emitWidening(s *scope.Scope, callee *scope.Scope, inputs []*value.Value) *value.Value {
	out := inputs[0].Type
	for _, in := range inputs[1:] {
		out = datatype.BiggerOf(out, in.Type)
	}
	result := value.New(out)
	s.DeclareTempVar(result)
	s.AddCommand(&scope.Command{Callee: callee, Inputs: inputs, Outputs: []*value.Value{result}})
	return result
}

// emitBoolOut is emitWidening's comparison-family counterpart: the
// output is always Bool, regardless of input rank.
func (l *lowerer) emitBoolOut(s *scope.Scope, callee *scope.Scope, inputs []*value.Value) *value.Value {
	result := value.New(datatype.Bool)
	s.DeclareTempVar(result)
	s.AddCommand(&scope.Command{Callee: callee, Inputs: inputs, Outputs: []*value.Value{result}})
	return result
}

func (l *lowerer) emitRecip(s *scope.Scope, in *value.Value) *value.Value {
	result := value.New(datatype.Float)
	s.DeclareTempVar(result)
	s.AddCommand(&scope.Command{Callee: l.reg.Recip, Inputs: []*value.Value{in}, Outputs: []*value.Value{result}})
	return result
}

func (l *lowerer) emitCopy(s *scope.Scope, src, offset, dst *value.Value) {
	s.AddCommand(&scope.Command{Callee: l.reg.Copy, Inputs: []*value.Value{src, offset}, Outputs: []*value.Value{dst}})
}

// zero returns a fresh known Int literal valued 0, the offset COPY
// expects for a whole-value (non-array-element) copy.
func (l *lowerer) zero() *value.Value {
	return l.literalOfType(datatype.Int, 0)
}

// literalOfType allocates a fresh known literal of dt's primitive kind
// (Int unless dt is Float) holding n.
func (l *lowerer) literalOfType(dt *datatype.DataType, n float64) *value.Value {
	if dt.Kind == datatype.KindFloat {
		v := value.New(datatype.Float)
		v.SetFloat(float32(n))
		v.Known = true
		return v
	}
	v := value.New(datatype.Int)
	v.SetInt(int32(n))
	v.Known = true
	return v
}

func asInt64(v *value.Value) int64 {
	if v.Type.Kind == datatype.KindBool {
		if v.AsBool() {
			return 1
		}
		return 0
	}
	return int64(v.AsInt())
}

func asFloat64(v *value.Value) float64 {
	if v.Type.Kind == datatype.KindFloat {
		return float64(v.AsFloat())
	}
	return float64(asInt64(v))
}
