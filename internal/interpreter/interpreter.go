// Package interpreter executes the IR a [lower.Lower] call produces: it
// walks a Scope's ordered Command list, recursively invoking each
// command's callee scope, and recognizes the built-in registry's
// scopes by pointer identity to perform arithmetic, comparison,
// conversion, copy, and logging directly instead of recursing into an
// (empty) body.
//
// The per-call state this package tracks — a callee scope, its bound
// input/output values — stands in for the call-frame type familiar
// from bytecode VMs: where that Frame pairs a compiled closure with an
// instruction pointer and a stack base pointer into a shared value
// stack, invoke here pairs a Scope with its own already-allocated
// Value slots, since Waveguide's IR has no separate operand stack —
// every value owns (or proxies) its storage directly.
package interpreter

import (
	"errors"
	"log"
	"math"

	"github.com/waveguide-lang/waveguide/internal/builtins"
	"github.com/waveguide-lang/waveguide/internal/datatype"
	"github.com/waveguide-lang/waveguide/internal/scope"
	"github.com/waveguide-lang/waveguide/internal/value"
)

// ErrKind discriminates interpreter-level failures.
type ErrKind int

const (
	ErrKindMissingMain ErrKind = iota
	ErrKindRuntime
)

// Error is the interpreter's error type.
type Error struct {
	Kind ErrKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// errReturn is the sentinel a `return` command signals with; it
// unwinds execScope calls until it reaches the nearest enclosing
// invoke() whose callee is a genuine function (IsBlockBody false),
// which absorbs it as normal completion.
var errReturn = errors.New("interpreter: return")

// Interpreter holds the built-in registry used for pointer-identity
// dispatch; it carries no other mutable state, since all program state
// lives in the Value slots the Scope tree already holds.
type Interpreter struct {
	reg *builtins.Registry
}

// Run executes root's own commands, then locates "main" in root and
// invokes it with freshly allocated input and output values of its
// declared types. The returned scope is root itself, left in its final
// post-execution state for inspection (e.g. by a REPL printing a
// top-level variable's value).
func Run(root *scope.Scope) (*scope.Scope, error) {
	reg := builtins.Get()
	it := &Interpreter{reg: reg}

	if err := it.execScope(root); err != nil {
		return nil, &Error{Kind: ErrKindRuntime, Message: err.Error()}
	}

	main, ok := root.LookupFunc("main", false)
	if !ok {
		return nil, &Error{Kind: ErrKindMissingMain, Message: "no main function declared"}
	}
	ins := make([]*value.Value, len(main.Inputs))
	for i, in := range main.Inputs {
		ins[i] = value.New(in.Type)
	}
	outs := make([]*value.Value, len(main.Outputs))
	for i, out := range main.Outputs {
		outs[i] = value.New(out.Type)
	}
	if err := it.invoke(main, ins, outs); err != nil {
		return nil, &Error{Kind: ErrKindRuntime, Message: err.Error()}
	}
	return root, nil
}

// invoke binds inputs into callee's declared input slots, executes its
// command list (or, for a built-in, dispatches directly), and copies
// its declared output slots back into outputs. A non-nil outputs[i] is
// updated in place; a nil entry is a discarded ("None-style") output.
func (it *Interpreter) invoke(callee *scope.Scope, inputs, outputs []*value.Value) error {
	if fn := it.builtinExec(callee); fn != nil {
		return fn(inputs, outputs)
	}

	for i, in := range inputs {
		if i < len(callee.Inputs) {
			callee.Inputs[i].SetBytes(in.Bytes())
		}
	}

	err := it.execScope(callee)
	switch {
	case err == errReturn && callee.IsBlockBody:
		return errReturn
	case err == errReturn:
		// absorbed: callee is a genuine function, not a synthetic body.
	case err != nil:
		return err
	}

	for i, out := range outputs {
		if out != nil && i < len(callee.Outputs) {
			out.SetBytes(callee.Outputs[i].Bytes())
		}
	}
	return nil
}

// execScope runs s's commands in order, stopping at the first error
// (including errReturn, which callers interpret per IsBlockBody).
func (it *Interpreter) execScope(s *scope.Scope) error {
	for _, c := range s.Commands {
		if err := it.runCommand(c); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) runCommand(c *scope.Command) error {
	if c.Aug == nil {
		return it.invoke(c.Callee, c.Inputs, c.Outputs)
	}

	switch c.Aug.Kind {
	case scope.AugDoIf:
		if c.Aug.Cond.AsBool() {
			return it.invoke(c.Callee, c.Inputs, c.Outputs)
		}
		return nil
	case scope.AugDoIfNot:
		if !c.Aug.Cond.AsBool() {
			return it.invoke(c.Callee, c.Inputs, c.Outputs)
		}
		return nil
	case scope.AugLoopFor, scope.AugLoopRange:
		return &Error{Kind: ErrKindRuntime, Message: "LOOP_FOR/LOOP_RANGE augmentations are never emitted by the lowerer"}
	default:
		return it.invoke(c.Callee, c.Inputs, c.Outputs)
	}
}

// builtinExec resolves callee to a direct implementation by pointer
// identity against the registry, or nil if callee is an ordinary
// user- or lowerer-declared function scope.
func (it *Interpreter) builtinExec(callee *scope.Scope) func(ins, outs []*value.Value) error {
	r := it.reg
	switch callee {
	case r.Add:
		return it.doAdd
	case r.Mul:
		return it.doMul
	case r.Mod:
		return it.doMod
	case r.Recip:
		return it.doRecip
	case r.Eq:
		return it.doEq
	case r.Neq:
		return it.doNeq
	case r.Lt:
		return it.doLt
	case r.Lte:
		return it.doLte
	case r.Gt:
		return it.doGt
	case r.Gte:
		return it.doGte
	case r.And:
		return it.doAnd
	case r.Or:
		return it.doOr
	case r.Xor:
		return it.doXor
	case r.Band:
		return it.doBand
	case r.Bor:
		return it.doBor
	case r.Bxor:
		return it.doBxor
	case r.Itof:
		return it.doItof
	case r.Ftoi:
		return it.doFtoi
	case r.Btof:
		return it.doBtof
	case r.Btoi:
		return it.doBtoi
	case r.Itob:
		return it.doItob
	case r.Ftob:
		return it.doFtob
	case r.Copy:
		return it.doCopy
	case r.Log:
		return it.doLog
	case r.Return:
		return it.doReturn
	default:
		return nil
	}
}

func toFloat64(v *value.Value) float64 {
	switch v.Type.Kind {
	case datatype.KindFloat:
		return float64(v.AsFloat())
	case datatype.KindBool:
		if v.AsBool() {
			return 1
		}
		return 0
	default:
		return float64(v.AsInt())
	}
}

func toInt64(v *value.Value) int64 {
	switch v.Type.Kind {
	case datatype.KindFloat:
		return int64(v.AsFloat())
	case datatype.KindBool:
		if v.AsBool() {
			return 1
		}
		return 0
	default:
		return int64(v.AsInt())
	}
}

// arith folds ins left to right with iop (Int output) or fop (Float
// output), picked by outs[0]'s widened type (set by the lowerer).
func arith(ins, outs []*value.Value, fop func(a, b float64) float64, iop func(a, b int64) int64) error {
	if len(outs) == 0 || outs[0] == nil {
		return nil
	}
	out := outs[0]
	if out.Type.Kind == datatype.KindFloat {
		acc := toFloat64(ins[0])
		for _, v := range ins[1:] {
			acc = fop(acc, toFloat64(v))
		}
		out.SetFloat(float32(acc))
		return nil
	}
	acc := toInt64(ins[0])
	for _, v := range ins[1:] {
		acc = iop(acc, toInt64(v))
	}
	out.SetInt(int32(acc))
	return nil
}

func (it *Interpreter) doAdd(ins, outs []*value.Value) error {
	return arith(ins, outs, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b })
}

func (it *Interpreter) doMul(ins, outs []*value.Value) error {
	return arith(ins, outs, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b })
}

func (it *Interpreter) doMod(ins, outs []*value.Value) error {
	if len(outs) == 0 || outs[0] == nil {
		return nil
	}
	out := outs[0]
	if out.Type.Kind == datatype.KindFloat {
		out.SetFloat(float32(math.Mod(toFloat64(ins[0]), toFloat64(ins[1]))))
		return nil
	}
	divisor := toInt64(ins[1])
	if divisor == 0 {
		return &Error{Kind: ErrKindRuntime, Message: "modulo by zero"}
	}
	out.SetInt(int32(toInt64(ins[0]) % divisor))
	return nil
}

func (it *Interpreter) doRecip(ins, outs []*value.Value) error {
	if len(outs) == 0 || outs[0] == nil {
		return nil
	}
	divisor := toFloat64(ins[0])
	if divisor == 0 {
		return &Error{Kind: ErrKindRuntime, Message: "division by zero"}
	}
	outs[0].SetFloat(float32(1 / divisor))
	return nil
}

// compare applies fop/iop depending on whether either operand is
// Float, writing a Bool result.
func compare(ins, outs []*value.Value, fop func(a, b float64) bool, iop func(a, b int64) bool) error {
	if len(outs) == 0 || outs[0] == nil {
		return nil
	}
	if ins[0].Type.Kind == datatype.KindFloat || ins[1].Type.Kind == datatype.KindFloat {
		outs[0].SetBool(fop(toFloat64(ins[0]), toFloat64(ins[1])))
		return nil
	}
	outs[0].SetBool(iop(toInt64(ins[0]), toInt64(ins[1])))
	return nil
}

func (it *Interpreter) doEq(ins, outs []*value.Value) error {
	return compare(ins, outs, func(a, b float64) bool { return a == b }, func(a, b int64) bool { return a == b })
}

func (it *Interpreter) doNeq(ins, outs []*value.Value) error {
	return compare(ins, outs, func(a, b float64) bool { return a != b }, func(a, b int64) bool { return a != b })
}

func (it *Interpreter) doLt(ins, outs []*value.Value) error {
	return compare(ins, outs, func(a, b float64) bool { return a < b }, func(a, b int64) bool { return a < b })
}

func (it *Interpreter) doLte(ins, outs []*value.Value) error {
	return compare(ins, outs, func(a, b float64) bool { return a <= b }, func(a, b int64) bool { return a <= b })
}

func (it *Interpreter) doGt(ins, outs []*value.Value) error {
	return compare(ins, outs, func(a, b float64) bool { return a > b }, func(a, b int64) bool { return a > b })
}

func (it *Interpreter) doGte(ins, outs []*value.Value) error {
	return compare(ins, outs, func(a, b float64) bool { return a >= b }, func(a, b int64) bool { return a >= b })
}

func (it *Interpreter) doAnd(ins, outs []*value.Value) error {
	if len(outs) == 0 || outs[0] == nil {
		return nil
	}
	outs[0].SetBool(ins[0].AsBool() && ins[1].AsBool())
	return nil
}

func (it *Interpreter) doOr(ins, outs []*value.Value) error {
	if len(outs) == 0 || outs[0] == nil {
		return nil
	}
	outs[0].SetBool(ins[0].AsBool() || ins[1].AsBool())
	return nil
}

func (it *Interpreter) doXor(ins, outs []*value.Value) error {
	if len(outs) == 0 || outs[0] == nil {
		return nil
	}
	outs[0].SetBool(ins[0].AsBool() != ins[1].AsBool())
	return nil
}

func (it *Interpreter) doBand(ins, outs []*value.Value) error {
	return arith(ins, outs, func(a, b float64) float64 { return float64(int64(a) & int64(b)) }, func(a, b int64) int64 { return a & b })
}

func (it *Interpreter) doBor(ins, outs []*value.Value) error {
	return arith(ins, outs, func(a, b float64) float64 { return float64(int64(a) | int64(b)) }, func(a, b int64) int64 { return a | b })
}

func (it *Interpreter) doBxor(ins, outs []*value.Value) error {
	return arith(ins, outs, func(a, b float64) float64 { return float64(int64(a) ^ int64(b)) }, func(a, b int64) int64 { return a ^ b })
}

func (it *Interpreter) doItof(ins, outs []*value.Value) error {
	outs[0].SetFloat(float32(ins[0].AsInt()))
	return nil
}

func (it *Interpreter) doFtoi(ins, outs []*value.Value) error {
	outs[0].SetInt(int32(ins[0].AsFloat()))
	return nil
}

func (it *Interpreter) doBtof(ins, outs []*value.Value) error {
	if ins[0].AsBool() {
		outs[0].SetFloat(1)
	} else {
		outs[0].SetFloat(0)
	}
	return nil
}

func (it *Interpreter) doBtoi(ins, outs []*value.Value) error {
	if ins[0].AsBool() {
		outs[0].SetInt(1)
	} else {
		outs[0].SetInt(0)
	}
	return nil
}

func (it *Interpreter) doItob(ins, outs []*value.Value) error {
	outs[0].SetBool(ins[0].AsInt() != 0)
	return nil
}

func (it *Interpreter) doFtob(ins, outs []*value.Value) error {
	outs[0].SetBool(ins[0].AsFloat() != 0)
	return nil
}

// doCopy implements the Copy built-in: a bulk byte-copy between src
// and dst starting at the given byte offset in whichever side is
// larger. offset == 0 with equal lengths is a plain
// whole-value copy.
func (it *Interpreter) doCopy(ins, outs []*value.Value) error {
	if len(outs) == 0 || outs[0] == nil {
		return nil
	}
	src, dst := ins[0], outs[0]
	offset := int(ins[1].AsInt())
	srcBytes, dstBytes := src.Bytes(), dst.Bytes()

	switch {
	case offset > 0 && len(srcBytes) >= len(dstBytes)+offset:
		copy(dstBytes, srcBytes[offset:offset+len(dstBytes)])
	case offset > 0 && len(dstBytes) >= len(srcBytes)+offset:
		copy(dstBytes[offset:offset+len(srcBytes)], srcBytes)
	default:
		n := len(srcBytes)
		if len(dstBytes) < n {
			n = len(dstBytes)
		}
		copy(dstBytes, srcBytes[:n])
	}
	return nil
}

func (it *Interpreter) doLog(ins, outs []*value.Value) error {
	log.Println(ins[0].Inspect())
	return nil
}

func (it *Interpreter) doReturn(ins, outs []*value.Value) error {
	return errReturn
}
