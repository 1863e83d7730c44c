// Package builtins implements the process-wide built-in registry: the
// primitive types, the two abstract wildcards used by polymorphic
// built-in signatures, and the built-in callables themselves (scopes
// with a declared signature and no body).
//
// The flat table-of-callables shape is a single slice of
// name/implementation pairs looked up by name. Here each "built-in" has
// no Go function body at all — it is a signature-only [scope.Scope]
// that the interpreter recognizes by pointer identity, since the
// lowerer never executes a built-in itself, only emits commands that
// call it. A per-call registration loop becomes [Install], which seeds
// a root scope's name table from the singleton registry.
package builtins

import (
	"sync"

	"github.com/waveguide-lang/waveguide/internal/datatype"
	"github.com/waveguide-lang/waveguide/internal/scope"
	"github.com/waveguide-lang/waveguide/internal/value"
)

// Registry holds the process-wide seeded types and built-in callables.
// It must be safe to initialize once and shared
// read-only across compilations; callers obtain it via [Get].
type Registry struct {
	// Wildcard is the generic placeholder type substituted with the
	// actual operand type during lowering.
	Wildcard *datatype.DataType

	// UpcastWildcard is the placeholder type substituted with
	// datatype.BiggerOf(operand types) for built-ins whose output type
	// depends on widening its inputs.
	UpcastWildcard *datatype.DataType

	Add, Mul, Mod, Recip *scope.Scope

	Eq, Neq, Lte, Gte, Lt, Gt *scope.Scope

	And, Or, Xor *scope.Scope

	Band, Bor, Bxor *scope.Scope

	Itof, Ftoi, Btof, Btoi, Itob, Ftob *scope.Scope

	Copy *scope.Scope

	Log, Return, If, For, ForEach, While, Def *scope.Scope
}

var (
	registry *Registry
	once sync.Once
)

// Get returns the process-wide builtin registry, building it on first
// use. Subsequent calls return the same instance.
func Get() *Registry {
	once.Do(func() {
		registry = build()
	})
	return registry
}

// sig allocates a signature-only function scope: a declared input and
// output list with no parent, no name, and no commands. Built-ins are
// recognized by the interpreter via pointer identity against this
// scope, never invoked through ordinary lowering of a body.
func sig(ins, outs []*datatype.DataType) *scope.Scope {
	s := scope.NewFunction(nil)
	for _, t := range ins {
		s.Inputs = append(s.Inputs, value.New(t))
	}
	for _, t := range outs {
		s.Outputs = append(s.Outputs, value.New(t))
	}
	return s
}

func build() *Registry {
	r := &Registry{
		Wildcard: datatype.NewAbstract("T"),
		UpcastWildcard: datatype.NewAbstract("U"),
	}

	wild2 := []*datatype.DataType{r.Wildcard, r.Wildcard}
	upcast1 := []*datatype.DataType{r.UpcastWildcard}
	upcast2 := []*datatype.DataType{r.UpcastWildcard, r.UpcastWildcard}
	bool1 := []*datatype.DataType{datatype.Bool}
	bool2 := []*datatype.DataType{datatype.Bool, datatype.Bool}

	// Arithmetic: inputs/outputs typed with the upcast wildcard; RECIP
	// is always Float.
	r.Add = sig(upcast2, upcast1)
	r.Mul = sig(upcast2, upcast1)
	r.Mod = sig(upcast2, upcast1)
	r.Recip = sig(upcast1, []*datatype.DataType{datatype.Float})

	// Comparison: inputs wildcard, output Bool.
	r.Eq = sig(wild2, bool1)
	r.Neq = sig(wild2, bool1)
	r.Lte = sig(wild2, bool1)
	r.Gte = sig(wild2, bool1)
	r.Lt = sig(wild2, bool1)
	r.Gt = sig(wild2, bool1)

	// Boolean: Bool/Bool/Bool.
	r.And = sig(bool2, bool1)
	r.Or = sig(bool2, bool1)
	r.Xor = sig(bool2, bool1)

	// Bitwise: wildcard.
	r.Band = sig(wild2, upcast1)
	r.Bor = sig(wild2, upcast1)
	r.Bxor = sig(wild2, upcast1)

	// Conversions.
	r.Itof = sig([]*datatype.DataType{datatype.Int}, []*datatype.DataType{datatype.Float})
	r.Ftoi = sig([]*datatype.DataType{datatype.Float}, []*datatype.DataType{datatype.Int})
	r.Btof = sig([]*datatype.DataType{datatype.Bool}, []*datatype.DataType{datatype.Float})
	r.Btoi = sig([]*datatype.DataType{datatype.Bool}, []*datatype.DataType{datatype.Int})
	r.Itob = sig([]*datatype.DataType{datatype.Int}, []*datatype.DataType{datatype.Bool})
	r.Ftob = sig([]*datatype.DataType{datatype.Float}, []*datatype.DataType{datatype.Bool})

	// Copy: bulk byte-copy src->dst starting at offset in the larger
	// side.
	r.Copy = sig([]*datatype.DataType{r.Wildcard, datatype.Int}, []*datatype.DataType{r.Wildcard})

	// Control markers: sinks recognized by the interpreter/augmentation
	// rewriter rather than executed as ordinary calls.
	r.Log = sig([]*datatype.DataType{r.Wildcard}, nil)
	r.Return = sig([]*datatype.DataType{r.Wildcard}, nil)
	r.If = sig(nil, nil)
	r.For = sig(nil, nil)
	r.ForEach = sig(nil, nil)
	r.While = sig(nil, nil)
	r.Def = sig(nil, nil)

	return r
}

// Install seeds root with the registry's types and built-in callables,
// under both user-facing names (e.g. "log") and internal names (e.g.
// "!ADD", "!COPY") used by code the lowerer generates.
func Install(root *scope.Scope, r *Registry) {
	root.DeclareType("Int", datatype.Int)
	root.DeclareType("Float", datatype.Float)
	root.DeclareType("Bool", datatype.Bool)

	internal := map[string]*scope.Scope{
		"!ADD": r.Add,
		"!MUL": r.Mul,
		"!MOD": r.Mod,
		"!RECIP": r.Recip,
		"!EQ": r.Eq,
		"!NEQ": r.Neq,
		"!LTE": r.Lte,
		"!GTE": r.Gte,
		"!LT": r.Lt,
		"!GT": r.Gt,
		"!AND": r.And,
		"!OR": r.Or,
		"!XOR": r.Xor,
		"!BAND": r.Band,
		"!BOR": r.Bor,
		"!BXOR": r.Bxor,
		"!ITOF": r.Itof,
		"!FTOI": r.Ftoi,
		"!BTOF": r.Btof,
		"!BTOI": r.Btoi,
		"!ITOB": r.Itob,
		"!FTOB": r.Ftob,
		"!COPY": r.Copy,
		"!LOG": r.Log,
	}
	for name, fn := range internal {
		root.DeclareFunc(name, fn)
	}

	root.DeclareFunc("log", r.Log)
}

// Identity returns the name under which s is installed as a
// user-facing built-in, used by diagnostics. Returns "" if s is not a
// registered user-facing built-in.
func (r *Registry) Identity(s *scope.Scope) string {
	switch s {
	case r.Log:
		return "log"
	default:
		return ""
	}
}
