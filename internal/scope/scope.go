// Package scope implements the Scope tree / IR container: the symbol
// table and command list that together form the lowerer's output.
//
// The shape generalizes a typical compiler's scope-stack discipline —
// a flat symbol table alongside a side-channel instruction buffer — into
// a single tree node that owns its named and temporary children, its
// values, and its ordered command list directly. An IR node and its
// symbol table are the same object here, rather than two cooperating
// structures.
package scope

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/waveguide-lang/waveguide/internal/datatype"
	"github.com/waveguide-lang/waveguide/internal/value"
)

// AutoAddMode controls whether declareVar also appends to the enclosing
// function's declared input or output list.
type AutoAddMode int

const (
	AutoAddNone AutoAddMode = iota
	AutoAddInputs
	AutoAddOutputs
)

// AugmentationKind discriminates the closed set of command decorations.
type AugmentationKind int

const (
	AugNone AugmentationKind = iota
	AugDoIf
	AugDoIfNot
	AugLoopFor
	AugLoopRange
)

// String names an AugmentationKind for [Scope.Repr].
func (k AugmentationKind) String() string {
	switch k {
	case AugDoIf:
		return "DO_IF"
	case AugDoIfNot:
		return "DO_IF_NOT"
	case AugLoopFor:
		return "LOOP_FOR"
	case AugLoopRange:
		return "LOOP_RANGE"
	default:
		return "NONE"
	}
}

// Augmentation decorates a Command with conditional or iterative
// control flow.
type Augmentation struct {
	Kind AugmentationKind

	// Cond holds the condition value for AugDoIf/AugDoIfNot.
	Cond *value.Value

	// CounterSlot holds the per-iteration binding for AugLoopFor.
	CounterSlot *value.Value

	// Iterable holds the iterated value for AugLoopFor.
	Iterable *value.Value

	// Start, End, Step hold the bounds for AugLoopRange.
	Start, End, Step *value.Value
}

// Command is one IR instruction: a callee scope invoked with ordered
// input and output value references, optionally decorated with an
// Augmentation.
type Command struct {
	Callee *Scope
	Inputs []*value.Value
	// Outputs elements may be nil to represent a discarded ("None-style")
	// output slot.
	Outputs []*value.Value
	Aug *Augmentation
}

// Scope is both a symbol table and an IR container: it maps names to
// child scopes, values, and data types, holds an ordered command list,
// anonymous temporaries, a declared input/output signature, and a link
// to its parent.
//
// A Scope is either a function scope (HasSignature true, invokable as a
// callee with declared Inputs/Outputs) or the root scope (HasSignature
// false); both share the same operations.
type Scope struct {
	Parent *Scope
	Label string

	funcs map[string]*Scope
	vars map[string]*value.Value
	types map[string]*datatype.DataType

	tempFuncs []*Scope
	tempVars []*value.Value

	Commands []*Command

	HasSignature bool
	Inputs []*value.Value
	Outputs []*value.Value

	// IsBlockBody marks a function scope synthesized for an if/for
	// body rather than a user- or lowerer-declared function. A `return`
	// statement inside one resolves to the nearest enclosing scope with
	// IsBlockBody false, not to the block body itself.
	IsBlockBody bool

	AutoAdd AutoAddMode
}

// New allocates an empty scope with the given parent (nil for the root).
func New(parent *Scope) *Scope {
	return &Scope{
		Parent: parent,
		Label: uuid.NewString(),
		funcs: make(map[string]*Scope),
		vars: make(map[string]*value.Value),
		types: make(map[string]*datatype.DataType),
	}
}

// NewFunction allocates an empty function scope (HasSignature true) with
// the given parent, for a user- or lowerer-declared named function.
func NewFunction(parent *Scope) *Scope {
	s := New(parent)
	s.HasSignature = true
	return s
}

// NewBlockBody allocates an empty function scope for a synthetic
// control-flow body (if/for), receiving synthetic parameter lists
// same as any other function scope but marked IsBlockBody so `return`
// lowering skips past it to the enclosing named function. The new scope
// is registered on parent's temporary list via [Scope.DeclareTempFunc].
func NewBlockBody(parent *Scope) *Scope {
	s := NewFunction(parent)
	s.IsBlockBody = true
	if parent != nil {
		parent.DeclareTempFunc(s)
	}
	return s
}

// DeclareFunc inserts a named child scope into the nearest table.
func (s *Scope) DeclareFunc(name string, fn *Scope) {
	s.funcs[name] = fn
}

// DeclareVar inserts a named value into the nearest table. If AutoAdd is
// active, the value is also appended to the current function's declared
// inputs or outputs.
func (s *Scope) DeclareVar(name string, v *value.Value) {
	s.vars[name] = v
	switch s.AutoAdd {
	case AutoAddInputs:
		s.Inputs = append(s.Inputs, v)
	case AutoAddOutputs:
		s.Outputs = append(s.Outputs, v)
	}
}

// DeclareType inserts a named data type into the nearest table.
func (s *Scope) DeclareType(name string, dt *datatype.DataType) {
	s.types[name] = dt
}

// DeclareTempFunc appends an anonymous child scope to the temporary
// list, used for synthetic control-flow bodies.
func (s *Scope) DeclareTempFunc(fn *Scope) {
	s.tempFuncs = append(s.tempFuncs, fn)
}

// DeclareTempVar appends an anonymous value to the temporary list, used
// for compiler-generated temporaries.
func (s *Scope) DeclareTempVar(v *value.Value) {
	s.tempVars = append(s.tempVars, v)
}

// AddCommand appends c to the ordered command list.
func (s *Scope) AddCommand(c *Command) {
	s.Commands = append(s.Commands, c)
}

// LookupFunc walks parents until a named child scope is found. If
// recurse is false, only the current scope is checked.
func (s *Scope) LookupFunc(name string, recurse bool) (*Scope, bool) {
	if fn, ok := s.funcs[name]; ok {
		return fn, true
	}
	if recurse && s.Parent != nil {
		return s.Parent.LookupFunc(name, true)
	}
	return nil, false
}

// LookupVar walks parents until a named value is found. Lookup obeys
// nearest-binding: a declaration in s shadows any ancestor binding of
// the same name until it goes out of scope.
func (s *Scope) LookupVar(name string, recurse bool) (*value.Value, bool) {
	if v, ok := s.vars[name]; ok {
		return v, true
	}
	if recurse && s.Parent != nil {
		return s.Parent.LookupVar(name, true)
	}
	return nil, false
}

// LookupType walks parents until a named data type is found.
func (s *Scope) LookupType(name string, recurse bool) (*datatype.DataType, bool) {
	if dt, ok := s.types[name]; ok {
		return dt, true
	}
	if recurse && s.Parent != nil {
		return s.Parent.LookupType(name, true)
	}
	return nil, false
}

// Repr produces a stable textual dump for debugging and testing.
func (s *Scope) Repr() string {
	var out strings.Builder
	s.repr(&out, 0)
	return out.String()
}

func (s *Scope) repr(out *strings.Builder, depth int) {
	indent := strings.Repeat(" ", depth)
	fmt.Fprintf(out, "%sscope[%d in, %d out, %d commands]\n", indent, len(s.Inputs), len(s.Outputs), len(s.Commands))

	varNames := make([]string, 0, len(s.vars))
	for name := range s.vars {
		varNames = append(varNames, name)
	}
	sort.Strings(varNames)
	for _, name := range varNames {
		fmt.Fprintf(out, "%s var %s: %s\n", indent, name, s.vars[name].Type.String())
	}

	funcNames := make([]string, 0, len(s.funcs))
	for name := range s.funcs {
		funcNames = append(funcNames, name)
	}
	sort.Strings(funcNames)
	for _, name := range funcNames {
		fmt.Fprintf(out, "%s func %s:\n", indent, name)
		s.funcs[name].repr(out, depth+2)
	}

	for i, c := range s.Commands {
		augStr := "NONE"
		if c.Aug != nil {
			augStr = c.Aug.Kind.String()
		}
		fmt.Fprintf(out, "%s cmd[%d] -> %s (%s)\n", indent, i, c.Callee.Label, augStr)
	}
}
