// Package datatype implements the closed data-type lattice:
// primitives, abstract wildcards used by built-in
// signatures, fixed-length arrays, and proxy arrays that logically repeat
// a single element without owning storage for the repeated copies.
//
// The variant is closed the same way a typical interpreter's runtime
// value type is closed: one struct per case sharing a common interface, with a single
// type switch (in [BiggerOf] and [FormatValue]) standing in for what would
// be a virtual dispatch table in a language with inheritance.
package datatype

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Kind discriminates the closed set of DataType cases.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindAbstract
	KindArray
	KindArrayProxy
)

// String names a Kind for debugging.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindAbstract:
		return "Abstract"
	case KindArray:
		return "Array"
	case KindArrayProxy:
		return "ArrayProxy"
	default:
		return "Unknown"
	}
}

// DataType is a value in the closed type lattice. Only one of Element is
// set, and only for KindArray/KindArrayProxy; AbstractName is set only for
// KindAbstract.
type DataType struct {
	Kind Kind
	AbstractName string // set iff Kind == KindAbstract
	Element *DataType // set iff Kind == KindArray || Kind == KindArrayProxy
	Length int // set iff Kind == KindArray || Kind == KindArrayProxy
}

// Primitive byte lengths.
const (
	IntByteLength = 4
	FloatByteLength = 4
	BoolByteLength = 1
)

// Int, Float, and Bool are the three primitive types.
var (
	Int = &DataType{Kind: KindInt}
	Float = &DataType{Kind: KindFloat}
	Bool = &DataType{Kind: KindBool}
)

// NewAbstract constructs a named wildcard type, byte length 0, used only
// in built-in signatures and substituted during lowering.
func NewAbstract(name string) *DataType {
	return &DataType{Kind: KindAbstract, AbstractName: name}
}

// NewArray constructs a fixed-length array type whose byte length is
// element.byteLength * length.
func NewArray(element *DataType, length int) *DataType {
	return &DataType{Kind: KindArray, Element: element, Length: length}
}

// NewArrayProxy constructs a proxy array type: same interface as Array,
// but a single element's bytes are conceptually repeated Length times; no
// storage is owned for the repeated copies.
func NewArrayProxy(element *DataType, length int) *DataType {
	return &DataType{Kind: KindArrayProxy, Element: element, Length: length}
}

// IsProxy reports whether dt is an ArrayProxy.
func (dt *DataType) IsProxy() bool { return dt.Kind == KindArrayProxy }

// IsArray reports whether dt is an Array or ArrayProxy.
func (dt *DataType) IsArray() bool { return dt.Kind == KindArray || dt.Kind == KindArrayProxy }

// ByteLength returns the number of bytes a value of this type occupies.
// For a non-proxy type this equals the sum of bytes actually stored; for
// an ArrayProxy it is still Element.ByteLength * Length even though only
// one element's bytes are physically stored, because ByteLength describes
// the type's logical extent, not its storage footprint.
func (dt *DataType) ByteLength() int {
	switch dt.Kind {
	case KindInt:
		return IntByteLength
	case KindFloat:
		return FloatByteLength
	case KindBool:
		return BoolByteLength
	case KindAbstract:
		return 0
	case KindArray, KindArrayProxy:
		return dt.Element.ByteLength() * dt.Length
	default:
		return 0
	}
}

// StoredByteLength returns the number of bytes actually backing a value of
// this type: for ArrayProxy, a single element's worth; otherwise the same
// as ByteLength.
func (dt *DataType) StoredByteLength() int {
	if dt.Kind == KindArrayProxy {
		return dt.Element.ByteLength()
	}
	return dt.ByteLength()
}

// BaseType strips all array wrappers and returns the scalar leaf type.
func (dt *DataType) BaseType() *DataType {
	cur := dt
	for cur.IsArray() {
		cur = cur.Element
	}
	return cur
}

// ArrayDepth returns 1 + the element's array depth for an array type, 0
// for a scalar (: "arrayDepth(Array) ≥ 1").
func (dt *DataType) ArrayDepth() int {
	if !dt.IsArray() {
		return 0
	}
	return 1 + dt.Element.ArrayDepth()
}

// Equal reports whether two types are structurally identical.
func (dt *DataType) Equal(other *DataType) bool {
	if dt.Kind != other.Kind {
		return false
	}
	switch dt.Kind {
	case KindAbstract:
		return dt.AbstractName == other.AbstractName
	case KindArray, KindArrayProxy:
		return dt.Length == other.Length && dt.Element.Equal(other.Element)
	default:
		return true
	}
}

// String renders the type for debugging, e.g. "Int[3][4]" or "ArrayProxy<Float x 5>".
func (dt *DataType) String() string {
	switch dt.Kind {
	case KindArray:
		return fmt.Sprintf("%s[%d]", dt.Element.String(), dt.Length)
	case KindArrayProxy:
		return fmt.Sprintf("ArrayProxy<%s x %d>", dt.Element.String(), dt.Length)
	case KindAbstract:
		return dt.AbstractName
	default:
		return dt.Kind.String()
	}
}

// rank orders the three primitive kinds for [BiggerOf]'s widening rule:
// Bool < Int < Float.
func rank(dt *DataType) int {
	switch dt.Kind {
	case KindBool:
		return 0
	case KindInt:
		return 1
	case KindFloat:
		return 2
	default:
		return -1
	}
}

// BiggerOf implements the type-widening rule used during lowering.
// The rule is total on the closed variant:
//
// 1. If a.ArrayDepth() != b.ArrayDepth(), the deeper one wins.
// 2. If both have depth 0, rank Bool < Int < Float and return the higher.
// 3. If both share the same base leaf and depth, recurse on element
// types and take the wrapper whose outermost length is larger.
// 4. Ties return a.
func BiggerOf(a, b *DataType) *DataType {
	da, db := a.ArrayDepth(), b.ArrayDepth()
	if da != db {
		if da > db {
			return a
		}
		return b
	}

	if da == 0 {
		ra, rb := rank(a), rank(b)
		if rb > ra {
			return b
		}
		return a
	}

	elem := BiggerOf(a.Element, b.Element)
	if b.Length > a.Length {
		return &DataType{Kind: a.Kind, Element: elem, Length: b.Length}
	}
	return &DataType{Kind: a.Kind, Element: elem, Length: a.Length}
}

// FormatValue pretty-prints the bytes of a value of this type for
// debugging. Proxy arrays format the single stored element repeated
// Length times.
func FormatValue(dt *DataType, bytes []byte) string {
	switch dt.Kind {
	case KindInt:
		return fmt.Sprintf("%d", decodeInt(bytes))
	case KindFloat:
		return fmt.Sprintf("%g", decodeFloat(bytes))
	case KindBool:
		if len(bytes) > 0 && bytes[0] != 0 {
			return "true"
		}
		return "false"
	case KindAbstract:
		return "<abstract>"
	case KindArrayProxy:
		elemStr := FormatValue(dt.Element, bytes)
		parts := make([]string, dt.Length)
		for i := range parts {
			parts[i] = elemStr
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindArray:
		step := dt.Element.ByteLength()
		parts := make([]string, dt.Length)
		for i := 0; i < dt.Length; i++ {
			lo, hi := i*step, (i+1)*step
			parts[i] = FormatValue(dt.Element, bytes[lo:hi])
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<?>"
	}
}

func decodeInt(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func decodeFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
