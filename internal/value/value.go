// Package value implements the runtime value store: every value is
// either an owned block of bytes or a proxy that redirects reads and
// writes to another value's storage.
//
// The shape generalizes the familiar Object wrapper-struct pattern
// from tree-walking interpreters: instead of one struct per runtime
// kind, there is one struct, [Value], whose DataType and ownership mode
// describe what it holds. A debug label (an opaque uuid) stands in for
// a per-kind Inspect() when a human needs to tell two anonymous
// temporary values apart while tracing a lowering or interpretation bug.
package value

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"

	"github.com/waveguide-lang/waveguide/internal/datatype"
)

// Value is a single runtime value: either an owned block of bytes, or a
// proxy redirecting to another Value's storage.
type Value struct {
	Type *datatype.DataType

	// bytes holds this value's own storage. Unset (nil) when Proxy != nil.
	bytes []byte

	// Proxy, when non-nil, is the value this one redirects reads and
	// writes to. A proxy value owns no storage of its own.
	Proxy *Value

	// Offset is a byte offset into Proxy's own bytes, used to address a
	// single element inside a larger array's storage without copying.
	Offset int

	// Known marks a value whose bytes are fixed at lowering time (a
	// compile-time constant), letting the lowerer fold range bounds and
	// array sizes instead of deferring them to the interpreter.
	Known bool

	// Label is an opaque debug identifier, assigned lazily, used only by
	// diagnostic rendering (never by equality or lookup).
	label string
}

// New allocates a zero-filled owned value of the given type.
func New(dt *datatype.DataType) *Value {
	return &Value{Type: dt, bytes: make([]byte, dt.StoredByteLength())}
}

// NewKnown allocates an owned value of the given type with Known set,
// used for values the lowerer can fold at compile time.
func NewKnown(dt *datatype.DataType, bytes []byte) *Value {
	buf := make([]byte, dt.StoredByteLength())
	copy(buf, bytes)
	return &Value{Type: dt, bytes: buf, Known: true}
}

// NewProxy allocates a value that redirects to the whole of target's
// storage. The proxy's type need not equal target's type (an
// ArrayProxy redirects a repeated-element view onto a single stored
// element). The known-flag forwards from target, since a proxy over a
// compile-time constant is itself constant.
func NewProxy(dt *datatype.DataType, target *Value) *Value {
	return &Value{Type: dt, Proxy: target, Known: target.Known}
}

// NewProxyAt allocates a value that redirects to a sub-range of
// target's bytes starting at byteOffset, used to address a single
// element inside a larger array's storage without copying.
func NewProxyAt(dt *datatype.DataType, target *Value, byteOffset int) *Value {
	return &Value{Type: dt, Proxy: target, Offset: byteOffset, Known: target.Known}
}

// IsProxy reports whether v redirects to another value's storage.
func (v *Value) IsProxy() bool { return v.Proxy != nil }

// RealValue follows the proxy chain and returns the value that
// actually owns storage. Bounded to guard against a malformed,
// non-terminating chain; a chain deeper than this is a fatal
// precondition violation.
const maxProxyHops = 10000

func (v *Value) RealValue() *Value {
	cur := v
	for hops := 0; cur.Proxy != nil; hops++ {
		if hops >= maxProxyHops {
			panic("value: proxy chain exceeds maximum depth, likely a cycle")
		}
		cur = cur.Proxy
	}
	return cur
}

// Bytes returns the storage this value reads from, resolving proxies
// and applying Offset for sub-range proxies.
func (v *Value) Bytes() []byte {
	if v.Proxy == nil {
		return v.bytes
	}
	base := v.Proxy.Bytes()
	n := v.Type.StoredByteLength()
	return base[v.Offset : v.Offset+n]
}

// SetBytes overwrites this value's storage, resolving proxies and
// applying Offset for sub-range proxies. The slice must be exactly
// len(v.Bytes()) long.
func (v *Value) SetBytes(b []byte) {
	copy(v.Bytes(), b)
}

// CreateKnownCopy detaches v from any proxy chain and returns a new,
// independently-owned value holding v's current bytes, marked Known.
// Used when a constant-folded value needs to escape the scope that
// produced it.
func (v *Value) CreateKnownCopy() *Value {
	return NewKnown(v.Type, v.Bytes())
}

// Label returns an opaque per-value debug identifier, assigning one on
// first use.
func (v *Value) Label() string {
	if v.label == "" {
		v.label = uuid.NewString()
	}
	return v.label
}

// AsInt decodes this value's bytes as a little-endian int32. The
// caller is responsible for checking Type.Kind == datatype.KindInt.
func (v *Value) AsInt() int32 {
	return int32(binary.LittleEndian.Uint32(v.Bytes()))
}

// SetInt encodes x into this value's storage as a little-endian int32.
func (v *Value) SetInt(x int32) {
	buf := make([]byte, datatype.IntByteLength)
	binary.LittleEndian.PutUint32(buf, uint32(x))
	v.SetBytes(buf)
}

// AsFloat decodes this value's bytes as a little-endian IEEE-754 float32.
func (v *Value) AsFloat() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(v.Bytes()))
}

// SetFloat encodes x into this value's storage as a little-endian
// IEEE-754 float32.
func (v *Value) SetFloat(x float32) {
	buf := make([]byte, datatype.FloatByteLength)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(x))
	v.SetBytes(buf)
}

// AsBool decodes this value's bytes as a single-byte boolean.
func (v *Value) AsBool() bool {
	b := v.Bytes()
	return len(b) > 0 && b[0] != 0
}

// SetBool encodes x into this value's storage as a single byte.
func (v *Value) SetBool(x bool) {
	if x {
		v.SetBytes([]byte{1})
	} else {
		v.SetBytes([]byte{0})
	}
}

// ReType replaces v's declared type in place, used when the lowerer
// widens a value's type after it has already been allocated (e.g. a
// wildcard builtin output resolved via [datatype.BiggerOf]). ReType does
// not resize storage, so dt must keep the same stored byte length and
// proxy-ness as v's current type; callers that need to change either
// must reallocate instead. Violating this is a fatal precondition
// failure, not a recoverable error.
func (v *Value) ReType(dt *datatype.DataType) {
	if dt.StoredByteLength() != v.Type.StoredByteLength() || dt.IsProxy() != v.Type.IsProxy() {
		panic("value: ReType called with incompatible byte length or proxy-ness")
	}
	v.Type = dt
}

// Inspect renders v's value for debugging, following proxies and
// delegating byte formatting to [datatype.FormatValue].
func (v *Value) Inspect() string {
	return datatype.FormatValue(v.Type, v.Bytes())
}
