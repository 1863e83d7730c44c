package datatype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBiggerOfPrimitiveRank(t *testing.T) {
	require.Same(t, Int, BiggerOf(Bool, Int))
	require.Same(t, Int, BiggerOf(Int, Bool))
	require.Same(t, Float, BiggerOf(Int, Float))
	require.Same(t, Float, BiggerOf(Float, Int))
	require.Same(t, Bool, BiggerOf(Bool, Bool))
}

func TestBiggerOfLeftTieBreak(t *testing.T) {
	require.Same(t, Int, BiggerOf(Int, Int))
}

func TestBiggerOfArrayDepthWins(t *testing.T) {
	arr := NewArray(Int, 3)
	got := BiggerOf(arr, Float)
	require.True(t, got.IsArray())
	require.Equal(t, 1, got.ArrayDepth())
}

func TestBiggerOfArrayElementWidens(t *testing.T) {
	a := NewArray(Int, 3)
	b := NewArray(Float, 3)
	got := BiggerOf(a, b)
	require.Equal(t, KindArray, got.Kind)
	require.Equal(t, KindFloat, got.Element.Kind)
	require.Equal(t, 3, got.Length)
}

func TestBiggerOfArrayLengthPrefersLarger(t *testing.T) {
	a := NewArray(Int, 2)
	b := NewArray(Int, 5)
	got := BiggerOf(a, b)
	require.Equal(t, 5, got.Length)

	got2 := BiggerOf(b, a)
	require.Equal(t, 5, got2.Length)
}

func TestByteLength(t *testing.T) {
	require.Equal(t, IntByteLength, Int.ByteLength())
	require.Equal(t, FloatByteLength, Float.ByteLength())
	require.Equal(t, BoolByteLength, Bool.ByteLength())

	arr := NewArray(Int, 4)
	require.Equal(t, IntByteLength*4, arr.ByteLength())

	nested := NewArray(arr, 2)
	require.Equal(t, IntByteLength*4*2, nested.ByteLength())
}

func TestProxyStoredByteLength(t *testing.T) {
	proxy := NewArrayProxy(Float, 100)
	require.Equal(t, FloatByteLength*100, proxy.ByteLength())
	require.Equal(t, FloatByteLength, proxy.StoredByteLength())
	require.True(t, proxy.IsProxy())
}

func TestBaseTypeAndArrayDepth(t *testing.T) {
	nested := NewArray(NewArray(Bool, 2), 3)
	require.Same(t, Bool, nested.BaseType())
	require.Equal(t, 2, nested.ArrayDepth())
	require.Equal(t, 0, Bool.ArrayDepth())
}

func TestEqual(t *testing.T) {
	a := NewArray(Int, 3)
	b := NewArray(Int, 3)
	require.True(t, a.Equal(b))

	c := NewArray(Int, 4)
	require.False(t, a.Equal(c))

	require.True(t, NewAbstract("T").Equal(NewAbstract("T")))
	require.False(t, NewAbstract("T").Equal(NewAbstract("U")))
}

func TestFormatValue(t *testing.T) {
	intBytes := []byte{7, 0, 0, 0}
	require.Equal(t, "7", FormatValue(Int, intBytes))

	boolBytes := []byte{1}
	require.Equal(t, "true", FormatValue(Bool, boolBytes))

	arr := NewArray(Int, 2)
	arrBytes := append(append([]byte{}, intBytes...), intBytes...)
	require.Equal(t, "[7, 7]", FormatValue(arr, arrBytes))

	proxy := NewArrayProxy(Int, 3)
	require.Equal(t, "[7, 7, 7]", FormatValue(proxy, intBytes))
}
