// Copyright 2025 The DynProto Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dynproto

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func hexBytes(t *testing.T, words ...byte) []byte {
	t.Helper()
	return words
}

// S1: singular uint32=150, tag 1.
func TestEncodeDecodeS1SingularUint32(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "field1", 1)
	f.TypeID = TUint32

	src := NewMessage(ty)
	src.SetField("field1", Uint32Value(150))

	got, err := Encode(ty, src)
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, 0x08, 0x96, 0x01), got)

	msg, err := Decode(ty, got)
	require.NoError(t, err)
	v, ok := msg.Get("field1")
	require.True(t, ok)
	require.Equal(t, Uint32Value(150), v)
}

// S2: string "testing", tag 2.
func TestEncodeDecodeS2String(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "field2", 2)
	f.TypeID = TString

	src := NewMessage(ty)
	src.SetField("field2", BytesValue([]byte("testing")))

	got, err := Encode(ty, src)
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, 0x12, 0x07, 0x74, 0x65, 0x73, 0x74, 0x69, 0x6E, 0x67), got)

	msg, err := Decode(ty, got)
	require.NoError(t, err)
	v, ok := msg.Get("field2")
	require.True(t, ok)
	require.Equal(t, "testing", string(v.Bytes))
}

// S3: zigzag sint32 = -2, tag 1; the same bytes read back against int32
// (no zigzag) must decode to 3.
func TestEncodeDecodeS3Zigzag(t *testing.T) {
	r := NewRegistry()
	sintType := r.NewType("SintMsg")
	f := r.NewField(sintType, "field1", 1)
	f.TypeID = TSint32

	src := NewMessage(sintType)
	src.SetField("field1", Int32Value(-2))
	got, err := Encode(sintType, src)
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, 0x08, 0x03), got)

	msg, err := Decode(sintType, got)
	require.NoError(t, err)
	v, ok := msg.Get("field1")
	require.True(t, ok)
	require.Equal(t, int32(-2), v.I32)

	intType := r.NewType("IntMsg")
	f2 := r.NewField(intType, "field1", 1)
	f2.TypeID = TInt32
	msg2, err := Decode(intType, got)
	require.NoError(t, err)
	v2, ok := msg2.Get("field1")
	require.True(t, ok)
	require.Equal(t, int32(3), v2.I32)
}

// S4: packed repeated int32 [1,2,3], tag 4. The non-packed wire form of
// the same values must decode identically (proto3 interop).
func TestEncodeDecodeS4PackedRepeated(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "field4", 4)
	f.TypeID = TInt32
	f.Repeated = true
	f.Packed = true

	src := NewMessage(ty)
	src.AppendField("field4", Int32Value(1))
	src.AppendField("field4", Int32Value(2))
	src.AppendField("field4", Int32Value(3))

	got, err := Encode(ty, src)
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, 0x22, 0x03, 0x01, 0x02, 0x03), got)

	msg, err := Decode(ty, got)
	require.NoError(t, err)
	elems, ok := msg.Repeated("field4")
	require.True(t, ok)
	require.Len(t, elems, 3)
	require.Equal(t, []int32{1, 2, 3}, []int32{elems[0].I32, elems[1].I32, elems[2].I32})

	nonPacked := hexBytes(t, 0x20, 0x01, 0x20, 0x02, 0x20, 0x03)
	msg2, err := Decode(ty, nonPacked)
	require.NoError(t, err)
	elems2, ok := msg2.Repeated("field4")
	require.True(t, ok)
	require.Equal(t, []int32{1, 2, 3}, []int32{elems2[0].I32, elems2[1].I32, elems2[2].I32})
}

// S5: nested message Outer{ Inner inner = 1 }, Inner{ int32 v = 1 }.
func TestEncodeDecodeS5NestedMessage(t *testing.T) {
	r := NewRegistry()
	inner := r.NewType("Inner")
	vf := r.NewField(inner, "v", 1)
	vf.TypeID = TInt32

	outer := r.NewType("Outer")
	innerField := r.NewField(outer, "inner", 1)
	innerField.TypeID = TMessage
	innerField.Ref = inner

	innerMsg := NewMessage(inner)
	innerMsg.SetField("v", Int32Value(150))
	src := NewMessage(outer)
	src.SetField("inner", MessageValue(innerMsg))

	got, err := Encode(outer, src)
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, 0x0A, 0x03, 0x08, 0x96, 0x01), got)

	msg, err := Decode(outer, got)
	require.NoError(t, err)
	v, ok := msg.Get("inner")
	require.True(t, ok)
	require.Equal(t, KindMessage, v.Kind)
	nested, ok := v.Message.(*Message)
	require.True(t, ok)
	nv, ok := nested.Get("v")
	require.True(t, ok)
	require.Equal(t, int32(150), nv.I32)
}

// S6: map<string, int32> with one entry {"a": 1}, tag 5. The decoder
// must accept both field orderings inside the entry submessage.
func TestEncodeDecodeS6Map(t *testing.T) {
	r := NewRegistry()
	entry := r.NewType("Msg.EntriesEntry")
	entry.IsMap = true
	kf := r.NewField(entry, "key", 1)
	kf.TypeID = TString
	vf := r.NewField(entry, "value", 2)
	vf.TypeID = TInt32

	ty := r.NewType("Msg")
	mf := r.NewField(ty, "entries", 5)
	mf.TypeID = TMessage
	mf.Ref = entry

	src := NewMessage(ty)
	src.SetMapEntry("entries", BytesValue([]byte("a")), Int32Value(1))

	got, err := Encode(ty, src)
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, 0x2A, 0x05, 0x10, 0x01, 0x0A, 0x01, 0x61), got)

	msg, err := Decode(ty, got)
	require.NoError(t, err)
	entries, ok := msg.Map("entries")
	require.True(t, ok)
	require.Len(t, entries, 1)
	require.Equal(t, "a", string(entries[0].Key.Bytes))
	require.Equal(t, int32(1), entries[0].Value.I32)

	reversed := hexBytes(t, 0x2A, 0x05, 0x0A, 0x01, 0x61, 0x10, 0x01)
	msg2, err := Decode(ty, reversed)
	require.NoError(t, err)
	entries2, ok := msg2.Map("entries")
	require.True(t, ok)
	require.Len(t, entries2, 1)
	require.Equal(t, "a", string(entries2[0].Key.Bytes))
	require.Equal(t, int32(1), entries2[0].Value.I32)
}

// Boundary behaviors: canonical varint lengths, negative int32 sign
// extension, sint32 compactness.
func TestVarintCanonicalBoundaries(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "field1", 1)
	f.TypeID = TUint64

	zero := NewMessage(ty)
	zero.SetField("field1", Uint64Value(0))
	got, err := Encode(ty, zero)
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, 0x08, 0x00), got)

	max := NewMessage(ty)
	max.SetField("field1", Uint64Value(math.MaxUint64))
	got, err = Encode(ty, max)
	require.NoError(t, err)
	// tag byte + 10-byte varint for UINT64_MAX.
	require.Len(t, got, 11)
}

func TestNegativeInt32SignExtendsToTenByteVarint(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "field1", 1)
	f.TypeID = TInt32

	src := NewMessage(ty)
	src.SetField("field1", Int32Value(-1))
	got, err := Encode(ty, src)
	require.NoError(t, err)
	require.Len(t, got, 11) // 1 tag byte + 10 varint bytes

	sintTy := r.NewType("SintMsg")
	sf := r.NewField(sintTy, "field1", 1)
	sf.TypeID = TSint32
	src2 := NewMessage(sintTy)
	src2.SetField("field1", Int32Value(-1))
	got2, err := Encode(sintTy, src2)
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, 0x08, 0x01), got2)
}

func TestFloatBitCastRoundTripsNaN(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "field1", 1)
	f.TypeID = TFloat

	nan := math.Float32frombits(0x7fc00001)
	src := NewMessage(ty)
	src.SetField("field1", Float32Value(nan))
	got, err := Encode(ty, src)
	require.NoError(t, err)

	msg, err := Decode(ty, got)
	require.NoError(t, err)
	v, ok := msg.Get("field1")
	require.True(t, ok)
	require.Equal(t, math.Float32bits(nan), math.Float32bits(v.F32))
}

// Wiretype mismatch is a hard error reporting the field name and byte
// offset.
func TestDecodeWiretypeMismatchReportsFieldAndOffset(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "field1", 1)
	f.TypeID = TUint32 // expects varint

	// tag for field 1 with wiretype 5 (Fixed32) instead of varint.
	data := hexBytes(t, 0x0D, 0x01, 0x00, 0x00, 0x00)
	_, err := Decode(ty, data)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "field1", perr.Field)
	require.Equal(t, 0, perr.Offset)
}

// Unknown top-level field tag in input is skipped rather than failing.
func TestDecodeSkipsUnknownField(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "field1", 1)
	f.TypeID = TUint32

	// field 99 (varint, tag byte 0x318 as a two-byte varint) followed by
	// field1=150.
	data := hexBytes(t, 0x98, 0x06, 0x2A, 0x08, 0x96, 0x01)
	msg, err := Decode(ty, data)
	require.NoError(t, err)
	v, ok := msg.Get("field1")
	require.True(t, ok)
	require.Equal(t, uint32(150), v.U32)
}

// Group-typed fields are rejected by the encoder with a ConfigError.
func TestGroupFieldRejected(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Msg")
	f := r.NewField(ty, "g", 1)
	f.TypeID = TGroup

	src := NewMessage(ty)
	src.SetField("g", BoolValue(true))
	_, err := Encode(ty, src)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestDecodeMaxDepthExceeded(t *testing.T) {
	r := NewRegistry()
	ty := r.NewType("Recursive")
	f := r.NewField(ty, "next", 1)
	f.TypeID = TMessage
	f.Ref = ty

	var build func(depth int) *Message
	build = func(depth int) *Message {
		m := NewMessage(ty)
		if depth > 0 {
			m.SetField("next", MessageValue(build(depth-1)))
		}
		return m
	}

	data, err := Encode(ty, build(5))
	require.NoError(t, err)

	_, err = Decode(ty, data, WithMaxDepth(2))
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}
