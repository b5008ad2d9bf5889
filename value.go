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

// Kind discriminates which field of a Value is meaningful.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBytes
	KindEnumName
	KindMessage
)

// Value is the tagged union the codec exchanges with a host: exactly
// one of its fields is meaningful, selected by Kind. This is the Go
// realization of the abstract variant enumerated in the value-cursor
// design notes: Bool | I32 | I64 | U32 | U64 | F32 | F64 | Bytes |
// EnumName | Submessage.
type Value struct {
	Kind Kind

	Bool     bool
	I32      int32
	I64      int64
	U32      uint32
	U64      uint64
	F32      float32
	F64      float64
	Bytes    []byte
	EnumName string
	Message  ValueSource // set when Kind == KindMessage
}

func BoolValue(b bool) Value         { return Value{Kind: KindBool, Bool: b} }
func Int32Value(v int32) Value       { return Value{Kind: KindInt32, I32: v} }
func Int64Value(v int64) Value       { return Value{Kind: KindInt64, I64: v} }
func Uint32Value(v uint32) Value     { return Value{Kind: KindUint32, U32: v} }
func Uint64Value(v uint64) Value     { return Value{Kind: KindUint64, U64: v} }
func Float32Value(v float32) Value   { return Value{Kind: KindFloat32, F32: v} }
func Float64Value(v float64) Value   { return Value{Kind: KindFloat64, F64: v} }
func BytesValue(b []byte) Value      { return Value{Kind: KindBytes, Bytes: b} }
func EnumNameValue(s string) Value   { return Value{Kind: KindEnumName, EnumName: s} }
func MessageValue(m ValueSource) Value { return Value{Kind: KindMessage, Message: m} }

// MapEntry is one key/value pair of a map field, as exchanged with a
// ValueSource/ValueSink. Map keys are always scalar (string or integer
// protobuf types); only Value's scalar Kinds are valid for Key.
type MapEntry struct {
	Key   Value
	Value Value
}

// ValueSource is the host-supplied cursor [Encode] walks to produce
// wire bytes. NextField enumerates every present field exactly once,
// in whatever order the host chooses to offer them; the encoder writes
// fields in the order NextField reports them. For a field the
// schema declares repeated or a map, the Value returned alongside its
// name is not used; the encoder instead calls Repeated or Map to
// obtain the field's elements.
type ValueSource interface {
	// NextField returns the next (name, value) pair, or ok=false once
	// the cursor is exhausted. A cursor is single-pass: once exhausted
	// it stays exhausted.
	NextField() (name string, v Value, ok bool)

	// Repeated returns the elements of a repeated field named name.
	Repeated(name string) ([]Value, bool)

	// Map returns the entries of a map field named name.
	Map(name string) ([]MapEntry, bool)
}

// ValueSink receives the fields [Decode] discovers while walking wire
// bytes, in the order they're encountered on the wire.
type ValueSink interface {
	// SetField records a singular field's value, overwriting any value
	// previously set for the same name (the wire format allows a
	// singular field to appear more than once; last one wins).
	SetField(name string, v Value)

	// AppendField appends one more element to a repeated field.
	AppendField(name string, v Value)

	// SetMapEntry records one key/value pair of a map field.
	SetMapEntry(name string, key, value Value)
}
