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

// Package schema is the runtime schema registry: interned type and field
// descriptors, grounded on lua-protobuf's pb_State/pb_Type/pb_Field
// (pb.h), generalized from its C struct layout to Go.
package schema

import "github.com/dynproto/dynproto/internal/intern"

// ProtoType is the declared scalar/message/enum type of a field, using
// the same numbering as google/protobuf/descriptor.proto's FieldDescriptorProto.Type.
type ProtoType int

const (
	TDouble   ProtoType = 1
	TFloat    ProtoType = 2
	TInt64    ProtoType = 3
	TUint64   ProtoType = 4
	TInt32    ProtoType = 5
	TFixed64  ProtoType = 6
	TFixed32  ProtoType = 7
	TBool     ProtoType = 8
	TString   ProtoType = 9
	TGroup    ProtoType = 10
	TMessage  ProtoType = 11
	TBytes    ProtoType = 12
	TUint32   ProtoType = 13
	TEnum     ProtoType = 14
	TSfixed32 ProtoType = 15
	TSfixed64 ProtoType = 16
	TSint32   ProtoType = 17
	TSint64   ProtoType = 18
)

// Scalar reports whether t is neither Message nor Enum, i.e. whether a
// field of this type carries no type_ref to another Type.
func (t ProtoType) Scalar() bool {
	return t != TMessage && t != TEnum && t != TGroup
}

// String renders the declared type's canonical protobuf name.
func (t ProtoType) String() string {
	switch t {
	case TDouble:
		return "double"
	case TFloat:
		return "float"
	case TInt64:
		return "int64"
	case TUint64:
		return "uint64"
	case TInt32:
		return "int32"
	case TFixed64:
		return "fixed64"
	case TFixed32:
		return "fixed32"
	case TBool:
		return "bool"
	case TString:
		return "string"
	case TGroup:
		return "group"
	case TMessage:
		return "message"
	case TBytes:
		return "bytes"
	case TUint32:
		return "uint32"
	case TEnum:
		return "enum"
	case TSfixed32:
		return "sfixed32"
	case TSfixed64:
		return "sfixed64"
	case TSint32:
		return "sint32"
	case TSint64:
		return "sint64"
	default:
		return "unknown"
	}
}

// OneofInfo records a field's membership in a oneof group.
type OneofInfo struct {
	Name  string
	Index int
}

// Type is a schema type descriptor: a message, a synthetic map-entry
// message, or an enum.
type Type struct {
	QName string // fully qualified, dot-separated, no leading dot
	Base  string // segment of QName after the last dot

	TagIndex  intern.Map[*Field] // field number -> *Field (or enum value -> *Field for enums)
	NameIndex intern.Map[*Field] // field/enum-value name -> *Field

	// OneofIndex maps a field to the oneof group it belongs to. lua-protobuf
	// keys this by field pointer too; unlike TagIndex/NameIndex this isn't
	// keyed by an integer or string, so a plain Go map is used here rather
	// than intern.Map.
	OneofIndex map[*Field]OneofInfo

	FieldCount int
	IsEnum     bool
	IsMap      bool
	IsExt      bool // created as an extension-target stub; not yet given a real definition
}

// Field is a schema field descriptor. For an enum Type, Field instead
// describes one enum value, with Number reused as the enum constant.
type Field struct {
	Name   string
	Number uint32

	TypeID ProtoType
	Ref    *Type // set when TypeID is TMessage, TEnum, or TGroup

	Default  string // default_value, if the descriptor declared one
	EnumName string // for enum-typed fields holding an integer, name lookup goes through Ref

	Repeated bool
	Packed   bool
}

// Scalar reports whether this field's declared type carries no Ref.
func (f *Field) Scalar() bool { return f.TypeID.Scalar() }

// WireType returns the wire encoding this field's declared type uses.
func (f *Field) WireType() (WireType, bool) {
	return wireTypeOf(f.TypeID)
}
