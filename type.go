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

import "github.com/dynproto/dynproto/internal/schema"

// Type is a schema type descriptor: a message, a synthetic map-entry
// message, or an enum. Obtain one from a [Registry] via Type/NewType;
// the zero Type is not valid.
type Type = schema.Type

// Field is a schema field descriptor. For an enum Type, Field instead
// describes one enum value, with Number reused as the enum constant.
type Field = schema.Field

// OneofInfo records a field's membership in a oneof group.
type OneofInfo = schema.OneofInfo

// ProtoType is a field's declared scalar/message/enum type, using the
// same numbering as FieldDescriptorProto.Type.
type ProtoType = schema.ProtoType

// FieldIter is a restartable cursor over every field of a Type,
// returned by IterFields.
type FieldIter struct{ it *schema.FieldIter }

// Next advances the cursor. ok is false once iteration is exhausted.
func (it *FieldIter) Next() (f *Field, ok bool) { return it.it.Next() }

// IterFields returns a cursor over every field (or, for an enum Type,
// every enum value) of t.
func IterFields(t *Type) *FieldIter {
	return &FieldIter{it: t.IterFields()}
}

// Declared field types, matching google/protobuf/descriptor.proto's
// FieldDescriptorProto.Type enumeration.
const (
	TDouble   = schema.TDouble
	TFloat    = schema.TFloat
	TInt64    = schema.TInt64
	TUint64   = schema.TUint64
	TInt32    = schema.TInt32
	TFixed64  = schema.TFixed64
	TFixed32  = schema.TFixed32
	TBool     = schema.TBool
	TString   = schema.TString
	TGroup    = schema.TGroup
	TMessage  = schema.TMessage
	TBytes    = schema.TBytes
	TUint32   = schema.TUint32
	TEnum     = schema.TEnum
	TSfixed32 = schema.TSfixed32
	TSfixed64 = schema.TSfixed64
	TSint32   = schema.TSint32
	TSint64   = schema.TSint64
)
