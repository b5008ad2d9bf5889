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

package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dynproto/dynproto/internal/schema"
	"github.com/dynproto/dynproto/internal/wire"
)

// --- hand-rolled FileDescriptorSet builders -------------------------------
//
// These mirror protoc's own output closely enough to exercise the loader,
// without linking against descriptorpb: a submessage field is a length-
// prefixed Bytes value, built bottom-up and spliced into its parent with
// appendMsg.

func appendVarintField(b *wire.Buffer, num uint32, v uint64) {
	wire.AppendTag(b, num, wire.Varint)
	wire.AppendVarint(b, v)
}

func appendStringField(b *wire.Buffer, num uint32, s string) {
	wire.AppendTag(b, num, wire.Bytes)
	wire.AppendBytes(b, []byte(s))
}

func appendMsgField(b *wire.Buffer, num uint32, body []byte) {
	wire.AppendTag(b, num, wire.Bytes)
	wire.AppendBytes(b, body)
}

type fieldSpec struct {
	name     string
	number   uint32
	typ      schema.ProtoType
	label    uint32 // 1 = optional, 3 = repeated
	typeName string
	extendee string
	packed   *bool
}

const (
	labelOptional = 1
	labelRepeated = 3
)

func buildField(f fieldSpec) []byte {
	var b wire.Buffer
	appendStringField(&b, 1, f.name)
	if f.extendee != "" {
		appendStringField(&b, 2, f.extendee)
	}
	appendVarintField(&b, 3, uint64(f.number))
	if f.label != 0 {
		appendVarintField(&b, 4, uint64(f.label))
	}
	appendVarintField(&b, 5, uint64(f.typ))
	if f.typeName != "" {
		appendStringField(&b, 6, f.typeName)
	}
	if f.packed != nil {
		var opts wire.Buffer
		v := uint64(0)
		if *f.packed {
			v = 1
		}
		appendVarintField(&opts, 2, v)
		appendMsgField(&b, 8, opts.Bytes())
	}
	return append([]byte(nil), b.Bytes()...)
}

type messageSpec struct {
	name   string
	fields []fieldSpec
	nested []messageSpec
	enums  []enumSpec
}

func buildMessage(m messageSpec) []byte {
	var b wire.Buffer
	appendStringField(&b, 1, m.name)
	for _, f := range m.fields {
		appendMsgField(&b, 2, buildField(f))
	}
	for _, n := range m.nested {
		appendMsgField(&b, 3, buildMessage(n))
	}
	for _, e := range m.enums {
		appendMsgField(&b, 4, buildEnum(e))
	}
	return append([]byte(nil), b.Bytes()...)
}

type enumValueSpec struct {
	name   string
	number uint32
}

type enumSpec struct {
	name   string
	values []enumValueSpec
}

func buildEnum(e enumSpec) []byte {
	var b wire.Buffer
	appendStringField(&b, 1, e.name)
	for _, v := range e.values {
		var vb wire.Buffer
		appendStringField(&vb, 1, v.name)
		appendVarintField(&vb, 2, uint64(v.number))
		appendMsgField(&b, 2, vb.Bytes())
	}
	return append([]byte(nil), b.Bytes()...)
}

type fileSpec struct {
	pkg        string
	messages   []messageSpec
	enums      []enumSpec
	extensions []fieldSpec
}

func buildFile(f fileSpec) []byte {
	var b wire.Buffer
	if f.pkg != "" {
		appendStringField(&b, 2, f.pkg)
	}
	for _, m := range f.messages {
		appendMsgField(&b, 4, buildMessage(m))
	}
	for _, e := range f.enums {
		appendMsgField(&b, 5, buildEnum(e))
	}
	for _, x := range f.extensions {
		appendMsgField(&b, 7, buildField(x))
	}
	return append([]byte(nil), b.Bytes()...)
}

func buildSet(files ...fileSpec) []byte {
	var b wire.Buffer
	for _, f := range files {
		appendMsgField(&b, 1, buildFile(f))
	}
	return append([]byte(nil), b.Bytes()...)
}

// --- tests -----------------------------------------------------------------

func TestLoadSimpleMessage(t *testing.T) {
	data := buildSet(fileSpec{
		pkg: "pkg",
		messages: []messageSpec{{
			name: "Msg",
			fields: []fieldSpec{
				{name: "a", number: 1, typ: schema.TInt32, label: labelOptional},
			},
		}},
	})

	reg := schema.NewRegistry()
	n, err := Load(reg, data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	ty, ok := reg.GetType("pkg.Msg")
	require.True(t, ok)
	f, ok := ty.GetFieldByTag(1)
	require.True(t, ok)
	require.Equal(t, "a", f.Name)
	require.Equal(t, schema.TInt32, f.TypeID)
}

func TestLoadNestedMessageQualifiedName(t *testing.T) {
	data := buildSet(fileSpec{
		pkg: "pkg",
		messages: []messageSpec{{
			name: "Outer",
			nested: []messageSpec{{
				name:   "Inner",
				fields: []fieldSpec{{name: "x", number: 1, typ: schema.TBool, label: labelOptional}},
			}},
		}},
	})

	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.NoError(t, err)

	_, ok := reg.GetType("pkg.Outer.Inner")
	require.True(t, ok, "nested type must be qualified through its parent, not just the package")
}

func TestLoadBarePackageMessage(t *testing.T) {
	data := buildSet(fileSpec{
		messages: []messageSpec{{name: "Top"}},
	})
	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.NoError(t, err)
	_, ok := reg.GetType("Top")
	require.True(t, ok)
}

// Extension field loaded before its extendee message is defined: the
// extendee Type must still end up with the field attached, via the
// stub-then-merge pointer-identity pattern (SPEC_FULL.md Decision #1).
func TestLoadExtensionBeforeMessage(t *testing.T) {
	data := buildSet(
		fileSpec{
			pkg: "pkg",
			extensions: []fieldSpec{
				{name: "ext_field", number: 100, typ: schema.TInt32, label: labelOptional, extendee: ".pkg.Base"},
			},
		},
		fileSpec{
			pkg:      "pkg",
			messages: []messageSpec{{name: "Base"}},
		},
	)

	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.NoError(t, err)

	ty, ok := reg.GetType("pkg.Base")
	require.True(t, ok)
	f, ok := ty.GetFieldByName("ext_field")
	require.True(t, ok)
	require.EqualValues(t, 100, f.Number)
}

// Same scenario, opposite file ordering.
func TestLoadMessageBeforeExtension(t *testing.T) {
	data := buildSet(
		fileSpec{
			pkg:      "pkg",
			messages: []messageSpec{{name: "Base"}},
		},
		fileSpec{
			pkg: "pkg",
			extensions: []fieldSpec{
				{name: "ext_field", number: 100, typ: schema.TInt32, label: labelOptional, extendee: ".pkg.Base"},
			},
		},
	)

	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.NoError(t, err)

	ty, ok := reg.GetType("pkg.Base")
	require.True(t, ok)
	require.False(t, ty.IsExt, "once a real definition merges in, the stub flag must clear")
	f, ok := ty.GetFieldByName("ext_field")
	require.True(t, ok)
	require.EqualValues(t, 100, f.Number)
}

func TestLoadUnknownTopLevelTagIsSkipped(t *testing.T) {
	inner := buildFile(fileSpec{
		pkg:      "pkg",
		messages: []messageSpec{{name: "Msg"}},
	})

	var b wire.Buffer
	appendMsgField(&b, 1, inner)
	appendStringField(&b, 99, "unrecognized-future-field")
	data := append([]byte(nil), b.Bytes()...)

	reg := schema.NewRegistry()
	n, err := Load(reg, data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	_, ok := reg.GetType("pkg.Msg")
	require.True(t, ok)
}

func TestLoadTruncatedInputReportsOffset(t *testing.T) {
	data := buildSet(fileSpec{
		pkg:      "pkg",
		messages: []messageSpec{{name: "Msg"}},
	})
	truncated := data[:len(data)-1]

	reg := schema.NewRegistry()
	_, err := Load(reg, truncated)
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, 0, derr.Offset, "the truncation is inside the single top-level file entry")
}

func TestLoadRejectsGroupField(t *testing.T) {
	data := buildSet(fileSpec{
		pkg: "pkg",
		messages: []messageSpec{{
			name: "Msg",
			fields: []fieldSpec{
				{name: "g", number: 1, typ: schema.TGroup, label: labelOptional, typeName: "pkg.Msg.G"},
			},
		}},
	})

	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.Error(t, err)
	require.Contains(t, err.Error(), "group")
}

func TestLoadPackedOptionExplicit(t *testing.T) {
	tru := true
	fls := false
	data := buildSet(fileSpec{
		pkg: "pkg",
		messages: []messageSpec{{
			name: "Msg",
			fields: []fieldSpec{
				{name: "packed_ints", number: 1, typ: schema.TInt32, label: labelRepeated, packed: &tru},
				{name: "unpacked_ints", number: 2, typ: schema.TInt32, label: labelRepeated, packed: &fls},
			},
		}},
	})

	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.NoError(t, err)

	ty, _ := reg.GetType("pkg.Msg")
	packed, _ := ty.GetFieldByName("packed_ints")
	require.True(t, packed.Packed)
	unpacked, _ := ty.GetFieldByName("unpacked_ints")
	require.False(t, unpacked.Packed)
}

func TestLoadRepeatedScalarLeavesPackedUnsetWhenOptionsOmitted(t *testing.T) {
	data := buildSet(fileSpec{
		pkg: "pkg",
		messages: []messageSpec{{
			name: "Msg",
			fields: []fieldSpec{
				{name: "xs", number: 1, typ: schema.TInt32, label: labelRepeated},
				{name: "ss", number: 2, typ: schema.TString, label: labelRepeated},
			},
		}},
	})

	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.NoError(t, err)

	ty, _ := reg.GetType("pkg.Msg")
	xs, _ := ty.GetFieldByName("xs")
	require.False(t, xs.Packed, "packed is only set from an explicit FieldOptions.packed")
	ss, _ := ty.GetFieldByName("ss")
	require.False(t, ss.Packed, "repeated bytes-wiretype fields are never packed")
}

func TestLoadMapEntryDetection(t *testing.T) {
	data := buildSet(fileSpec{
		pkg: "pkg",
		messages: []messageSpec{{
			name: "Msg",
			nested: []messageSpec{{
				name: "ValuesEntry",
				fields: []fieldSpec{
					{name: "key", number: 1, typ: schema.TString, label: labelOptional},
					{name: "value", number: 2, typ: schema.TInt32, label: labelOptional},
				},
			}},
			fields: []fieldSpec{
				{name: "values", number: 1, typ: schema.TMessage, label: labelRepeated, typeName: "pkg.Msg.ValuesEntry"},
			},
		}},
	})

	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.NoError(t, err)

	entry, ok := reg.GetType("pkg.Msg.ValuesEntry")
	require.True(t, ok)
	require.True(t, entry.IsMap)
}

func TestLoadEnumValues(t *testing.T) {
	data := buildSet(fileSpec{
		pkg: "pkg",
		enums: []enumSpec{{
			name: "Color",
			values: []enumValueSpec{
				{name: "RED", number: 0},
				{name: "GREEN", number: 1},
			},
		}},
	})

	reg := schema.NewRegistry()
	_, err := Load(reg, data)
	require.NoError(t, err)

	ty, ok := reg.GetType("pkg.Color")
	require.True(t, ok)
	require.True(t, ty.IsEnum)
	red, ok := ty.GetFieldByTag(0)
	require.True(t, ok)
	require.Equal(t, "RED", red.Name)
}
