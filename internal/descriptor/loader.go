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

// Package descriptor parses a serialized FileDescriptorSet, the
// protobuf encoding of google/protobuf/descriptor.proto as emitted by
// `protoc --descriptor_set_out`, directly off the wire codec, without
// depending on any generated descriptor types. The codec bootstraps
// its own schema format, the same way lua-protobuf's Lua-level
// `pb.loadfile`/`pb.load` walk the wire format of the descriptor
// messages by hand rather than linking against a descriptor schema.
package descriptor

import (
	"fmt"

	"github.com/dynproto/dynproto/internal/schema"
	"github.com/dynproto/dynproto/internal/wire"
)

// Error reports a failure to load a descriptor set, with the absolute
// byte offset (from the start of the FileDescriptorSet bytes) at which
// parsing stopped.
type Error struct {
	Offset int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("dynproto: malformed descriptor at offset %d: %s", e.Offset, e.Msg)
}

func fail(root, cur wire.Slice, msg string) error {
	return &Error{Offset: wire.Offset(root, cur), Msg: msg}
}

// Load parses a FileDescriptorSet from data and populates reg with the
// types and fields it describes, returning the number of bytes
// consumed (always len(data) on success, since FileDescriptorSet is the
// outermost message and nothing follows it).
//
// Unknown tags, at any nesting level, are skipped; malformed input (a
// truncated varint, a length prefix exceeding what remains, or a
// `group` type where a real field type is expected) fails the whole
// load and reports the byte offset at which parsing stopped. A field
// whose descriptor fails is never inserted. A message or enum type is
// registered as soon as its name has been read, so a type whose body
// fails part-way stays in the registry with the fields loaded before
// the failure; it is not removed. Anything already committed for
// earlier files/messages in the same set also remains.
func Load(reg *schema.Registry, data []byte) (int, error) {
	root := wire.Of(data)
	s := root
	for !s.Empty() {
		v, ok := wire.ReadValue(&s)
		if !ok {
			return wire.Offset(root, s), fail(root, s, "truncated FileDescriptorSet")
		}
		if v.Number == 1 && v.Type == wire.Bytes {
			if err := loadFile(reg, root, v.Payload); err != nil {
				return wire.Offset(root, s), err
			}
		}
		// Unknown top-level tags are simply not a FileDescriptorSet.file
		// entry and are ignored; ReadValue already advanced past them.
	}
	return len(data), nil
}

// loadFile parses one FileDescriptorProto.
func loadFile(reg *schema.Registry, root, body wire.Slice) error {
	s := body
	var pkg string
	// Two passes would let us see `package` regardless of field order,
	// but FileDescriptorProto always writes package (tag 2) before any
	// message_type/enum_type/extension in practice, and the loader is
	// happy to require that here, same as lua-protobuf.
	for !s.Empty() {
		v, ok := wire.ReadValue(&s)
		if !ok {
			return fail(root, s, "truncated FileDescriptorProto")
		}
		switch {
		case v.Number == 2 && v.Type == wire.Bytes:
			pkg = v.Payload.String()
		case v.Number == 4 && v.Type == wire.Bytes:
			if err := loadMessage(reg, root, pkg, v.Payload); err != nil {
				return err
			}
		case v.Number == 5 && v.Type == wire.Bytes:
			if err := loadEnum(reg, root, pkg, v.Payload); err != nil {
				return err
			}
		case v.Number == 7 && v.Type == wire.Bytes:
			if err := loadField(reg, root, nil, v.Payload); err != nil {
				return err
			}
		}
	}
	return nil
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// loadMessage parses one DescriptorProto, creating or continuing to
// populate the Type named qualify(prefix, name).
func loadMessage(reg *schema.Registry, root wire.Slice, prefix string, body wire.Slice) error {
	// DescriptorProto.name must be read before we can register the
	// type, but field/nested_type/enum_type entries can't be processed
	// until we know the type they belong to, so do a first pass just
	// for the name, then a second pass for everything else. This
	// mirrors the ordering protoc always emits (name first), though this
	// code doesn't actually rely on that ordering.
	name := protoName(body)
	if name == "" {
		return fail(root, body, "DescriptorProto missing name")
	}
	qname := qualify(prefix, name)
	t := reg.NewType(qname)
	t.IsExt = false

	s := body
	for !s.Empty() {
		v, ok := wire.ReadValue(&s)
		if !ok {
			return fail(root, s, "truncated DescriptorProto")
		}
		switch {
		case v.Number == 2 && v.Type == wire.Bytes:
			if err := loadField(reg, root, t, v.Payload); err != nil {
				return err
			}
		case v.Number == 3 && v.Type == wire.Bytes:
			if err := loadMessage(reg, root, qname, v.Payload); err != nil {
				return err
			}
		case v.Number == 4 && v.Type == wire.Bytes:
			if err := loadEnum(reg, root, qname, v.Payload); err != nil {
				return err
			}
		case v.Number == 6 && v.Type == wire.Bytes:
			if err := loadField(reg, root, nil, v.Payload); err != nil {
				return err
			}
		}
	}

	if isMapEntryCandidate(t) {
		t.IsMap = true
	}
	return nil
}

// isMapEntryCandidate approximates DescriptorProto.options.map_entry:
// rather than decode the options submessage (whose map_entry flag lives
// at a tag this loader doesn't otherwise track), a synthetic map-entry
// type is recognized structurally, the way lua-protobuf's runtime does:
// exactly two fields, numbered 1 (key) and 2 (value), named "key" and
// "value". Real user messages essentially never coincide with this
// shape by accident.
func isMapEntryCandidate(t *schema.Type) bool {
	if t.FieldCount != 2 {
		return false
	}
	key, hasKey := t.GetFieldByName("key")
	value, hasValue := t.GetFieldByName("value")
	return hasKey && hasValue && key.Number == 1 && value.Number == 2
}

// protoName scans body for the `name` string field (tag 1) without
// otherwise interpreting it; used to learn a message/enum's name before
// its Type can be created.
func protoName(body wire.Slice) string {
	s := body
	for !s.Empty() {
		v, ok := wire.ReadValue(&s)
		if !ok {
			return ""
		}
		if v.Number == 1 && v.Type == wire.Bytes {
			return v.Payload.String()
		}
	}
	return ""
}

// loadEnum parses one EnumDescriptorProto.
func loadEnum(reg *schema.Registry, root wire.Slice, prefix string, body wire.Slice) error {
	name := protoName(body)
	if name == "" {
		return fail(root, body, "EnumDescriptorProto missing name")
	}
	qname := qualify(prefix, name)
	t := reg.NewType(qname)
	t.IsEnum = true

	s := body
	for !s.Empty() {
		v, ok := wire.ReadValue(&s)
		if !ok {
			return fail(root, s, "truncated EnumDescriptorProto")
		}
		if v.Number == 2 && v.Type == wire.Bytes {
			if err := loadEnumValue(reg, root, t, v.Payload); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadEnumValue(reg *schema.Registry, root wire.Slice, t *schema.Type, body wire.Slice) error {
	var name string
	var number uint32
	s := body
	for !s.Empty() {
		v, ok := wire.ReadValue(&s)
		if !ok {
			return fail(root, s, "truncated EnumValueDescriptorProto")
		}
		switch {
		case v.Number == 1 && v.Type == wire.Bytes:
			name = v.Payload.String()
		case v.Number == 2 && v.Type == wire.Varint:
			number = uint32(v.Varint)
		}
	}
	if name == "" {
		return fail(root, body, "EnumValueDescriptorProto missing name")
	}
	f := reg.NewField(t, name, number)
	f.TypeID = schema.TEnum
	return nil
}

// loadField parses one FieldDescriptorProto. If extendee is non-empty,
// the field is attached to the named extendee type (creating a stub for
// it if it hasn't been defined yet) instead of to owner.
func loadField(reg *schema.Registry, root wire.Slice, owner *schema.Type, body wire.Slice) error {
	var (
		name, typeName, defaultValue, extendee string
		number                                 uint32
		label                                  uint32
		typ                                     uint32
		packed                                  bool
		sawPacked                               bool
	)

	s := body
	for !s.Empty() {
		v, ok := wire.ReadValue(&s)
		if !ok {
			return fail(root, s, "truncated FieldDescriptorProto")
		}
		switch {
		case v.Number == 1 && v.Type == wire.Bytes:
			name = v.Payload.String()
		case v.Number == 2 && v.Type == wire.Bytes:
			extendee = v.Payload.String()
		case v.Number == 3 && v.Type == wire.Varint:
			number = uint32(v.Varint)
		case v.Number == 4 && v.Type == wire.Varint:
			label = uint32(v.Varint)
		case v.Number == 5 && v.Type == wire.Varint:
			typ = uint32(v.Varint)
		case v.Number == 6 && v.Type == wire.Bytes:
			tn := v.Payload.String()
			typeName = trimLeadingDot(tn)
		case v.Number == 7 && v.Type == wire.Bytes:
			defaultValue = v.Payload.String()
		case v.Number == 8 && v.Type == wire.Bytes:
			p, ok := parsePacked(v.Payload)
			if ok {
				packed, sawPacked = p, true
			}
		}
	}

	if name == "" {
		return fail(root, body, "FieldDescriptorProto missing name")
	}
	if schema.ProtoType(typ) == schema.TGroup {
		return fail(root, body, "group fields are not supported (field "+name+")")
	}

	target := owner
	if extendee != "" {
		qname := trimLeadingDot(extendee)
		_, hadDefinition := reg.GetType(qname)
		target = reg.NewType(qname)
		if !hadDefinition {
			// Nothing named qname existed yet: this extension is the
			// first thing to mention it, so it's a forward reference.
			// Mark it a stub until a real DescriptorProto for it loads
			// and clears the flag (see loadMessage).
			target.IsExt = true
		}
	}
	if target == nil {
		return fail(root, body, "field "+name+" has no owning message")
	}

	f := reg.NewField(target, name, number)
	f.TypeID = schema.ProtoType(typ)
	f.Repeated = label == 3
	f.Default = defaultValue
	if sawPacked {
		f.Packed = packed
	}
	if typeName != "" {
		f.Ref = reg.NewType(typeName)
	}
	return nil
}

func trimLeadingDot(s string) string {
	if len(s) > 0 && s[0] == '.' {
		return s[1:]
	}
	return s
}

// parsePacked reads FieldOptions looking only for `packed` (tag 2,
// varint); every other field of FieldOptions is ignored.
func parsePacked(body wire.Slice) (packed, ok bool) {
	s := body
	for !s.Empty() {
		v, readOK := wire.ReadValue(&s)
		if !readOK {
			return false, false
		}
		if v.Number == 2 && v.Type == wire.Varint {
			return v.Varint != 0, true
		}
	}
	return false, false
}
