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

package schema

import (
	"strings"

	"github.com/dynproto/dynproto/internal/arena"
	"github.com/dynproto/dynproto/internal/debug"
	"github.com/dynproto/dynproto/internal/intern"
)

// Registry holds every Type and Field known to a codec instance: a
// string pool for interned names, pools for Type/Field descriptors, and
// a map from qualified name to Type. Grounded on lua-protobuf's
// pb_State (pb_init/pb_free/pb_newtype/pb_newfield/pb_type/pb_field/
// pb_fieldbytag in pb.h).
//
// A Registry has no internal locking: concurrent readers are safe only
// while no writer (Load, NewType, NewField, DelType, DelField) is in
// flight.
type Registry struct {
	strings stringPool
	types   arena.SlotPool[Type]
	fields  arena.SlotPool[Field]

	byName intern.Map[*Type] // qname -> *Type, the same Brent hash map design as Type.NameIndex
}

// stringPool wraps arena.Pool to give every interned name a stable home
// independent of whatever buffer the caller's descriptor bytes live in.
type stringPool struct{ pool arena.Pool }

func (s *stringPool) intern(str string) string { return s.pool.NewString(str) }

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewType interns qname and inserts an empty Type descriptor for it. If
// a Type already exists under that name, it is returned unchanged (the
// caller is expected to check IsExt/FieldCount to decide whether it
// still needs populating, see internal/descriptor's stub-then-merge
// handling of forward and extension references).
func (r *Registry) NewType(qname string) *Type {
	if t, ok := r.byName.GetString(qname); ok {
		return t
	}
	t := r.types.Alloc()
	name := r.strings.intern(qname)
	t.QName = name
	t.Base = basename(name)
	t.OneofIndex = make(map[*Field]OneofInfo)
	r.byName.SetString(name, t)
	return t
}

// basename returns the segment of a dotted qualified name after its
// last '.', matching lua-protobuf's pbT_getbasename.
func basename(qname string) string {
	if i := strings.LastIndexByte(qname, '.'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

// GetType looks up a Type by qualified name, stripping an optional
// leading dot first (so ".pkg.Msg" and "pkg.Msg" both resolve).
func (r *Registry) GetType(qname string) (*Type, bool) {
	qname = strings.TrimPrefix(qname, ".")
	return r.byName.GetString(qname)
}

// DelType removes t from the registry's name index and releases its
// descriptor storage. Any Field still referencing t as Ref becomes a
// dangling pointer; callers are responsible for not doing that.
func (r *Registry) DelType(qname string) {
	qname = strings.TrimPrefix(qname, ".")
	if _, ok := r.byName.GetString(qname); !ok {
		return
	}
	t, _ := r.byName.DeleteString(qname)
	r.types.Free(t)
}

// IterTypes returns a restartable cursor over every Type in the
// registry. Iteration order is the hash map's slot order, not insertion
// order: callers that need a specific order must sort.
func (r *Registry) IterTypes() *TypeIter {
	it := r.byName.Iterate()
	return &TypeIter{it: it}
}

// TypeIter is a cursor returned by Registry.IterTypes.
type TypeIter struct{ it intern.Iterator[*Type] }

// Next advances the cursor, returning the next Type and its qualified
// name. ok is false once iteration is exhausted.
func (ti *TypeIter) Next() (name string, t *Type, ok bool) {
	_, _, skey, v, present := ti.it.Next()
	if !present {
		return "", nil, false
	}
	return skey, v, true
}

// IterFields returns a restartable cursor over every field of t, in
// NameIndex slot order.
func (t *Type) IterFields() *FieldIter {
	it := t.NameIndex.Iterate()
	return &FieldIter{it: it}
}

// FieldIter is a cursor returned by Type.IterFields.
type FieldIter struct{ it intern.Iterator[*Field] }

// Next advances the cursor, returning the next field. ok is false once
// iteration is exhausted.
func (fi *FieldIter) Next() (f *Field, ok bool) {
	_, _, _, v, present := fi.it.Next()
	if !present {
		return nil, false
	}
	return v, true
}

// NewField allocates a field (or, for an enum Type, an enum value) named
// name with the given number, inserting it into both TagIndex and
// NameIndex.
//
// If either index already holds an entry under that tag or that name,
// the existing Field is evicted from both indices and returned to the
// field pool's free list. This is what keeps TagIndex and NameIndex
// bijective: a tag always maps to exactly one field, and vice versa.
func (r *Registry) NewField(t *Type, name string, number uint32) *Field {
	interned := r.strings.intern(name)

	if old, ok := t.NameIndex.GetString(interned); ok {
		r.evict(t, old)
	}
	if old, ok := t.TagIndex.GetInt(uint64(number)); ok {
		r.evict(t, old)
	}

	f := r.fields.Alloc()
	f.Name = interned
	f.Number = number

	t.TagIndex.SetInt(uint64(number), f)
	t.NameIndex.SetString(interned, f)
	t.FieldCount++

	if debug.Enabled {
		byTag, tagOK := t.TagIndex.GetInt(uint64(number))
		byName, nameOK := t.NameIndex.GetString(interned)
		debug.Assert(tagOK && byTag == f, "dynproto: field %q (tag %d) not reachable by tag after insert", interned, number)
		debug.Assert(nameOK && byName == f, "dynproto: field %q (tag %d) not reachable by name after insert", interned, number)
	}
	return f
}

// evict removes f from t's indices (wherever it's still reachable) and
// frees its storage.
func (r *Registry) evict(t *Type, f *Field) {
	name, number := f.Name, f.Number
	t.NameIndex.DeleteString(f.Name)
	t.TagIndex.DeleteInt(uint64(f.Number))
	delete(t.OneofIndex, f)
	t.FieldCount--
	r.fields.Free(f)

	if debug.Enabled {
		_, tagOK := t.TagIndex.GetInt(uint64(number))
		_, nameOK := t.NameIndex.GetString(name)
		debug.Assert(!tagOK, "dynproto: field %q (tag %d) still reachable by tag after evict", name, number)
		debug.Assert(!nameOK, "dynproto: field %q (tag %d) still reachable by name after evict", name, number)
	}
}

// DelField removes f from t's indices by name and frees its storage.
func (r *Registry) DelField(t *Type, name string) {
	f, ok := t.NameIndex.GetString(name)
	if !ok {
		return
	}
	r.evict(t, f)
}

// GetFieldByTag looks up a field by number (or, for an enum Type, an
// enum value by its number).
func (t *Type) GetFieldByTag(tag uint32) (*Field, bool) {
	return t.TagIndex.GetInt(uint64(tag))
}

// GetFieldByName looks up a field (or enum value) by name.
func (t *Type) GetFieldByName(name string) (*Field, bool) {
	return t.NameIndex.GetString(name)
}

// Intern exposes the registry's string pool so loaders and hosts can
// intern auxiliary strings (e.g. default values) with the same
// lifetime as the rest of the schema.
func (r *Registry) Intern(s string) string { return r.strings.intern(s) }
