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
	"sync"

	"github.com/dynproto/dynproto/internal/descriptor"
	"github.com/dynproto/dynproto/internal/schema"
)

// Registry holds the schema state a codec instance operates against:
// every Type and Field loaded so far, keyed by qualified name. It has
// no internal locking: a Registry may be shared by concurrent readers
// only while no Load/NewType/NewField/Del* call is in flight; the host
// serializes writers itself.
type Registry struct {
	reg *schema.Registry
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{reg: schema.NewRegistry()}
}

// Load parses data as a serialized FileDescriptorSet and merges the
// types and fields it describes into r, returning the number of bytes
// consumed. Load may be called repeatedly on the same Registry; later
// calls can extend types created by earlier ones (forward references
// and extensions resolve across calls, not just within one).
func (r *Registry) Load(data []byte) (int, error) {
	return descriptor.Load(r.reg, data)
}

// Type looks up a type by fully qualified name, accepting an optional
// leading dot.
func (r *Registry) Type(qname string) (*Type, bool) {
	return r.reg.GetType(qname)
}

// NewType interns qname and returns its Type descriptor, creating an
// empty one if it doesn't already exist. Mostly useful for building a
// schema programmatically (e.g. in tests) rather than via Load.
func (r *Registry) NewType(qname string) *Type {
	return r.reg.NewType(qname)
}

// NewField allocates a field on t, interning name. See
// [schema.Registry.NewField] for the bijection guarantee this
// maintains between tag and name indices.
func (r *Registry) NewField(t *Type, name string, number uint32) *Field {
	return r.reg.NewField(t, name, number)
}

// DelType removes a type from the registry and frees its storage.
func (r *Registry) DelType(qname string) { r.reg.DelType(qname) }

// DelField removes a field from t by name and frees its storage.
func (r *Registry) DelField(t *Type, name string) { r.reg.DelField(t, name) }

// TypeIter is a restartable cursor over every Type in a Registry.
type TypeIter struct{ it *schema.TypeIter }

// Next advances the cursor. ok is false once iteration is exhausted.
func (it *TypeIter) Next() (name string, t *Type, ok bool) { return it.it.Next() }

// IterTypes returns a cursor over every Type currently in r. Iteration
// order is the underlying hash map's slot order, not insertion order.
func (r *Registry) IterTypes() *TypeIter {
	return &TypeIter{it: r.reg.IterTypes()}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns a process-wide cached Registry, created on first use.
// This is a convenience for hosts that don't need more than one schema
// namespace; it is not part of the core model, which always takes an
// explicit Registry; nothing in this package uses Default() itself.
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = NewRegistry() })
	return defaultReg
}
