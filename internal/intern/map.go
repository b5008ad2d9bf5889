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

// Package intern implements the open-addressed hash map used throughout
// the schema registry: Brent's variant, chained via relative slot
// offsets within a single power-of-two array, keyed by either a small
// integer (a field tag or enum value) or a string (a field or type
// name).
//
// This is a direct port of lua-protobuf's pb_Map (pbM_* functions in
// pb.h): main-position-preferring insertion, a free list scanned from
// the high end of the array downward, and the same collision-relocation
// rule. The one structural change from the original is the empty-slot
// sentinel: the C implementation uses key == 0 to mean "empty", which
// happens to work there because pointers and tags are never zero, but
// this map is also used to index enum values by number and proto3
// requires the first enum value to be 0, so an explicit `used` flag
// replaces the zero-key sentinel.
package intern

// Map associates either a uint64 or a string with a value of type V,
// using Brent's variant of open addressing.
type Map[V any] struct {
	slots    []slot[V]
	lastFree int // slots[:lastFree] may still contain free entries
	count    int
}

type slot[V any] struct {
	used  bool
	next  int32 // relative offset in slots to the next entry in the chain; 0 = end
	hash  uint32
	ikey  uint64
	skey  string
	value V
}

// minSize mirrors lua-protobuf's PB_MIN_HASHSIZE.
const minSize = 8

// hashLimit mirrors PB_HASHLIMIT: strings longer than 1<<hashLimit bytes
// are sampled rather than walked in full.
const hashLimit = 5

// Len returns the number of entries stored.
func (m *Map[V]) Len() int { return m.count }

// HashString computes the sampled FNV-like mix used for string keys.
// Always returns a nonzero value, since 0 is reserved to mean
// "integer-keyed" in the entry's hash field.
func HashString(s string) uint32 {
	n := len(s)
	step := (n >> hashLimit) + 1
	h := uint32(n)
	for l1 := n; l1 >= step; l1 -= step {
		h ^= (h << 5) + (h >> 2) + uint32(s[l1-1])
	}
	if h == 0 {
		h = 1
	}
	return h
}

func mainPosition(size int, hash uint32, ikey uint64) int {
	if hash == 0 {
		return int(ikey) & (size - 1)
	}
	return int(hash) & (size - 1)
}

func (m *Map[V]) mainPositionOf(e *slot[V]) int {
	return mainPosition(len(m.slots), e.hash, e.ikey)
}

// GetInt looks up a value stored under an integer key.
func (m *Map[V]) GetInt(key uint64) (V, bool) {
	var zero V
	if len(m.slots) == 0 {
		return zero, false
	}
	i := mainPosition(len(m.slots), 0, key)
	for {
		e := &m.slots[i]
		if !e.used {
			return zero, false
		}
		if e.hash == 0 && e.ikey == key {
			return e.value, true
		}
		if e.next == 0 {
			return zero, false
		}
		i += int(e.next)
	}
}

// GetString looks up a value stored under a string key.
func (m *Map[V]) GetString(key string) (V, bool) {
	var zero V
	if len(m.slots) == 0 {
		return zero, false
	}
	hash := HashString(key)
	i := mainPosition(len(m.slots), hash, 0)
	for {
		e := &m.slots[i]
		if !e.used {
			return zero, false
		}
		if e.hash == hash && e.skey == key {
			return e.value, true
		}
		if e.next == 0 {
			return zero, false
		}
		i += int(e.next)
	}
}

// SetInt inserts or updates the value stored under an integer key,
// returning the previous value and whether one existed.
func (m *Map[V]) SetInt(key uint64, value V) (prev V, existed bool) {
	if len(m.slots) > 0 {
		i := mainPosition(len(m.slots), 0, key)
		for {
			e := &m.slots[i]
			if !e.used {
				break
			}
			if e.hash == 0 && e.ikey == key {
				prev, existed = e.value, true
				e.value = value
				return prev, existed
			}
			if e.next == 0 {
				break
			}
			i += int(e.next)
		}
	}
	i := m.newKey(0, key, "")
	m.slots[i].value = value
	return prev, false
}

// SetString inserts or updates the value stored under a string key.
func (m *Map[V]) SetString(key string, value V) (prev V, existed bool) {
	hash := HashString(key)
	if len(m.slots) > 0 {
		i := mainPosition(len(m.slots), hash, 0)
		for {
			e := &m.slots[i]
			if !e.used {
				break
			}
			if e.hash == hash && e.skey == key {
				prev, existed = e.value, true
				e.value = value
				return prev, existed
			}
			if e.next == 0 {
				break
			}
			i += int(e.next)
		}
	}
	i := m.newKey(hash, 0, key)
	m.slots[i].value = value
	return prev, false
}

// DeleteInt removes the entry stored under an integer key, if any.
func (m *Map[V]) DeleteInt(key uint64) (V, bool) {
	return m.delete(0, key, "")
}

// DeleteString removes the entry stored under a string key, if any.
func (m *Map[V]) DeleteString(key string) (V, bool) {
	return m.delete(HashString(key), 0, key)
}

func (m *Map[V]) delete(hash uint32, ikey uint64, skey string) (V, bool) {
	var zero V
	if len(m.slots) == 0 {
		return zero, false
	}
	prev := -1
	i := mainPosition(len(m.slots), hash, ikey)
	for {
		e := &m.slots[i]
		if !e.used {
			return zero, false
		}
		match := e.hash == hash && ((hash == 0 && e.ikey == ikey) || (hash != 0 && e.skey == skey))
		if match {
			v := e.value
			// Keep the rest of the chain reachable: unlink e from its
			// predecessor, or, if e heads the chain, pull its successor
			// into the main position.
			hole := i
			if prev >= 0 {
				if e.next != 0 {
					m.slots[prev].next += e.next
				} else {
					m.slots[prev].next = 0
				}
			} else if e.next != 0 {
				hole = i + int(e.next)
				m.slots[i] = m.slots[hole]
				if m.slots[hole].next != 0 {
					m.slots[i].next += int32(hole - i)
				}
			}
			m.slots[hole] = slot[V]{}
			m.count--
			return v, true
		}
		if e.next == 0 {
			return zero, false
		}
		prev = i
		i += int(e.next)
	}
}

// newKey implements pbM_newkey: find a slot for a brand-new key (caller
// has already established it isn't present), inserting at its main
// position, relocating a misplaced occupant if necessary, and returns
// the index holding the new entry's non-value fields populated.
func (m *Map[V]) newKey(hash uint32, ikey uint64, skey string) int {
	if len(m.slots) == 0 {
		m.resize(minSize)
	}
redo:
	mp := mainPosition(len(m.slots), hash, ikey)
	if m.slots[mp].used {
		free := -1
		for m.lastFree > 0 {
			m.lastFree--
			if !m.slots[m.lastFree].used {
				free = m.lastFree
				break
			}
		}
		if free == -1 {
			m.resize(len(m.slots) * 2)
			goto redo
		}

		othern := mainPosition(len(m.slots), m.slots[mp].hash, m.slots[mp].ikey)
		if othern != mp {
			// The occupant of mp is not at its own main position (it's
			// a link in someone else's chain); walk that chain to find
			// its predecessor and relink it through the free slot.
			p := othern
			for p+int(m.slots[p].next) != mp {
				p += int(m.slots[p].next)
			}
			m.slots[p].next = int32(free - p)
			m.slots[free] = m.slots[mp]
			if m.slots[mp].next != 0 {
				m.slots[free].next += int32(mp - free)
			}
		} else {
			// The occupant belongs here; push the new entry into the
			// free slot and link it into mp's chain. free.next was just
			// set to continue whatever chain used to run past mp, so
			// only the key fields are set below; a full struct-literal
			// write here would clobber that link back to zero.
			if m.slots[mp].next != 0 {
				m.slots[free].next = int32((mp + int(m.slots[mp].next)) - free)
			}
			m.slots[mp].next = int32(free - mp)
			m.slots[free].used = true
			m.slots[free].hash = hash
			m.slots[free].ikey = ikey
			m.slots[free].skey = skey
			m.count++
			return free
		}
	}
	m.slots[mp] = slot[V]{used: true, hash: hash, ikey: ikey, skey: skey}
	m.count++
	return mp
}

func (m *Map[V]) resize(newSize int) {
	size := minSize
	for size < newSize {
		size <<= 1
	}
	old := m.slots
	m.slots = make([]slot[V], size)
	m.lastFree = size
	m.count = 0
	for i := range old {
		if old[i].used {
			idx := m.newKey(old[i].hash, old[i].ikey, old[i].skey)
			m.slots[idx].value = old[i].value
		}
	}
}

// Iterator walks every present entry in slot order. Slot order is an
// implementation artifact, not insertion order; callers that need
// deterministic iteration must sort the entries themselves (the schema
// registry's cursors, see schema.Registry.IterTypes, pass slot order
// through unsorted).
type Iterator[V any] struct {
	m *Map[V]
	i int
}

// Iterate returns a fresh iterator positioned before the first entry.
func (m *Map[V]) Iterate() Iterator[V] { return Iterator[V]{m: m} }

// Next advances the iterator, returning the next present entry. ok is
// false once iteration is exhausted.
func (it *Iterator[V]) Next() (isString bool, ikey uint64, skey string, value V, ok bool) {
	for it.i < len(it.m.slots) {
		e := &it.m.slots[it.i]
		it.i++
		if e.used {
			return e.hash != 0, e.ikey, e.skey, e.value, true
		}
	}
	var zero V
	return false, 0, "", zero, false
}
