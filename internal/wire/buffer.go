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

package wire

// inlineCap is the size of a Buffer's inline storage, chosen to match
// lua-protobuf's PB_BUFFERSIZE (512 minus its struct header); most
// encoded messages this codec deals with fit comfortably inside it,
// avoiding a heap allocation for the common case.
const inlineCap = 480

// Buffer is a growable, owned byte buffer used to accumulate encoded
// output. Small buffers live entirely inline (no heap allocation); once a
// Buffer outgrows its inline storage it migrates to a heap slice and
// doubles capacity on each subsequent growth.
//
// The zero Buffer is empty and ready to use.
type Buffer struct {
	inline [inlineCap]byte
	data   []byte // nil until the buffer outgrows inline storage
	size   int
}

// Len returns the number of bytes written to b so far.
func (b *Buffer) Len() int { return b.size }

// Reset truncates b to zero length without releasing its heap storage (if
// any), so that it can be reused for another encode without reallocating.
func (b *Buffer) Reset() { b.size = 0 }

// Bytes returns the bytes written to b so far. The returned slice aliases
// b's storage and is only valid until the next call that mutates b.
func (b *Buffer) Bytes() []byte {
	if b.data != nil {
		return b.data[:b.size]
	}
	return b.inline[:b.size]
}

// storage returns the full backing array, regardless of where it lives.
func (b *Buffer) storage() []byte {
	if b.data != nil {
		return b.data
	}
	return b.inline[:]
}

// cap returns the current capacity, inline or heap.
func (b *Buffer) cap() int {
	if b.data != nil {
		return cap(b.data)
	}
	return inlineCap
}

// grow ensures at least n more bytes can be written without reallocating
// again immediately, migrating off inline storage and doubling as needed.
func (b *Buffer) grow(n int) {
	need := b.size + n
	if need <= b.cap() {
		return
	}
	newCap := b.cap() * 2
	if newCap < need {
		newCap = need
	}
	fresh := make([]byte, newCap)
	copy(fresh, b.storage()[:b.size])
	b.data = fresh
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.grow(1)
	s := b.storage()
	s[b.size] = c
	b.size++
}

// Append appends p verbatim.
func (b *Buffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.grow(len(p))
	s := b.storage()
	copy(s[b.size:], p)
	b.size += len(p)
}

// AppendString appends s verbatim.
func (b *Buffer) AppendString(s string) {
	b.Append([]byte(s))
}

// Reserve grows b by n zero bytes and returns their offset, for callers
// that want to fill them in-place afterwards.
func (b *Buffer) Reserve(n int) int {
	b.grow(n)
	at := b.size
	s := b.storage()
	for i := 0; i < n; i++ {
		s[at+i] = 0
	}
	b.size += n
	return at
}

// InsertAt inserts p into b at byte offset at, shifting everything from at
// onward forward by len(p). at must be <= b.Len().
func (b *Buffer) InsertAt(at int, p []byte) {
	if len(p) == 0 {
		return
	}
	b.grow(len(p))
	s := b.storage()
	copy(s[at+len(p):b.size+len(p)], s[at:b.size])
	copy(s[at:], p)
	b.size += len(p)
}

// Truncate drops everything from offset at onward.
func (b *Buffer) Truncate(at int) {
	if at < b.size {
		b.size = at
	}
}
