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

// Package wire implements the protobuf wire format: varints, fixed-width
// integers, length-delimited bytes, and the tag/wiretype framing, plus the
// zigzag and IEEE-754 bit-cast conversions layered on top of it.
//
// Every reader in this package takes a *Slice and either advances it past
// the value it read, or leaves it untouched and reports failure. Nothing
// here allocates on the read path; a Slice never copies the bytes it views.
package wire

// Slice is an immutable view into bytes owned by someone else. It never
// allocates and never copies; sub-slices taken from it (via ReadBytes, for
// example) alias the same backing array.
//
// The zero Slice is empty.
type Slice struct {
	p, end int
	data   []byte
}

// Of returns a Slice over the whole of b. b is not copied; the caller must
// keep it alive for as long as the Slice (or any sub-slice taken from it)
// is in use.
func Of(b []byte) Slice {
	return Slice{p: 0, end: len(b), data: b}
}

// OfString is like Of, but for a string. The string's bytes are copied
// into a fresh []byte, so the Slice does not alias s.
func OfString(s string) Slice {
	return Of([]byte(s))
}

// Len returns the number of unread bytes remaining in s.
func (s Slice) Len() int { return s.end - s.p }

// Empty reports whether s has no unread bytes left.
func (s Slice) Empty() bool { return s.p >= s.end }

// Bytes returns the unread portion of s as a []byte. The returned slice
// aliases s's backing array; callers must not mutate it.
func (s Slice) Bytes() []byte { return s.data[s.p:s.end] }

// String is like Bytes, but returns a string. Unlike Bytes it copies the
// unread portion, so the result does not alias the backing array;
// callers on the hot path should prefer Bytes.
func (s Slice) String() string { return string(s.Bytes()) }

// At returns the byte at the given offset from the current read position,
// without advancing it. Panics if i is out of range.
func (s Slice) At(i int) byte { return s.data[s.p+i] }

// Offset returns how many bytes have been consumed from original up to
// cur's current read position. Both must derive from the same root
// slice (cur obtained from original via reads/sub-slicing); used to
// report the absolute byte offset of a parse failure.
func Offset(original, cur Slice) int {
	return cur.p - original.p
}

// advance consumes n bytes from the front of s and returns them as a
// sub-slice. Caller must have already checked n <= s.Len().
func (s *Slice) advance(n int) Slice {
	sub := Slice{p: s.p, end: s.p + n, data: s.data}
	s.p += n
	return sub
}

// Seek returns a view into root's backing bytes starting pos bytes past
// root's own start and extending to root's end, for callers (the
// format-string unpacker's `*`/`+`/`-` seek operators) that need to
// reposition a cursor by absolute or relative offset rather than by
// reading values off the front.
func Seek(root Slice, pos int) Slice {
	return Slice{p: root.p + pos, end: root.end, data: root.data}
}
