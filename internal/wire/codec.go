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

// WireType is the 3-bit payload-framing discriminator packed into the low
// bits of every protobuf key.
type WireType uint8

const (
	Varint      WireType = 0
	Fixed64     WireType = 1
	Bytes       WireType = 2
	GroupStart  WireType = 3
	GroupEnd    WireType = 4
	Fixed32     WireType = 5
	wireTypeMax WireType = 6
)

func (w WireType) Valid() bool { return w < wireTypeMax }

// Tag packs a field number and wiretype into the varint key written before
// every field's payload.
func Tag(number uint32, wt WireType) uint64 {
	return uint64(number)<<3 | uint64(wt&7)
}

// SplitTag unpacks a key read via ReadVarint into its field number and
// wiretype.
func SplitTag(key uint64) (number uint32, wt WireType) {
	return uint32(key >> 3), WireType(key & 7)
}

// maxVarintLen is the longest a base-128 varint can be: ceil(64/7).
const maxVarintLen = 10

// ReadVarint reads a base-128 little-endian varint from the front of s,
// advancing s past it. Fails (ok=false, s unchanged) if s ends mid-varint
// or the varint would exceed 10 bytes.
//
// Two paths: a fast path when at least maxVarintLen bytes remain (so we
// never need to bounds-check mid-loop), and a slow, byte-at-a-time path
// for short or ragged tails.
func ReadVarint(s *Slice) (v uint64, ok bool) {
	if s.Len() >= maxVarintLen {
		return readVarintFast(s)
	}
	return readVarintSlow(s)
}

func readVarintFast(s *Slice) (uint64, bool) {
	b := s.data[s.p:]
	var v uint64
	for i := 0; i < maxVarintLen; i++ {
		c := b[i]
		if i == maxVarintLen-1 && c > 1 {
			// The 10th byte of a valid varint encoding a uint64 can only
			// carry the top bit of the 64-bit value, so it must be 0 or 1.
			return 0, false
		}
		v |= uint64(c&0x7f) << (7 * i)
		if c < 0x80 {
			s.p += i + 1
			return v, true
		}
	}
	return 0, false
}

func readVarintSlow(s *Slice) (uint64, bool) {
	var v uint64
	for i := 0; i < maxVarintLen && s.p+i < s.end; i++ {
		c := s.data[s.p+i]
		if i == maxVarintLen-1 && c > 1 {
			return 0, false
		}
		v |= uint64(c&0x7f) << (7 * i)
		if c < 0x80 {
			s.p += i + 1
			return v, true
		}
	}
	return 0, false
}

// maxVarint32Len is the longest a 32-bit varint can legally be.
const maxVarint32Len = 5

// ReadVarint32 is like ReadVarint but caps at 5 bytes, truncating the
// result to 32 bits. A varint longer than 5 bytes fails here, including
// the 10-byte sign-extended form protobuf uses for a negative int32;
// ReadVarint reads those.
func ReadVarint32(s *Slice) (v uint32, ok bool) {
	save := *s
	raw, ok := readVarintN(s, maxVarint32Len)
	if !ok {
		*s = save
		return 0, false
	}
	return uint32(raw), true
}

func readVarintN(s *Slice, limit int) (uint64, bool) {
	var v uint64
	n := s.end - s.p
	if n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		c := s.data[s.p+i]
		v |= uint64(c&0x7f) << (7 * i)
		if c < 0x80 {
			s.p += i + 1
			return v, true
		}
	}
	return 0, false
}

// ReadFixed32 reads a little-endian 32-bit word.
func ReadFixed32(s *Slice) (uint32, bool) {
	if s.Len() < 4 {
		return 0, false
	}
	b := s.data[s.p:]
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	s.p += 4
	return v, true
}

// ReadFixed64 reads a little-endian 64-bit word.
//
// The boundary check is len(s) < 8, i.e. it fails whenever fewer than 8
// bytes remain. An earlier drop of this codec used `<=`, an off-by-one
// that rejected slices with exactly 8 bytes left; that bug is not
// reproduced here.
func ReadFixed64(s *Slice) (uint64, bool) {
	if s.Len() < 8 {
		return 0, false
	}
	b := s.data[s.p:]
	v := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	s.p += 8
	return v, true
}

// ReadBytes reads a varint length followed by that many raw bytes,
// returning a Slice aliasing the source. Fails if the declared length
// exceeds what remains.
func ReadBytes(s *Slice) (Slice, bool) {
	save := *s
	n, ok := ReadVarint(s)
	if !ok || n > uint64(s.Len()) {
		*s = save
		return Slice{}, false
	}
	return s.advance(int(n)), true
}

// Value is the outcome of reading one (tag, payload) from the wire: the
// field number, its wiretype, and (for anything other than Varint,
// Fixed32 and Fixed64) the raw payload bytes.
type Value struct {
	Number  uint32
	Type    WireType
	Varint  uint64
	Payload Slice // valid when Type == Bytes or GroupStart
}

// ReadValue reads one key and dispatches to the appropriate payload
// reader for its wiretype. For GroupStart, it scans forward for the
// matching GroupEnd with the same field number (skipping nested groups),
// and Payload is set to the group's body.
func ReadValue(s *Slice) (Value, bool) {
	save := *s
	key, ok := ReadVarint(s)
	if !ok {
		*s = save
		return Value{}, false
	}
	number, wt := SplitTag(key)
	if !wt.Valid() {
		*s = save
		return Value{}, false
	}

	v := Value{Number: number, Type: wt}
	switch wt {
	case Varint:
		n, ok := ReadVarint(s)
		if !ok {
			*s = save
			return Value{}, false
		}
		v.Varint = n
	case Fixed32:
		n, ok := ReadFixed32(s)
		if !ok {
			*s = save
			return Value{}, false
		}
		v.Varint = uint64(n)
	case Fixed64:
		n, ok := ReadFixed64(s)
		if !ok {
			*s = save
			return Value{}, false
		}
		v.Varint = n
	case Bytes:
		b, ok := ReadBytes(s)
		if !ok {
			*s = save
			return Value{}, false
		}
		v.Payload = b
	case GroupStart:
		body, ok := readGroup(s, number)
		if !ok {
			*s = save
			return Value{}, false
		}
		v.Payload = body
	case GroupEnd:
		// A lone end-group marker with nothing to close is malformed.
		*s = save
		return Value{}, false
	}
	return v, true
}

// readGroup scans s for the GroupEnd matching number, skipping nested
// groups of any field number along the way, and returns the group body
// (everything between GroupStart's payload and the matching GroupEnd) as
// a slice aliasing s. s is left positioned just past the GroupEnd key.
// A number of 0 (never a valid field number) accepts the closing
// GroupEnd under any field number; skipPayload uses this, since it is
// not given the GroupStart key's number.
func readGroup(s *Slice, number uint32) (Slice, bool) {
	start := s.p
	depth := 1
	for {
		bodyEnd := s.p // position just before the next key
		key, ok := ReadVarint(s)
		if !ok {
			return Slice{}, false
		}
		n, wt := SplitTag(key)
		switch wt {
		case GroupStart:
			depth++
		case GroupEnd:
			depth--
			if depth == 0 {
				if number != 0 && n != number {
					return Slice{}, false
				}
				return Slice{p: start, end: bodyEnd, data: s.data}, true
			}
		default:
			if !skipPayload(s, wt) {
				return Slice{}, false
			}
		}
	}
}

// skipPayload advances s past the payload for a key already read with
// wiretype wt (used by both SkipValue and the group scanner).
func skipPayload(s *Slice, wt WireType) bool {
	switch wt {
	case Varint:
		_, ok := ReadVarint(s)
		return ok
	case Fixed32:
		_, ok := ReadFixed32(s)
		return ok
	case Fixed64:
		_, ok := ReadFixed64(s)
		return ok
	case Bytes:
		_, ok := ReadBytes(s)
		return ok
	case GroupStart:
		_, ok := readGroup(s, 0)
		return ok
	default:
		return false
	}
}

// SkipValue skips the payload for a key whose wiretype is already known
// (the key itself must already have been consumed).
func SkipValue(s *Slice, wt WireType) bool {
	return skipPayload(s, wt)
}
