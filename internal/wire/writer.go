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

// AppendVarint appends n as a canonical base-128 varint: the minimum
// number of bytes, with the continuation bit set on every byte but the
// last. A value of 0 is emitted as a single 0x00 byte.
func AppendVarint(b *Buffer, n uint64) {
	for n >= 0x80 {
		b.AppendByte(byte(n) | 0x80)
		n >>= 7
	}
	b.AppendByte(byte(n))
}

// VarintLen returns the number of bytes AppendVarint would emit for n,
// without writing anything.
func VarintLen(n uint64) int {
	l := 1
	for n >= 0x80 {
		l++
		n >>= 7
	}
	return l
}

// AppendFixed32 appends a little-endian 32-bit word.
func AppendFixed32(b *Buffer, n uint32) {
	var buf [4]byte
	buf[0] = byte(n)
	buf[1] = byte(n >> 8)
	buf[2] = byte(n >> 16)
	buf[3] = byte(n >> 24)
	b.Append(buf[:])
}

// AppendFixed64 appends a little-endian 64-bit word.
func AppendFixed64(b *Buffer, n uint64) {
	var buf [8]byte
	buf[0] = byte(n)
	buf[1] = byte(n >> 8)
	buf[2] = byte(n >> 16)
	buf[3] = byte(n >> 24)
	buf[4] = byte(n >> 32)
	buf[5] = byte(n >> 40)
	buf[6] = byte(n >> 48)
	buf[7] = byte(n >> 56)
	b.Append(buf[:])
}

// AppendTag appends the (field number, wiretype) key.
func AppendTag(b *Buffer, number uint32, wt WireType) {
	AppendVarint(b, Tag(number, wt))
}

// AppendBytes appends a varint length prefix followed by p's raw bytes.
func AppendBytes(b *Buffer, p []byte) {
	AppendVarint(b, uint64(len(p)))
	b.Append(p)
}

// Mark records the current end of b, to be passed to InsertLength once
// the caller has written a submessage or packed-field body whose length
// wasn't known up front.
func Mark(b *Buffer) int { return b.Len() }

// InsertLength computes body_len = b.Len() - mark and inserts its
// canonical varint encoding at offset mark, shifting the body forward.
// This is the single place a growable buffer needs mid-buffer insertion:
// protobuf submessages and packed fields are length-prefixed, but the
// length is only known after the body has been written.
func InsertLength(b *Buffer, mark int) {
	bodyLen := b.Len() - mark
	var lenBuf Buffer
	AppendVarint(&lenBuf, uint64(bodyLen))
	b.InsertAt(mark, lenBuf.Bytes())
}
