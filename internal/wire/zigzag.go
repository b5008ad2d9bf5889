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

// EncodeZigZag32 maps a signed 32-bit value to an unsigned one such that
// small-magnitude values (positive or negative) produce small varints.
func EncodeZigZag32(x int32) uint32 {
	return (uint32(x) << 1) ^ uint32(x>>31)
}

// DecodeZigZag32 is the inverse of EncodeZigZag32.
func DecodeZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// EncodeZigZag64 is the 64-bit analogue of EncodeZigZag32.
func EncodeZigZag64(x int64) uint64 {
	return (uint64(x) << 1) ^ uint64(x>>63)
}

// DecodeZigZag64 is the inverse of EncodeZigZag64.
func DecodeZigZag64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// ExpandSign32 sign-extends a 32-bit signed value to 64 bits before it is
// written as a plain (non-zigzag) varint, which is how proto's int32 type
// ensures negative values round-trip: they deliberately take the full 10
// bytes on the wire.
func ExpandSign32(x int32) uint64 {
	return uint64(int64(x))
}
