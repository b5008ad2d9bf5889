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

import "math"

// EncodeFloat reinterprets a float32's IEEE-754 bit pattern as a uint32
// for writing as a Fixed32 payload. NaN payloads are preserved bit for
// bit (Go's math.Float32bits does not canonicalize NaNs).
func EncodeFloat(f float32) uint32 { return math.Float32bits(f) }

// DecodeFloat is the inverse of EncodeFloat.
func DecodeFloat(bits uint32) float32 { return math.Float32frombits(bits) }

// EncodeDouble reinterprets a float64's IEEE-754 bit pattern as a uint64
// for writing as a Fixed64 payload.
func EncodeDouble(f float64) uint64 { return math.Float64bits(f) }

// DecodeDouble is the inverse of EncodeDouble.
func DecodeDouble(bits uint64) float64 { return math.Float64frombits(bits) }
