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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZigZag32RoundTrip(t *testing.T) {
	for _, x := range []int32{0, 1, -1, 2, -2, math.MaxInt32, math.MinInt32} {
		require.Equal(t, x, DecodeZigZag32(EncodeZigZag32(x)))
	}
}

func TestZigZag64RoundTrip(t *testing.T) {
	for _, x := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
		require.Equal(t, x, DecodeZigZag64(EncodeZigZag64(x)))
	}
}

// sint32 = -2, tag 1 -> 08 03
func TestScenarioS3ZigZag(t *testing.T) {
	require.Equal(t, uint32(3), EncodeZigZag32(-2))
	var b Buffer
	AppendTag(&b, 1, Varint)
	AppendVarint(&b, uint64(EncodeZigZag32(-2)))
	require.Equal(t, []byte{0x08, 0x03}, b.Bytes())
}

func TestFloatBitCastRoundTrip(t *testing.T) {
	for _, f := range []float32{0, 1, -1, 3.14159, math.MaxFloat32} {
		require.Equal(t, f, DecodeFloat(EncodeFloat(f)))
	}
	// NaN preserves its bit pattern, not necessarily via == comparison.
	nan := float32(math.NaN())
	require.Equal(t, EncodeFloat(nan), EncodeFloat(DecodeFloat(EncodeFloat(nan))))
}

func TestDoubleBitCastRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1, -1, 2.71828182845904523536, math.MaxFloat64} {
		require.Equal(t, f, DecodeDouble(EncodeDouble(f)))
	}
}
