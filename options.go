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

// defaultMaxDepth is the nesting-level guard applied to both Encode and
// Decode unless overridden: 100 levels of message-in-message-in-...
const defaultMaxDepth = 100

// DecodeOption configures a call to [Decode]. Expressed as a struct
// wrapping a closure, rather than a bare function type, so options stay
// individually documentable.
type DecodeOption struct{ apply func(*decodeOptions) }

type decodeOptions struct {
	enumAsValue bool
	maxDepth    int
}

func defaultDecodeOptions() decodeOptions {
	return decodeOptions{maxDepth: defaultMaxDepth}
}

// WithEnumAsValue controls how Decode reports enum-typed fields. When
// set, the decoded value is the raw integer; when unset (the default),
// the decoder looks up the value's name in the enum type and reports
// that instead, falling back to the integer if the value is unknown to
// the schema.
func WithEnumAsValue(v bool) DecodeOption {
	return DecodeOption{func(o *decodeOptions) { o.enumAsValue = v }}
}

// WithMaxDepth overrides the default 100-level nesting guard for a
// single Decode call. Raising it admits deeper message nesting at the
// cost of a larger stack on hostile input.
func WithMaxDepth(depth int) DecodeOption {
	return DecodeOption{func(o *decodeOptions) { o.maxDepth = depth }}
}

// EncodeOption configures a call to [Encode].
type EncodeOption struct{ apply func(*encodeOptions) }

type encodeOptions struct {
	maxDepth int
}

func defaultEncodeOptions() encodeOptions {
	return encodeOptions{maxDepth: defaultMaxDepth}
}

// WithEncodeMaxDepth overrides the default 100-level nesting guard for a
// single Encode call.
func WithEncodeMaxDepth(depth int) EncodeOption {
	return EncodeOption{func(o *encodeOptions) { o.maxDepth = depth }}
}
