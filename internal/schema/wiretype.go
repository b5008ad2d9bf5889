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

package schema

import "github.com/dynproto/dynproto/internal/wire"

// WireType re-exports wire.WireType so callers of this package don't
// need to import internal/wire just to compare a Field's wire encoding.
type WireType = wire.WireType

// wireTypeOf implements pb_wiretype from lua-protobuf's pb.h: the
// mapping from a declared protobuf type to the wire encoding it uses.
func wireTypeOf(t ProtoType) (WireType, bool) {
	switch t {
	case TBool, TInt32, TUint32, TEnum, TInt64, TUint64, TSint32, TSint64:
		return wire.Varint, true
	case TBytes, TString, TMessage, TGroup:
		return wire.Bytes, true
	case TFloat, TFixed32, TSfixed32:
		return wire.Fixed32, true
	case TDouble, TFixed64, TSfixed64:
		return wire.Fixed64, true
	default:
		return 0, false
	}
}
