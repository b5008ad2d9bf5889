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

import (
	"fmt"

	"github.com/dynproto/dynproto/internal/wire"
)

// Decode parses data against t, returning a populated [Message]. Fields
// whose tag isn't declared on t are skipped (their bytes are still
// consumed, so parsing continues correctly past them).
func Decode(t *Type, data []byte, opts ...DecodeOption) (*Message, error) {
	cfg := defaultDecodeOptions()
	for _, o := range opts {
		o.apply(&cfg)
	}

	root := wire.Of(data)
	cur := root
	msg := NewMessage(t)
	if err := decodeMessage(t, root, &cur, msg, 0, cfg); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeMessage(t *Type, root wire.Slice, cur *wire.Slice, sink ValueSink, depth int, cfg decodeOptions) error {
	if depth > cfg.maxDepth {
		return configErr(errCodeRecursionLimit, fmt.Sprintf("nesting exceeds %d levels", cfg.maxDepth))
	}

	for !cur.Empty() {
		before := *cur
		v, ok := wire.ReadValue(cur)
		if !ok {
			return parseErr(errCodeTruncated, wire.Offset(root, before), "")
		}
		f, ok := t.GetFieldByTag(v.Number)
		if !ok {
			continue
		}

		switch {
		case f.Ref != nil && f.Ref.IsMap:
			if v.Type != wire.Bytes {
				return parseErr(errCodeWiretypeMismatch, wire.Offset(root, before), f.Name)
			}
			key, val, err := decodeMapEntry(f.Ref, root, v.Payload, depth+1, cfg)
			if err != nil {
				return err
			}
			sink.SetMapEntry(f.Name, key, val)

		case f.Repeated:
			wt, _ := f.WireType()
			if f.Packed && v.Type == wire.Bytes && wt != wire.Bytes {
				body := v.Payload
				for !body.Empty() {
					bodyBefore := body
					val, err := decodePackedScalar(f, root, &body, bodyBefore)
					if err != nil {
						return err
					}
					sink.AppendField(f.Name, val)
				}
				continue
			}
			val, err := decodeOne(f, root, before, v, depth, cfg)
			if err != nil {
				return err
			}
			sink.AppendField(f.Name, val)

		default:
			val, err := decodeOne(f, root, before, v, depth, cfg)
			if err != nil {
				return err
			}
			sink.SetField(f.Name, val)
		}
	}
	return nil
}

// decodeOne interprets one already-read (tag, wiretype, payload) value
// according to f's declared type. before is the slice position prior
// to reading the key, used only to report a wiretype-mismatch offset.
func decodeOne(f *Field, root, before wire.Slice, v wire.Value, depth int, cfg decodeOptions) (Value, error) {
	switch f.TypeID {
	case TGroup:
		return Value{}, configErr(errCodeGroupUnsupported, f.Name)

	case TMessage:
		if v.Type != wire.Bytes {
			return Value{}, parseErr(errCodeWiretypeMismatch, wire.Offset(root, before), f.Name)
		}
		nested := NewMessage(f.Ref)
		body := v.Payload
		if err := decodeMessage(f.Ref, root, &body, nested, depth+1, cfg); err != nil {
			return Value{}, err
		}
		return MessageValue(nested), nil

	case TEnum:
		if v.Type != wire.Varint {
			return Value{}, parseErr(errCodeWiretypeMismatch, wire.Offset(root, before), f.Name)
		}
		if cfg.enumAsValue {
			return Int32Value(int32(v.Varint)), nil
		}
		if ef, ok := f.Ref.GetFieldByTag(uint32(v.Varint)); ok {
			return EnumNameValue(ef.Name), nil
		}
		return Int32Value(int32(v.Varint)), nil

	default:
		wt, ok := f.WireType()
		if !ok || v.Type != wt {
			return Value{}, parseErr(errCodeWiretypeMismatch, wire.Offset(root, before), f.Name)
		}
		return decodeScalarPayload(f.TypeID, v), nil
	}
}

// decodePackedScalar reads one element from a packed field's body,
// which carries no per-element tags.
func decodePackedScalar(f *Field, root wire.Slice, body *wire.Slice, before wire.Slice) (Value, error) {
	wt, _ := f.WireType()
	switch wt {
	case wire.Varint:
		n, ok := wire.ReadVarint(body)
		if !ok {
			return Value{}, parseErr(errCodeTruncated, wire.Offset(root, before), f.Name)
		}
		return decodeScalarPayload(f.TypeID, wire.Value{Varint: n}), nil
	case wire.Fixed32:
		n, ok := wire.ReadFixed32(body)
		if !ok {
			return Value{}, parseErr(errCodeTruncated, wire.Offset(root, before), f.Name)
		}
		return decodeScalarPayload(f.TypeID, wire.Value{Varint: uint64(n)}), nil
	case wire.Fixed64:
		n, ok := wire.ReadFixed64(body)
		if !ok {
			return Value{}, parseErr(errCodeTruncated, wire.Offset(root, before), f.Name)
		}
		return decodeScalarPayload(f.TypeID, wire.Value{Varint: n}), nil
	default:
		return Value{}, configErr(errCodeGroupUnsupported, f.Name)
	}
}

// decodeMapEntry parses a map-entry submessage's key (tag 1) and value
// (tag 2), accepting either field order.
func decodeMapEntry(entryType *Type, root wire.Slice, body wire.Slice, depth int, cfg decodeOptions) (key, val Value, err error) {
	keyField, _ := entryType.GetFieldByTag(1)
	valField, _ := entryType.GetFieldByTag(2)

	for !body.Empty() {
		before := body
		v, ok := wire.ReadValue(&body)
		if !ok {
			return Value{}, Value{}, parseErr(errCodeTruncated, wire.Offset(root, before), "")
		}
		switch v.Number {
		case 1:
			if keyField == nil {
				continue
			}
			k, err := decodeOne(keyField, root, before, v, depth, cfg)
			if err != nil {
				return Value{}, Value{}, err
			}
			key = k
		case 2:
			if valField == nil {
				continue
			}
			vv, err := decodeOne(valField, root, before, v, depth, cfg)
			if err != nil {
				return Value{}, Value{}, err
			}
			val = vv
		}
	}
	return key, val, nil
}

// decodeScalarPayload interprets an already-read value's raw payload
// bits per typeID, honoring the encode table in reverse.
func decodeScalarPayload(typeID ProtoType, v wire.Value) Value {
	switch typeID {
	case TBool:
		return BoolValue(v.Varint != 0)
	case TInt32:
		return Int32Value(int32(int64(v.Varint)))
	case TInt64:
		return Int64Value(int64(v.Varint))
	case TUint32:
		return Uint32Value(uint32(v.Varint))
	case TUint64:
		return Uint64Value(v.Varint)
	case TSint32:
		return Int32Value(wire.DecodeZigZag32(uint32(v.Varint)))
	case TSint64:
		return Int64Value(wire.DecodeZigZag64(v.Varint))
	case TFixed32:
		return Uint32Value(uint32(v.Varint))
	case TSfixed32:
		return Int32Value(int32(uint32(v.Varint)))
	case TFloat:
		return Float32Value(wire.DecodeFloat(uint32(v.Varint)))
	case TFixed64:
		return Uint64Value(v.Varint)
	case TSfixed64:
		return Int64Value(int64(v.Varint))
	case TDouble:
		return Float64Value(wire.DecodeDouble(v.Varint))
	case TString, TBytes:
		return BytesValue(append([]byte(nil), v.Payload.Bytes()...))
	default:
		return Value{}
	}
}
