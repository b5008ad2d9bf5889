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

// Encode walks t's fields against src, emitting canonical protobuf wire
// bytes. Field names src offers that t doesn't declare are silently
// skipped, matching protobuf's absent-means-default semantics.
func Encode(t *Type, src ValueSource, opts ...EncodeOption) ([]byte, error) {
	cfg := defaultEncodeOptions()
	for _, o := range opts {
		o.apply(&cfg)
	}

	var buf wire.Buffer
	if err := encodeMessage(&buf, t, src, 0, cfg); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

func encodeMessage(buf *wire.Buffer, t *Type, src ValueSource, depth int, cfg encodeOptions) error {
	if depth > cfg.maxDepth {
		return configErr(errCodeRecursionLimit, fmt.Sprintf("nesting exceeds %d levels", cfg.maxDepth))
	}

	for {
		name, v, ok := src.NextField()
		if !ok {
			break
		}
		f, ok := t.GetFieldByName(name)
		if !ok {
			continue
		}

		switch {
		case f.Ref != nil && f.Ref.IsMap:
			entries, ok := src.Map(name)
			if !ok {
				continue
			}
			if err := encodeMapField(buf, f, entries, depth, cfg); err != nil {
				return err
			}

		case f.Repeated:
			elems, ok := src.Repeated(name)
			if !ok {
				continue
			}
			if f.Packed {
				if err := encodePackedField(buf, f, elems); err != nil {
					return err
				}
				continue
			}
			for _, e := range elems {
				if err := encodeField(buf, f, e, depth, cfg); err != nil {
					return err
				}
			}

		default:
			if err := encodeField(buf, f, v, depth, cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// encodeField writes one (tag, wiretype, payload) for a singular value
// or one element of a non-packed repeated field.
func encodeField(buf *wire.Buffer, f *Field, v Value, depth int, cfg encodeOptions) error {
	switch f.TypeID {
	case TGroup:
		return configErr(errCodeGroupUnsupported, f.Name)

	case TMessage:
		nested, ok := v.Message, v.Kind == KindMessage
		if !ok || nested == nil {
			return configErr(errCodeWiretypeMismatch, f.Name)
		}
		wire.AppendTag(buf, f.Number, wire.Bytes)
		mark := wire.Mark(buf)
		if err := encodeMessage(buf, f.Ref, nested, depth+1, cfg); err != nil {
			return err
		}
		wire.InsertLength(buf, mark)
		return nil

	case TEnum:
		wire.AppendTag(buf, f.Number, wire.Varint)
		switch v.Kind {
		case KindEnumName:
			ef, ok := f.Ref.GetFieldByName(v.EnumName)
			if !ok {
				return configErr(errCodeUnknownType, fmt.Sprintf("%s: enum value %q", f.Name, v.EnumName))
			}
			wire.AppendVarint(buf, uint64(ef.Number))
		case KindInt32:
			wire.AppendVarint(buf, wire.ExpandSign32(v.I32))
		case KindInt64:
			wire.AppendVarint(buf, uint64(v.I64))
		default:
			return configErr(errCodeWiretypeMismatch, f.Name)
		}
		return nil

	default:
		wt, ok := f.WireType()
		if !ok {
			return configErr(errCodeGroupUnsupported, f.Name)
		}
		wire.AppendTag(buf, f.Number, wt)
		return appendScalarPayload(buf, f.TypeID, v)
	}
}

// encodePackedField writes one length-delimited blob of concatenated
// scalar payloads, with no per-element tags.
func encodePackedField(buf *wire.Buffer, f *Field, elems []Value) error {
	wire.AppendTag(buf, f.Number, wire.Bytes)
	mark := wire.Mark(buf)
	for _, e := range elems {
		if err := appendScalarPayload(buf, f.TypeID, e); err != nil {
			return err
		}
	}
	wire.InsertLength(buf, mark)
	return nil
}

// encodeMapField writes one length-delimited map-entry submessage per
// pair, value (tag 2) before key (tag 1), pinned by the test suite
// though the reverse order decodes identically.
func encodeMapField(buf *wire.Buffer, f *Field, entries []MapEntry, depth int, cfg encodeOptions) error {
	keyField, _ := f.Ref.GetFieldByTag(1)
	valField, _ := f.Ref.GetFieldByTag(2)
	for _, e := range entries {
		wire.AppendTag(buf, f.Number, wire.Bytes)
		mark := wire.Mark(buf)
		if err := encodeField(buf, valField, e.Value, depth+1, cfg); err != nil {
			return err
		}
		if err := encodeField(buf, keyField, e.Key, depth+1, cfg); err != nil {
			return err
		}
		wire.InsertLength(buf, mark)
	}
	return nil
}

// appendScalarPayload writes just the payload (no tag) for one of the
// non-message, non-enum scalar types, per the encoding table.
func appendScalarPayload(buf *wire.Buffer, typeID ProtoType, v Value) error {
	switch typeID {
	case TBool:
		if v.Bool {
			wire.AppendVarint(buf, 1)
		} else {
			wire.AppendVarint(buf, 0)
		}
	case TInt32:
		wire.AppendVarint(buf, wire.ExpandSign32(v.I32))
	case TInt64:
		wire.AppendVarint(buf, uint64(v.I64))
	case TUint32:
		wire.AppendVarint(buf, uint64(v.U32))
	case TUint64:
		wire.AppendVarint(buf, v.U64)
	case TSint32:
		wire.AppendVarint(buf, uint64(wire.EncodeZigZag32(v.I32)))
	case TSint64:
		wire.AppendVarint(buf, wire.EncodeZigZag64(v.I64))
	case TFixed32:
		wire.AppendFixed32(buf, v.U32)
	case TSfixed32:
		wire.AppendFixed32(buf, uint32(v.I32))
	case TFloat:
		wire.AppendFixed32(buf, wire.EncodeFloat(v.F32))
	case TFixed64:
		wire.AppendFixed64(buf, v.U64)
	case TSfixed64:
		wire.AppendFixed64(buf, uint64(v.I64))
	case TDouble:
		wire.AppendFixed64(buf, wire.EncodeDouble(v.F64))
	case TString, TBytes:
		wire.AppendBytes(buf, v.Bytes)
	default:
		return configErr(errCodeGroupUnsupported, "")
	}
	return nil
}
