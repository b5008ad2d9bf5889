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

// maxPackDepth bounds how many '(' groups can nest in one format
// string, mirroring Encode/Decode's recursion guard.
const maxPackDepth = 100

// Pack assembles wire bytes by walking fmt one character at a time
// against args, consuming one or more args per character as the table
// below describes. It is a low-level escape hatch for building or
// inspecting wire bytes by hand, independent of any Type; useful in
// tests and for constructing malformed input deliberately.
//
//	v  uint64 varint          d  fixed32            q  fixed64
//	s  length-delimited bytes c  raw bytes, length given by next arg
//	b  bool                  f  float               F  double
//	i  int32                 j  sint32              u  uint32
//	x  fixed32 (unsigned)    y  sfixed32             I  int64
//	J  sint64                U  uint64               X  fixed64
//	Y  sfixed64
//	(  open a length-prefixed group       )  close it
//	#  insert a literal varint length prefix, value given by next arg
//
// The format is rescanned from the start on every call; it is not
// compiled or cached.
func Pack(fmt_ string, args ...any) ([]byte, error) {
	var buf wire.Buffer
	ai := 0
	nextArg := func() (any, error) {
		if ai >= len(args) {
			return nil, configErr(errCodeInvalidFormatSpec, "not enough arguments for format")
		}
		a := args[ai]
		ai++
		return a, nil
	}

	var marks []int
	for _, ch := range fmt_ {
		switch ch {
		case 'v':
			n, err := argUint64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendVarint(&buf, n)
		case 'd':
			n, err := argUint32(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendFixed32(&buf, n)
		case 'q':
			n, err := argUint64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendFixed64(&buf, n)
		case 's':
			b, err := argBytes(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendBytes(&buf, b)
		case 'c':
			n, err := argInt(nextArg)
			if err != nil {
				return nil, err
			}
			b, err := argBytes(nextArg)
			if err != nil {
				return nil, err
			}
			if n < 0 || n > len(b) {
				return nil, configErr(errCodeInvalidFormatSpec, "'c' length exceeds argument")
			}
			buf.Append(b[:n])
		case 'b':
			v, err := argAny(nextArg)
			if err != nil {
				return nil, err
			}
			bv, _ := v.(bool)
			if bv {
				wire.AppendVarint(&buf, 1)
			} else {
				wire.AppendVarint(&buf, 0)
			}
		case 'f':
			v, err := argFloat64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendFixed32(&buf, wire.EncodeFloat(float32(v)))
		case 'F':
			v, err := argFloat64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendFixed64(&buf, wire.EncodeDouble(v))
		case 'i':
			n, err := argInt32(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendVarint(&buf, wire.ExpandSign32(n))
		case 'j':
			n, err := argInt32(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendVarint(&buf, uint64(wire.EncodeZigZag32(n)))
		case 'u':
			n, err := argUint32(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendVarint(&buf, uint64(n))
		case 'x':
			n, err := argUint32(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendFixed32(&buf, n)
		case 'y':
			n, err := argInt32(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendFixed32(&buf, uint32(n))
		case 'I':
			n, err := argInt64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendVarint(&buf, uint64(n))
		case 'J':
			n, err := argInt64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendVarint(&buf, wire.EncodeZigZag64(n))
		case 'U':
			n, err := argUint64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendVarint(&buf, n)
		case 'X':
			n, err := argUint64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendFixed64(&buf, n)
		case 'Y':
			n, err := argInt64(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendFixed64(&buf, uint64(n))
		case '(':
			if len(marks) >= maxPackDepth {
				return nil, configErr(errCodeRecursionLimit, "format nests past the group limit")
			}
			marks = append(marks, wire.Mark(&buf))
		case ')':
			if len(marks) == 0 {
				return nil, configErr(errCodeInvalidFormatSpec, "')' without matching '('")
			}
			mark := marks[len(marks)-1]
			marks = marks[:len(marks)-1]
			wire.InsertLength(&buf, mark)
		case '#':
			n, err := argInt(nextArg)
			if err != nil {
				return nil, err
			}
			wire.AppendVarint(&buf, uint64(n))
		default:
			return nil, configErr(errCodeInvalidFormatSpec, fmt.Sprintf("unknown format character %q", ch))
		}
	}
	if len(marks) != 0 {
		return nil, configErr(errCodeInvalidFormatSpec, "'(' without matching ')'")
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

// Unpack walks fmt against data, returning one result per value-reading
// format character ('c' also consumes one int from args giving the
// length to read, and still yields one result). '@' pushes the current
// absolute byte offset instead of reading anything; '(' and ')' enter
// and leave a length-delimited group without producing a result; '*',
// '+' and '-' reposition the read cursor (absolute, +relative,
// -relative) rather than producing a result, consuming one int from
// args for the distance.
func Unpack(fmt_ string, data []byte, args ...any) ([]any, error) {
	root := wire.Of(data)
	cur := root
	ai := 0
	nextArg := func() (int, error) {
		if ai >= len(args) {
			return 0, configErr(errCodeInvalidFormatSpec, "not enough arguments for format")
		}
		n, err := argInt(func() (any, error) { a := args[ai]; ai++; return a, nil })
		return n, err
	}

	var out []any
	var frames []wire.Slice
	for _, ch := range fmt_ {
		before := cur
		switch ch {
		case 'v':
			n, ok := wire.ReadVarint(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, n)
		case 'd':
			n, ok := wire.ReadFixed32(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, n)
		case 'q':
			n, ok := wire.ReadFixed64(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, n)
		case 's':
			b, ok := wire.ReadBytes(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, append([]byte(nil), b.Bytes()...))
		case 'c':
			n, err := nextArg()
			if err != nil {
				return nil, err
			}
			if n < 0 || n > cur.Len() {
				return nil, parseErr(errCodeLengthExceedsRemaining, wire.Offset(root, before), "")
			}
			b := append([]byte(nil), cur.Bytes()[:n]...)
			cur = wire.Seek(root, wire.Offset(root, cur)+n)
			out = append(out, b)
		case 'b':
			n, ok := wire.ReadVarint(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, n != 0)
		case 'f':
			n, ok := wire.ReadFixed32(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, wire.DecodeFloat(n))
		case 'F':
			n, ok := wire.ReadFixed64(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, wire.DecodeDouble(n))
		case 'i':
			n, ok := wire.ReadVarint(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, int32(int64(n)))
		case 'j':
			n, ok := wire.ReadVarint(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, wire.DecodeZigZag32(uint32(n)))
		case 'u':
			n, ok := wire.ReadVarint(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, uint32(n))
		case 'x':
			n, ok := wire.ReadFixed32(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, n)
		case 'y':
			n, ok := wire.ReadFixed32(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, int32(n))
		case 'I':
			n, ok := wire.ReadVarint(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, int64(n))
		case 'J':
			n, ok := wire.ReadVarint(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, wire.DecodeZigZag64(n))
		case 'U':
			n, ok := wire.ReadVarint(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, n)
		case 'X':
			n, ok := wire.ReadFixed64(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, n)
		case 'Y':
			n, ok := wire.ReadFixed64(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			out = append(out, int64(n))
		case '(':
			if len(frames) >= maxPackDepth {
				return nil, configErr(errCodeRecursionLimit, "format nests past the group limit")
			}
			body, ok := wire.ReadBytes(&cur)
			if !ok {
				return nil, parseErr(errCodeTruncated, wire.Offset(root, before), "")
			}
			frames = append(frames, cur)
			cur = body
		case ')':
			if len(frames) == 0 {
				return nil, configErr(errCodeInvalidFormatSpec, "')' without matching '('")
			}
			cur = frames[len(frames)-1]
			frames = frames[:len(frames)-1]
		case '@':
			out = append(out, wire.Offset(root, cur))
		case '*':
			n, err := nextArg()
			if err != nil {
				return nil, err
			}
			cur = wire.Seek(root, n)
		case '+':
			n, err := nextArg()
			if err != nil {
				return nil, err
			}
			cur = wire.Seek(root, wire.Offset(root, cur)+n)
		case '-':
			n, err := nextArg()
			if err != nil {
				return nil, err
			}
			cur = wire.Seek(root, wire.Offset(root, cur)-n)
		default:
			return nil, configErr(errCodeInvalidFormatSpec, fmt.Sprintf("unknown format character %q", ch))
		}
	}
	if len(frames) != 0 {
		return nil, configErr(errCodeInvalidFormatSpec, "'(' without matching ')'")
	}
	return out, nil
}

func argAny(next func() (any, error)) (any, error) { return next() }

func argInt(next func() (any, error)) (int, error) {
	v, err := next()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	default:
		return 0, configErr(errCodeInvalidFormatSpec, fmt.Sprintf("argument %v is not an integer", v))
	}
}

func argInt32(next func() (any, error)) (int32, error) {
	n, err := argInt(next)
	return int32(n), err
}

func argInt64(next func() (any, error)) (int64, error) {
	n, err := argInt(next)
	return int64(n), err
}

func argUint32(next func() (any, error)) (uint32, error) {
	n, err := argInt(next)
	return uint32(n), err
}

func argUint64(next func() (any, error)) (uint64, error) {
	v, err := next()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	case int64:
		return uint64(n), nil
	default:
		return 0, configErr(errCodeInvalidFormatSpec, fmt.Sprintf("argument %v is not an integer", v))
	}
}

func argFloat64(next func() (any, error)) (float64, error) {
	v, err := next()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	default:
		return 0, configErr(errCodeInvalidFormatSpec, fmt.Sprintf("argument %v is not a float", v))
	}
}

func argBytes(next func() (any, error)) ([]byte, error) {
	v, err := next()
	if err != nil {
		return nil, err
	}
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, configErr(errCodeInvalidFormatSpec, fmt.Sprintf("argument %v is not bytes", v))
	}
}
