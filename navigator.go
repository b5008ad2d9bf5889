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

import "github.com/dynproto/dynproto/internal/wire"

// Navigator is a stateful cursor for manually walking wire bytes: enter
// a length-delimited submessage, read its fields, leave back to the
// enclosing message. Each frame is single-pass: once left, a
// submessage's bytes can't be re-entered.
//
// Navigator is a side door into the wire codec for hosts that want to
// read a message without a schema (or without involving Decode at
// all); it does not otherwise interact with Registry or Type.
type Navigator struct {
	nav *wire.Navigator
}

// NewNavigator creates a Navigator over the given bytes.
func NewNavigator(data []byte) *Navigator {
	return &Navigator{nav: wire.NewNavigator(wire.Of(data))}
}

// Depth reports how many frames deep the navigator currently is.
func (n *Navigator) Depth() int { return n.nav.Depth() }

// Next reads the next (tag, wiretype, payload) triple from the current
// view, without entering it even if it's length-delimited.
func (n *Navigator) Next() (number uint32, wiretype uint8, payload []byte, varint uint64, ok bool) {
	v, ok := wire.ReadValue(n.nav.Current())
	if !ok {
		return 0, 0, nil, 0, false
	}
	var p []byte
	if v.Type == wire.Bytes || v.Type == wire.GroupStart {
		p = v.Payload.Bytes()
	}
	return v.Number, uint8(v.Type), p, v.Varint, true
}

// Enter reads a length-delimited header from the current view and
// descends into it.
func (n *Navigator) Enter() bool { return n.nav.Enter() }

// Leave pops count frames, returning to an enclosing view.
func (n *Navigator) Leave(count int) { n.nav.Leave(count) }

// Remaining reports how many unread bytes are left in the current view.
func (n *Navigator) Remaining() int { return n.nav.Current().Len() }
