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

// Navigator is a stateful cursor over nested length-delimited views: a
// host walking a message by hand can Enter a submessage, read its
// fields with ReadValue against Navigator.Current, and Leave back out to
// the enclosing message.
//
// Every frame is single-pass: once Leave pops a frame, that submessage's
// bytes cannot be re-entered (the Navigator does not remember where it
// started).
type Navigator struct {
	current Slice
	stack   []Slice
}

// NewNavigator creates a Navigator positioned at the start of s.
func NewNavigator(s Slice) *Navigator {
	return &Navigator{current: s}
}

// Current returns the active view.
func (n *Navigator) Current() *Slice { return &n.current }

// Depth returns how many frames deep the navigator is (0 at the
// outermost level).
func (n *Navigator) Depth() int { return len(n.stack) }

// Enter reads a length-delimited header from the current view and
// pushes the inner slice, making it the new current view.
func (n *Navigator) Enter() bool {
	inner, ok := ReadBytes(&n.current)
	if !ok {
		return false
	}
	n.stack = append(n.stack, n.current)
	n.current = inner
	return true
}

// EnterGroup is like Enter, but for group-framed submessages: it expects
// the GroupStart key for number to have already been consumed, reads the
// group body via the matching GroupEnd, and pushes it.
func (n *Navigator) EnterGroup(number uint32) bool {
	body, ok := readGroup(&n.current, number)
	if !ok {
		return false
	}
	n.stack = append(n.stack, n.current)
	n.current = body
	return true
}

// Leave pops count frames, discarding any unread bytes left in each
// popped view, and restores the enclosing view as current. Leave(0) is
// a no-op; Leave past the outermost frame is a no-op beyond the root.
func (n *Navigator) Leave(count int) {
	for i := 0; i < count && len(n.stack) > 0; i++ {
		last := len(n.stack) - 1
		n.current = n.stack[last]
		n.stack = n.stack[:last]
	}
}
