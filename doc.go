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

// Package dynproto is a runtime protobuf codec: it loads schemas from
// compiled FileDescriptorSet bytes and uses them to encode and decode
// the standard protobuf wire format, without any code generation step.
//
// A [Registry] holds the loaded schema. [Registry.Load] parses a
// FileDescriptorSet and populates it; [Registry.Type] looks up a
// message or enum type by its fully qualified name. [Encode] and
// [Decode] drive a [Type] against a host-supplied [ValueSource] or
// [ValueSink]; the library does not assume any particular host value
// representation, though [Message] is provided as a ready-to-use
// dynamic container that implements both.
//
// [Pack] and [Unpack] expose a lower-level, format-string driven
// packer/unpacker for ad-hoc wire manipulation and tests, independent
// of any schema.
package dynproto
