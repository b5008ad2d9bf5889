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

//go:build debug

// Package debug includes debugging helpers compiled in only under the
// debug build tag, so that assertions and verbose tracing cost nothing
// in ordinary builds.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true when the binary was built with the debug tag.
const Enabled = true

// Log prints a trace line to stderr, tagged with the calling package,
// file, line, and goroutine id.
func Log(operation string, format string, args ...any) {
	pc, file, line, _ := runtime.Caller(1)

	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	if slash := strings.LastIndexByte(name, '/'); slash >= 0 {
		name = name[slash+1:]
	}
	pkg := name
	if dot := strings.Index(pkg, "."); dot >= 0 {
		pkg = pkg[:dot]
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "%s/%s:%d [g%04d] %s: ", pkg, filepath.Base(file), line, routine.Goid(), operation)
	fmt.Fprintf(&buf, format, args...)
	buf.WriteByte('\n')
	os.Stderr.WriteString(buf.String())
}

// Assert panics if cond is false. Only ever called from code paths that
// are themselves gated behind debug.Enabled, so the call and its
// (possibly expensive) argument evaluation both vanish from release
// builds.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("dynproto: internal assertion failed: "+format, args...))
	}
}
