// Copyright (C) 2024 kushdb authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package compile

// This file codifies one load-bearing decision: the emitted-source
// backend and the in-memory IR backend must agree on the calling
// convention for external runtime functions, and that agreement is not
// written down anywhere else. Both backends import this file and
// neither invents its own convention.

// RuntimeStringFields is the in-memory layout every backend uses for the
// `string` record the string runtime operates on: a raw byte pointer
// plus an unsigned length. Both backends declare external runtime
// functions that take/return this struct by the rules in CallingConvention.
var RuntimeStringFields = []ScalarKind{KindPointerI8, KindUI32}

// ScalarKind names a scalar shape independent of a backend's concrete
// Type handle, so abi.go can describe layouts without depending on either
// backend package (which would create an import cycle: both backends
// import compile).
type ScalarKind uint8

const (
	KindVoid ScalarKind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindUI32
	KindF64
	KindPointerI8
)

// CallingConvention is the single fact both backends must honor:
// scalar parameters and returns are passed by value using the platform C
// calling convention; the `string` record is always passed by pointer
// (never by value, even though it is small enough to fit in registers on
// most ABIs) so that both backends can share one declaration for each
// runtime function regardless of which platform ABI would otherwise pass
// small structs in registers.
const CallingConvention = "platform-C, string-by-pointer"
