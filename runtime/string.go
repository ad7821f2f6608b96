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

// Package runtime models the declared-external runtime the compiler core
// links generated code against: the string record, the print runtime, the
// date runtime, and the two process-wide singletons (permutation table,
// buffer pool). Source parsing, catalog lookup, and the on-disk column
// format remain external collaborators; this package only specifies the
// contract generated code relies on, plus a pure-Go reference
// implementation the interpreter path and the test suite use without
// invoking an external compiler.
package runtime

import (
	"strings"

	"github.com/dchest/siphash"
)

// StringRecord mirrors the `{data: byte-ptr, length: u32}` layout the
// string runtime operates on, on the Go side of the ABI boundary
// codified in compile/abi.go.
type StringRecord struct {
	Data   []byte
	Length uint32
}

// NewStringRecord builds a StringRecord over a copy of s's bytes.
func NewStringRecord(s string) StringRecord {
	b := []byte(s)
	return StringRecord{Data: b, Length: uint32(len(b))}
}

func (s StringRecord) String() string { return string(s.Data[:s.Length]) }

// The ABI* constants are the linker symbol names generated code declares
// as external and calls; both compile backends emit declarations using
// exactly these names so a single runtime object satisfies either path.
const (
	ABIStringCreate     = "Create"
	ABIStringDeepCopy   = "DeepCopy"
	ABIStringFree       = "Free"
	ABIStringContains   = "Contains"
	ABIStringEndsWith   = "EndsWith"
	ABIStringStartsWith = "StartsWith"
	ABIStringEquals     = "Equals"
	ABIStringNotEquals  = "NotEquals"
	ABIStringHash       = "Hash"
)

// siphashKey is the fixed key used for Hash: siphash gives a cheap,
// collision-resistant hash of raw tuple/key bytes feeding a hash table,
// which HashJoin and GroupByAggregate build on in package translate.
var siphashKey0, siphashKey1 uint64 = 0x9ae16a3b2f90404f, 0xc949d7c7509e6557

// Create builds a StringRecord, DeepCopy duplicates its backing storage,
// and Free is a no-op placeholder under Go's GC: the arena allocator that
// would own generated-code string storage in a native runtime is
// replaced here by the garbage collector, but the symbol is kept so the
// emitted calling convention is uniform across every declared-external
// runtime function.
func Create(s string) StringRecord { return NewStringRecord(s) }

func DeepCopy(s StringRecord) StringRecord {
	b := make([]byte, s.Length)
	copy(b, s.Data[:s.Length])
	return StringRecord{Data: b, Length: s.Length}
}

func Free(StringRecord) {}

func Contains(s, needle StringRecord) bool {
	return strings.Contains(s.String(), needle.String())
}

func EndsWith(s, suffix StringRecord) bool {
	return strings.HasSuffix(s.String(), suffix.String())
}

func StartsWith(s, prefix StringRecord) bool {
	return strings.HasPrefix(s.String(), prefix.String())
}

func Equals(a, b StringRecord) bool    { return a.String() == b.String() }
func NotEquals(a, b StringRecord) bool { return !Equals(a, b) }

// Hash returns a keyed 64-bit hash of s's bytes, used both as the
// declared-external `Hash` runtime function and, directly, as the key
// hash for HashJoin/GroupByAggregate's hash tables (package translate).
func Hash(s StringRecord) uint64 {
	return siphash.Hash(siphashKey0, siphashKey1, s.Data[:s.Length])
}
