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

package runtime

import (
	"encoding/binary"
	"sort"
)

// OrderBy materializes its input before producing sorted output.
// RowBuffer is the declared-external append-only byte-row store it
// builds against: a page-growable allocation strategy specialized to
// fixed-stride rows so a later sort pass can reorder by index instead
// of moving bytes.
const (
	ABIRowBufferCreate = "RowBufferCreate"
	ABIRowBufferAppend = "RowBufferAppend"
	ABIRowBufferRowPtr = "RowBufferRowPtr"
	ABIRowBufferLen    = "RowBufferLen"
	ABIRowBufferFree    = "RowBufferFree"

	// one declared-external sort entry point per sort key scalar kind,
	// ascending and descending; OrderBy's translator composes multiple
	// keys by applying these back-to-front (a stable LSD-style sort),
	// since the ABI only needs to support a single key's comparison at
	// a time.
	ABISortByI64Asc    = "SortByI64Asc"
	ABISortByI64Desc   = "SortByI64Desc"
	ABISortByF64Asc    = "SortByF64Asc"
	ABISortByF64Desc   = "SortByF64Desc"
	ABISortByBytesAsc  = "SortByBytesAsc"
	ABISortByBytesDesc = "SortByBytesDesc"
)

// RowBuffer is the Go reference implementation of the ABIRowBuffer*
// symbols: a growable list of fixed-stride byte rows plus a permutation
// (Order) that sorts rearrange instead of the backing bytes, so earlier
// row pointers handed to generated code stay valid.
type RowBuffer struct {
	stride int
	data   []byte
	Order  []int
}

// NewRowBuffer allocates an empty buffer of fixed row width.
func NewRowBuffer(stride int) *RowBuffer {
	return &RowBuffer{stride: stride}
}

// Append copies one row's bytes into the buffer and returns its index.
func (r *RowBuffer) Append(row []byte) int {
	idx := len(r.data) / r.stride
	r.data = append(r.data, row...)
	r.Order = append(r.Order, idx)
	return idx
}

// Len reports the number of rows appended so far.
func (r *RowBuffer) Len() int { return len(r.data) / r.stride }

// Row returns the raw bytes for row i (pre-sort index, not Order[i]).
func (r *RowBuffer) Row(i int) []byte { return r.data[i*r.stride : (i+1)*r.stride] }

// OrderedRow returns the bytes for the row at sorted position i.
func (r *RowBuffer) OrderedRow(i int) []byte { return r.Row(r.Order[i]) }

func (r *RowBuffer) stableSort(less func(a, b int) bool) {
	sort.SliceStable(r.Order, func(i, j int) bool { return less(r.Order[i], r.Order[j]) })
}

// SortByI64 reorders by the little-endian int64 found at byteOffset
// within each row, ascending unless desc is set.
func (r *RowBuffer) SortByI64(byteOffset int, desc bool) {
	key := func(i int) int64 {
		return int64(binary.LittleEndian.Uint64(r.Row(i)[byteOffset:]))
	}
	r.stableSort(func(a, b int) bool {
		if desc {
			return key(a) > key(b)
		}
		return key(a) < key(b)
	})
}

// SortByBytes reorders by raw byte comparison of a fixed-width field.
func (r *RowBuffer) SortByBytes(byteOffset, length int, desc bool) {
	key := func(i int) []byte { return r.Row(i)[byteOffset : byteOffset+length] }
	r.stableSort(func(a, b int) bool {
		c := compareBytes(key(a), key(b))
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}
