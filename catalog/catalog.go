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

// Package catalog provides the opaque table and column identifiers that
// the plan builder resolves names against. Name resolution, on-disk
// layout, and storage are external collaborators; this package only
// specifies the identifier shapes and the resolution contract the rest
// of the compiler core depends on.
package catalog

import "fmt"

// TableID is an opaque, equality-comparable handle for a relation.
// The zero value is never a valid table.
type TableID uint32

// ColumnID is an opaque, equality-comparable handle for a column within
// some TableID. ColumnID values are only meaningful relative to the
// TableID they were resolved from.
type ColumnID uint32

func (t TableID) String() string  { return fmt.Sprintf("table#%d", uint32(t)) }
func (c ColumnID) String() string { return fmt.Sprintf("col#%d", uint32(c)) }

// ScalarType enumerates the scalar types the compiler core understands.
type ScalarType uint8

const (
	Invalid ScalarType = iota
	Bool
	I8
	I16
	I32
	I64
	F64
	String
)

func (t ScalarType) String() string {
	switch t {
	case Bool:
		return "bool"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F64:
		return "f64"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

// Column names one (name, type) pair produced by a relation.
type Column struct {
	Name string
	Type ScalarType
}

// Resolver resolves relation and column names to catalog identifiers, and
// reports the schema a table produces. It is the boundary to the catalog
// and on-disk column format, both out of scope for this core; callers
// inject a concrete implementation (e.g. backed by a flat-file column
// format, or a test fixture).
type Resolver interface {
	// Table resolves a relation name to its TableID and declared schema.
	// It returns a non-nil error if no such relation exists.
	Table(name string) (TableID, []Column, error)
	// Column resolves a column name within a table to its ColumnID and
	// type. It returns a non-nil error if no such column exists on that
	// table.
	Column(t TableID, name string) (ColumnID, ScalarType, error)
}
