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
	"fmt"
	"io"
)

// ABIPrint and ABIPrintNewline are the symbol names Output's translator
// declares external and calls once per column, then once per row.
const (
	ABIPrint        = "Print"
	ABIPrintF64     = "PrintF64"
	ABIPrintString  = "PrintString"
	ABIPrintNewline = "PrintNewline"
)

// Printer appends Print/PrintNewline output to an underlying writer. It
// is the Go-side reference implementation used by tests and by any
// interpreted (non-compiled) execution path; generated code calls the
// equivalent C symbols in the embedded runtime translation unit instead.
type Printer struct {
	w io.Writer
}

// NewPrinter wraps w.
func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

// PrintI64 appends v followed by '|'.
func (p *Printer) PrintI64(v int64) { fmt.Fprintf(p.w, "%d|", v) }

// PrintF64 appends v followed by '|'.
func (p *Printer) PrintF64(v float64) { fmt.Fprintf(p.w, "%g|", v) }

// PrintString appends s followed by '|'.
func (p *Printer) PrintString(s string) { fmt.Fprintf(p.w, "%s|", s) }

// Newline appends a '\n'.
func (p *Printer) Newline() { fmt.Fprint(p.w, "\n") }
