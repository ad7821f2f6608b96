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

package bitcode

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Serialize writes a deterministic textual form of the module: functions
// and blocks in declaration order, each instruction rendered by opcode
// and operand count. This is what the driver writes to disk for path B when
// it is asked to persist the module rather than (or in addition to)
// handing it straight to the JIT, and what the emission-determinism test
// compares across runs.
func (m *Module) Serialize() []byte {
	var out strings.Builder
	for _, fn := range m.Funcs {
		fmt.Fprintf(&out, "func %s external=%v internal=%v\n", fn.Name, fn.External, fn.Internal)
		for _, blk := range fn.Blocks {
			succNames := make([]string, len(blk.Succs))
			for i, s := range blk.Succs {
				succNames[i] = s.Name
			}
			fmt.Fprintf(&out, "  %s -> %s\n", blk.Name, strings.Join(succNames, ","))
			for _, ins := range blk.Instrs {
				fmt.Fprintf(&out, "    op%d args=%d\n", ins.Op, len(ins.Args))
			}
		}
	}
	return []byte(out.String())
}

// FuncNames returns the module's function names sorted by name, for
// diagnostics that want a stable iteration order independent of
// declaration order (declaration order itself is already deterministic
// and is what Serialize uses).
func (m *Module) FuncNames() []string {
	names := make([]string, len(m.Funcs))
	for i, fn := range m.Funcs {
		names[i] = fn.Name
	}
	slices.Sort(names)
	return names
}
