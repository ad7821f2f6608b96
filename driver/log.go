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

package driver

// Trace is a global diagnostic hook, nil by default, set by a CLI's
// main() at startup; mirrors vm.Errorf's pattern (vm/log.go) for
// optional, zero-cost-when-unset progress tracing through the compile/
// link/load/execute pipeline.
var Trace func(format string, args ...any)

func tracef(f string, args ...any) {
	if Trace != nil {
		Trace(f, args...)
	}
}
