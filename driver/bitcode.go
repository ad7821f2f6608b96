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

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/compile/bitcode"
	"github.com/kushdb/kushc/config"
	"github.com/kushdb/kushc/runtime"
)

// RunBitcode is path B: translate root against
// compile/bitcode's in-memory Backend, then hand the resulting module's
// compute function straight to this package's interpreter rather than to
// an external compiler — there is no separate compile or link step, so
// Timing.CompileDone/LinkDone are both set equal to EmitDone. out receives generated code's
// Print*/PrintNewline side effects; pass os.Stdout for parity with path
// A's compiled output, or any io.Writer a test wants to capture against.
// When tc.PerfMap is set, a single synthetic perf-map entry (address 0,
// size 0) is recorded for the entry symbol; this interpreter never emits
// machine code, so there is no address range to report.
func RunBitcode(root *algebra.Op, data Dataset, tc *config.Toolchain, out io.Writer) (Timing, error) {
	var timing Timing
	timing.Start = time.Now()

	b := bitcode.New()
	buildProgram(b, root, data)
	timing.EmitDone = time.Now()
	timing.CompileDone = timing.EmitDone
	timing.LinkDone = timing.EmitDone
	tracef("driver: built bitcode module with %d function(s)", len(b.Module.Funcs))

	fn, err := findFunc(b.Module, EntrySymbol)
	if err != nil {
		return timing, newErr(SymbolNotFound, err, "locate %q in bitcode module", EntrySymbol)
	}

	var perf *PerfJITListener
	if tc.PerfMap {
		p, err := NewPerfJITListener(os.Getpid())
		if err != nil {
			tracef("driver: perf map unavailable: %v", err)
		} else {
			perf = p
			defer perf.Close()
			perf.Record(0, 0, EntrySymbol)
		}
	}

	it := newInterp(b, runtime.NewPrinter(out), perf)

	if err := runProtected(it, fn); err != nil {
		return timing, newErr(ExecuteFailed, err, "interpret %q", EntrySymbol)
	}
	timing.ExecuteDone = time.Now()

	return timing, nil
}

func findFunc(mod *bitcode.Module, name string) (*bitcode.Func, error) {
	for _, fn := range mod.Funcs {
		if fn.Name == name {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("driver: no function named %q in module", name)
}

// runProtected recovers a panic out of the interpreter (an internal
// consistency error, not a user-facing one) and reports it as a regular
// error so RunBitcode's contract matches RunSourceText's.
func runProtected(it *interp, fn *bitcode.Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	it.run(fn)
	return nil
}
