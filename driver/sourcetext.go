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
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"
	"time"

	"github.com/google/uuid"

	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/compile/source"
	"github.com/kushdb/kushc/config"
	"github.com/kushdb/kushc/runtime"
)

// RunSourceText is path A: translate root against
// compile/source's Backend, write the emitted C to a well-known scratch
// path, invoke tc.Compiler with the fixed flag set plus tc.Flags, open
// the resulting shared library, resolve and call compute(), and report
// timing checkpoints. The shared-library handle is never explicitly
// released — Go's plugin package offers no unload, same as dlopen
// without a matching dlclose; the process keeps compute()'s code mapped
// until exit.
func RunSourceText(root *algebra.Op, data Dataset, tc *config.Toolchain) (Timing, error) {
	var timing Timing
	timing.Start = time.Now()

	b := source.New()
	buildProgram(b, root, data)
	generated := b.Emit()
	timing.EmitDone = time.Now()
	tracef("driver: emitted %d bytes of C source", len(generated))

	digest := runtime.DigestHex(generated)
	id := uuid.New().String()
	scratch := tc.ScratchDir()
	base := fmt.Sprintf("kushc-%s-%s", digest[:12], id)

	srcPath := filepath.Join(scratch, base+".c")
	if err := os.WriteFile(srcPath, []byte(generated), 0o644); err != nil {
		return timing, newErr(EmitFailed, err, "write generated source %s", srcPath)
	}
	archiveCompressed(srcPath, []byte(generated))

	runtimePath, err := writeRuntimeObject(tc, scratch, base)
	if err != nil {
		return timing, newErr(EmitFailed, err, "materialize runtime object")
	}

	soPath := filepath.Join(scratch, base+".so")
	if err := compileSharedLibrary(tc, srcPath, runtimePath, soPath); err != nil {
		return timing, err
	}
	timing.CompileDone = time.Now()
	timing.LinkDone = timing.CompileDone // the reference toolchain compiles and links in one invocation
	tracef("driver: compiled %s", soPath)

	plug, err := plugin.Open(soPath)
	if err != nil {
		return timing, newErr(LoadFailed, err, "open %s", soPath)
	}

	sym, err := plug.Lookup(EntrySymbol)
	if err != nil {
		return timing, newErr(SymbolNotFound, err, "lookup %q in %s", EntrySymbol, soPath)
	}
	compute, ok := sym.(func())
	if !ok {
		return timing, newErr(SymbolNotFound, nil, "symbol %q in %s has the wrong signature", EntrySymbol, soPath)
	}

	tracef("driver: calling %s", EntrySymbol)
	compute()
	timing.ExecuteDone = time.Now()

	return timing, nil
}

// writeRuntimeObject returns the path to an object/source file the
// compiler invocation should link: tc.RuntimeObject if the toolchain
// names a precompiled one, otherwise the embedded runtime.RuntimeC
// written alongside the generated source so the same compiler invocation
// can compile and link both in one shot.
func writeRuntimeObject(tc *config.Toolchain, scratch, base string) (string, error) {
	if tc.RuntimeObject != "" {
		return tc.RuntimeObject, nil
	}
	path := filepath.Join(scratch, base+"_runtime.c")
	if err := os.WriteFile(path, []byte(runtime.RuntimeC), 0o644); err != nil {
		return "", fmt.Errorf("write runtime source %s: %w", path, err)
	}
	return path, nil
}

// compileSharedLibrary synchronously invokes tc.Compiler with the fixed
// flag set (language standard, -shared, -fpic, link runtime object,
// output shared library — the include path is implicit since
// runtimePath is compiled directly) plus tc.Flags, in its own process
// group so the caller can kill a runaway invocation as a unit.
func compileSharedLibrary(tc *config.Toolchain, srcPath, runtimePath, soPath string) error {
	args := []string{"-std=c11", "-shared", "-fPIC", "-O2"}
	args = append(args, tc.Flags...)
	args = append(args, "-o", soPath, srcPath, runtimePath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, tc.Compiler, args...)
	setProcessGroup(cmd)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return newErr(CompileFailed, err, "compile %s: %s", srcPath, out)
	}
	return nil
}
