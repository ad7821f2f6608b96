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

package main

import (
	"plugin"
	"time"

	"github.com/kushdb/kushc/driver"
)

// run loads a shared library previously produced by driver.RunSourceText
// (or any other build of this compiler's output), resolves
// driver.EntrySymbol, and calls it, reporting load/resolve/execute timing
// to stderr under -v. The load-resolve-call-unload shape follows the
// usual way of driving a freshly built shared library; the library
// handle is never released, since Go's plugin package has no unload.
func run(path string) {
	start := time.Now()

	plug, err := plugin.Open(path)
	if err != nil {
		exitf("opening %s: %s\n", path, err)
	}
	opened := time.Now()
	if dashv {
		logf("loaded %s in %s", path, opened.Sub(start))
	}

	sym, err := plug.Lookup(driver.EntrySymbol)
	if err != nil {
		exitf("looking up %q in %s: %s\n", driver.EntrySymbol, path, err)
	}
	compute, ok := sym.(func())
	if !ok {
		exitf("symbol %q in %s has the wrong signature\n", driver.EntrySymbol, path)
	}
	resolved := time.Now()
	if dashv {
		logf("resolved %s in %s", driver.EntrySymbol, resolved.Sub(opened))
	}

	compute()
	if dashv {
		logf("executed %s in %s", driver.EntrySymbol, time.Since(resolved))
	}
}
