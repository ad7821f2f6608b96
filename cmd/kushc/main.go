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

// Command kushc exposes two CLI surfaces: "run", which loads a prebuilt
// shared library and calls its compute() entry point, and "parse-check",
// which parses a scalar-expression string and reports success or
// failure. Subcommand dispatch follows the usual flag.Parse, then switch
// on args[0], with an exitf helper for fatal errors to stderr.
package main

import (
	"flag"
	"fmt"
	"os"
)

var dashv bool

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
}

func exitf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...any) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "run":
		if len(args) != 2 {
			exitf("usage: %s run <library.so>\n", os.Args[0])
		}
		run(args[1])
	case "parse-check":
		if len(args) != 2 {
			exitf("usage: %s parse-check \"<expr>\"\n", os.Args[0])
		}
		parseCheck(args[1])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    %s [-v] run <library.so>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        load a compiled query and call its compute() entry point\n")
	fmt.Fprintf(os.Stderr, "    %s parse-check \"<expr>\"\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        parse a scalar expression, reporting ok or an error\n")
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	flag.Usage()
}
