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
	"os"

	"github.com/kushdb/kushc/algebra"
)

// parseCheck parses expr as a scalar expression and reports success or
// failure as a standalone grammar check: exit 0 and silent on success,
// exit 1 with the error on stderr on failure.
func parseCheck(expr string) {
	if _, err := algebra.ParseExpr(expr); err != nil {
		exitf("%s\n", err)
	}
	os.Exit(0)
}
