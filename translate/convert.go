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

package translate

import (
	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/compile"
)

// widenToI64 converts any narrower integer or boolean scalar to I64, the
// single width the Print runtime symbol accepts: it declares only an
// int64_t entry point, so every narrower column is widened at the call
// site.
func widenToI64(b compile.Builder, t catalog.ScalarType, v compile.Value) compile.Value {
	if t == catalog.I64 {
		return v
	}
	return b.Convert(v, b.I64Type())
}

// widenToF64 converts any non-F64 scalar to F64, used by AVG's running
// sum (always accumulated in floating point regardless of the
// operand's declared integer width, matching SQL's usual AVG typing).
func widenToF64(b compile.Builder, t catalog.ScalarType, v compile.Value) compile.Value {
	if t == catalog.F64 {
		return v
	}
	return b.Convert(v, b.F64Type())
}
