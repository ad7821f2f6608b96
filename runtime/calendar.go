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

import "github.com/kushdb/kushc/date"

// ExtractYear implements the date runtime's only declared-external
// function: it takes Unix milliseconds and returns the calendar year.
// ABIDateExtractYear names the symbol; no translator in package
// translate declares or calls it. This Go function is the reference
// implementation exercised by this package's tests (the bitcode
// interpreter has no dispatch for this symbol), not something generated
// code links against directly — path A links against the embedded C
// translation unit in runtimec.go, which implements the same contract
// in C. Built on
// date.Time rather than time.Time directly so this package shares the
// same calendar arithmetic the rest of a future date/time scalar surface
// would use.
func ExtractYear(unixMilli int64) int32 {
	return int32(date.UnixMicro(unixMilli * 1000).Year())
}

// ABIDateExtractYear is the linker symbol name generated code calls.
const ABIDateExtractYear = "ExtractYear"
