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

import _ "embed"

// RuntimeC is the C translation unit path A's driver writes alongside the
// generated source and links in as the runtime object. It implements the
// print, string, and date runtime symbols using the same calling
// convention compile/abi.go codifies (string records passed by pointer).
//
//go:embed runtime.c
var RuntimeC string
