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

import "golang.org/x/crypto/blake2b"

// Digest returns a 256-bit blake2b digest of the generated source and the
// embedded runtime translation unit, concatenated. The driver (package
// driver) puts the start of its hex form into the names of path A's
// artifacts; each run also adds a fresh uuid and invokes the external
// compiler, so no earlier .so is reused.
func Digest(generated string) [32]byte {
	return blake2b.Sum256(append([]byte(generated), RuntimeC...))
}

// DigestHex is Digest formatted as a hex string, suitable as a cache key
// or temp-file suffix.
func DigestHex(generated string) string {
	d := Digest(generated)
	const hextable = "0123456789abcdef"
	out := make([]byte, len(d)*2)
	for i, b := range d {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0xf]
	}
	return string(out)
}
