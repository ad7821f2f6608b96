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
	"os"

	"github.com/klauspost/compress/zstd"
)

// archiveCompressed writes a zstd-compressed copy of artifact to
// path+".zst", alongside the plain artifact the caller already wrote at
// path, for post-mortem diagnostics. Failure to archive never fails the
// compile/execute pipeline itself — it only logs via tracef.
func archiveCompressed(path string, artifact []byte) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		tracef("driver: new zstd writer: %v", err)
		return
	}
	defer enc.Close()

	compressed := enc.EncodeAll(artifact, nil)
	zpath := path + ".zst"
	if err := os.WriteFile(zpath, compressed, 0o644); err != nil {
		tracef("driver: write compressed artifact %s: %v", zpath, err)
		return
	}
	tracef("driver: archived %s (%d bytes) as %s (%d bytes)", path, len(artifact), zpath, len(compressed))
}

// readArchivedArtifact decompresses a zstd artifact previously written by
// archiveCompressed, for tooling that wants to inspect a past run without
// keeping the plain-text copy around.
func readArchivedArtifact(zpath string) ([]byte, error) {
	compressed, err := os.ReadFile(zpath)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", zpath, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("driver: new zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("driver: decompress %s: %w", zpath, err)
	}
	return out, nil
}
