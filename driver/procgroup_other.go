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

//go:build !linux

package driver

import (
	"os/exec"
	"syscall"
)

// setProcessGroup is a no-op off Linux: the platform-specific process-
// group kill below is unavailable, so a runaway compiler invocation is
// only bounded by the context passed to exec.CommandContext.
func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(pid int, sig syscall.Signal) error { return nil }
