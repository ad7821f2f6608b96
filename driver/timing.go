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

import "time"

// Timing records the checkpoints for path A's pipeline (start, emit
// done, compile done, link done, execute done); path B has no separate
// compile or link step and sets CompileDone and LinkDone equal to
// EmitDone.
type Timing struct {
	Start       time.Time
	EmitDone    time.Time
	CompileDone time.Time
	LinkDone    time.Time
	ExecuteDone time.Time
}

// Emit reports how long code generation (translate.Emit plus backend
// Emit/Serialize) took.
func (t Timing) Emit() time.Duration { return t.EmitDone.Sub(t.Start) }

// Compile reports how long the external compiler invocation took (path A
// only; zero for path B).
func (t Timing) Compile() time.Duration {
	if t.CompileDone.IsZero() {
		return 0
	}
	return t.CompileDone.Sub(t.EmitDone)
}

// Link reports how long shared-library linking took (path A only; the
// reference toolchain folds link into the same invocation as compile, so
// this is usually zero — kept for toolchains that separate the two
// steps).
func (t Timing) Link() time.Duration {
	if t.LinkDone.IsZero() || t.CompileDone.IsZero() {
		return 0
	}
	return t.LinkDone.Sub(t.CompileDone)
}

// Execute reports how long the actual call to compute() took.
func (t Timing) Execute() time.Duration {
	last := t.CompileDone
	if !t.LinkDone.IsZero() {
		last = t.LinkDone
	}
	if last.IsZero() {
		last = t.EmitDone
	}
	return t.ExecuteDone.Sub(last)
}

// Total reports the wall-clock time from Start to ExecuteDone.
func (t Timing) Total() time.Duration { return t.ExecuteDone.Sub(t.Start) }
