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
	"errors"
	"fmt"
)

// ErrorKind classifies an *Error the way algebra.ErrorKind classifies a
// *PlanError: one bucket per stage of path A/B's pipeline (emit, compile,
// link, load, execute).
type ErrorKind uint8

const (
	EmitFailed ErrorKind = iota
	CompileFailed
	LinkFailed
	LoadFailed
	SymbolNotFound
	ExecuteFailed
)

func (k ErrorKind) String() string {
	switch k {
	case EmitFailed:
		return "EmitFailed"
	case CompileFailed:
		return "CompileFailed"
	case LinkFailed:
		return "LinkFailed"
	case LoadFailed:
		return "LoadFailed"
	case SymbolNotFound:
		return "SymbolNotFound"
	case ExecuteFailed:
		return "ExecuteFailed"
	default:
		return "?drivererror"
	}
}

// Error is returned by RunSourceText/RunBitcode. It wraps whatever
// underlying error (compiler exit status, plugin.Open failure, ...)
// caused the pipeline to stop, tagged with the stage it stopped at.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Is supports errors.Is(err, &Error{Kind: driver.CompileFailed}) and
// friends, mirroring algebra.PlanError.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}
