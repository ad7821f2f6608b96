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

package algebra

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a PlanError by which validation rule it broke.
type ErrorKind uint8

const (
	UnknownRelation ErrorKind = iota
	UnknownColumn
	TypeMismatch
	ArityMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownRelation:
		return "UnknownRelation"
	case UnknownColumn:
		return "UnknownColumn"
	case TypeMismatch:
		return "TypeMismatch"
	case ArityMismatch:
		return "ArityMismatch"
	default:
		return "?planerror"
	}
}

// PlanError is returned by the plan builder constructors. No partial plan
// escapes a failing constructor call: the builder returns either a frozen
// *Op or a non-nil *PlanError, never both.
type PlanError struct {
	Kind ErrorKind
	Msg  string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newErr(k ErrorKind, format string, args ...any) *PlanError {
	return &PlanError{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Is supports errors.Is(err, &algebra.PlanError{Kind: algebra.UnknownRelation})
// and friends by comparing Kind once the target has been unwrapped to a
// *PlanError.
func (e *PlanError) Is(target error) bool {
	var other *PlanError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}
