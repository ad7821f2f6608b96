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

package algebra_test

import (
	"testing"

	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/catalog"
)

func TestParseExprLiteralsAndColumns(t *testing.T) {
	e, err := algebra.ParseExpr("age")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	if e.Kind != algebra.KindColumnRef || e.ColName != "age" {
		t.Fatalf("got %+v, want a column ref named age", e)
	}
	if e.ColIndex != -1 || e.Type != catalog.Invalid {
		t.Fatalf("unresolved column ref should carry ColIndex -1, Type Invalid; got %d, %v", e.ColIndex, e.Type)
	}
}

func TestParseExprComparison(t *testing.T) {
	e, err := algebra.ParseExpr("age < 10")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	if e.Kind != algebra.KindBinary || e.Op != algebra.LT {
		t.Fatalf("got %+v, want a < comparison", e)
	}
	if e.Type != catalog.Bool {
		t.Fatalf("Type = %v, want Bool", e.Type)
	}
}

func TestParseExprRejectsStringLiteral(t *testing.T) {
	e, err := algebra.ParseExpr(`contains(name, "smith")`)
	if err == nil {
		t.Fatalf("expected an error: %q isn't a string literal grammar, got %+v", "contains(name, \"smith\")", e)
	}
}

func TestParseExprPrecedenceAndParens(t *testing.T) {
	e, err := algebra.ParseExpr("(age + 1) * 2")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	if e.Kind != algebra.KindBinary || e.Op != algebra.MUL {
		t.Fatalf("got %+v, want outermost * ", e)
	}
}

func TestParseExprRejectsTrailingGarbage(t *testing.T) {
	if _, err := algebra.ParseExpr("age < 10)"); err == nil {
		t.Fatal("expected an error for unbalanced trailing input")
	}
}

func TestParseExprAggregate(t *testing.T) {
	e, err := algebra.ParseExpr("COUNT(*)")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	if e.Kind != algebra.KindAggregate || e.Agg != algebra.Count {
		t.Fatalf("got %+v, want COUNT(*)", e)
	}
}
