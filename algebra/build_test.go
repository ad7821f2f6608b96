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
	"errors"
	"fmt"
	"testing"

	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/catalog"
)

type testResolver struct {
	tables map[string]catalog.TableID
	schema map[catalog.TableID][]catalog.Column
}

func newTestResolver() *testResolver {
	people := catalog.TableID(1)
	return &testResolver{
		tables: map[string]catalog.TableID{"people": people},
		schema: map[catalog.TableID][]catalog.Column{
			people: {
				{Name: "id", Type: catalog.I64},
				{Name: "age", Type: catalog.I64},
			},
		},
	}
}

func (r *testResolver) Table(name string) (catalog.TableID, []catalog.Column, error) {
	id, ok := r.tables[name]
	if !ok {
		return 0, nil, fmt.Errorf("no such relation %q", name)
	}
	return id, r.schema[id], nil
}

func (r *testResolver) Column(t catalog.TableID, name string) (catalog.ColumnID, catalog.ScalarType, error) {
	for i, c := range r.schema[t] {
		if c.Name == name {
			return catalog.ColumnID(i), c.Type, nil
		}
	}
	return 0, 0, fmt.Errorf("no such column %q", name)
}

func TestNewScanUnknownRelation(t *testing.T) {
	_, err := algebra.NewScan(newTestResolver(), "nope")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, &algebra.PlanError{Kind: algebra.UnknownRelation}) {
		t.Fatalf("got %v, want UnknownRelation", err)
	}
}

func TestNewSelectRejectsNonBoolPredicate(t *testing.T) {
	scan, err := algebra.NewScan(newTestResolver(), "people")
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	_, err = algebra.NewSelect(scan, algebra.ColumnRef("age", 1, catalog.I64))
	if !errors.Is(err, &algebra.PlanError{Kind: algebra.TypeMismatch}) {
		t.Fatalf("got %v, want TypeMismatch", err)
	}
}

func TestNewSelectRejectsUnknownColumn(t *testing.T) {
	scan, err := algebra.NewScan(newTestResolver(), "people")
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	pred := algebra.Binary(algebra.GT, algebra.ColumnRef("bogus", 0, catalog.I64), algebra.IntLiteral(0), catalog.Bool)
	_, err = algebra.NewSelect(scan, pred)
	if !errors.Is(err, &algebra.PlanError{Kind: algebra.UnknownColumn}) {
		t.Fatalf("got %v, want UnknownColumn", err)
	}
}

func TestNewHashJoinArityMismatch(t *testing.T) {
	res := newTestResolver()
	left, err := algebra.NewScan(res, "people")
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	right, err := algebra.NewScan(res, "people")
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	leftKeys := []*algebra.Expr{algebra.ColumnRef("id", 0, catalog.I64)}
	var rightKeys []*algebra.Expr
	_, err = algebra.NewHashJoin(left, right, leftKeys, rightKeys, nil)
	if !errors.Is(err, &algebra.PlanError{Kind: algebra.ArityMismatch}) {
		t.Fatalf("got %v, want ArityMismatch", err)
	}
}

func TestNewOutputPreservesChildSchema(t *testing.T) {
	scan, err := algebra.NewScan(newTestResolver(), "people")
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	out, err := algebra.NewOutput(scan)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	if out.Kind != algebra.OutputOp {
		t.Fatalf("Kind = %v, want OutputOp", out.Kind)
	}
	if len(out.Children) != 1 || out.Children[0] != scan {
		t.Fatalf("Output should wrap scan directly")
	}
}
