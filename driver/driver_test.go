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
	"bytes"
	"testing"

	"github.com/kushdb/kushc/algebra"
	"github.com/kushdb/kushc/catalog"
	"github.com/kushdb/kushc/config"
)

// fixtureResolver resolves a single "test" table with one i32 column,
// the shape algebra/testdata/test.skdbcol stands in for.
type fixtureResolver struct{}

func (fixtureResolver) Table(name string) (catalog.TableID, []catalog.Column, error) {
	if name != "test" {
		return 0, nil, &algebraUnknownErr{name}
	}
	return 1, []catalog.Column{{Name: "col0", Type: catalog.I32}}, nil
}

func (fixtureResolver) Column(t catalog.TableID, name string) (catalog.ColumnID, catalog.ScalarType, error) {
	if name != "col0" {
		return 0, catalog.Invalid, &algebraUnknownErr{name}
	}
	return 0, catalog.I32, nil
}

type algebraUnknownErr struct{ name string }

func (e *algebraUnknownErr) Error() string { return "unknown: " + e.name }

// buildScenario6 builds Output(Select(col0 < 10, Scan("test"))) against
// fixtureResolver's single-column schema.
func buildScenario6(t *testing.T) *algebra.Op {
	t.Helper()
	scan, err := algebra.NewScan(fixtureResolver{}, "test")
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	pred := algebra.Binary(algebra.LT,
		algebra.ColumnRef("col0", 0, catalog.I32),
		algebra.IntLiteral(10),
		catalog.Bool)
	sel, err := algebra.NewSelect(scan, pred)
	if err != nil {
		t.Fatalf("NewSelect: %v", err)
	}
	out, err := algebra.NewOutput(sel)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	return out
}

// TestRunBitcodeScenario6 runs a small end-to-end query over the bitcode
// interpreter (path B): Output(Select(col0 < 10, Scan("test"))) over
// [3, 20, 7, 15] must print "3|\n7|\n".
func TestRunBitcodeScenario6(t *testing.T) {
	root := buildScenario6(t)
	data := Dataset{1: {Columns: []Column{NarrowIntColumn(catalog.I32, []int64{3, 20, 7, 15})}}}

	var out bytes.Buffer
	if _, err := RunBitcode(root, data, config.Default(), &out); err != nil {
		t.Fatalf("RunBitcode: %v", err)
	}

	const want = "3|\n7|\n"
	if got := out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

// TestRunBitcodeEmptyResult exercises the zero-match path through the
// same plan shape, over data none of which satisfies the predicate.
func TestRunBitcodeEmptyResult(t *testing.T) {
	root := buildScenario6(t)
	data := Dataset{1: {Columns: []Column{NarrowIntColumn(catalog.I32, []int64{20, 30, 40})}}}

	var out bytes.Buffer
	if _, err := RunBitcode(root, data, config.Default(), &out); err != nil {
		t.Fatalf("RunBitcode: %v", err)
	}
	if got := out.String(); got != "" {
		t.Fatalf("output = %q, want empty", got)
	}
}
