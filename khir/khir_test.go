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

package khir

import (
	"reflect"
	"testing"
)

// BBLabel over a simple chain graph with one unreachable block.
func TestBBLabelChain(t *testing.T) {
	g := NewGraph([][]int{{1, 5}, {2}, {3}, {}, {}, {}})
	dom := Dominators(g)
	got := BBLabel(dom)
	wantPre := []int{0, 1, 2, 3, -1, 7}
	wantPost := []int{9, 6, 5, 4, -1, 8}
	if !reflect.DeepEqual(got.Pre, wantPre) {
		t.Fatalf("pre = %v, want %v", got.Pre, wantPre)
	}
	if !reflect.DeepEqual(got.Post, wantPost) {
		t.Fatalf("post = %v, want %v", got.Post, wantPost)
	}
}

// Scenario 2: BBLabel loop.
func TestBBLabelLoop(t *testing.T) {
	g := NewGraph([][]int{{1}, {2, 4}, {3}, {1}, {}})
	dom := Dominators(g)
	got := BBLabel(dom)
	wantPre := []int{0, 1, 2, 3, 6}
	wantPost := []int{9, 8, 5, 4, 7}
	if !reflect.DeepEqual(got.Pre, wantPre) {
		t.Fatalf("pre = %v, want %v", got.Pre, wantPre)
	}
	if !reflect.DeepEqual(got.Post, wantPost) {
		t.Fatalf("post = %v, want %v", got.Post, wantPost)
	}
}

// Scenario 3: RPO loop.
func TestRPOLoop(t *testing.T) {
	g := NewGraph([][]int{{1}, {2, 4}, {3}, {1}, {}})
	got := RPO(g)
	wantOrder := []int{0, 1, 4, 2, 3}
	wantLabel := []int{0, 1, 3, 4, 2}
	if !reflect.DeepEqual(got.Order, wantOrder) {
		t.Fatalf("order = %v, want %v", got.Order, wantOrder)
	}
	if !reflect.DeepEqual(got.Label, wantLabel) {
		t.Fatalf("label = %v, want %v", got.Label, wantLabel)
	}
}

// Scenario 4: Dominator split.
func TestDominatorSplit(t *testing.T) {
	g := NewGraph([][]int{{1}, {2, 3}, {4}, {4}, {}})
	dom := Dominators(g)
	want := [][]int{{1}, {2, 3, 4}, {}, {}, {}}
	if !reflect.DeepEqual(dom.Children, want) {
		t.Fatalf("children = %v, want %v", dom.Children, want)
	}
}

// Scenario 5: Loop tree nested.
func TestLoopTreeNested(t *testing.T) {
	g := NewGraph([][]int{{1}, {2, 5}, {3, 4}, {2}, {1}, {}})
	dom := Dominators(g)
	forest := NaturalLoops(g, dom)
	want := [][]int{{}, {2, 4}, {3}, {}, {}, {}}
	if !reflect.DeepEqual(forest.Children, want) {
		t.Fatalf("children = %v, want %v", forest.Children, want)
	}
}

func TestRPOTotality(t *testing.T) {
	g := NewGraph([][]int{{1, 5}, {2}, {3}, {}, {}, {}})
	got := RPO(g)
	for b, lbl := range got.Label {
		if b == 4 {
			if lbl != -1 {
				t.Fatalf("unreachable block 4 got label %d", lbl)
			}
			continue
		}
		if lbl < 0 {
			t.Fatalf("reachable block %d got negative label", b)
		}
	}
}

func TestDominatorCorrectness(t *testing.T) {
	g := NewGraph([][]int{{1}, {2, 3}, {4}, {4}, {}})
	dom := Dominators(g)
	for b := 1; b < g.N(); b++ {
		if !dom.Reachable(b) {
			continue
		}
		if !dom.Dominates(dom.IDom[b], b) {
			t.Fatalf("idom(%d)=%d does not dominate %d", b, dom.IDom[b], b)
		}
	}
	if !dom.Dominates(0, 0) {
		t.Fatalf("block should dominate itself")
	}
}

func TestLoopCorrectnessNoPartialOverlap(t *testing.T) {
	g := NewGraph([][]int{{1}, {2, 5}, {3, 4}, {2}, {1}, {}})
	dom := Dominators(g)
	forest := NaturalLoops(g, dom)
	set := func(l *Loop) map[int]bool {
		m := make(map[int]bool, len(l.Blocks))
		for _, b := range l.Blocks {
			m[b] = true
		}
		return m
	}
	for i, a := range forest.Loops {
		for j, b := range forest.Loops {
			if i >= j {
				continue
			}
			as, bs := set(a), set(b)
			aSubB, bSubA := true, true
			for k := range as {
				if !bs[k] {
					aSubB = false
				}
			}
			for k := range bs {
				if !as[k] {
					bSubA = false
				}
			}
			disjoint := true
			for k := range as {
				if bs[k] {
					disjoint = false
				}
			}
			if !disjoint && !aSubB && !bSubA {
				t.Fatalf("loops headed at %d and %d partially overlap", a.Header, b.Header)
			}
		}
	}
}
