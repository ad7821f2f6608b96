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

import "golang.org/x/exp/slices"

// Loop is one natural loop: Header is its header block, Blocks its full
// body (including the header), sorted ascending.
type Loop struct {
	Header int
	Blocks []int
}

// LoopForest is the result of natural-loop discovery and loop-tree
// construction. Children[b] lists, for a loop header b, the blocks
// directly nested one level inside it: plain member blocks of the loop
// that do not belong to any more deeply nested loop, and the headers of
// loops that are nested one level down. Children[b] is empty for any b
// that is not a loop header.
type LoopForest struct {
	Loops    []*Loop // one per distinct header, ascending header order
	Children [][]int
}

// union-find over blocks, used to collapse a fully processed loop to its
// header so enclosing loops see it as a single unit.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(x, root int) {
	u.parent[u.find(x)] = root
}

// NaturalLoops discovers every natural loop in g (back-edge target
// dominates back-edge source), merges loops sharing a header, and builds
// the loop-containment tree over blocks. Loops of equal size are ordered
// by ascending header index before attachment, a deterministic
// tiebreaker.
func NaturalLoops(g *Graph, dom *DomTree) *LoopForest {
	n := g.N()
	bodies := make(map[int]map[int]bool) // header -> block set

	for u := 0; u < n; u++ {
		if !dom.Reachable(u) {
			continue
		}
		for _, v := range g.Succs[u] {
			if !dom.Reachable(v) || !dom.Dominates(v, u) {
				continue
			}
			// back edge u -> v, header v
			body := bodies[v]
			if body == nil {
				body = map[int]bool{v: true}
				bodies[v] = body
			}
			stack := []int{u}
			if !body[u] {
				body[u] = true
			} else {
				stack = nil
			}
			for len(stack) > 0 {
				m := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, p := range g.Preds[m] {
					if !body[p] {
						body[p] = true
						stack = append(stack, p)
					}
				}
			}
		}
	}

	headers := make([]int, 0, len(bodies))
	for h := range bodies {
		headers = append(headers, h)
	}
	slices.Sort(headers)

	loops := make([]*Loop, 0, len(headers))
	for _, h := range headers {
		blocks := make([]int, 0, len(bodies[h]))
		for b := range bodies[h] {
			blocks = append(blocks, b)
		}
		slices.Sort(blocks)
		loops = append(loops, &Loop{Header: h, Blocks: blocks})
	}

	ordered := append([]*Loop(nil), loops...)
	slices.SortFunc(ordered, func(a, b *Loop) bool {
		if len(a.Blocks) != len(b.Blocks) {
			return len(a.Blocks) < len(b.Blocks)
		}
		return a.Header < b.Header
	})

	uf := newUnionFind(n)
	children := make([][]int, n)
	for _, l := range ordered {
		reps := make(map[int]bool)
		for _, b := range l.Blocks {
			if b == l.Header {
				continue
			}
			reps[uf.find(b)] = true
		}
		childList := make([]int, 0, len(reps))
		for r := range reps {
			childList = append(childList, r)
		}
		slices.Sort(childList)
		children[l.Header] = childList
		for _, b := range l.Blocks {
			uf.union(b, l.Header)
		}
	}

	return &LoopForest{Loops: loops, Children: children}
}
