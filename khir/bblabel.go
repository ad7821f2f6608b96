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

// BBLabelResult holds the pre/post numbering used for constant-time
// dominance queries during liveness analysis: for reachable blocks a, b,
// a dominates b iff Pre[a] <= Pre[b] && Post[a] >= Post[b]. Unreachable
// blocks get -1 in both arrays.
type BBLabelResult struct {
	Pre  []int
	Post []int
}

// BBLabel performs a DFS over the dominator tree (children visited in
// ascending block-index order, per DomTree.Children), assigning pre and
// post numbers from one shared monotonic counter that advances on both
// the entry and the exit event of each node. This produces a dense range
// of 2*|reachable blocks| numbers with gaps only where blocks are
// unreachable.
func BBLabel(dom *DomTree) *BBLabelResult {
	n := len(dom.IDom)
	pre := make([]int, n)
	post := make([]int, n)
	for i := range pre {
		pre[i] = -1
		post[i] = -1
	}
	counter := 0
	var visit func(u int)
	visit = func(u int) {
		pre[u] = counter
		counter++
		for _, c := range dom.Children[u] {
			visit(c)
		}
		post[u] = counter
		counter++
	}
	if n > 0 {
		visit(0)
	}
	return &BBLabelResult{Pre: pre, Post: post}
}

// Dominates reports dominance using the pre/post numbers, equivalent to
// (but cheaper than) DomTree.Dominates.
func (r *BBLabelResult) Dominates(a, b int) bool {
	if r.Pre[a] < 0 || r.Pre[b] < 0 {
		return false
	}
	return r.Pre[a] <= r.Pre[b] && r.Post[a] >= r.Post[b]
}
