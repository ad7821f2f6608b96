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

// RPOResult is the outcome of a reverse post-order traversal: Order lists
// blocks in RPO, and Label gives each block's position in Order (-1 for
// unreachable blocks).
type RPOResult struct {
	Order []int
	Label []int
}

// RPO computes reverse post-order from entry (block 0), visiting
// successors in the order given by g.Succs. A block is appended to the
// post-order list only after every successor reachable without revisiting
// an already-started block has been visited; RPO is that list reversed.
func RPO(g *Graph) *RPOResult {
	n := g.N()
	visited := make([]bool, n)
	post := make([]int, 0, n)

	var visit func(u int)
	visit = func(u int) {
		visited[u] = true
		for _, v := range g.Succs[u] {
			if !visited[v] {
				visit(v)
			}
		}
		post = append(post, u)
	}
	if n > 0 {
		visit(0)
	}

	order := make([]int, len(post))
	for i, b := range post {
		order[len(post)-1-i] = b
	}

	label := make([]int, n)
	for i := range label {
		label[i] = -1
	}
	for i, b := range order {
		label[b] = i
	}
	return &RPOResult{Order: order, Label: label}
}
