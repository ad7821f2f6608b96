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

// Package khir computes the classical compiler analyses the code
// generator needs over a function's control-flow graph: reverse
// post-order labeling, the dominator tree, natural loops, and the
// pre/post block labeling used for liveness. Every analysis here is a
// pure, deterministic, total function of (successors, predecessors) —
// given the same graph, they produce byte-for-byte identical output
// every time.
package khir

// Graph is a function's basic blocks represented purely as adjacency:
// Succs[i] lists the successors of block i, Preds[i] its predecessors.
// Entry is always block 0. Graphs are computed on demand from a backend's
// module (see bitcode.BasicBlock) and owned by the caller; they are
// discarded after code generation.
type Graph struct {
	Succs [][]int
	Preds [][]int
}

// NewGraph builds a Graph from a list of successor lists, deriving
// predecessor lists by inversion.
func NewGraph(succs [][]int) *Graph {
	g := &Graph{Succs: succs, Preds: make([][]int, len(succs))}
	for u, outs := range succs {
		for _, v := range outs {
			g.Preds[v] = append(g.Preds[v], u)
		}
	}
	return g
}

// N is the number of blocks in the graph.
func (g *Graph) N() int { return len(g.Succs) }
