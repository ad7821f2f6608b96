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

package translate

// Translator is one node of the translator tree the Factory builds from
// an algebra.Op plan. Produce emits the loop(s)/calls that drive tuples
// upward; Consume receives control when a child (identified by src) has
// a tuple materialized in its Values(). Each translator keeps a parent
// back-pointer so Consume can walk upward once its own tuple is ready.
type Translator interface {
	Produce()
	Consume(src Translator)
	Values() *SchemaValues
	setParent(p Translator)
}

// base implements the bookkeeping every concrete translator shares:
// the shared Context, a parent back-pointer, and the tuple currently
// materialized for this node.
type base struct {
	ctx    *Context
	parent Translator
	values SchemaValues
}

func (b *base) Values() *SchemaValues  { return &b.values }
func (b *base) setParent(p Translator) { b.parent = p }
