// Copyright 2021 Silvio Böhler
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package table lays out report rows in columns and renders them as text
// or CSV.
package table

import (
	"io"

	"github.com/briot/alere-sub000/lib/common/ratio"
)

// Alignment is the horizontal alignment of a text cell.
type Alignment int

const (
	// Left aligns to the left.
	Left Alignment = iota
	// Right aligns to the right.
	Right
)

// Renderer writes a table to an output.
type Renderer interface {
	Render(t *Table, w io.Writer) error
}

// Table is a list of rows. Its columns are partitioned into groups, and
// all columns of a group are rendered with the same width.
type Table struct {
	group []int
	rows  []*Row
}

// New creates a table whose columns are split into groups of the given
// sizes.
func New(groups ...int) *Table {
	t := new(Table)
	for g, n := range groups {
		for i := 0; i < n; i++ {
			t.group = append(t.group, g)
		}
	}
	return t
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.group)
}

// AddRow appends an empty row and returns it for filling.
func (t *Table) AddRow() *Row {
	r := &Row{width: t.Width()}
	t.rows = append(t.rows, r)
	return r
}

// AddSeparatorRow appends a horizontal rule.
func (t *Table) AddSeparatorRow() {
	t.rows = append(t.rows, &Row{width: t.Width(), rule: true})
}

// Row is a row of cells, filled from left to right.
type Row struct {
	width int
	rule  bool
	cells []cell
}

type cell struct {
	text    string
	num     ratio.Ratio
	align   Alignment
	numeric bool
}

// AddText adds a text cell.
func (r *Row) AddText(s string, align Alignment) *Row {
	r.cells = append(r.cells, cell{text: s, align: align})
	return r
}

// AddHeader adds a right-aligned title cell for each title, to head
// numeric columns.
func (r *Row) AddHeader(titles ...string) *Row {
	for _, t := range titles {
		r.AddText(t, Right)
	}
	return r
}

// AddNumber adds a right-aligned number cell. Undefined numbers render
// as NaN.
func (r *Row) AddNumber(n ratio.Ratio) *Row {
	r.cells = append(r.cells, cell{num: n, align: Right, numeric: true})
	return r
}

// AddNumbers adds a number cell for each value.
func (r *Row) AddNumbers(ns ...ratio.Ratio) *Row {
	for _, n := range ns {
		r.AddNumber(n)
	}
	return r
}

// FillEmpty pads the row with empty cells up to the table width.
func (r *Row) FillEmpty() *Row {
	for len(r.cells) < r.width {
		r.AddText("", Left)
	}
	return r
}
