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


package table

import (
	"strings"
	"unicode/utf8"

	"github.com/briot/alere-sub000/lib/common/ratio"
)

// field is a cell with its number already formatted.
type field struct {
	s     string
	align Alignment
	sign  int
}

func (f field) len() int {
	return utf8.RuneCountInString(f.s)
}

// layout is the formatted content of a table. Rules are nil lines.
type layout struct {
	lines  [][]field
	widths []int
}

// format turns every cell of the table into text, using fn for numbers,
// and computes the column widths. Each column is widened to the widest
// column of its group.
func (t *Table) format(fn func(ratio.Ratio) string) layout {
	l := layout{
		lines:  make([][]field, 0, len(t.rows)),
		widths: make([]int, t.Width()),
	}
	for _, r := range t.rows {
		if r.rule {
			l.lines = append(l.lines, nil)
			continue
		}
		fs := make([]field, len(r.cells))
		for i, c := range r.cells {
			fs[i] = field{s: c.text, align: c.align}
			if c.numeric {
				fs[i].s, fs[i].sign = fn(c.num), c.num.Sign()
			}
			l.widths[i] = max(l.widths[i], fs[i].len())
		}
		l.lines = append(l.lines, fs)
	}
	widest := make(map[int]int)
	for i, w := range l.widths {
		widest[t.group[i]] = max(widest[t.group[i]], w)
	}
	for i := range l.widths {
		l.widths[i] = widest[t.group[i]]
	}
	return l
}

// groupThousands inserts commas into the integer part of a formatted
// decimal number. Other strings are returned unchanged.
func groupThousands(s string) string {
	sign, digits := "", s
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	whole, frac, hasFrac := strings.Cut(digits, ".")
	if len(whole) <= 3 || strings.IndexFunc(whole, notDigit) >= 0 {
		return s
	}
	var b strings.Builder
	b.WriteString(sign)
	head := len(whole) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(whole[:head])
	for i := head; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}
