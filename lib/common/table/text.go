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
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/briot/alere-sub000/lib/common/ratio"
)

// TextRenderer renders a table as framed text. Numbers are rounded to
// Round decimal places and grouped by thousands. With Color, positive
// numbers are green and negative ones red.
type TextRenderer struct {
	Color bool
	Round int32
}

var _ Renderer = (*TextRenderer)(nil)

// Render renders the table to w.
func (r *TextRenderer) Render(t *Table, w io.Writer) error {
	l := t.format(func(n ratio.Ratio) string {
		if !n.Valid() {
			return "NaN"
		}
		return groupThousands(n.Format(r.Round))
	})
	var (
		green = r.palette(color.FgGreen)
		red   = r.palette(color.FgRed)
		b     strings.Builder
	)
	for _, fs := range l.lines {
		b.Reset()
		if fs == nil {
			b.WriteString("+-")
			for i, w := range l.widths {
				if i > 0 {
					b.WriteString("-+-")
				}
				b.WriteString(strings.Repeat("-", w))
			}
			b.WriteString("-+\n")
		} else {
			b.WriteString("| ")
			for i, f := range fs {
				if i > 0 {
					b.WriteString(" | ")
				}
				pad := strings.Repeat(" ", l.widths[i]-f.len())
				s := f.s
				switch f.sign {
				case 1:
					s = green.Sprint(s)
				case -1:
					s = red.Sprint(s)
				}
				if f.align == Right {
					b.WriteString(pad)
					b.WriteString(s)
				} else {
					b.WriteString(s)
					b.WriteString(pad)
				}
			}
			b.WriteString(" |\n")
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (r *TextRenderer) palette(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
