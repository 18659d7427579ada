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
	"encoding/csv"
	"io"

	"github.com/briot/alere-sub000/lib/common/ratio"
)

// CSVRenderer renders a table as comma-separated values, with numbers
// rounded to Round decimal places. Rules and blank rows are skipped.
type CSVRenderer struct {
	Round int32
}

var _ Renderer = (*CSVRenderer)(nil)

// Render renders the table to w.
func (r *CSVRenderer) Render(t *Table, w io.Writer) error {
	l := t.format(func(n ratio.Ratio) string {
		return n.Format(r.Round)
	})
	cw := csv.NewWriter(w)
	for _, fs := range l.lines {
		rec := make([]string, len(fs))
		blank := true
		for i, f := range fs {
			rec[i] = f.s
			blank = blank && f.s == ""
		}
		if blank {
			continue
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
