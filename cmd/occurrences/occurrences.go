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

package occurrences

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/briot/alere-sub000/cmd/flags"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/table"
	"github.com/briot/alere-sub000/lib/model/transaction"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the occurrences command.
	c := &cobra.Command{
		Use:   "occurrences TRANSACTION",
		Short: "list the occurrences of a scheduled transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	global flags.Global
	max    int
}

func (r *runner) setupFlags(c *cobra.Command) {
	r.global.Setup(c)
	c.Flags().IntVarP(&r.max, "max", "n", 10, "maximum number of occurrences")
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	if err := r.execute(cmd, args); err != nil {
		return fmt.Errorf("occurrences: %w", err)
	}
	return nil
}

func (r *runner) execute(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid transaction ID %q: %w", args[0], err)
	}
	e, closeFn, err := r.global.Engine(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	ds, err := e.Occurrences(cmd.Context(), transaction.ID(id), r.max)
	if err != nil {
		return err
	}
	tbl := table.New(1, 1)
	tbl.AddRow().AddHeader("#").AddText("Date", table.Left)
	tbl.AddSeparatorRow()
	for i, d := range ds {
		tbl.AddRow().AddText(strconv.Itoa(i+1), table.Right).AddText(d.Format(date.Layout), table.Left)
	}
	return r.global.Render(cmd, tbl)
}
