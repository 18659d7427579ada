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

package value

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/briot/alere-sub000/cmd/flags"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/table"
	"github.com/briot/alere-sub000/lib/valuation"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the value command.
	c := &cobra.Command{
		Use:   "value ACCOUNT",
		Short: "value an account in a commodity",
		Long: `Compute the balance history of an account priced in the target commodity.
With --at, show the value on a single date.`,
		Args: cobra.ExactArgs(1),
		RunE: r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	global flags.Global
	query  flags.QueryFlags
	target flags.CommodityFlag
	at     flags.DateFlag
}

func (r *runner) setupFlags(c *cobra.Command) {
	r.global.Setup(c)
	r.query.Setup(c)
	c.Flags().VarP(&r.target, "target", "t", "commodity to value in")
	c.Flags().Var(&r.at, "at", "value on a single date")
	c.MarkFlagRequired("target")
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	if err := r.execute(cmd, args); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	return nil
}

func (r *runner) execute(cmd *cobra.Command, args []string) error {
	e, closeFn, err := r.global.Engine(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	opts, err := r.query.Options(e.Config().Armageddon)
	if err != nil {
		return err
	}
	var rows []valuation.Row
	if at := r.at.Value(); !at.IsZero() {
		row, ok, err := e.ValueAt(cmd.Context(), args[0], r.target.String(), at, opts)
		if err != nil {
			return err
		}
		if ok {
			rows = append(rows, row)
		}
	} else {
		if rows, err = e.ValuedBalances(cmd.Context(), args[0], r.target.String(), opts); err != nil {
			return err
		}
	}
	tbl := table.New(2, 3)
	tbl.AddRow().AddText("From", table.Left).AddText("To", table.Left).AddHeader("Shares", "Price", "Balance")
	tbl.AddSeparatorRow()
	for _, row := range rows {
		tbl.AddRow().
			AddText(row.Min.Format(date.Layout), table.Left).
			AddText(row.Max.Format(date.Layout), table.Left).
			AddNumbers(row.Shares, row.Price, row.Balance)
	}
	return r.global.Render(cmd, tbl)
}
