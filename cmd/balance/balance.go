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

package balance

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/briot/alere-sub000/cmd/flags"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/table"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the balance command.
	c := &cobra.Command{
		Use:   "balance ACCOUNT",
		Short: "show the balance history of an account",
		Long:  `Compute the quantity held by an account over time, in the account's own commodity.`,
		Args:  cobra.ExactArgs(1),
		RunE:  r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	global flags.Global
	query  flags.QueryFlags
}

func (r *runner) setupFlags(c *cobra.Command) {
	r.global.Setup(c)
	r.query.Setup(c)
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	if err := r.execute(cmd, args); err != nil {
		return fmt.Errorf("balance: %w", err)
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
	is, err := e.Balances(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	tbl := table.New(2, 1)
	tbl.AddRow().AddText("From", table.Left).AddText("To", table.Left).AddHeader("Shares")
	tbl.AddSeparatorRow()
	for _, i := range is {
		tbl.AddRow().
			AddText(i.Min.Format(date.Layout), table.Left).
			AddText(i.Max.Format(date.Layout), table.Left).
			AddNumber(i.Shares)
	}
	return r.global.Render(cmd, tbl)
}
