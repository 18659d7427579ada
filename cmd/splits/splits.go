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

package splits

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/briot/alere-sub000/cmd/flags"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/filter"
	"github.com/briot/alere-sub000/lib/common/table"
	"github.com/briot/alere-sub000/lib/model/account"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the splits command.
	c := &cobra.Command{
		Use:   "splits [ACCOUNT]",
		Short: "list the effective splits",
		Long: `List the splits in effect in the window, sorted by post date. Occurrences of
scheduled transactions are included with --scheduled. --account can be
repeated and keeps the splits of accounts matching any of the patterns.`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	global   flags.Global
	query    flags.QueryFlags
	accounts flags.RegexFlag
}

func (r *runner) setupFlags(c *cobra.Command) {
	r.global.Setup(c)
	r.query.Setup(c)
	c.Flags().Var(&r.accounts, "account", "only accounts whose path matches a regex")
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	if err := r.execute(cmd, args); err != nil {
		return fmt.Errorf("splits: %w", err)
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
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	ss, err := e.Splits(cmd.Context(), name, opts)
	if err != nil {
		return err
	}
	tbl := table.New(1, 1, 1, 1, 2, 1)
	tbl.AddRow().
		AddText("Date", table.Left).
		AddHeader("Tx").
		AddText("Memo", table.Left).
		AddText("Account", table.Left).
		AddHeader("Quantity", "Value").
		AddText("Commodity", table.Left)
	tbl.AddSeparatorRow()
	keep := filter.ByPath[*account.Account](r.accounts.Value())
	for _, s := range ss {
		if !keep(s.Account) {
			continue
		}
		tx := strconv.FormatInt(int64(s.Transaction.ID), 10)
		if s.Occurrence > 0 {
			tx = fmt.Sprintf("%s#%d", tx, s.Occurrence)
		}
		tbl.AddRow().
			AddText(s.PostDate.Format(date.Layout), table.Left).
			AddText(tx, table.Right).
			AddText(s.Transaction.Memo, table.Left).
			AddText(s.Account.Path(), table.Left).
			AddNumbers(s.Qty(), s.Value()).
			AddText(s.ValueCommodity.Name, table.Left)
	}
	return r.global.Render(cmd, tbl)
}
