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

package invest

import (
	"errors"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/briot/alere-sub000/cmd/flags"
	"github.com/briot/alere-sub000/lib/common/compare"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/filter"
	"github.com/briot/alere-sub000/lib/common/table"
	"github.com/briot/alere-sub000/lib/engine"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/performance"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	// Cmd is the invest command.
	c := &cobra.Command{
		Use:   "invest [ACCOUNT]",
		Short: "compute investment metrics",
		Long: `Compute invested and realized capital, average costs, return on investment
and profit of an account over time. With --all, compute them for every net
worth account at the reference date.`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	global   flags.Global
	query    flags.QueryFlags
	target   flags.CommodityFlag
	all      bool
	progress bool
	accounts flags.RegexFlag
}

func (r *runner) setupFlags(c *cobra.Command) {
	r.global.Setup(c)
	r.query.Setup(c)
	c.Flags().VarP(&r.target, "target", "t", "commodity to value in")
	c.Flags().BoolVar(&r.all, "all", false, "all net worth accounts at the reference date")
	c.Flags().BoolVar(&r.progress, "progress", false, "show a progress bar")
	c.Flags().Var(&r.accounts, "account", "with --all, only accounts whose path matches a regex")
	c.MarkFlagRequired("target")
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	if err := r.execute(cmd, args); err != nil {
		return fmt.Errorf("invest: %w", err)
	}
	return nil
}

var metrics = []string{"Shares", "Price", "Balance", "Invested", "Realized", "Avg cost", "W. avg", "ROI", "P&L"}

func addMetrics(row *table.Row, p *performance.Row) {
	row.AddNumbers(p.Shares, p.Price, p.Balance, p.Invested, p.Realized, p.AverageCost, p.WeightedAverage, p.ROI, p.PL)
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
	switch {
	case r.all && len(args) > 0:
		return errors.New("--all does not take an account")
	case r.all:
		return r.executeAll(cmd, e, opts)
	case len(args) == 0:
		return errors.New("missing account")
	}
	rows, err := e.Investment(cmd.Context(), args[0], r.target.String(), opts)
	if err != nil {
		return err
	}
	tbl := table.New(2, len(metrics))
	tbl.AddRow().AddText("From", table.Left).AddText("To", table.Left).AddHeader(metrics...)
	tbl.AddSeparatorRow()
	for i := range rows {
		row := tbl.AddRow().
			AddText(rows[i].Min.Format(date.Layout), table.Left).
			AddText(rows[i].Max.Format(date.Layout), table.Left)
		addMetrics(row, &rows[i])
	}
	return r.global.Render(cmd, tbl)
}

func (r *runner) executeAll(cmd *cobra.Command, e *engine.Engine, opts engine.Options) error {
	var progress func(done, total int)
	if r.progress {
		bar := pb.New(0)
		bar.SetWriter(cmd.ErrOrStderr())
		bar.Start()
		defer bar.Finish()
		progress = func(done, total int) {
			bar.SetTotal(int64(total))
			bar.Increment()
		}
	}
	res, errs := e.InvestmentAll(cmd.Context(), r.target.String(), opts, progress)
	if res == nil && errs != nil {
		return errs
	}
	col := collate.New(language.English)
	compare.Sort(res, func(r1, r2 engine.AccountResult) compare.Order {
		return compare.Order(col.CompareString(r1.Account.Path(), r2.Account.Path()))
	})
	tbl := table.New(1, len(metrics))
	tbl.AddRow().AddText("Account", table.Left).AddHeader(metrics...)
	tbl.AddSeparatorRow()
	keep := filter.ByPath[*account.Account](r.accounts.Value())
	for _, ar := range res {
		switch {
		case !keep(ar.Account):
		case ar.Err != nil:
			tbl.AddRow().AddText(ar.Account.Path(), table.Left).AddText(ar.Err.Error(), table.Left).FillEmpty()
		case ar.Row != nil:
			addMetrics(tbl.AddRow().AddText(ar.Account.Path(), table.Left), ar.Row)
		}
	}
	if err := r.global.Render(cmd, tbl); err != nil {
		return err
	}
	return errs
}
