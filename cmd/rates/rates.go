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

package rates

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

	// Cmd is the rates command.
	c := &cobra.Command{
		Use:   "rates",
		Short: "list exchange rates",
		Long:  `List the turnkey exchange rates of every commodity into every currency.`,
		Args:  cobra.NoArgs,
		RunE:  r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	global         flags.Global
	origin, target flags.CommodityFlag
}

func (r *runner) setupFlags(c *cobra.Command) {
	r.global.Setup(c)
	c.Flags().Var(&r.origin, "origin", "only rates of this commodity")
	c.Flags().VarP(&r.target, "target", "t", "only rates into this currency")
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	if err := r.execute(cmd, args); err != nil {
		return fmt.Errorf("rates: %w", err)
	}
	return nil
}

func (r *runner) execute(cmd *cobra.Command, args []string) error {
	e, closeFn, err := r.global.Engine(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	es, err := e.Rates(cmd.Context())
	if err != nil {
		return err
	}
	tbl := table.New(2, 2, 1, 2)
	tbl.AddRow().
		AddText("Origin", table.Left).
		AddText("Target", table.Left).
		AddText("From", table.Left).
		AddText("To", table.Left).
		AddHeader("Rate").
		AddText("Source", table.Left).
		AddText("Via", table.Left)
	tbl.AddSeparatorRow()
	for _, edge := range es {
		if edge.Origin.Name != r.origin.Value(edge.Origin.Name) || edge.Target.Name != r.target.Value(edge.Target.Name) {
			continue
		}
		var via string
		if edge.Pivot != nil && edge.Pivot != edge.Target {
			via = edge.Pivot.Name
		}
		tbl.AddRow().
			AddText(edge.Origin.Name, table.Left).
			AddText(edge.Target.Name, table.Left).
			AddText(edge.Min.Format(date.Layout), table.Left).
			AddText(edge.Max.Format(date.Layout), table.Left).
			AddNumber(edge.Rate()).
			AddText(edge.Source.String(), table.Left).
			AddText(via, table.Left)
	}
	return r.global.Render(cmd, tbl)
}
