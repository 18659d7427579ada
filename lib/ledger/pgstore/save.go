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

package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/briot/alere-sub000/lib/ledger"
)

// Save appends the contents of a snapshot to the database in a single
// transaction. The tables must be empty of the saved IDs.
func (s *Store) Save(ctx context.Context, snap *ledger.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var commodities [][]any
	for _, c := range snap.Commodities() {
		commodities = append(commodities, []any{int64(c.ID), c.Name, c.Kind.String(), c.QtyScale, c.PriceScale})
	}
	var accounts [][]any
	for _, a := range snap.Accounts() {
		var parent any
		if a.Parent != nil {
			parent = int64(a.Parent.ID)
		}
		accounts = append(accounts, []any{
			int64(a.ID), a.Name, parent, a.Kind.Category.String(), a.Kind.Networth, a.Kind.Trading,
			a.Kind.Tax, a.Closed, int64(a.Commodity.ID), a.CommoditySCU,
		})
	}
	var scenarios [][]any
	for _, sc := range snap.Scenarios() {
		scenarios = append(scenarios, []any{int64(sc.ID), sc.Name})
	}
	var prices [][]any
	for _, p := range snap.Prices() {
		prices = append(prices, []any{int64(p.Origin.ID), int64(p.Target.ID), p.Date, p.ScaledPrice, p.Source.String()})
	}
	var transactions, splits [][]any
	for _, t := range snap.Transactions() {
		var scheduled any
		if t.IsScheduled() {
			scheduled = t.Scheduled
		}
		var last any
		if t.LastOccurrence != nil {
			last = *t.LastOccurrence
		}
		transactions = append(transactions, []any{int64(t.ID), t.Timestamp, t.Memo, scheduled, last, int64(t.Scenario)})
		for i, sp := range t.Splits {
			splits = append(splits, []any{
				int64(t.ID), int32(i), int64(sp.Account.ID), sp.ScaledQty, sp.ScaledValue,
				int64(sp.ValueCommodity.ID), sp.PostDate, sp.Reconcile.String(),
			})
		}
	}

	for _, c := range []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"alr_commodities", []string{"id", "name", "kind", "qty_scale", "price_scale"}, commodities},
		{"alr_accounts", []string{"id", "name", "parent_id", "category", "is_networth", "is_trading", "is_tax", "closed", "commodity_id", "commodity_scu"}, accounts},
		{"alr_scenarios", []string{"id", "name"}, scenarios},
		{"alr_prices", []string{"origin_id", "target_id", "price_date", "scaled_price", "source"}, prices},
		{"alr_transactions", []string{"id", "tx_date", "memo", "scheduled", "last_occurrence", "scenario_id"}, transactions},
		{"alr_splits", []string{"transaction_id", "position", "account_id", "scaled_qty", "scaled_value", "value_commodity_id", "post_date", "reconcile"}, splits},
	} {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows)); err != nil {
			return fmt.Errorf("copying %s: %w", c.table, err)
		}
	}
	return tx.Commit(ctx)
}
