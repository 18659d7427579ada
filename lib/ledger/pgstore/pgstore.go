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

// Package pgstore reads ledgers from PostgreSQL.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/briot/alere-sub000/lib/ledger"
	"github.com/briot/alere-sub000/lib/logging"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/model/price"
	"github.com/briot/alere-sub000/lib/model/transaction"
)

//go:embed schema.sql
var schema string

// Store is a ledger store backed by a PostgreSQL database.
type Store struct {
	pool *pgxpool.Pool
}

var _ ledger.Store = (*Store)(nil)

// Open connects to the database.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL cannot be empty")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	logging.FromContext(ctx).Debug().Str("database", config.ConnConfig.Database).Msg("connected")
	return &Store{pool: pool}, nil
}

// Close closes all connections.
func (s *Store) Close() {
	s.pool.Close()
}

// CreateSchema creates the ledger tables if they do not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Snapshot reads the whole ledger within a single read-only transaction,
// so that concurrent writers never produce a torn view.
func (s *Store) Snapshot(ctx context.Context) (*ledger.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	b := ledger.NewBuilder()
	for _, load := range []func(context.Context, pgx.Tx, *ledger.Builder) error{
		loadCommodities,
		loadAccounts,
		loadScenarios,
		loadPrices,
		loadTransactions,
	} {
		if err := load(ctx, tx, b); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return b.Build()
}

func loadCommodities(ctx context.Context, tx pgx.Tx, b *ledger.Builder) error {
	rows, err := tx.Query(ctx, `SELECT id, name, kind, qty_scale, price_scale FROM alr_commodities`)
	if err != nil {
		return fmt.Errorf("querying commodities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c    commodity.Commodity
			id   int64
			kind string
		)
		if err := rows.Scan(&id, &c.Name, &kind, &c.QtyScale, &c.PriceScale); err != nil {
			return fmt.Errorf("scanning commodity: %w", err)
		}
		c.ID = commodity.ID(id)
		if c.Kind, err = commodity.ParseKind(kind); err != nil {
			return fmt.Errorf("commodity %s: %w", c.Name, err)
		}
		b.AddCommodity(c)
	}
	return rows.Err()
}

func loadAccounts(ctx context.Context, tx pgx.Tx, b *ledger.Builder) error {
	rows, err := tx.Query(ctx, `
		SELECT id, name, parent_id, category, is_networth, is_trading, is_tax,
			closed, commodity_id, commodity_scu
		FROM alr_accounts`)
	if err != nil {
		return fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r               ledger.AccountRecord
			id, commodityID int64
			parent          *int64
			category        string
		)
		err := rows.Scan(&id, &r.Name, &parent, &category, &r.Kind.Networth, &r.Kind.Trading,
			&r.Kind.Tax, &r.Closed, &commodityID, &r.CommoditySCU)
		if err != nil {
			return fmt.Errorf("scanning account: %w", err)
		}
		r.ID, r.Commodity = account.ID(id), commodity.ID(commodityID)
		if parent != nil {
			r.Parent = account.ID(*parent)
		}
		if r.Kind.Category, err = account.ParseCategory(category); err != nil {
			return fmt.Errorf("account %s: %w", r.Name, err)
		}
		b.AddAccount(r)
	}
	return rows.Err()
}

func loadScenarios(ctx context.Context, tx pgx.Tx, b *ledger.Builder) error {
	rows, err := tx.Query(ctx, `SELECT id, name FROM alr_scenarios WHERE id <> 0`)
	if err != nil {
		return fmt.Errorf("querying scenarios: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			sc transaction.Scenario
			id int64
		)
		if err := rows.Scan(&id, &sc.Name); err != nil {
			return fmt.Errorf("scanning scenario: %w", err)
		}
		sc.ID = transaction.ScenarioID(id)
		b.AddScenario(sc)
	}
	return rows.Err()
}

func loadPrices(ctx context.Context, tx pgx.Tx, b *ledger.Builder) error {
	rows, err := tx.Query(ctx, `
		SELECT origin_id, target_id, price_date, scaled_price, source
		FROM alr_prices
		ORDER BY price_date`)
	if err != nil {
		return fmt.Errorf("querying prices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r              ledger.PriceRecord
			origin, target int64
			source         string
		)
		if err := rows.Scan(&origin, &target, &r.Date, &r.ScaledPrice, &source); err != nil {
			return fmt.Errorf("scanning price: %w", err)
		}
		r.Origin, r.Target = commodity.ID(origin), commodity.ID(target)
		if r.Source, err = price.ParseSource(source); err != nil {
			return err
		}
		b.AddPrice(r)
	}
	return rows.Err()
}

func loadTransactions(ctx context.Context, tx pgx.Tx, b *ledger.Builder) error {
	rows, err := tx.Query(ctx, `
		SELECT t.id, t.tx_date, t.memo, t.scheduled, t.last_occurrence, t.scenario_id,
			s.account_id, s.scaled_qty, s.scaled_value, s.value_commodity_id,
			s.post_date, s.reconcile
		FROM alr_transactions t
		JOIN alr_splits s ON s.transaction_id = t.id
		ORDER BY t.id, s.position`)
	if err != nil {
		return fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()
	var all []ledger.TransactionRecord
	for rows.Next() {
		var (
			t                              ledger.TransactionRecord
			sp                             ledger.SplitRecord
			id, scenario, acc, valueCommod int64
			scheduled                      *string
			last                           *time.Time
			reconcile                      string
		)
		err := rows.Scan(&id, &t.Timestamp, &t.Memo, &scheduled, &last, &scenario,
			&acc, &sp.ScaledQty, &sp.ScaledValue, &valueCommod, &sp.PostDate, &reconcile)
		if err != nil {
			return fmt.Errorf("scanning transaction: %w", err)
		}
		if n := len(all); n == 0 || all[n-1].ID != transaction.ID(id) {
			t.ID, t.Scenario, t.LastOccurrence = transaction.ID(id), transaction.ScenarioID(scenario), last
			if scheduled != nil {
				t.Scheduled = *scheduled
			}
			all = append(all, t)
		}
		sp.Account, sp.ValueCommodity = account.ID(acc), commodity.ID(valueCommod)
		if sp.Reconcile, err = transaction.ParseReconcile(reconcile); err != nil {
			return fmt.Errorf("transaction %d: %w", id, err)
		}
		cur := &all[len(all)-1]
		cur.Splits = append(cur.Splits, sp)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, t := range all {
		b.AddTransaction(t)
	}
	return nil
}
