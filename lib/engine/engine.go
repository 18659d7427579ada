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

// Package engine answers balance, valuation and investment queries against
// a ledger store. Every query works on a fresh snapshot of the store and
// recomputes from the full history.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/briot/alere-sub000/lib/balance"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/ledger"
	"github.com/briot/alere-sub000/lib/logging"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/model/transaction"
	"github.com/briot/alere-sub000/lib/performance"
	"github.com/briot/alere-sub000/lib/prices"
	"github.com/briot/alere-sub000/lib/recurrence"
	"github.com/briot/alere-sub000/lib/splits"
	"github.com/briot/alere-sub000/lib/valuation"
)

// Config holds the explicit reference dates and bounds of the engine.
type Config struct {
	// Now is the date of point-in-time batch queries.
	Now time.Time
	// Armageddon closes every open-ended interval.
	Armageddon time.Time
	// MaxScheduledOccurrences bounds the expansion of each scheduled
	// transaction when scheduled transactions are included.
	MaxScheduledOccurrences int
	// RuleCacheSize is the number of parsed recurrence rules kept per query.
	RuleCacheSize int
}

// Options select the splits a query is based on.
type Options struct {
	Window           date.Range
	Scenario         transaction.ScenarioID
	IncludeScheduled bool
}

// Engine runs queries.
type Engine struct {
	store ledger.Store
	cfg   Config
	log   zerolog.Logger
}

// New creates an engine.
func New(store ledger.Store, cfg Config, log zerolog.Logger) *Engine {
	return &Engine{store: store, cfg: cfg, log: log}
}

// Config returns the configuration of the engine.
func (e *Engine) Config() Config {
	return e.cfg
}

// session is the state of a single query.
type session struct {
	ctx      context.Context
	log      zerolog.Logger
	snapshot *ledger.Snapshot
	graph    *prices.Graph
	started  time.Time
}

func (e *Engine) open(ctx context.Context, op string) (*session, error) {
	log := e.log.With().Str("query", uuid.NewString()).Str("op", op).Logger()
	ctx = logging.WithContext(ctx, log)
	started := time.Now()
	s, err := e.store.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("loading ledger snapshot")
		return nil, fmt.Errorf("loading ledger snapshot: %w", err)
	}
	g := prices.Build(s, e.cfg.Armageddon)
	log.Debug().
		Int("transactions", len(s.Transactions())).
		Int("prices", len(s.Prices())).
		Msg("snapshot loaded")
	return &session{ctx: ctx, log: log, snapshot: s, graph: g, started: started}, nil
}

func (s *session) done() {
	s.log.Debug().Dur("elapsed", time.Since(s.started)).Msg("query done")
}

// resolver creates a split resolver. Expanders are not safe for concurrent
// use, so every goroutine needs its own.
func (e *Engine) resolver(s *session) *splits.Resolver {
	return splits.NewResolver(s.snapshot, recurrence.NewExpander(e.cfg.Armageddon, e.cfg.RuleCacheSize, s.log))
}

func (e *Engine) maxScheduled(opts Options) int {
	if opts.IncludeScheduled {
		return e.cfg.MaxScheduledOccurrences
	}
	return 0
}

func (e *Engine) balanceQuery(a *account.Account, opts Options) balance.Query {
	return balance.Query{
		Account:      a,
		Window:       opts.Window,
		Scenario:     opts.Scenario,
		MaxScheduled: e.maxScheduled(opts),
	}
}

func (s *session) account(name string) (*account.Account, error) {
	return s.snapshot.AccountByName(name)
}

func (s *session) commodity(name string) (*commodity.Commodity, error) {
	return s.snapshot.CommodityByName(name)
}

func (s *session) valuationQuery(e *Engine, accountName, targetName string, opts Options) (valuation.Query, error) {
	a, err := s.account(accountName)
	if err != nil {
		return valuation.Query{}, err
	}
	t, err := s.commodity(targetName)
	if err != nil {
		return valuation.Query{}, err
	}
	return valuation.Query{Query: e.balanceQuery(a, opts), Target: t}, nil
}

// Balances returns the quantity held by an account as a partition of
// the window.
func (e *Engine) Balances(ctx context.Context, accountName string, opts Options) ([]balance.Interval, error) {
	s, err := e.open(ctx, "balances")
	if err != nil {
		return nil, err
	}
	defer s.done()
	a, err := s.account(accountName)
	if err != nil {
		return nil, err
	}
	return balance.Balances(e.resolver(s), e.balanceQuery(a, opts), e.cfg.Armageddon), nil
}

// ValuedBalances returns the balances of an account priced in the target
// commodity.
func (e *Engine) ValuedBalances(ctx context.Context, accountName, targetName string, opts Options) ([]valuation.Row, error) {
	s, err := e.open(ctx, "valued_balances")
	if err != nil {
		return nil, err
	}
	defer s.done()
	q, err := s.valuationQuery(e, accountName, targetName, opts)
	if err != nil {
		return nil, err
	}
	return valuation.ValuedBalances(e.resolver(s), s.graph, q), nil
}

// ValueAt returns the valued balance of an account on a single date. The
// window of the options is ignored. It returns false if the account holds
// nothing on that date.
func (e *Engine) ValueAt(ctx context.Context, accountName, targetName string, d time.Time, opts Options) (valuation.Row, bool, error) {
	opts.Window = date.NewRange(d, d.AddDate(0, 0, 1))
	rows, err := e.ValuedBalances(ctx, accountName, targetName, opts)
	if err != nil || len(rows) == 0 {
		return valuation.Row{}, false, err
	}
	return rows[0], true, nil
}

// Investment returns the investment metrics of an account in the target
// commodity.
func (e *Engine) Investment(ctx context.Context, accountName, targetName string, opts Options) ([]performance.Row, error) {
	s, err := e.open(ctx, "investment")
	if err != nil {
		return nil, err
	}
	defer s.done()
	q, err := s.valuationQuery(e, accountName, targetName, opts)
	if err != nil {
		return nil, err
	}
	return performance.NewCalculator(e.resolver(s), s.graph).Investment(q), nil
}

// AccountResult is the outcome of a batch query for one account. Row is
// nil if the account holds nothing at the reference date.
type AccountResult struct {
	Account *account.Account
	Row     *performance.Row
	Err     error
}

// InvestmentAll computes the investment metrics of every net worth account
// at the configured reference date, in parallel. The window of the options
// is ignored. A failure for one account is reported in its result and does
// not abort the others; the returned error combines all of them. progress,
// if not nil, is called after each account with the number of finished
// accounts and the total, and must be safe for concurrent use.
func (e *Engine) InvestmentAll(ctx context.Context, targetName string, opts Options, progress func(done, total int)) ([]AccountResult, error) {
	s, err := e.open(ctx, "investment_all")
	if err != nil {
		return nil, err
	}
	defer s.done()
	target, err := s.commodity(targetName)
	if err != nil {
		return nil, err
	}
	var accounts []*account.Account
	for _, a := range s.snapshot.Accounts() {
		if a.IsNetworth() {
			accounts = append(accounts, a)
		}
	}
	opts.Window = date.Until(e.cfg.Now.AddDate(0, 0, 1))
	var (
		res      = make([]AccountResult, len(accounts))
		finished atomic.Int32
	)
	g, gctx := errgroup.WithContext(s.ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, a := range accounts {
		i, a := i, a
		g.Go(func() error {
			res[i] = e.investmentAt(gctx, s, a, target, opts)
			if res[i].Err != nil {
				s.log.Error().Err(res[i].Err).Str("account", a.Path()).Msg("computing investment")
			}
			if progress != nil {
				progress(int(finished.Add(1)), len(accounts))
			}
			return nil
		})
	}
	// workers report failures in their results
	_ = g.Wait()
	var errs error
	for _, r := range res {
		errs = multierr.Append(errs, r.Err)
	}
	return res, errs
}

func (e *Engine) investmentAt(ctx context.Context, s *session, a *account.Account, target *commodity.Commodity, opts Options) (res AccountResult) {
	res.Account = a
	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("account %s: %w", a.Path(), err)
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("account %s: %v: %w", a.Path(), r, ledger.ErrInconsistent)
		}
	}()
	calc := performance.NewCalculator(e.resolver(s), s.graph)
	rows := calc.Investment(valuation.Query{Query: e.balanceQuery(a, opts), Target: target})
	for i := range rows {
		if rows[i].Contains(e.cfg.Now) {
			res.Row = &rows[i]
		}
	}
	return res
}

// Splits returns the effective splits in the window, optionally restricted
// to one account.
func (e *Engine) Splits(ctx context.Context, accountName string, opts Options) ([]splits.Split, error) {
	s, err := e.open(ctx, "splits")
	if err != nil {
		return nil, err
	}
	defer s.done()
	q := splits.Query{
		Window:       opts.Window,
		Scenario:     opts.Scenario,
		MaxScheduled: e.maxScheduled(opts),
	}
	if accountName != "" {
		a, err := s.account(accountName)
		if err != nil {
			return nil, err
		}
		q.Account = splits.ForAccount(a)
	}
	return e.resolver(s).Resolve(q), nil
}

// Occurrences returns the next occurrences of a scheduled transaction, at
// most max of them. A transaction which is not scheduled has none.
func (e *Engine) Occurrences(ctx context.Context, id transaction.ID, max int) ([]time.Time, error) {
	s, err := e.open(ctx, "occurrences")
	if err != nil {
		return nil, err
	}
	defer s.done()
	t, err := s.snapshot.Transaction(id)
	if err != nil {
		return nil, err
	}
	if !t.IsScheduled() {
		return nil, nil
	}
	x := recurrence.NewExpander(e.cfg.Armageddon, e.cfg.RuleCacheSize, s.log)
	return x.Expand(t.Scheduled, t.Timestamp, t.LastOccurrence, max, e.cfg.Armageddon), nil
}

// Rates returns the turnkey exchange rates of every commodity into every
// currency.
func (e *Engine) Rates(ctx context.Context) ([]prices.Edge, error) {
	s, err := e.open(ctx, "rates")
	if err != nil {
		return nil, err
	}
	defer s.done()
	return s.graph.Rates(), nil
}
