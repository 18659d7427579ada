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

// Package performance computes invested capital, realized gains and
// the returns of an account.
package performance

import (
	"time"

	"github.com/briot/alere-sub000/lib/balance"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/ratio"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/model/transaction"
	"github.com/briot/alere-sub000/lib/prices"
	"github.com/briot/alere-sub000/lib/splits"
	"github.com/briot/alere-sub000/lib/valuation"
)

// Row holds the investment metrics of an account over a date range.
// Amounts are expressed in the target commodity.
type Row struct {
	date.Range
	Shares, Price, Balance ratio.Ratio
	// Invested is the capital that entered the account from outside the
	// net worth, Realized the capital that left it.
	Invested, Realized ratio.Ratio
	// AverageCost is (Invested - Realized) / Shares.
	AverageCost ratio.Ratio
	// WeightedAverage is the average price paid per share bought.
	WeightedAverage ratio.Ratio
	ROI, PL         ratio.Ratio
}

// Calculator computes investment metrics. It caches exchange rates and
// is not safe for concurrent use.
type Calculator struct {
	resolver *splits.Resolver
	graph    *prices.Graph
	rates    map[prices.Pair]prices.Edges
}

// NewCalculator creates a calculator.
func NewCalculator(r *splits.Resolver, g *prices.Graph) *Calculator {
	return &Calculator{
		resolver: r,
		graph:    g,
		rates:    make(map[prices.Pair]prices.Edges),
	}
}

// tally holds the running sums after the splits up to a date.
type tally struct {
	date.Range
	shares, invested, realized          ratio.Ratio
	investedForShares, sharesTransacted ratio.Ratio
}

// Investment computes the investment metrics of the queried account.
func (calc *Calculator) Investment(q valuation.Query) []Row {
	ts := clip(calc.tallies(q.Splits(calc.resolver), q.Target), q.Window)
	if len(ts) == 0 {
		return nil
	}
	is := make([]balance.Interval, 0, len(ts))
	for _, t := range ts {
		is = append(is, balance.Interval{Range: t.Range, Shares: t.shares})
	}
	var (
		res []Row
		j   int
	)
	for _, v := range valuation.Value(is, calc.turnkey(q.Account.Commodity, q.Target)) {
		for !ts[j].Contains(v.Min) {
			j++
		}
		res = append(res, ts[j].row(v))
	}
	return res
}

func (t tally) row(v valuation.Row) Row {
	worth := v.Balance.Add(t.realized)
	return Row{
		Range:           v.Range,
		Shares:          t.shares,
		Price:           v.Price,
		Balance:         v.Balance,
		Invested:        t.invested,
		Realized:        t.realized,
		AverageCost:     t.invested.Sub(t.realized).Div(t.shares),
		WeightedAverage: t.investedForShares.Div(t.sharesTransacted),
		ROI:             worth.Div(t.invested),
		PL:              worth.Sub(t.invested),
	}
}

// tallies computes the running sums over the splits, which must be sorted
// by post date. Like balances, every distinct post date opens an interval
// which lasts until the next one.
func (calc *Calculator) tallies(ss []splits.Split, target *commodity.Commodity) []tally {
	var (
		res []tally
		cur = tally{
			shares:            ratio.Zero,
			invested:          ratio.Zero,
			realized:          ratio.Zero,
			investedForShares: ratio.Zero,
			sharesTransacted:  ratio.Zero,
		}
	)
	for i, s := range ss {
		qty := s.Qty()
		cur.shares = cur.shares.Add(qty)
		invested, realized := calc.flows(s.Split, s.PostDate, target)
		cur.invested = cur.invested.Add(invested)
		cur.realized = cur.realized.Add(realized)
		if qty.Sign() > 0 && !invested.IsZero() {
			cur.investedForShares = cur.investedForShares.Add(invested)
			cur.sharesTransacted = cur.sharesTransacted.Add(qty)
		}
		if i+1 < len(ss) && ss[i+1].PostDate.Equal(s.PostDate) {
			continue
		}
		if n := len(res); n > 0 {
			res[n-1].Max = s.PostDate
		}
		cur.Range = date.NewRange(s.PostDate, calc.graph.Armageddon())
		res = append(res, cur)
	}
	return res
}

// flows classifies a split. If all other accounts of the transaction are
// part of the net worth, the split is an internal transfer and brings no
// capital. Otherwise, the value booked on the net worth accounts is
// capital invested into the account (when it leaves them) or realized
// (when it returns to them).
func (calc *Calculator) flows(s *transaction.Split, d time.Time, target *commodity.Commodity) (invested, realized ratio.Ratio) {
	invested, realized = ratio.Zero, ratio.Zero
	cs := s.Counterparts()
	internal := true
	for _, c := range cs {
		if !c.Account.IsNetworth() {
			internal = false
			break
		}
	}
	if internal {
		return invested, realized
	}
	for _, c := range cs {
		if !c.Account.IsNetworth() || c.ScaledValue == 0 {
			continue
		}
		v := c.Value().Mul(calc.rate(c.ValueCommodity, target, d))
		if !v.Valid() {
			return ratio.NaN, ratio.NaN
		}
		if v.Sign() < 0 {
			invested = invested.Sub(v)
		} else {
			realized = realized.Add(v)
		}
	}
	return invested, realized
}

// rate returns the rate from origin to target at d, or NaN.
func (calc *Calculator) rate(origin, target *commodity.Commodity, d time.Time) ratio.Ratio {
	e, ok := calc.turnkey(origin, target).At(d)
	if !ok {
		return ratio.NaN
	}
	return e.Rate()
}

func (calc *Calculator) turnkey(origin, target *commodity.Commodity) prices.Edges {
	p := prices.Pair{Origin: origin.ID, Target: target.ID}
	es, ok := calc.rates[p]
	if !ok {
		es = calc.graph.Turnkey(origin, target)
		calc.rates[p] = es
	}
	return es
}

func clip(ts []tally, window date.Range) []tally {
	var res []tally
	for _, t := range ts {
		t.Range = t.Intersect(window)
		if !t.Empty() {
			res = append(res, t)
		}
	}
	return res
}
