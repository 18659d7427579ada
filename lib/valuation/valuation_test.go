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

package valuation

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/briot/alere-sub000/lib/balance"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/ratio"
	"github.com/briot/alere-sub000/lib/ledger/ledgertest"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/prices"
	"github.com/briot/alere-sub000/lib/recurrence"
	"github.com/briot/alere-sub000/lib/splits"
)

var armageddon = date.Date(2999, 12, 31)

func TestValuedBalances(t *testing.T) {
	s := ledgertest.Portfolio(t)
	r := splits.NewResolver(s, recurrence.NewExpander(armageddon, 16, zerolog.New(io.Discard)))
	g := prices.Build(s, armageddon)
	var (
		eur = ledgertest.Commodity(t, s, "EUR")
		chf = ledgertest.Commodity(t, s, "CHF")
	)

	var tests = []struct {
		desc    string
		account string
		target  *commodity.Commodity
		window  date.Range
		want    []Row
	}{
		{
			desc:    "stock in EUR",
			account: "ACME",
			target:  eur,
			window:  date.Until(armageddon),
			want: []Row{
				valued(date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)), ratio.Of(20, 1), ratio.Of(85, 2)),
				valued(date.NewRange(date.Date(2020, 3, 1), date.Date(2020, 5, 10)), ratio.Of(21, 1), ratio.Of(85, 2)),
				valued(date.NewRange(date.Date(2020, 5, 10), date.Date(2020, 6, 1)), ratio.Of(21, 1), ratio.Of(500, 11)),
				valued(date.NewRange(date.Date(2020, 6, 1), date.Date(2020, 9, 15)), ratio.Of(21, 1), ratio.Of(600, 11)),
				valued(date.NewRange(date.Date(2020, 9, 15), armageddon), ratio.Of(16, 1), ratio.Of(600, 11)),
			},
		},
		{
			desc:    "window",
			account: "ACME",
			target:  eur,
			window:  date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)),
			want: []Row{
				valued(date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)), ratio.Of(20, 1), ratio.Of(85, 2)),
			},
		},
		{
			desc:    "own currency",
			account: "Savings",
			target:  eur,
			window:  date.Until(armageddon),
			want: []Row{
				valued(date.NewRange(date.Date(2020, 4, 1), armageddon), ratio.Of(1000, 1), ratio.One),
			},
		},
		{
			desc:    "no rate",
			account: "Cash USD",
			target:  chf,
			window:  date.Until(armageddon),
			want: []Row{
				unknown(date.NewRange(date.Date(2020, 5, 10), armageddon), ratio.Of(110, 1)),
			},
		},
		{
			desc:    "no splits",
			account: "Savings",
			target:  eur,
			window:  date.Until(date.Date(2020, 4, 1)),
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			q := Query{
				Query: balance.Query{
					Account: ledgertest.Account(t, s, test.account),
					Window:  test.window,
				},
				Target: test.target,
			}

			got := ValuedBalances(r, g, q)

			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Fatalf("unexpected diff (-want/+got):\n%s", diff)
			}
		})
	}
}

func TestValueInOwnCurrencyIsExact(t *testing.T) {
	s := ledgertest.Portfolio(t)
	r := splits.NewResolver(s, recurrence.NewExpander(armageddon, 16, zerolog.New(io.Discard)))
	g := prices.Build(s, armageddon)

	for _, a := range s.Accounts() {
		if !a.Commodity.IsCurrency() {
			continue
		}
		q := Query{
			Query:  balance.Query{Account: a, Window: date.Until(armageddon), MaxScheduled: 10},
			Target: a.Commodity,
		}
		for _, row := range ValuedBalances(r, g, q) {
			if !row.Price.Equal(ratio.One) {
				t.Errorf("%s %v: got price %v, want 1", a.Name, row.Range, row.Price)
			}
			if !row.Balance.Equal(row.Shares) {
				t.Errorf("%s %v: got balance %v, want %v", a.Name, row.Range, row.Balance, row.Shares)
			}
		}
	}
}

func TestValueWithGaps(t *testing.T) {
	var (
		usd = &commodity.Commodity{ID: 1, Name: "USD", Kind: commodity.Currency, QtyScale: 100, PriceScale: 100}
		xyz = &commodity.Commodity{ID: 2, Name: "XYZ", Kind: commodity.Stock, QtyScale: 1, PriceScale: 10}
	)
	edge := func(min, max int, scaled int64) prices.Edge {
		return prices.Edge{
			Origin:      xyz,
			Target:      usd,
			Range:       date.NewRange(date.Date(2021, 1, min), date.Date(2021, 1, max)),
			ScaledPrice: ratio.Of(scaled, 1),
		}
	}
	is := []balance.Interval{
		{Range: date.NewRange(date.Date(2021, 1, 1), date.Date(2021, 1, 10)), Shares: ratio.Of(2, 1)},
		{Range: date.NewRange(date.Date(2021, 1, 10), date.Date(2021, 1, 30)), Shares: ratio.Of(3, 1)},
	}
	es := prices.Edges{edge(3, 5, 10), edge(5, 12, 20), edge(20, 25, 30)}

	got := Value(is, es)

	rng := func(min, max int) date.Range {
		return date.NewRange(date.Date(2021, 1, min), date.Date(2021, 1, max))
	}
	want := []Row{
		unknown(rng(1, 3), ratio.Of(2, 1)),
		valued(rng(3, 5), ratio.Of(2, 1), ratio.Of(1, 1)),
		valued(rng(5, 10), ratio.Of(2, 1), ratio.Of(2, 1)),
		valued(rng(10, 12), ratio.Of(3, 1), ratio.Of(2, 1)),
		unknown(rng(12, 20), ratio.Of(3, 1)),
		valued(rng(20, 25), ratio.Of(3, 1), ratio.Of(3, 1)),
		unknown(rng(25, 30), ratio.Of(3, 1)),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected diff (-want/+got):\n%s", diff)
	}
}

func valued(r date.Range, shares, price ratio.Ratio) Row {
	return Row{Range: r, Shares: shares, Price: price, Balance: shares.Mul(price)}
}
