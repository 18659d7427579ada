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

package performance

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
	"github.com/briot/alere-sub000/lib/valuation"
)

var armageddon = date.Date(2999, 12, 31)

type metrics struct {
	shares, price, invested, realized, investedForShares, sharesTransacted ratio.Ratio
}

// expected derives a row from the running sums.
func expected(r date.Range, m metrics) Row {
	bal := m.shares.Mul(m.price)
	return Row{
		Range:           r,
		Shares:          m.shares,
		Price:           m.price,
		Balance:         bal,
		Invested:        m.invested,
		Realized:        m.realized,
		AverageCost:     m.invested.Sub(m.realized).Div(m.shares),
		WeightedAverage: m.investedForShares.Div(m.sharesTransacted),
		ROI:             bal.Add(m.realized).Div(m.invested),
		PL:              bal.Add(m.realized).Sub(m.invested),
	}
}

func TestInvestment(t *testing.T) {
	s := ledgertest.Portfolio(t)
	r := splits.NewResolver(s, recurrence.NewExpander(armageddon, 16, zerolog.New(io.Discard)))
	g := prices.Build(s, armageddon)
	var (
		eur = ledgertest.Commodity(t, s, "EUR")
		usd = ledgertest.Commodity(t, s, "USD")
		chf = ledgertest.Commodity(t, s, "CHF")
		n   = func(i int64) ratio.Ratio { return ratio.Of(i, 1) }
	)

	var tests = []struct {
		desc    string
		account string
		target  *commodity.Commodity
		window  date.Range
		want    []Row
	}{
		{
			desc:    "purchase",
			account: "ACME",
			target:  eur,
			window:  date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)),
			want: []Row{
				expected(date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)), metrics{
					shares: n(20), price: ratio.Of(85, 2), invested: n(870), realized: n(0),
					investedForShares: n(870), sharesTransacted: n(20),
				}),
			},
		},
		{
			desc:    "free share, rate changes and sale",
			account: "ACME",
			target:  eur,
			window:  date.NewRange(date.Date(2020, 3, 1), armageddon),
			want: []Row{
				expected(date.NewRange(date.Date(2020, 3, 1), date.Date(2020, 5, 10)), metrics{
					shares: n(21), price: ratio.Of(85, 2), invested: n(870), realized: n(0),
					investedForShares: n(870), sharesTransacted: n(20),
				}),
				expected(date.NewRange(date.Date(2020, 5, 10), date.Date(2020, 6, 1)), metrics{
					shares: n(21), price: ratio.Of(500, 11), invested: n(870), realized: n(0),
					investedForShares: n(870), sharesTransacted: n(20),
				}),
				expected(date.NewRange(date.Date(2020, 6, 1), date.Date(2020, 9, 15)), metrics{
					shares: n(21), price: ratio.Of(600, 11), invested: n(870), realized: n(0),
					investedForShares: n(870), sharesTransacted: n(20),
				}),
				expected(date.NewRange(date.Date(2020, 9, 15), armageddon), metrics{
					shares: n(16), price: ratio.Of(600, 11), invested: n(870), realized: n(250),
					investedForShares: n(870), sharesTransacted: n(20),
				}),
			},
		},
		{
			desc:    "converted at the rate of the post date",
			account: "ACME",
			target:  usd,
			window:  date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)),
			want: []Row{
				expected(date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)), metrics{
					shares: n(20), price: n(50), invested: ratio.Of(17400, 17), realized: n(0),
					investedForShares: ratio.Of(17400, 17), sharesTransacted: n(20),
				}),
			},
		},
		{
			desc:    "internal transfer",
			account: "Savings",
			target:  eur,
			window:  date.Until(armageddon),
			want: []Row{
				expected(date.NewRange(date.Date(2020, 4, 1), armageddon), metrics{
					shares: n(1000), price: n(1), invested: n(0), realized: n(0),
					investedForShares: n(0), sharesTransacted: n(0),
				}),
			},
		},
		{
			desc:    "missing rate",
			account: "ACME",
			target:  chf,
			window:  date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)),
			want: []Row{
				expected(date.NewRange(date.Date(2020, 2, 3), date.Date(2020, 3, 1)), metrics{
					shares: n(20), price: ratio.NaN, invested: ratio.NaN, realized: ratio.NaN,
					investedForShares: ratio.NaN, sharesTransacted: n(20),
				}),
			},
		},
		{
			desc:    "no splits",
			account: "Savings",
			target:  eur,
			window:  date.Until(date.Date(2020, 3, 1)),
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			q := valuation.Query{
				Query: balance.Query{
					Account: ledgertest.Account(t, s, test.account),
					Window:  test.window,
				},
				Target: test.target,
			}

			got := NewCalculator(r, g).Investment(q)

			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Fatalf("unexpected diff (-want/+got):\n%s", diff)
			}
		})
	}
}

func TestUndefinedMetrics(t *testing.T) {
	tl := tally{
		Range:             date.NewRange(date.Date(2020, 1, 1), date.Date(2020, 2, 1)),
		shares:            ratio.Zero,
		invested:          ratio.Zero,
		realized:          ratio.Of(5, 1),
		investedForShares: ratio.Zero,
		sharesTransacted:  ratio.Zero,
	}

	row := tl.row(valuation.Row{Range: tl.Range, Shares: ratio.Zero, Price: ratio.One, Balance: ratio.Zero})

	for name, r := range map[string]ratio.Ratio{
		"AverageCost":     row.AverageCost,
		"WeightedAverage": row.WeightedAverage,
		"ROI":             row.ROI,
	} {
		if r.Valid() {
			t.Errorf("%s = %v, want NaN", name, r)
		}
	}
	if want := ratio.Of(5, 1); !row.PL.Equal(want) {
		t.Errorf("PL = %v, want %v", row.PL, want)
	}
}
