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
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/ledger/ledgertest"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/transaction"
	"github.com/briot/alere-sub000/lib/recurrence"
)

var armageddon = date.Date(2999, 12, 31)

type row struct {
	Date       time.Time
	TxID       transaction.ID
	Account    string
	Qty        int64
	Occurrence int
}

func rows(ss []Split) []row {
	var res []row
	for _, s := range ss {
		res = append(res, row{s.PostDate, s.Transaction.ID, s.Account.Name, s.ScaledQty, s.Occurrence})
	}
	return res
}

func newResolver(t *testing.T) (*Resolver, func(string) *account.Account) {
	t.Helper()
	s := ledgertest.Portfolio(t)
	e := recurrence.NewExpander(armageddon, 16, zerolog.New(io.Discard))
	return NewResolver(s, e), func(name string) *account.Account {
		return ledgertest.Account(t, s, name)
	}
}

func TestResolve(t *testing.T) {
	r, acc := newResolver(t)
	rent, checking := acc("Rent"), acc("Checking")

	var tests = []struct {
		desc  string
		query Query
		want  []row
	}{
		{
			desc: "realized splits of one account",
			query: Query{
				Window:  date.Until(date.Date(2021, 1, 1)),
				Account: ForAccount(checking),
			},
			want: []row{
				{date.Date(2020, 1, 15), 1, "Checking", 500000, 0},
				{date.Date(2020, 2, 3), 2, "Checking", -87000, 0},
				{date.Date(2020, 4, 1), 4, "Checking", -100000, 0},
				{date.Date(2020, 5, 10), 5, "Checking", -10000, 0},
				{date.Date(2020, 9, 17), 7, "Checking", 25000, 0},
			},
		},
		{
			desc: "scenario adds its transactions",
			query: Query{
				Window:   date.NewRange(date.Date(2020, 6, 1), date.Date(2021, 1, 1)),
				Scenario: 1,
				Account:  ForAccount(checking),
			},
			want: []row{
				{date.Date(2020, 7, 1), 6, "Checking", -50000, 0},
				{date.Date(2020, 9, 17), 7, "Checking", 25000, 0},
			},
		},
		{
			desc: "scheduled occurrences",
			query: Query{
				Window:       date.NewRange(date.Date(2022, 1, 1), date.Date(2023, 1, 1)),
				MaxScheduled: 4,
				Account:      ForAccount(rent),
			},
			want: []row{
				{date.Date(2022, 1, 3), 8, "Rent", 80000, 1},
				{date.Date(2022, 2, 3), 8, "Rent", 80000, 2},
				{date.Date(2022, 3, 3), 8, "Rent", 80000, 3},
				{date.Date(2022, 5, 3), 8, "Rent", 80000, 4},
			},
		},
		{
			desc: "only the next occurrence",
			query: Query{
				Window:       date.Until(armageddon),
				MaxScheduled: 1,
				Account:      ForAccount(rent),
			},
			want: []row{
				{date.Date(2022, 1, 3), 8, "Rent", 80000, 1},
			},
		},
		{
			desc: "occurrences before the window count towards the maximum",
			query: Query{
				Window:       date.NewRange(date.Date(2022, 2, 1), date.Date(2023, 1, 1)),
				MaxScheduled: 3,
				Account:      ForAccount(rent),
			},
			want: []row{
				{date.Date(2022, 2, 3), 8, "Rent", 80000, 2},
				{date.Date(2022, 3, 3), 8, "Rent", 80000, 3},
			},
		},
		{
			desc: "window end bounds expansion",
			query: Query{
				Window:       date.Until(date.Date(2022, 3, 1)),
				MaxScheduled: 1000,
				Account:      ForAccount(rent),
			},
			want: []row{
				{date.Date(2022, 1, 3), 8, "Rent", 80000, 1},
				{date.Date(2022, 2, 3), 8, "Rent", 80000, 2},
			},
		},
		{
			desc: "scheduled transactions excluded",
			query: Query{
				Window:       date.NewRange(date.Date(2021, 1, 1), armageddon),
				MaxScheduled: 0,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got := rows(r.Resolve(test.query))

			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Fatalf("unexpected diff (-want/+got):\n%s", diff)
			}
		})
	}
}

func TestResolveOrdersByPostDate(t *testing.T) {
	r, _ := newResolver(t)

	ss := r.Resolve(Query{Window: date.Until(armageddon), MaxScheduled: 12})

	if len(ss) != 14+2*12 {
		t.Fatalf("got %d splits, want %d", len(ss), 14+2*12)
	}
	for i := 1; i < len(ss); i++ {
		if Compare(ss[i-1], ss[i]) == 1 {
			t.Fatalf("splits %d and %d are out of order: %v, %v", i-1, i, ss[i-1].PostDate, ss[i].PostDate)
		}
	}
}
