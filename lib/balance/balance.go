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

// Package balance computes the quantity held by an account as a
// partition of time.
package balance

import (
	"time"

	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/ratio"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/transaction"
	"github.com/briot/alere-sub000/lib/splits"
)

// Query selects the balance of one account.
type Query struct {
	Account      *account.Account
	Window       date.Range
	Scenario     transaction.ScenarioID
	MaxScheduled int
}

// Splits returns the splits of the account which contribute to its
// balance during the window: all of them up to the end of the window.
func (q Query) Splits(r *splits.Resolver) []splits.Split {
	return r.Resolve(splits.Query{
		Window:       date.Until(q.Window.Max),
		Scenario:     q.Scenario,
		MaxScheduled: q.MaxScheduled,
		Account:      splits.ForAccount(q.Account),
	})
}

// Interval is the quantity held during a date range.
type Interval struct {
	date.Range
	Shares ratio.Ratio
}

// Balances computes the balance of the queried account.
func Balances(r *splits.Resolver, q Query, armageddon time.Time) []Interval {
	return Compute(q.Splits(r), q.Window, armageddon)
}

// Compute computes the running sum of the quantities of splits, which
// must be sorted by post date. Every distinct post date opens an interval
// lasting until the next one; the last interval ends at armageddon.
// Intervals are clipped to the window and dropped if they fall outside. No
// splits yield no intervals.
func Compute(ss []splits.Split, window date.Range, armageddon time.Time) []Interval {
	var (
		all    []Interval
		shares = ratio.Zero
	)
	for i, s := range ss {
		shares = shares.Add(s.Qty())
		if i+1 < len(ss) && ss[i+1].PostDate.Equal(s.PostDate) {
			continue
		}
		if n := len(all); n > 0 {
			all[n-1].Max = s.PostDate
		}
		all = append(all, Interval{
			Range:  date.NewRange(s.PostDate, armageddon),
			Shares: shares,
		})
	}
	return Clip(all, window)
}

// Clip restricts intervals to the window.
func Clip(is []Interval, window date.Range) []Interval {
	var res []Interval
	for _, in := range is {
		in.Range = in.Intersect(window)
		if !in.Empty() {
			res = append(res, in)
		}
	}
	return res
}
