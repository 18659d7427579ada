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

// Package splits resolves the splits which are in effect during a date
// range, expanding scheduled transactions into their occurrences.
package splits

import (
	"time"

	"github.com/briot/alere-sub000/lib/common/compare"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/filter"
	"github.com/briot/alere-sub000/lib/ledger"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/transaction"
	"github.com/briot/alere-sub000/lib/recurrence"
)

// Split is a split in effect on PostDate, which shadows the post date of
// the underlying split. Splits of scheduled transactions are virtual: they
// carry the date of an occurrence and its 1-based index.
type Split struct {
	*transaction.Split
	PostDate   time.Time
	Occurrence int
}

// Query selects splits.
type Query struct {
	Window   date.Range
	Scenario transaction.ScenarioID
	// MaxScheduled bounds the number of occurrences per scheduled
	// transaction. Zero excludes scheduled transactions.
	MaxScheduled int
	// Account restricts the result to splits on matching accounts. A
	// nil predicate matches every account.
	Account filter.Filter[*account.Account]
}

// Resolver produces the effective splits of a ledger snapshot.
type Resolver struct {
	snapshot *ledger.Snapshot
	expander *recurrence.Expander
}

// NewResolver creates a resolver.
func NewResolver(s *ledger.Snapshot, e *recurrence.Expander) *Resolver {
	return &Resolver{snapshot: s, expander: e}
}

// Resolve returns the splits whose post date lies in the query window,
// ordered by post date, transaction ID and occurrence.
func (r *Resolver) Resolve(q Query) []Split {
	var res []Split
	for _, t := range r.snapshot.Transactions() {
		if t.Scenario != transaction.NoScenario && t.Scenario != q.Scenario {
			continue
		}
		if !t.IsScheduled() {
			for _, s := range t.Splits {
				if q.Window.Contains(s.PostDate) && q.matches(s) {
					res = append(res, Split{Split: s, PostDate: s.PostDate})
				}
			}
			continue
		}
		if q.MaxScheduled <= 0 || !t.Timestamp.Before(q.Window.Max) {
			continue
		}
		occs := r.expander.Expand(t.Scheduled, t.Timestamp, t.LastOccurrence, q.MaxScheduled, q.Window.Max)
		for i, occ := range occs {
			if !q.Window.Contains(occ) {
				continue
			}
			for _, s := range t.Splits {
				if q.matches(s) {
					res = append(res, Split{Split: s, PostDate: occ, Occurrence: i + 1})
				}
			}
		}
	}
	compare.Sort(res, Compare)
	return res
}

func (q Query) matches(s *transaction.Split) bool {
	return q.Account == nil || q.Account(s.Account)
}

// Compare orders splits by post date, transaction ID and occurrence.
func Compare(s1, s2 Split) compare.Order {
	if o := compare.Time(s1.PostDate, s2.PostDate); o != compare.Equal {
		return o
	}
	if o := compare.Ordered(s1.Transaction.ID, s2.Transaction.ID); o != compare.Equal {
		return o
	}
	return compare.Ordered(s1.Occurrence, s2.Occurrence)
}

// ForAccount returns a predicate matching a single account.
func ForAccount(a *account.Account) filter.Filter[*account.Account] {
	return func(o *account.Account) bool {
		return o == a
	}
}
