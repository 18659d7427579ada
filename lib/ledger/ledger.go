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

// Package ledger provides read access to the commodities, accounts,
// transactions and prices of a ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/briot/alere-sub000/lib/common/compare"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/model/price"
	"github.com/briot/alere-sub000/lib/model/transaction"
)

var (
	// ErrNotFound indicates that a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInconsistent indicates that the ledger data breaks one of its
	// invariants, for example a split referencing an unknown commodity.
	ErrInconsistent = errors.New("inconsistent ledger")
)

// Store is a source of ledger snapshots. Implementations must return
// snapshot-consistent data: a snapshot never mixes records from
// different points in time.
type Store interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Snapshot is an immutable view of a ledger. It is safe for concurrent use.
type Snapshot struct {
	commodities  map[commodity.ID]*commodity.Commodity
	accounts     map[account.ID]*account.Account
	transactions map[transaction.ID]*transaction.Transaction
	scenarios    map[transaction.ScenarioID]*transaction.Scenario
	children     map[account.ID][]*account.Account

	// sorted by ID
	commodityList []*commodity.Commodity
	accountList   []*account.Account
	// sorted by timestamp, then ID
	transactionList []*transaction.Transaction
	// sorted by date, then insertion order
	priceList []*price.Price
}

var _ Store = (*Snapshot)(nil)

// Snapshot returns the receiver.
func (s *Snapshot) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s, nil
}

// Commodity returns the commodity with the given ID.
func (s *Snapshot) Commodity(id commodity.ID) (*commodity.Commodity, error) {
	if c, ok := s.commodities[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("commodity %d: %w", id, ErrNotFound)
}

// CommodityByName returns the commodity with the given name.
func (s *Snapshot) CommodityByName(name string) (*commodity.Commodity, error) {
	for _, c := range s.commodityList {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("commodity %q: %w", name, ErrNotFound)
}

// Account returns the account with the given ID.
func (s *Snapshot) Account(id account.ID) (*account.Account, error) {
	if a, ok := s.accounts[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
}

// AccountByName returns the account whose name or colon-separated path
// matches.
func (s *Snapshot) AccountByName(name string) (*account.Account, error) {
	for _, a := range s.accountList {
		if a.Path() == name {
			return a, nil
		}
	}
	var found *account.Account
	for _, a := range s.accountList {
		if a.Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("account name %q is ambiguous, use its full path", name)
		}
		found = a
	}
	if found == nil {
		return nil, fmt.Errorf("account %q: %w", name, ErrNotFound)
	}
	return found, nil
}

// Transaction returns the transaction with the given ID.
func (s *Snapshot) Transaction(id transaction.ID) (*transaction.Transaction, error) {
	if t, ok := s.transactions[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
}

// Scenario returns the scenario with the given ID. The baseline scenario
// always exists.
func (s *Snapshot) Scenario(id transaction.ScenarioID) (*transaction.Scenario, error) {
	if sc, ok := s.scenarios[id]; ok {
		return sc, nil
	}
	return nil, fmt.Errorf("scenario %d: %w", id, ErrNotFound)
}

// Scenarios returns the scenarios other than the baseline, ordered by ID.
func (s *Snapshot) Scenarios() []*transaction.Scenario {
	var res []*transaction.Scenario
	for id, sc := range s.scenarios {
		if id != transaction.NoScenario {
			res = append(res, sc)
		}
	}
	compare.Sort(res, func(s1, s2 *transaction.Scenario) compare.Order {
		return compare.Ordered(s1.ID, s2.ID)
	})
	return res
}

// Commodities returns all commodities, ordered by ID.
func (s *Snapshot) Commodities() []*commodity.Commodity {
	return s.commodityList
}

// Currencies returns all currencies, ordered by ID.
func (s *Snapshot) Currencies() []*commodity.Commodity {
	var res []*commodity.Commodity
	for _, c := range s.commodityList {
		if c.IsCurrency() {
			res = append(res, c)
		}
	}
	return res
}

// Accounts returns all accounts, ordered by ID.
func (s *Snapshot) Accounts() []*account.Account {
	return s.accountList
}

// Children returns the direct children of an account.
func (s *Snapshot) Children(id account.ID) []*account.Account {
	return s.children[id]
}

// Transactions returns all transactions, ordered by timestamp and ID.
func (s *Snapshot) Transactions() []*transaction.Transaction {
	return s.transactionList
}

// TransactionsBetween returns the transactions whose timestamp lies in r.
func (s *Snapshot) TransactionsBetween(r date.Range) []*transaction.Transaction {
	lo := sort.Search(len(s.transactionList), func(i int) bool {
		return !s.transactionList[i].Timestamp.Before(r.Min)
	})
	hi := sort.Search(len(s.transactionList), func(i int) bool {
		return !s.transactionList[i].Timestamp.Before(r.Max)
	})
	if hi < lo {
		hi = lo
	}
	return s.transactionList[lo:hi]
}

// Prices returns all stored prices, ordered by date.
func (s *Snapshot) Prices() []*price.Price {
	return s.priceList
}

// PricesBetween returns the stored prices whose date lies in r.
func (s *Snapshot) PricesBetween(r date.Range) []*price.Price {
	lo := sort.Search(len(s.priceList), func(i int) bool {
		return !s.priceList[i].Date.Before(r.Min)
	})
	hi := sort.Search(len(s.priceList), func(i int) bool {
		return !s.priceList[i].Date.Before(r.Max)
	})
	if hi < lo {
		hi = lo
	}
	return s.priceList[lo:hi]
}

// LastDate returns the latest date mentioned by a transaction, a split or a
// price, or false if the ledger is empty.
func (s *Snapshot) LastDate() (time.Time, bool) {
	var (
		res time.Time
		ok  bool
	)
	update := func(t time.Time) {
		if !ok || t.After(res) {
			res, ok = t, true
		}
	}
	for _, t := range s.transactionList {
		update(t.Timestamp)
		for _, sp := range t.Splits {
			update(sp.PostDate)
		}
	}
	if n := len(s.priceList); n > 0 {
		update(s.priceList[n-1].Date)
	}
	return res, ok
}
