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

package ledger

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/briot/alere-sub000/lib/common/compare"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/model/price"
	"github.com/briot/alere-sub000/lib/model/transaction"
)

// AccountRecord describes an account by the IDs it references.
type AccountRecord struct {
	ID           account.ID
	Name         string
	Parent       account.ID // 0 for top-level accounts
	Kind         account.Kind
	Closed       bool
	Commodity    commodity.ID
	CommoditySCU int64
}

// PriceRecord describes a stored price by the IDs it references.
type PriceRecord struct {
	Origin, Target commodity.ID
	Date           time.Time
	ScaledPrice    int64
	Source         price.Source
}

// TransactionRecord describes a transaction and its splits.
type TransactionRecord struct {
	ID             transaction.ID
	Timestamp      time.Time
	Memo           string
	Scheduled      string
	LastOccurrence *time.Time
	Scenario       transaction.ScenarioID
	Splits         []SplitRecord
}

// SplitRecord describes a split by the IDs it references. A zero PostDate
// defaults to the transaction timestamp.
type SplitRecord struct {
	Account        account.ID
	ScaledQty      int64
	ScaledValue    int64
	ValueCommodity commodity.ID
	PostDate       time.Time
	Reconcile      transaction.Reconcile
}

// Builder assembles a snapshot from records, checking that every
// reference resolves. Records may be added in any order.
type Builder struct {
	commodities  []*commodity.Commodity
	accounts     []AccountRecord
	scenarios    []transaction.Scenario
	prices       []PriceRecord
	transactions []TransactionRecord
}

// NewBuilder creates a new builder.
func NewBuilder() *Builder {
	return new(Builder)
}

// AddCommodity adds a commodity.
func (b *Builder) AddCommodity(c commodity.Commodity) {
	b.commodities = append(b.commodities, &c)
}

// AddAccount adds an account.
func (b *Builder) AddAccount(a AccountRecord) {
	b.accounts = append(b.accounts, a)
}

// AddScenario adds a scenario.
func (b *Builder) AddScenario(s transaction.Scenario) {
	b.scenarios = append(b.scenarios, s)
}

// AddPrice adds a stored price.
func (b *Builder) AddPrice(p PriceRecord) {
	b.prices = append(b.prices, p)
}

// AddTransaction adds a transaction.
func (b *Builder) AddTransaction(t TransactionRecord) {
	b.transactions = append(b.transactions, t)
}

func inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...))
}

// Build resolves all references and creates the snapshot. All
// violations are reported together.
func (b *Builder) Build() (*Snapshot, error) {
	s := &Snapshot{
		commodities:  make(map[commodity.ID]*commodity.Commodity),
		accounts:     make(map[account.ID]*account.Account),
		transactions: make(map[transaction.ID]*transaction.Transaction),
		scenarios: map[transaction.ScenarioID]*transaction.Scenario{
			transaction.NoScenario: {ID: transaction.NoScenario, Name: "baseline"},
		},
		children: make(map[account.ID][]*account.Account),
	}
	var err error
	for _, c := range b.commodities {
		if _, ok := s.commodities[c.ID]; ok {
			err = multierr.Append(err, inconsistent("duplicate commodity %d", c.ID))
			continue
		}
		if c.QtyScale <= 0 || c.PriceScale <= 0 {
			err = multierr.Append(err, inconsistent("commodity %s has non-positive scale", c.Name))
			continue
		}
		s.commodities[c.ID] = c
		s.commodityList = append(s.commodityList, c)
	}
	for _, sc := range b.scenarios {
		sc := sc
		if _, ok := s.scenarios[sc.ID]; ok {
			err = multierr.Append(err, inconsistent("duplicate scenario %d", sc.ID))
			continue
		}
		s.scenarios[sc.ID] = &sc
	}
	err = multierr.Append(err, b.buildAccounts(s))
	err = multierr.Append(err, b.buildPrices(s))
	err = multierr.Append(err, b.buildTransactions(s))
	if err != nil {
		return nil, err
	}
	compare.Sort(s.commodityList, commodity.Compare)
	compare.Sort(s.accountList, account.Compare)
	compare.Sort(s.transactionList, transaction.Compare)
	compare.Sort(s.priceList, func(p1, p2 *price.Price) compare.Order {
		return compare.Time(p1.Date, p2.Date)
	})
	for _, cs := range s.children {
		compare.Sort(cs, account.Compare)
	}
	return s, nil
}

func (b *Builder) buildAccounts(s *Snapshot) error {
	var err error
	for _, r := range b.accounts {
		if _, ok := s.accounts[r.ID]; ok {
			err = multierr.Append(err, inconsistent("duplicate account %d", r.ID))
			continue
		}
		c, ok := s.commodities[r.Commodity]
		if !ok {
			err = multierr.Append(err, inconsistent("account %s references unknown commodity %d", r.Name, r.Commodity))
			continue
		}
		if r.CommoditySCU <= 0 {
			err = multierr.Append(err, inconsistent("account %s has non-positive commodity scu", r.Name))
			continue
		}
		a := &account.Account{
			ID:           r.ID,
			Name:         r.Name,
			Kind:         r.Kind,
			Closed:       r.Closed,
			Commodity:    c,
			CommoditySCU: r.CommoditySCU,
		}
		s.accounts[a.ID] = a
		s.accountList = append(s.accountList, a)
	}
	for _, r := range b.accounts {
		if r.Parent == 0 {
			continue
		}
		a, ok := s.accounts[r.ID]
		if !ok {
			continue
		}
		p, ok := s.accounts[r.Parent]
		if !ok {
			err = multierr.Append(err, inconsistent("account %s references unknown parent %d", r.Name, r.Parent))
			continue
		}
		a.Parent = p
		s.children[p.ID] = append(s.children[p.ID], a)
	}
	for _, a := range s.accountList {
		if hasCycle(a) {
			err = multierr.Append(err, inconsistent("account %s is its own ancestor", a.Name))
			a.Parent = nil
		}
	}
	return err
}

func hasCycle(a *account.Account) bool {
	slow, fast := a, a
	for fast != nil && fast.Parent != nil {
		slow, fast = slow.Parent, fast.Parent.Parent
		if slow == fast {
			return true
		}
	}
	return false
}

func (b *Builder) buildPrices(s *Snapshot) error {
	var err error
	for _, r := range b.prices {
		origin, ok1 := s.commodities[r.Origin]
		target, ok2 := s.commodities[r.Target]
		if !ok1 || !ok2 {
			err = multierr.Append(err, inconsistent("price on %s references unknown commodity", r.Date.Format(date.Layout)))
			continue
		}
		s.priceList = append(s.priceList, &price.Price{
			Origin:      origin,
			Target:      target,
			Date:        date.Truncate(r.Date),
			ScaledPrice: r.ScaledPrice,
			Source:      r.Source,
		})
	}
	return err
}

func (b *Builder) buildTransactions(s *Snapshot) error {
	var err error
	for _, r := range b.transactions {
		if _, ok := s.transactions[r.ID]; ok {
			err = multierr.Append(err, inconsistent("duplicate transaction %d", r.ID))
			continue
		}
		if _, ok := s.scenarios[r.Scenario]; !ok {
			err = multierr.Append(err, inconsistent("transaction %d references unknown scenario %d", r.ID, r.Scenario))
			continue
		}
		t := &transaction.Transaction{
			ID:             r.ID,
			Timestamp:      date.Truncate(r.Timestamp),
			Memo:           r.Memo,
			Scheduled:      r.Scheduled,
			Scenario:       r.Scenario,
		}
		if r.LastOccurrence != nil {
			last := date.Truncate(*r.LastOccurrence)
			t.LastOccurrence = &last
		}
		var terr error
		for _, sr := range r.Splits {
			a, ok := s.accounts[sr.Account]
			if !ok {
				terr = multierr.Append(terr, inconsistent("transaction %d references unknown account %d", r.ID, sr.Account))
				continue
			}
			vc, ok := s.commodities[sr.ValueCommodity]
			if !ok {
				terr = multierr.Append(terr, inconsistent("transaction %d references unknown commodity %d", r.ID, sr.ValueCommodity))
				continue
			}
			postDate := sr.PostDate
			if postDate.IsZero() {
				postDate = t.Timestamp
			}
			t.Splits = append(t.Splits, &transaction.Split{
				Transaction:    t,
				Account:        a,
				ScaledQty:      sr.ScaledQty,
				ScaledValue:    sr.ScaledValue,
				ValueCommodity: vc,
				PostDate:       date.Truncate(postDate),
				Reconcile:      sr.Reconcile,
			})
		}
		if terr != nil {
			err = multierr.Append(err, terr)
			continue
		}
		s.transactions[t.ID] = t
		s.transactionList = append(s.transactionList, t)
	}
	return err
}
