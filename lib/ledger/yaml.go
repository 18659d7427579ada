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
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	money "github.com/Rhymond/go-money"
	"gopkg.in/yaml.v2"

	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/set"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/model/price"
	"github.com/briot/alere-sub000/lib/model/transaction"
)

type yamlLedger struct {
	Commodities  []yamlCommodity   `yaml:"commodities"`
	Accounts     []yamlAccount     `yaml:"accounts"`
	Scenarios    []yamlScenario    `yaml:"scenarios"`
	Prices       []yamlPrice       `yaml:"prices"`
	Transactions []yamlTransaction `yaml:"transactions"`
}

type yamlCommodity struct {
	ID         int64  `yaml:"id"`
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	QtyScale   int64  `yaml:"qty_scale"`
	PriceScale int64  `yaml:"price_scale"`
}

type yamlAccount struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Parent    string `yaml:"parent"`
	Commodity string `yaml:"commodity"`
	SCU       int64  `yaml:"scu"`
	Category  string `yaml:"category"`
	Networth  bool   `yaml:"networth"`
	Trading   bool   `yaml:"trading"`
	Tax       bool   `yaml:"tax"`
	Closed    bool   `yaml:"closed"`
}

type yamlScenario struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type yamlPrice struct {
	Date   string `yaml:"date"`
	Origin string `yaml:"origin"`
	Target string `yaml:"target"`
	Price  int64  `yaml:"price"`
	Source string `yaml:"source"`
}

type yamlTransaction struct {
	ID             int64       `yaml:"id"`
	Timestamp      string      `yaml:"timestamp"`
	Memo           string      `yaml:"memo"`
	Scheduled      string      `yaml:"scheduled"`
	LastOccurrence string      `yaml:"last_occurrence"`
	Scenario       string      `yaml:"scenario"`
	Splits         []yamlSplit `yaml:"splits"`
}

type yamlSplit struct {
	Account        string `yaml:"account"`
	Qty            int64  `yaml:"qty"`
	Value          int64  `yaml:"value"`
	ValueCommodity string `yaml:"value_commodity"`
	PostDate       string `yaml:"post_date"`
	Reconcile      string `yaml:"reconcile"`
}

// FileStore loads a snapshot from a YAML ledger file on every call.
type FileStore struct {
	Path string
}

var _ Store = FileStore{}

// Snapshot reads and parses the file.
func (fs FileStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	f, err := os.Open(fs.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := ReadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fs.Path, err)
	}
	return s, nil
}

// ReadYAML parses a ledger in YAML format. Unknown fields are rejected.
//
// Records reference each other by name: accounts name their parent and
// commodity, splits name their account and value commodity. Currency scales
// default to 10^n, where n is the ISO 4217 number of minor units.
func ReadYAML(r io.Reader) (*Snapshot, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var l yamlLedger
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.SetStrict(true)
	if err := dec.Decode(&l); err != nil && err != io.EOF {
		return nil, err
	}
	return l.build()
}

func (l *yamlLedger) build() (*Snapshot, error) {
	var (
		b           = NewBuilder()
		commodities = make(map[string]commodity.ID)
		accounts    = make(map[string]account.ID)
		scenarios   = make(map[string]transaction.ScenarioID)
	)
	for _, c := range l.Commodities {
		kind, err := commodity.ParseKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("commodity %s: %w", c.Name, err)
		}
		if _, ok := commodities[c.Name]; ok {
			return nil, inconsistent("duplicate commodity name %q", c.Name)
		}
		qs, ps := c.QtyScale, c.PriceScale
		if kind == commodity.Currency {
			qs, ps = defaultScale(c.Name, qs), defaultScale(c.Name, ps)
		}
		commodities[c.Name] = commodity.ID(c.ID)
		b.AddCommodity(commodity.Commodity{
			ID:         commodity.ID(c.ID),
			Name:       c.Name,
			Kind:       kind,
			QtyScale:   qs,
			PriceScale: ps,
		})
	}
	names := set.New[string]()
	for _, a := range l.Accounts {
		if names.Has(a.Name) {
			return nil, inconsistent("duplicate account name %q", a.Name)
		}
		names.Add(a.Name)
		accounts[a.Name] = account.ID(a.ID)
	}
	for _, a := range l.Accounts {
		cat, err := account.ParseCategory(a.Category)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Name, err)
		}
		cid, ok := commodities[a.Commodity]
		if !ok {
			return nil, inconsistent("account %s references unknown commodity %q", a.Name, a.Commodity)
		}
		var parent account.ID
		if a.Parent != "" {
			if parent, ok = accounts[a.Parent]; !ok {
				return nil, inconsistent("account %s references unknown parent %q", a.Name, a.Parent)
			}
		}
		scu := a.SCU
		if scu == 0 {
			scu = l.qtyScale(a.Commodity)
		}
		b.AddAccount(AccountRecord{
			ID:     account.ID(a.ID),
			Name:   a.Name,
			Parent: parent,
			Kind: account.Kind{
				Category: cat,
				Networth: a.Networth,
				Trading:  a.Trading,
				Tax:      a.Tax,
			},
			Closed:       a.Closed,
			Commodity:    cid,
			CommoditySCU: scu,
		})
	}
	for _, s := range l.Scenarios {
		scenarios[s.Name] = transaction.ScenarioID(s.ID)
		b.AddScenario(transaction.Scenario{ID: transaction.ScenarioID(s.ID), Name: s.Name})
	}
	for _, p := range l.Prices {
		d, err := date.Parse(p.Date)
		if err != nil {
			return nil, err
		}
		src := price.User
		if p.Source != "" {
			if src, err = price.ParseSource(p.Source); err != nil {
				return nil, err
			}
		}
		origin, ok1 := commodities[p.Origin]
		target, ok2 := commodities[p.Target]
		if !ok1 || !ok2 {
			return nil, inconsistent("price on %s references unknown commodity", p.Date)
		}
		b.AddPrice(PriceRecord{Origin: origin, Target: target, Date: d, ScaledPrice: p.Price, Source: src})
	}
	for _, t := range l.Transactions {
		rec, err := t.record(commodities, accounts, scenarios)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		b.AddTransaction(rec)
	}
	return b.Build()
}

func (t *yamlTransaction) record(commodities map[string]commodity.ID, accounts map[string]account.ID, scenarios map[string]transaction.ScenarioID) (TransactionRecord, error) {
	ts, err := date.Parse(t.Timestamp)
	if err != nil {
		return TransactionRecord{}, err
	}
	rec := TransactionRecord{
		ID:        transaction.ID(t.ID),
		Timestamp: ts,
		Memo:      t.Memo,
		Scheduled: strings.TrimSpace(t.Scheduled),
	}
	if t.LastOccurrence != "" {
		lo, err := date.Parse(t.LastOccurrence)
		if err != nil {
			return TransactionRecord{}, err
		}
		rec.LastOccurrence = &lo
	}
	if t.Scenario != "" {
		sc, ok := scenarios[t.Scenario]
		if !ok {
			return TransactionRecord{}, inconsistent("unknown scenario %q", t.Scenario)
		}
		rec.Scenario = sc
	}
	for _, s := range t.Splits {
		aid, ok := accounts[s.Account]
		if !ok {
			return TransactionRecord{}, inconsistent("unknown account %q", s.Account)
		}
		vc, ok := commodities[s.ValueCommodity]
		if !ok {
			return TransactionRecord{}, inconsistent("unknown commodity %q", s.ValueCommodity)
		}
		var pd time.Time
		if s.PostDate != "" {
			if pd, err = date.Parse(s.PostDate); err != nil {
				return TransactionRecord{}, err
			}
		}
		rc, err := transaction.ParseReconcile(s.Reconcile)
		if err != nil {
			return TransactionRecord{}, err
		}
		rec.Splits = append(rec.Splits, SplitRecord{
			Account:        aid,
			ScaledQty:      s.Qty,
			ScaledValue:    s.Value,
			ValueCommodity: vc,
			PostDate:       pd,
			Reconcile:      rc,
		})
	}
	return rec, nil
}

func (l *yamlLedger) qtyScale(name string) int64 {
	for _, c := range l.Commodities {
		if c.Name != name {
			continue
		}
		if c.QtyScale == 0 && strings.EqualFold(c.Kind, commodity.Currency.String()) {
			return defaultScale(c.Name, 0)
		}
		return c.QtyScale
	}
	return 0
}

// defaultScale returns s, or the scale implied by the ISO minor units of
// the currency code if s is zero.
func defaultScale(code string, s int64) int64 {
	if s != 0 {
		return s
	}
	c := money.GetCurrency(code)
	if c == nil {
		return 100
	}
	return int64(math.Pow10(c.Fraction))
}
