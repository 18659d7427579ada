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

// Package prices builds time-sliced exchange rates between commodities.
//
// Rates come from stored prices, from transactions which exchange one
// currency for another, and from the identity rate of every currency. All
// rates for a pair of commodities form a sequence of half-open date ranges:
// a rate is valid from its date until the next rate for the same pair, and
// the last one until the armageddon date.
package prices

import (
	"sort"
	"time"

	"github.com/briot/alere-sub000/lib/common/compare"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/dict"
	"github.com/briot/alere-sub000/lib/common/ratio"
	"github.com/briot/alere-sub000/lib/ledger"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/model/price"
	"github.com/briot/alere-sub000/lib/model/transaction"
)

// Pair is an ordered pair of commodities.
type Pair struct {
	Origin, Target commodity.ID
}

// Edge is an exchange rate valid over a date range: one unit of Origin
// equals ScaledPrice / Origin.PriceScale units of Target.
type Edge struct {
	Origin, Target *commodity.Commodity
	date.Range
	ScaledPrice ratio.Ratio
	Source      price.Source
	// Pivot is the intermediate commodity of a composed edge, and nil for
	// direct edges.
	Pivot *commodity.Commodity
}

// Rate returns the unscaled rate.
func (e Edge) Rate() ratio.Ratio {
	return e.ScaledPrice.DivInt(e.Origin.PriceScale)
}

// Edges is a sorted sequence of non-overlapping edges for one pair.
type Edges []Edge

// At returns the edge valid at d.
func (es Edges) At(d time.Time) (Edge, bool) {
	i := sort.Search(len(es), func(i int) bool {
		return es[i].Max.After(d)
	})
	if i < len(es) && es[i].Contains(d) {
		return es[i], true
	}
	return Edge{}, false
}

// Ranges returns the date ranges of the edges.
func (es Edges) Ranges() []date.Range {
	res := make([]date.Range, 0, len(es))
	for _, e := range es {
		res = append(res, e.Range)
	}
	return res
}

// Graph holds the direct edges between commodities. It is immutable and
// safe for concurrent use.
type Graph struct {
	armageddon  time.Time
	commodities []*commodity.Commodity
	edges       map[Pair]Edges
	// targets of the direct edges leaving a commodity, ordered by ID
	neighbors map[commodity.ID][]*commodity.Commodity
}

type point struct {
	origin, target *commodity.Commodity
	date           time.Time
	scaled         ratio.Ratio
	source         price.Source
	seq            int
}

// Build creates the graph for a ledger snapshot.
func Build(s *ledger.Snapshot, armageddon time.Time) *Graph {
	var pts []point
	add := func(origin, target *commodity.Commodity, d time.Time, scaled ratio.Ratio, src price.Source) {
		if origin == target || scaled.Sign() <= 0 || !d.Before(armageddon) {
			return
		}
		pts = append(pts, point{origin: origin, target: target, date: d, scaled: scaled, source: src, seq: len(pts)})
		pts = append(pts, point{
			origin: target,
			target: origin,
			date:   d,
			scaled: ratio.Of(target.PriceScale, 1).MulInt(origin.PriceScale).Div(scaled),
			source: src,
			seq:    len(pts),
		})
	}
	for _, p := range s.Prices() {
		if !p.Target.IsCurrency() {
			continue
		}
		add(p.Origin, p.Target, p.Date, ratio.Of(p.ScaledPrice, 1), p.Source)
	}
	for _, t := range s.Transactions() {
		if t.IsScheduled() || t.Scenario != transaction.NoScenario {
			continue
		}
		for _, sp := range t.Splits {
			if scaled, ok := impliedPrice(sp); ok {
				add(sp.Account.Commodity, sp.ValueCommodity, sp.PostDate, scaled, price.Transaction)
			}
		}
	}
	g := &Graph{
		armageddon:  armageddon,
		commodities: s.Commodities(),
		edges:       make(map[Pair]Edges),
		neighbors:   make(map[commodity.ID][]*commodity.Commodity),
	}
	groups := dict.Group(pts, func(p point) Pair {
		return Pair{p.origin.ID, p.target.ID}
	})
	for pair, ps := range groups {
		g.edges[pair] = window(ps, armageddon)
		o := ps[0].origin
		g.neighbors[o.ID] = append(g.neighbors[o.ID], ps[0].target)
	}
	for _, ns := range g.neighbors {
		compare.Sort(ns, commodity.Compare)
	}
	for _, c := range s.Currencies() {
		g.edges[Pair{c.ID, c.ID}] = Edges{g.self(c)}
	}
	return g
}

// impliedPrice derives the rate of a split which exchanges the currency of
// its account for a different value commodity, scaled by the price scale of
// the account's currency.
func impliedPrice(s *transaction.Split) (ratio.Ratio, bool) {
	c, v := s.Account.Commodity, s.ValueCommodity
	if !c.IsCurrency() || c == v || s.ScaledQty == 0 || s.ScaledValue == 0 {
		return ratio.NaN, false
	}
	r := ratio.Of(s.ScaledValue, 1).
		MulInt(s.Account.CommoditySCU).
		MulInt(c.PriceScale).
		Div(ratio.Of(v.PriceScale, 1).MulInt(s.ScaledQty))
	return r, r.Sign() > 0
}

// window turns the dated points of one pair into contiguous edges. Of
// several points on the same date, the one with the highest priority
// source wins, and among those the last one.
func window(ps []point, armageddon time.Time) Edges {
	compare.Sort(ps, compare.Combine(
		func(p1, p2 point) compare.Order { return compare.Time(p1.date, p2.date) },
		func(p1, p2 point) compare.Order { return compare.Ordered(p1.source, p2.source) },
		func(p1, p2 point) compare.Order { return compare.Ordered(p1.seq, p2.seq) },
	))
	var res Edges
	for i, p := range ps {
		if i+1 < len(ps) && ps[i+1].date.Equal(p.date) {
			continue
		}
		max := armageddon
		if n := len(res); n > 0 {
			res[n-1].Max = p.date
		}
		res = append(res, Edge{
			Origin:      p.origin,
			Target:      p.target,
			Range:       date.NewRange(p.date, max),
			ScaledPrice: p.scaled,
			Source:      p.source,
		})
	}
	return res
}

func (g *Graph) self(c *commodity.Commodity) Edge {
	return Edge{
		Origin:      c,
		Target:      c,
		Range:       date.NewRange(date.Min, g.armageddon),
		ScaledPrice: ratio.Of(c.PriceScale, 1),
		Source:      price.Identity,
	}
}

// Armageddon returns the date closing the last edge of every pair.
func (g *Graph) Armageddon() time.Time {
	return g.armageddon
}

// Edges returns the direct edges from origin to target.
func (g *Graph) Edges(origin, target *commodity.Commodity) Edges {
	return g.edges[Pair{origin.ID, target.ID}]
}
