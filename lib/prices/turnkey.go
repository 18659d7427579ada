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

package prices

import (
	"time"

	"github.com/briot/alere-sub000/lib/common/compare"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/ratio"
	"github.com/briot/alere-sub000/lib/model/commodity"
)

// candidate is a composed edge through one pivot, together with the start
// dates of the two edges it was composed from.
type candidate struct {
	Edge
	first, second time.Time
}

// better decides which of two overlapping candidates is used: the one based
// on the more recent first leg, then the direct one, then the one with the
// more recent second leg, then the one with the lower pivot ID.
func better(c1, c2 *candidate) bool {
	if o := compare.Time(c1.first, c2.first); o != compare.Equal {
		return o == compare.Greater
	}
	d1, d2 := c1.Pivot == c1.Target, c2.Pivot == c2.Target
	if d1 != d2 {
		return d1
	}
	if o := compare.Time(c1.second, c2.second); o != compare.Equal {
		return o == compare.Greater
	}
	return c1.Pivot.ID < c2.Pivot.ID
}

// Turnkey returns the rates from origin to target, composing at most one
// intermediate commodity: rate(origin→pivot) * rate(pivot→target). Direct
// edges are composed with the identity rate of the target. Where several
// compositions overlap, the one based on the most recent quote for origin
// is used. The result may have gaps where no rate is known.
//
// The rate of a commodity to itself is always exactly 1.
func (g *Graph) Turnkey(origin, target *commodity.Commodity) Edges {
	if origin == target {
		return Edges{g.self(origin)}
	}
	var lists [][]candidate
	for _, pivot := range g.neighbors[origin.ID] {
		first := g.Edges(origin, pivot)
		var second Edges
		if pivot == target {
			second = Edges{g.self(target)}
		} else {
			second = g.Edges(pivot, target)
		}
		if cs := compose(first, second, pivot); len(cs) > 0 {
			lists = append(lists, cs)
		}
	}
	return resolve(lists)
}

// compose intersects two sorted edge sequences.
func compose(first, second Edges, pivot *commodity.Commodity) []candidate {
	var (
		res  []candidate
		i, j int
	)
	for i < len(first) && j < len(second) {
		a, b := first[i], second[j]
		if r := a.Intersect(b.Range); !r.Empty() {
			res = append(res, candidate{
				Edge: Edge{
					Origin:      a.Origin,
					Target:      b.Target,
					Range:       r,
					ScaledPrice: a.ScaledPrice.Mul(b.ScaledPrice).DivInt(pivot.PriceScale),
					Source:      a.Source,
					Pivot:       pivot,
				},
				first:  a.Min,
				second: b.Min,
			})
		}
		if a.Max.Before(b.Max) {
			i++
		} else {
			j++
		}
	}
	return res
}

// resolve merges the candidates of several pivots into non-overlapping
// edges. Each list is sorted and free of overlaps.
func resolve(lists [][]candidate) Edges {
	var bounds []time.Time
	for _, cs := range lists {
		for _, c := range cs {
			bounds = append(bounds, c.Min, c.Max)
		}
	}
	compare.Sort(bounds, compare.Time)
	var (
		res  Edges
		pos  = make([]int, len(lists))
		last *candidate
	)
	for k := 0; k+1 < len(bounds); k++ {
		seg := date.NewRange(bounds[k], bounds[k+1])
		if seg.Empty() {
			continue
		}
		var best *candidate
		for l, cs := range lists {
			for pos[l] < len(cs) && !cs[pos[l]].Max.After(seg.Min) {
				pos[l]++
			}
			if pos[l] == len(cs) {
				continue
			}
			c := &cs[pos[l]]
			if !c.Contains(seg.Min) {
				continue
			}
			if best == nil || better(c, best) {
				best = c
			}
		}
		switch {
		case best == nil:
		case best == last && res[len(res)-1].Max.Equal(seg.Min):
			res[len(res)-1].Max = seg.Max
		default:
			e := best.Edge
			e.Range = seg
			res = append(res, e)
		}
		last = best
	}
	return res
}

// RateAt returns the scaled rate from origin to target at d and the price
// scale of origin. It returns false if no rate is known.
func (g *Graph) RateAt(origin, target *commodity.Commodity, d time.Time) (ratio.Ratio, int64, bool) {
	e, ok := g.Turnkey(origin, target).At(d)
	if !ok {
		return ratio.NaN, 0, false
	}
	return e.ScaledPrice, origin.PriceScale, true
}

// Rates returns the turnkey rates of every commodity into every currency.
func (g *Graph) Rates() []Edge {
	var res []Edge
	for _, o := range g.commodities {
		for _, t := range g.commodities {
			if !t.IsCurrency() {
				continue
			}
			res = append(res, g.Turnkey(o, t)...)
		}
	}
	return res
}
