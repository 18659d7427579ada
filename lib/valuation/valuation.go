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

// Package valuation prices account balances in a target commodity.
package valuation

import (
	"github.com/briot/alere-sub000/lib/balance"
	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/ratio"
	"github.com/briot/alere-sub000/lib/model/commodity"
	"github.com/briot/alere-sub000/lib/prices"
	"github.com/briot/alere-sub000/lib/splits"
)

// Query selects the balance of an account and the commodity it is valued in.
type Query struct {
	balance.Query
	Target *commodity.Commodity
}

// Row is the value of a balance over a date range. Price is the rate of one
// unit of the account's commodity in the target commodity. Price and
// Balance are NaN where no rate is known.
type Row struct {
	date.Range
	Shares, Price, Balance ratio.Ratio
}

// ValuedBalances computes the balances of the queried account in the target
// commodity.
func ValuedBalances(r *splits.Resolver, g *prices.Graph, q Query) []Row {
	is := balance.Balances(r, q.Query, g.Armageddon())
	if len(is) == 0 {
		return nil
	}
	return Value(is, g.Turnkey(q.Account.Commodity, q.Target))
}

// Value intersects balance intervals with exchange rates. A balance interval
// is cut wherever the rate changes, and ranges without a rate are kept with
// an undefined price.
func Value(is []balance.Interval, es prices.Edges) []Row {
	var (
		res []Row
		j   int
	)
	for _, in := range is {
		for j < len(es) && !es[j].Max.After(in.Min) {
			j++
		}
		cur := in.Min
		for k := j; k < len(es) && es[k].Min.Before(in.Max); k++ {
			r := in.Intersect(es[k].Range)
			if r.Empty() {
				continue
			}
			if cur.Before(r.Min) {
				res = append(res, unknown(date.NewRange(cur, r.Min), in.Shares))
			}
			price := es[k].Rate()
			res = append(res, Row{
				Range:   r,
				Shares:  in.Shares,
				Price:   price,
				Balance: in.Shares.Mul(price),
			})
			cur = r.Max
		}
		if cur.Before(in.Max) {
			res = append(res, unknown(date.NewRange(cur, in.Max), in.Shares))
		}
	}
	return res
}

func unknown(r date.Range, shares ratio.Ratio) Row {
	return Row{Range: r, Shares: shares, Price: ratio.NaN, Balance: ratio.NaN}
}
