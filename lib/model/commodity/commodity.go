package commodity

import (
	"fmt"
	"strings"

	"github.com/briot/alere-sub000/lib/common/compare"
)

// ID identifies a commodity.
type ID int64

// Kind classifies commodities.
type Kind int

const (
	Currency Kind = iota
	Stock
	Fund
	Bond
)

var kinds = map[string]Kind{
	"currency": Currency,
	"stock":    Stock,
	"fund":     Fund,
	"bond":     Bond,
}

func (k Kind) String() string {
	switch k {
	case Currency:
		return "currency"
	case Stock:
		return "stock"
	case Fund:
		return "fund"
	case Bond:
		return "bond"
	}
	return ""
}

// ParseKind parses a commodity kind, ignoring case.
func ParseKind(s string) (Kind, error) {
	k, ok := kinds[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("invalid commodity kind %q", s)
	}
	return k, nil
}

// Commodity is a currency or a security.
//
// QtyScale is the denominator of the smallest tradeable unit, PriceScale the
// denominator used when expressing the price of one unit of this commodity
// in another one.
type Commodity struct {
	ID         ID
	Name       string
	Kind       Kind
	QtyScale   int64
	PriceScale int64
}

// IsCurrency returns whether the commodity is a currency.
func (c *Commodity) IsCurrency() bool {
	return c.Kind == Currency
}

func (c *Commodity) String() string {
	return c.Name
}

func Compare(c1, c2 *Commodity) compare.Order {
	return compare.Ordered(c1.ID, c2.ID)
}
