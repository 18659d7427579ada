package price

import (
	"fmt"
	"strings"
	"time"

	"github.com/briot/alere-sub000/lib/common/ratio"
	"github.com/briot/alere-sub000/lib/model/commodity"
)

// Source is the provenance of a price. Sources are ordered by
// increasing priority.
type Source int

const (
	Identity Source = iota
	Fetched
	Transaction
	User
)

func (s Source) String() string {
	switch s {
	case Identity:
		return "identity"
	case Fetched:
		return "fetched"
	case Transaction:
		return "transaction"
	case User:
		return "user"
	}
	return ""
}

// ParseSource parses a price source, ignoring case.
func ParseSource(s string) (Source, error) {
	for _, src := range []Source{Identity, Fetched, Transaction, User} {
		if strings.EqualFold(src.String(), s) {
			return src, nil
		}
	}
	return 0, fmt.Errorf("invalid price source %q", s)
}

// Price states that on Date, one unit of Origin equals
// ScaledPrice / Origin.PriceScale units of Target.
type Price struct {
	Origin      *commodity.Commodity
	Target      *commodity.Commodity
	Date        time.Time
	ScaledPrice int64
	Source      Source
}

// Rate returns the unscaled exchange rate.
func (p *Price) Rate() ratio.Ratio {
	return ratio.Of(p.ScaledPrice, p.Origin.PriceScale)
}

func (p *Price) String() string {
	return fmt.Sprintf("%s 1 %s = %s %s", p.Date.Format("2006-01-02"), p.Origin, p.Rate(), p.Target)
}
