package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/briot/alere-sub000/lib/common/compare"
	"github.com/briot/alere-sub000/lib/common/ratio"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/commodity"
)

// ID identifies a transaction.
type ID int64

// ScenarioID identifies a scenario.
type ScenarioID int64

// NoScenario is the baseline scenario, which every query includes.
const NoScenario ScenarioID = 0

// Scenario tags a set of hypothetical transactions.
type Scenario struct {
	ID   ScenarioID
	Name string
}

// Reconcile is the reconciliation state of a split.
type Reconcile int

const (
	New Reconcile = iota
	Cleared
	Reconciled
)

func (r Reconcile) String() string {
	switch r {
	case New:
		return "new"
	case Cleared:
		return "cleared"
	case Reconciled:
		return "reconciled"
	}
	return ""
}

// ParseReconcile parses a reconciliation state, ignoring case. The empty
// string is New.
func ParseReconcile(s string) (Reconcile, error) {
	for _, r := range []Reconcile{New, Cleared, Reconciled} {
		if strings.EqualFold(r.String(), s) {
			return r, nil
		}
	}
	if s == "" {
		return New, nil
	}
	return 0, fmt.Errorf("invalid reconcile state %q", s)
}

// Transaction groups splits whose values sum to zero.
//
// A transaction with a non-empty Scheduled rule is a template: it is not a
// realized event but expands into occurrences, starting at Timestamp and
// following LastOccurrence if set.
type Transaction struct {
	ID             ID
	Timestamp      time.Time
	Memo           string
	Scheduled      string
	LastOccurrence *time.Time
	Scenario       ScenarioID
	Splits         []*Split
}

// IsScheduled returns whether the transaction is a template.
func (t *Transaction) IsScheduled() bool {
	return t.Scheduled != ""
}

func Compare(t1, t2 *Transaction) compare.Order {
	if o := compare.Time(t1.Timestamp, t2.Timestamp); o != compare.Equal {
		return o
	}
	return compare.Ordered(t1.ID, t2.ID)
}

// Split is one leg of a transaction.
type Split struct {
	Transaction *Transaction
	Account     *account.Account
	// ScaledQty is in the account's commodity, scaled by the account's
	// CommoditySCU.
	ScaledQty int64
	// ScaledValue is in ValueCommodity, scaled by its PriceScale.
	ScaledValue    int64
	ValueCommodity *commodity.Commodity
	PostDate       time.Time
	Reconcile      Reconcile
}

// Qty returns the quantity in units of the account's commodity.
func (s *Split) Qty() ratio.Ratio {
	return ratio.Of(s.ScaledQty, s.Account.CommoditySCU)
}

// Value returns the value in units of the value commodity.
func (s *Split) Value() ratio.Ratio {
	return ratio.Of(s.ScaledValue, s.ValueCommodity.PriceScale)
}

// Counterparts returns the other splits of the transaction which are not
// booked on the same account.
func (s *Split) Counterparts() []*Split {
	var res []*Split
	for _, o := range s.Transaction.Splits {
		if o != s && o.Account != s.Account {
			res = append(res, o)
		}
	}
	return res
}
