// Package ledgertest provides a small multi-currency ledger for tests.
//
// The ledger holds a EUR checking account funded by a salary, a purchase of
// 20 ACME shares at 50 USD (1 USD = 0.85 EUR) with a 20 EUR fee, a free
// share, an internal transfer to savings, a currency exchange which implies
// a USD/EUR rate, a sale of 5 shares, a transaction in the "sabbatical"
// scenario and a monthly scheduled rent.
package ledgertest

import (
	"bytes"
	_ "embed"
	"testing"

	"github.com/briot/alere-sub000/lib/ledger"
	"github.com/briot/alere-sub000/lib/model/account"
	"github.com/briot/alere-sub000/lib/model/commodity"
)

//go:embed portfolio.yaml
var portfolio []byte

// Portfolio returns the test ledger.
func Portfolio(t testing.TB) *ledger.Snapshot {
	t.Helper()
	s, err := ledger.ReadYAML(bytes.NewReader(portfolio))
	if err != nil {
		t.Fatalf("ledger.ReadYAML() returned unexpected error: %v", err)
	}
	return s
}

// PortfolioYAML returns the raw test ledger.
func PortfolioYAML() []byte {
	return bytes.Clone(portfolio)
}

// Account returns the account with the given name or path.
func Account(t testing.TB, s *ledger.Snapshot, name string) *account.Account {
	t.Helper()
	a, err := s.AccountByName(name)
	if err != nil {
		t.Fatalf("AccountByName(%q) returned unexpected error: %v", name, err)
	}
	return a
}

// Commodity returns the commodity with the given name.
func Commodity(t testing.TB, s *ledger.Snapshot, name string) *commodity.Commodity {
	t.Helper()
	c, err := s.CommodityByName(name)
	if err != nil {
		t.Fatalf("CommodityByName(%q) returned unexpected error: %v", name, err)
	}
	return c
}
