package account

import (
	"fmt"
	"strings"

	"github.com/briot/alere-sub000/lib/common/compare"
	"github.com/briot/alere-sub000/lib/model/commodity"
)

// ID identifies an account.
type ID int64

// Category is the bookkeeping category of an account.
type Category int

const (
	// Asset represents an asset account.
	Asset Category = iota
	// Liability represents a liability account.
	Liability
	// Equity represents an equity account.
	Equity
	// Income represents an income account.
	Income
	// Expense represents an expense account.
	Expense
)

func (c Category) String() string {
	switch c {
	case Asset:
		return "asset"
	case Liability:
		return "liability"
	case Equity:
		return "equity"
	case Income:
		return "income"
	case Expense:
		return "expense"
	}
	return ""
}

var categories = map[string]Category{
	"asset":     Asset,
	"liability": Liability,
	"equity":    Equity,
	"income":    Income,
	"expense":   Expense,
}

// ParseCategory parses an account category, ignoring case.
func ParseCategory(s string) (Category, error) {
	c, ok := categories[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("invalid account category %q", s)
	}
	return c, nil
}

// Kind bundles the flags which decide how a split on the account affects
// capital and valuation.
type Kind struct {
	Category Category
	// Networth accounts are part of the owner's net worth.
	Networth bool
	Trading  bool
	Tax      bool
}

// Account is a node in the account tree.
type Account struct {
	ID     ID
	Name   string
	Parent *Account
	Kind   Kind
	Closed bool

	Commodity *commodity.Commodity
	// CommoditySCU is the scale of the quantities recorded on this
	// account's splits.
	CommoditySCU int64
}

// IsNetworth returns whether the account counts towards net worth.
func (a *Account) IsNetworth() bool {
	return a.Kind.Networth
}

// IsIE returns whether this account is an income or expense account.
func (a *Account) IsIE() bool {
	return a.Kind.Category == Income || a.Kind.Category == Expense
}

// Path returns the names of the account and its ancestors, joined
// by colons.
func (a *Account) Path() string {
	var segments []string
	for p := a; p != nil; p = p.Parent {
		segments = append([]string{p.Name}, segments...)
	}
	return strings.Join(segments, ":")
}

// Level returns the depth of the account in the tree, starting at 1.
func (a *Account) Level() int {
	var n int
	for p := a; p != nil; p = p.Parent {
		n++
	}
	return n
}

func (a *Account) String() string {
	return a.Name
}

func Compare(a1, a2 *Account) compare.Order {
	return compare.Ordered(a1.ID, a2.ID)
}
