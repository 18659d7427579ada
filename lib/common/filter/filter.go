package filter

import (
	"github.com/briot/alere-sub000/lib/common/regex"
)

// Filter selects values.
type Filter[T any] func(T) bool

func AllowAll[T any](_ T) bool {
	return true
}

// Pathed is implemented by values with a hierarchical name.
type Pathed interface {
	Path() string
}

// ByPath matches values whose path matches any of the patterns. An empty
// list matches everything.
func ByPath[T Pathed](rxs regex.Regexes) Filter[T] {
	if len(rxs) == 0 {
		return AllowAll[T]
	}
	return func(t T) bool {
		return rxs.MatchString(t.Path())
	}
}
