package compare

import (
	"sort"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/briot/alere-sub000/lib/common/ratio"
)

// Order is the result of comparing two values.
type Order int

const (
	Smaller Order = -1
	Equal   Order = 0
	Greater Order = 1
)

// Compare compares two values.
type Compare[T any] func(t1, t2 T) Order

func Ordered[T constraints.Ordered](t1, t2 T) Order {
	switch {
	case t1 < t2:
		return Smaller
	case t1 == t2:
		return Equal
	}
	return Greater
}

func Time(t1, t2 time.Time) Order {
	switch {
	case t1.Before(t2):
		return Smaller
	case t1.Equal(t2):
		return Equal
	}
	return Greater
}

// Ratio orders defined ratios numerically. Undefined ratios sort last.
func Ratio(r1, r2 ratio.Ratio) Order {
	switch {
	case !r1.Valid() && !r2.Valid():
		return Equal
	case !r1.Valid():
		return Greater
	case !r2.Valid():
		return Smaller
	}
	return Order(r1.Cmp(r2))
}

func Desc[T any](cmp Compare[T]) Compare[T] {
	return func(t1, t2 T) Order {
		return cmp(t2, t1)
	}
}

// By lifts a comparison on keys to a comparison on values.
func By[T, K any](key func(T) K, cmp Compare[K]) Compare[T] {
	return func(t1, t2 T) Order {
		return cmp(key(t1), key(t2))
	}
}

func Combine[T any](cmp ...Compare[T]) Compare[T] {
	return func(t1, t2 T) Order {
		for _, c := range cmp {
			if o := c(t1, t2); o != Equal {
				return o
			}
		}
		return Equal
	}
}

// Sort sorts ts stably.
func Sort[T any](ts []T, cmp Compare[T]) {
	sort.SliceStable(ts, func(i, j int) bool {
		return cmp(ts[i], ts[j]) == Smaller
	})
}
