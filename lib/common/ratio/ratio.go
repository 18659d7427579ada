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

// Package ratio implements exact fractions on top of decimal numbers.
//
// Scaled quantities and prices are integers divided by a fixed scale, and
// composing them (reciprocals, turnkey rates, averages) produces fractions
// which are not always representable as finite decimals. A Ratio keeps
// numerator and denominator separately, reduced to lowest terms, so that no
// precision is lost until the value is formatted.
package ratio

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Ratio is an exact fraction. A Ratio with a zero denominator is undefined
// (NaN); the zero value is undefined. Undefined values propagate through
// every arithmetic operation.
type Ratio struct {
	num, den decimal.Decimal
}

var (
	// NaN is the undefined ratio.
	NaN = Ratio{}
	// Zero is 0/1.
	Zero = Ratio{num: decimal.Zero, den: decimal.NewFromInt(1)}
	// One is 1/1.
	One = Ratio{num: decimal.NewFromInt(1), den: decimal.NewFromInt(1)}
)

// New creates the fraction num/den. A zero denominator yields NaN.
func New(num, den decimal.Decimal) Ratio {
	if den.IsZero() {
		return NaN
	}
	r := new(big.Rat).Quo(num.Rat(), den.Rat())
	return Ratio{
		num: decimal.NewFromBigInt(r.Num(), 0),
		den: decimal.NewFromBigInt(r.Denom(), 0),
	}
}

// Of creates the fraction num/den from integers.
func Of(num, den int64) Ratio {
	return New(decimal.NewFromInt(num), decimal.NewFromInt(den))
}

// FromDecimal converts a decimal to a ratio.
func FromDecimal(d decimal.Decimal) Ratio {
	return New(d, decimal.NewFromInt(1))
}

// Valid returns whether the ratio is defined.
func (r Ratio) Valid() bool {
	return !r.den.IsZero()
}

// Num returns the reduced numerator.
func (r Ratio) Num() decimal.Decimal {
	return r.num
}

// Den returns the reduced denominator, which is positive for valid ratios.
func (r Ratio) Den() decimal.Decimal {
	return r.den
}

// Add returns r + o.
func (r Ratio) Add(o Ratio) Ratio {
	if !r.Valid() || !o.Valid() {
		return NaN
	}
	return New(r.num.Mul(o.den).Add(o.num.Mul(r.den)), r.den.Mul(o.den))
}

// Sub returns r - o.
func (r Ratio) Sub(o Ratio) Ratio {
	return r.Add(o.Neg())
}

// Mul returns r * o.
func (r Ratio) Mul(o Ratio) Ratio {
	if !r.Valid() || !o.Valid() {
		return NaN
	}
	return New(r.num.Mul(o.num), r.den.Mul(o.den))
}

// Div returns r / o. Division by zero yields NaN.
func (r Ratio) Div(o Ratio) Ratio {
	if !r.Valid() || !o.Valid() {
		return NaN
	}
	return New(r.num.Mul(o.den), r.den.Mul(o.num))
}

// MulInt returns r * n.
func (r Ratio) MulInt(n int64) Ratio {
	return r.Mul(Of(n, 1))
}

// DivInt returns r / n.
func (r Ratio) DivInt(n int64) Ratio {
	return r.Div(Of(n, 1))
}

// Neg returns -r.
func (r Ratio) Neg() Ratio {
	if !r.Valid() {
		return NaN
	}
	return Ratio{num: r.num.Neg(), den: r.den}
}

// Abs returns |r|.
func (r Ratio) Abs() Ratio {
	if r.Sign() < 0 {
		return r.Neg()
	}
	return r
}

// Inv returns 1/r.
func (r Ratio) Inv() Ratio {
	return One.Div(r)
}

// Sign returns -1, 0 or 1. Undefined ratios have sign 0.
func (r Ratio) Sign() int {
	if !r.Valid() {
		return 0
	}
	return r.num.Sign()
}

// IsZero returns whether r is a defined zero.
func (r Ratio) IsZero() bool {
	return r.Valid() && r.num.IsZero()
}

// Cmp compares two defined ratios.
func (r Ratio) Cmp(o Ratio) int {
	return r.num.Mul(o.den).Cmp(o.num.Mul(r.den))
}

// Equal returns whether two ratios denote the same number. Two
// undefined ratios are equal.
func (r Ratio) Equal(o Ratio) bool {
	if !r.Valid() || !o.Valid() {
		return r.Valid() == o.Valid()
	}
	return r.num.Equal(o.num) && r.den.Equal(o.den)
}

// Decimal rounds the ratio to the given number of decimal places. The
// second return value is false if the ratio is undefined.
func (r Ratio) Decimal(places int32) (decimal.Decimal, bool) {
	if !r.Valid() {
		return decimal.Zero, false
	}
	return r.num.DivRound(r.den, places), true
}

// Float64 returns the nearest float, or NaN.
func (r Ratio) Float64() float64 {
	if !r.Valid() {
		return math.NaN()
	}
	f, _ := new(big.Rat).Quo(r.num.Rat(), r.den.Rat()).Float64()
	return f
}

// Format formats the ratio with a fixed number of decimal places.
func (r Ratio) Format(places int32) string {
	d, ok := r.Decimal(places)
	if !ok {
		return "NaN"
	}
	return d.StringFixed(places)
}

func (r Ratio) String() string {
	switch {
	case !r.Valid():
		return "NaN"
	case r.den.Equal(decimal.NewFromInt(1)):
		return r.num.String()
	default:
		return fmt.Sprintf("%s/%s", r.num, r.den)
	}
}
