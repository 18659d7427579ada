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

package ratio

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestArithmetic(t *testing.T) {
	var tests = []struct {
		desc string
		got  Ratio
		want Ratio
	}{
		{"reduce", Of(850, 1000), Of(17, 20)},
		{"negative denominator", Of(3, -6), Of(-1, 2)},
		{"add", Of(1, 3).Add(Of(1, 6)), Of(1, 2)},
		{"sub", Of(1, 3).Sub(Of(1, 2)), Of(-1, 6)},
		{"mul", Of(2, 3).Mul(Of(9, 4)), Of(3, 2)},
		{"div", Of(2, 3).Div(Of(4, 9)), Of(3, 2)},
		{"inv", Of(-4, 7).Inv(), Of(-7, 4)},
		{"decimal", FromDecimal(decimal.RequireFromString("0.85")), Of(17, 20)},
		{"reciprocal is exact", Of(1000*1000, 850).Mul(Of(850, 1000*1000)), One},
		{"division by zero", One.Div(Zero), NaN},
		{"zero denominator", Of(1, 0), NaN},
		{"nan propagates", NaN.Add(One), NaN},
		{"nan times zero", NaN.Mul(Zero), NaN},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if diff := cmp.Diff(test.want, test.got); diff != "" {
				t.Fatalf("unexpected diff (-want/+got):\n%s", diff)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	var tests = []struct {
		r      Ratio
		places int32
		want   string
	}{
		{Of(87, 2), 2, "43.50"},
		{Of(2, 3), 4, "0.6667"},
		{Of(-1, 3), 2, "-0.33"},
		{NaN, 2, "NaN"},
	}
	for _, test := range tests {
		if got := test.r.Format(test.places); got != test.want {
			t.Errorf("%v.Format(%d) = %q, want %q", test.r, test.places, got, test.want)
		}
	}
}

func TestString(t *testing.T) {
	for r, want := range map[Ratio]string{
		Of(6, 3): "2",
		Of(1, 3): "1/3",
		NaN:      "NaN",
	} {
		if got := r.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestPredicates(t *testing.T) {
	if NaN.Valid() {
		t.Errorf("NaN.Valid() = true")
	}
	if !Zero.IsZero() || NaN.IsZero() {
		t.Errorf("IsZero() misclassifies zero or NaN")
	}
	if got := Of(-3, 4).Sign(); got != -1 {
		t.Errorf("Sign() = %d, want -1", got)
	}
	if got := Of(1, 3).Cmp(Of(1, 2)); got != -1 {
		t.Errorf("Cmp() = %d, want -1", got)
	}
	if got := NaN.Float64(); !math.IsNaN(got) {
		t.Errorf("NaN.Float64() = %f", got)
	}
	if got := Of(3, 4).Float64(); got != 0.75 {
		t.Errorf("Float64() = %f, want 0.75", got)
	}
}
