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

package splits

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/briot/alere-sub000/cmd/cmdtest"
	"github.com/briot/alere-sub000/lib/ledger"
)

const portfolio = "../../lib/ledger/ledgertest/portfolio.yaml"

func TestGolden(t *testing.T) {
	var tests = []struct {
		name string
		args []string
	}{
		{
			name: "checking",
			args: []string{"Checking"},
		},
		{
			name: "scheduled",
			args: []string{"Rent", "--scheduled", "--to", "2022-06-01"},
		},
		{
			name: "match",
			args: []string{"--account", "^Assets:C", "--to", "2020-03-01"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			args := append(test.args, "--ledger", portfolio, "--now", "2021-01-01")

			got := cmdtest.Run(t, CreateCmd(), args...)

			goldie.New(t).Assert(t, test.name, got)
		})
	}
}

func TestUnknownAccount(t *testing.T) {
	err := cmdtest.Fail(t, CreateCmd(), "Brokerage", "--ledger", portfolio, "--now", "2021-01-01")

	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
