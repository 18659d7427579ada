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

package value

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"

	"github.com/briot/alere-sub000/cmd/cmdtest"
)

const portfolio = "../../lib/ledger/ledgertest/portfolio.yaml"

func TestGolden(t *testing.T) {
	var tests = []struct {
		name string
		args []string
	}{
		{
			name: "acme",
			args: []string{"ACME", "--target", "EUR"},
		},
		{
			name: "at",
			args: []string{"ACME", "-t", "EUR", "--at", "2020-02-10"},
		},
		{
			name: "csv",
			args: []string{"ACME", "--target", "EUR", "--csv"},
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

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	args := []string{"ACME", "--target", "EUR", "--ledger", portfolio}

	stdout := cmdtest.Run(t, CreateCmd(), append(args, "--output", path)...)
	want := cmdtest.Run(t, CreateCmd(), args...)

	if len(stdout) > 0 {
		t.Errorf("got output %q, want none", stdout)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() returned unexpected error: %v", err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("unexpected diff (-want/+got):\n%s", diff)
	}
}

func TestMissingTarget(t *testing.T) {
	cmdtest.Fail(t, CreateCmd(), "ACME", "--ledger", portfolio)
	cmdtest.Fail(t, CreateCmd(), "ACME", "--ledger", portfolio, "--target", "GBP")
}
