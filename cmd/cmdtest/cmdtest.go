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

// Package cmdtest runs commands in tests.
package cmdtest

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
)

// Run executes cmd with the given arguments and returns its standard
// output. The test fails if the command returns an error.
func Run(t *testing.T, cmd *cobra.Command, args ...string) []byte {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%s %v returned unexpected error: %v\n%s", cmd.Name(), args, err, stderr.String())
	}
	return stdout.Bytes()
}

// Fail executes cmd with the given arguments and returns its error. The
// test fails if the command succeeds.
func Fail(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	if err == nil {
		t.Fatalf("%s %v succeeded, want an error", cmd.Name(), args)
	}
	return err
}
