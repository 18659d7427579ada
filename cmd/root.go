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

// Package cmd is the main command file for Cobra
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/briot/alere-sub000/cmd/balance"
	"github.com/briot/alere-sub000/cmd/completion"
	"github.com/briot/alere-sub000/cmd/db"
	"github.com/briot/alere-sub000/cmd/invest"
	"github.com/briot/alere-sub000/cmd/occurrences"
	"github.com/briot/alere-sub000/cmd/rates"
	"github.com/briot/alere-sub000/cmd/splits"
	"github.com/briot/alere-sub000/cmd/value"
)

// RootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alere",
	Short: "alere computes balances and investment metrics",
	Long: `alere computes the balance history of ledger accounts, values them in any
currency using exchange rates derived from prices and transactions, and computes
investment metrics such as invested capital and return on investment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(balance.CreateCmd())
	rootCmd.AddCommand(value.CreateCmd())
	rootCmd.AddCommand(invest.CreateCmd())
	rootCmd.AddCommand(rates.CreateCmd())
	rootCmd.AddCommand(splits.CreateCmd())
	rootCmd.AddCommand(occurrences.CreateCmd())
	rootCmd.AddCommand(db.CreateCmd())
	rootCmd.AddCommand(completion.CreateCmd(rootCmd))
}
