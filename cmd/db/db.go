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

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/briot/alere-sub000/cmd/flags"
	"github.com/briot/alere-sub000/lib/ledger"
	"github.com/briot/alere-sub000/lib/ledger/pgstore"
	"github.com/briot/alere-sub000/lib/logging"
)

// CreateCmd creates the command.
func CreateCmd() *cobra.Command {

	var r runner

	c := &cobra.Command{
		Use:   "db",
		Short: "set up a PostgreSQL ledger",
		Long: `Create the tables of a PostgreSQL ledger. With --load, copy the YAML ledger
given with --ledger into the database.`,
		Args: cobra.NoArgs,
		RunE: r.run,
	}
	r.setupFlags(c)
	return c
}

type runner struct {
	global  flags.Global
	load    bool
	timeout time.Duration
}

func (r *runner) setupFlags(c *cobra.Command) {
	r.global.Setup(c)
	c.Flags().BoolVar(&r.load, "load", false, "copy the YAML ledger into the database")
	c.Flags().DurationVar(&r.timeout, "timeout", 30*time.Second, "timeout")
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	if err := r.execute(cmd, args); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	return nil
}

func (r *runner) execute(cmd *cobra.Command, args []string) error {
	cfg, err := r.global.Config(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("missing --database-url")
	}
	if r.load && cfg.Ledger == "" {
		return errors.New("--load needs --ledger")
	}
	log, err := logging.NewConsole(cmd.ErrOrStderr(), cfg.LogLevel, false)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(logging.WithContext(cmd.Context(), log), r.timeout)
	defer cancel()
	s, err := pgstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.CreateSchema(ctx); err != nil {
		return err
	}
	if !r.load {
		return nil
	}
	snap, err := ledger.FileStore{Path: cfg.Ledger}.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.Save(ctx, snap); err != nil {
		return err
	}
	log.Info().
		Int("transactions", len(snap.Transactions())).
		Int("prices", len(snap.Prices())).
		Msg("ledger loaded")
	return nil
}
