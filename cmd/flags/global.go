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

package flags

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/briot/alere-sub000/lib/common/table"
	"github.com/briot/alere-sub000/lib/config"
	"github.com/briot/alere-sub000/lib/engine"
	"github.com/briot/alere-sub000/lib/ledger"
	"github.com/briot/alere-sub000/lib/ledger/pgstore"
	"github.com/briot/alere-sub000/lib/logging"
)

// Global manages the flags shared by all query commands.
type Global struct {
	configFile string
	ledger     string
	dbURL      string
	now        DateFlag
	armageddon DateFlag
	logLevel   string
	output     string
	csv        bool
	color      bool
	digits     int32
}

// Setup configures the flags.
func (g *Global) Setup(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.configFile, "config", "", "YAML settings file")
	cmd.Flags().StringVarP(&g.ledger, "ledger", "l", "", "YAML ledger file")
	cmd.Flags().StringVar(&g.dbURL, "database-url", "", "PostgreSQL ledger")
	cmd.Flags().Var(&g.now, "now", "reference date of point-in-time queries")
	cmd.Flags().Var(&g.armageddon, "armageddon", "end of all open intervals")
	cmd.Flags().StringVar(&g.logLevel, "log-level", "", "log level")
	cmd.Flags().StringVarP(&g.output, "output", "o", "", "write the report to a file")
	cmd.Flags().BoolVar(&g.csv, "csv", false, "render the report as CSV")
	cmd.Flags().BoolVar(&g.color, "color", false, "print output in color")
	cmd.Flags().Int32Var(&g.digits, "digits", 2, "round to this number of digits")
}

func (g *Global) overrides(cmd *cobra.Command) map[string]any {
	res := make(map[string]any)
	set := func(flag, key string, val any) {
		if cmd.Flags().Changed(flag) {
			res[key] = val
		}
	}
	set("ledger", config.KeyLedger, g.ledger)
	set("database-url", config.KeyDatabaseURL, g.dbURL)
	set("now", config.KeyNow, g.now.String())
	set("armageddon", config.KeyArmageddon, g.armageddon.String())
	set("log-level", config.KeyLogLevel, g.logLevel)
	return res
}

// Config loads the settings, with flags taking precedence.
func (g *Global) Config(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(config.Options{
		File:      g.configFile,
		Overrides: g.overrides(cmd),
	})
}

// Engine opens the ledger and creates an engine. The returned function
// releases the ledger.
func (g *Global) Engine(cmd *cobra.Command) (*engine.Engine, func(), error) {
	cfg, err := g.Config(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewConsole(cmd.ErrOrStderr(), cfg.LogLevel, g.color)
	if err != nil {
		return nil, nil, err
	}
	ecfg := engine.Config{
		Now:                     cfg.Now,
		Armageddon:              cfg.Armageddon,
		MaxScheduledOccurrences: cfg.MaxScheduledOccurrences,
		RuleCacheSize:           cfg.RuleCacheSize,
	}
	switch {
	case cfg.DatabaseURL != "":
		ctx := logging.WithContext(cmd.Context(), log)
		s, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return engine.New(s, ecfg, log), s.Close, nil
	case cfg.Ledger != "":
		return engine.New(ledger.FileStore{Path: cfg.Ledger}, ecfg, log), func() {}, nil
	}
	return nil, nil, errors.New("no ledger: use --ledger or --database-url")
}

// Render renders the table to the command output, or to the file given
// with --output.
func (g *Global) Render(cmd *cobra.Command, tbl *table.Table) error {
	if g.output == "" {
		out := bufio.NewWriter(cmd.OutOrStdout())
		if err := g.renderer().Render(tbl, out); err != nil {
			return err
		}
		return out.Flush()
	}
	var buf bytes.Buffer
	if err := g.renderer().Render(tbl, &buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(g.output, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", g.output, err)
	}
	return nil
}

func (g *Global) renderer() table.Renderer {
	if g.csv {
		return &table.CSVRenderer{Round: g.digits}
	}
	return &table.TextRenderer{Color: g.color, Round: g.digits}
}
