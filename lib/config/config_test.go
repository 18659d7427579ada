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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briot/alere-sub000/lib/common/date"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, date.Date(2999, 12, 31), cfg.Armageddon)
	assert.Equal(t, 1000, cfg.MaxScheduledOccurrences)
	assert.Equal(t, 256, cfg.RuleCacheSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, date.Today(), cfg.Now)
	assert.Empty(t, cfg.Ledger)
}

func TestLoadPrecedence(t *testing.T) {
	file := write(t, "alere.yaml", `
ledger: portfolio.yaml
armageddon: "2100-01-01"
max_scheduled_occurrences: 12
now: "2021-06-30"
log_level: debug
`)
	env := write(t, "test.env", "ALERE_LOG_LEVEL=warn\n")
	t.Cleanup(func() { os.Unsetenv("ALERE_LOG_LEVEL") })
	t.Setenv("ALERE_MAX_SCHEDULED_OCCURRENCES", "4")

	cfg, err := Load(Options{
		File:      file,
		EnvFiles:  []string{env},
		Overrides: map[string]any{KeyLedger: "other.yaml"},
	})
	require.NoError(t, err)

	assert.Equal(t, "other.yaml", cfg.Ledger)
	assert.Equal(t, date.Date(2100, 1, 1), cfg.Armageddon)
	assert.Equal(t, 4, cfg.MaxScheduledOccurrences)
	assert.Equal(t, date.Date(2021, 6, 30), cfg.Now)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadDotenv(t *testing.T) {
	env := write(t, "test.env", "ALERE_DATABASE_URL=postgres://localhost/alere\n")
	t.Cleanup(func() { os.Unsetenv("ALERE_DATABASE_URL") })

	cfg, err := Load(Options{EnvFiles: []string{env}})
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/alere", cfg.DatabaseURL)
}

func TestLoadErrors(t *testing.T) {
	var tests = []struct {
		desc string
		opts Options
	}{
		{
			desc: "missing file",
			opts: Options{File: filepath.Join(t.TempDir(), "missing.yaml")},
		},
		{
			desc: "invalid armageddon",
			opts: Options{Overrides: map[string]any{KeyArmageddon: "someday"}},
		},
		{
			desc: "invalid now",
			opts: Options{Overrides: map[string]any{KeyNow: "2021-13-01"}},
		},
		{
			desc: "negative occurrences",
			opts: Options{Overrides: map[string]any{KeyMaxScheduled: -1}},
		},
		{
			desc: "empty cache",
			opts: Options{Overrides: map[string]any{KeyRuleCacheSize: 0}},
		},
		{
			desc: "now after armageddon",
			opts: Options{Overrides: map[string]any{KeyNow: "2030-01-01", KeyArmageddon: "2020-01-01"}},
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			test.opts.EnvFiles = []string{}

			_, err := Load(test.opts)

			assert.Error(t, err)
		})
	}
}
