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

// Package config loads the settings of the engine and its command line.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/briot/alere-sub000/lib/common/date"
)

// EnvPrefix prefixes the environment variables overriding settings,
// e.g. ALERE_DATABASE_URL.
const EnvPrefix = "ALERE"

// Keys of the settings.
const (
	KeyLedger        = "ledger"
	KeyDatabaseURL   = "database_url"
	KeyArmageddon    = "armageddon"
	KeyMaxScheduled  = "max_scheduled_occurrences"
	KeyRuleCacheSize = "rule_cache_size"
	KeyNow           = "now"
	KeyLogLevel      = "log_level"
)

const (
	defaultArmageddon    = "2999-12-31"
	defaultMaxScheduled  = 1000
	defaultRuleCacheSize = 256
)

// Config holds the settings.
type Config struct {
	// Ledger is the path of a YAML ledger.
	Ledger string
	// DatabaseURL points to a PostgreSQL ledger. It takes precedence
	// over Ledger.
	DatabaseURL             string
	Armageddon              time.Time
	MaxScheduledOccurrences int
	RuleCacheSize           int
	// Now is the reference date of point-in-time queries.
	Now      time.Time
	LogLevel string
}

// Options tune how settings are loaded.
type Options struct {
	// File is an optional YAML settings file.
	File string
	// EnvFiles are dotenv files loaded into the environment. Variables
	// which are already set are not overwritten. Missing files are
	// ignored.
	EnvFiles []string
	// Overrides take precedence over everything else.
	Overrides map[string]any
}

// Load reads the settings. Later sources win: defaults, the settings file,
// dotenv files and the process environment, overrides.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetDefault(KeyLedger, "")
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyArmageddon, defaultArmageddon)
	v.SetDefault(KeyMaxScheduled, defaultMaxScheduled)
	v.SetDefault(KeyRuleCacheSize, defaultRuleCacheSize)
	v.SetDefault(KeyNow, "")
	v.SetDefault(KeyLogLevel, "info")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", opts.File, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for k, val := range opts.Overrides {
		v.Set(k, val)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Ledger:                  v.GetString(KeyLedger),
		DatabaseURL:             v.GetString(KeyDatabaseURL),
		MaxScheduledOccurrences: v.GetInt(KeyMaxScheduled),
		RuleCacheSize:           v.GetInt(KeyRuleCacheSize),
		LogLevel:                v.GetString(KeyLogLevel),
	}
	var err error
	if cfg.Armageddon, err = date.Parse(v.GetString(KeyArmageddon)); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyArmageddon, err)
	}
	if s := v.GetString(KeyNow); s != "" {
		if cfg.Now, err = date.Parse(s); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", KeyNow, err)
		}
	} else {
		cfg.Now = date.Today()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the consistency of the settings.
func (cfg *Config) Validate() error {
	if cfg.MaxScheduledOccurrences < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyMaxScheduled, cfg.MaxScheduledOccurrences)
	}
	if cfg.RuleCacheSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyRuleCacheSize, cfg.RuleCacheSize)
	}
	if !cfg.Now.Before(cfg.Armageddon) {
		return errors.New("now must be before armageddon")
	}
	return nil
}
