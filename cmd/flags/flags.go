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
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/briot/alere-sub000/lib/common/date"
	"github.com/briot/alere-sub000/lib/common/regex"
	"github.com/briot/alere-sub000/lib/engine"
	"github.com/briot/alere-sub000/lib/model/transaction"
)

// DateFlag manages a flag to determine a date.
type DateFlag time.Time

var _ pflag.Value = (*DateFlag)(nil)

func (tf DateFlag) String() string {
	if tf.Value().IsZero() {
		return ""
	}
	return tf.Value().Format(date.Layout)
}

// Set implements pflag.Value.
func (tf *DateFlag) Set(v string) error {
	t, err := date.Parse(v)
	if err != nil {
		return err
	}
	*tf = (DateFlag)(t)
	return nil
}

// Type implements pflag.Value.
func (tf DateFlag) Type() string {
	return "YYYY-MM-DD"
}

// Value returns the flag value.
func (tf DateFlag) Value() time.Time {
	return time.Time(tf)
}

// ValueOr returns the flag value, or t if the flag is not set.
func (tf DateFlag) ValueOr(t time.Time) time.Time {
	v := tf.Value()
	if v.IsZero() {
		return t
	}
	return v
}

// RegexFlag manages a flag to get a regex. It can be repeated.
type RegexFlag struct {
	rxs regex.Regexes
}

var _ pflag.Value = (*RegexFlag)(nil)

func (rf RegexFlag) String() string {
	var ss []string
	for _, r := range rf.rxs {
		ss = append(ss, r.String())
	}
	return strings.Join(ss, ",")
}

// Set implements pflag.Value.
func (rf *RegexFlag) Set(v string) error {
	t, err := regexp.Compile(v)
	if err != nil {
		return err
	}
	rf.rxs.Add(t)
	return nil
}

// Type implements pflag.Value.
func (rf RegexFlag) Type() string {
	return "<regex>"
}

// Value returns the patterns.
func (rf *RegexFlag) Value() regex.Regexes {
	return rf.rxs
}

// CommodityFlag manages a flag naming a commodity.
type CommodityFlag struct {
	val string
}

var _ pflag.Value = (*CommodityFlag)(nil)

// Set implements pflag.Value.
func (cf *CommodityFlag) Set(v string) error {
	if v == "" {
		return errors.New("commodity must not be empty")
	}
	cf.val = v
	return nil
}

// Type implements pflag.Value.
func (cf CommodityFlag) Type() string {
	return "<commodity>"
}

func (cf CommodityFlag) String() string {
	return cf.val
}

// Value returns the commodity name, or def if the flag is not set.
func (cf CommodityFlag) Value(def string) string {
	if cf.val == "" {
		return def
	}
	return cf.val
}

// QueryFlags manage the flags selecting the splits of a query.
type QueryFlags struct {
	from, to  DateFlag
	scenario  int64
	scheduled bool
}

// Setup configures the flags.
func (qf *QueryFlags) Setup(cmd *cobra.Command) {
	cmd.Flags().Var(&qf.from, "from", "start of the window")
	cmd.Flags().Var(&qf.to, "to", "end of the window (exclusive)")
	cmd.Flags().Int64Var(&qf.scenario, "scenario", 0, "ID of a scenario to include")
	cmd.Flags().BoolVar(&qf.scheduled, "scheduled", false, "include occurrences of scheduled transactions")
}

// Options returns the query options. An unset end of the window means
// armageddon.
func (qf QueryFlags) Options(armageddon time.Time) (engine.Options, error) {
	w := date.NewRange(qf.from.ValueOr(date.Min), qf.to.ValueOr(armageddon))
	if w.Empty() {
		return engine.Options{}, errors.New("--from must be before --to")
	}
	return engine.Options{
		Window:           w,
		Scenario:         transaction.ScenarioID(qf.scenario),
		IncludeScheduled: qf.scheduled,
	}, nil
}
