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

// Package recurrence expands scheduled transactions into occurrences.
//
// Rules use the RFC 5545 RRULE vocabulary restricted to dates: keys are
// case-insensitive, separated by semicolons, and time-of-day keys are
// ignored.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/briot/alere-sub000/lib/common/date"
)

// Rule is a parsed recurrence rule. Warnings lists the parts of the rule
// text which were ignored.
type Rule struct {
	Option   rrule.ROption
	Warnings []string
}

var frequencies = map[string]rrule.Frequency{
	"YEARLY":  rrule.YEARLY,
	"MONTHLY": rrule.MONTHLY,
	"WEEKLY":  rrule.WEEKLY,
	"DAILY":   rrule.DAILY,
}

var weekdays = map[string]rrule.Weekday{
	"MO": rrule.MO,
	"TU": rrule.TU,
	"WE": rrule.WE,
	"TH": rrule.TH,
	"FR": rrule.FR,
	"SA": rrule.SA,
	"SU": rrule.SU,
}

// Parse parses rule text such as "freq=MONTHLY;bymonthday=3;bymonth=1,2".
// The returned option has no start date; the caller supplies the anchor.
func Parse(text string) (*Rule, error) {
	var (
		res     Rule
		hasFreq bool
	)
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid rule part %q: missing '='", part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToUpper(strings.TrimSpace(value))
		var err error
		switch key {
		case "freq":
			f, ok := frequencies[value]
			if !ok {
				return nil, fmt.Errorf("unsupported frequency %q", value)
			}
			res.Option.Freq, hasFreq = f, true
		case "interval":
			res.Option.Interval, err = parsePositive(value)
		case "count":
			res.Option.Count, err = parsePositive(value)
		case "wkst":
			wd, ok := weekdays[value]
			if !ok {
				return nil, fmt.Errorf("invalid week start %q", value)
			}
			res.Option.Wkst = wd
		case "until":
			res.Option.Until, err = parseUntil(value)
		case "bymonth":
			res.Option.Bymonth, err = parseInts(value)
		case "bymonthday":
			res.Option.Bymonthday, err = parseInts(value)
		case "byyearday":
			res.Option.Byyearday, err = parseInts(value)
		case "byweekno":
			res.Option.Byweekno, err = parseInts(value)
		case "bysetpos":
			res.Option.Bysetpos, err = parseInts(value)
		case "byeaster":
			res.Option.Byeaster, err = parseInts(value)
		case "byday", "byweekday":
			res.Option.Byweekday, err = parseWeekdays(value)
		case "byhour", "byminute", "bysecond":
			res.Warnings = append(res.Warnings, fmt.Sprintf("ignoring time of day key %q", key))
		default:
			res.Warnings = append(res.Warnings, fmt.Sprintf("ignoring unknown key %q", key))
		}
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	if !hasFreq {
		return nil, fmt.Errorf("rule %q has no frequency", text)
	}
	return &res, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

func parseInts(s string) ([]int, error) {
	var res []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, nil
}

// parseWeekdays parses days like "MO", "+2TU" or "-1FR".
func parseWeekdays(s string) ([]rrule.Weekday, error) {
	var res []rrule.Weekday
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if len(f) < 2 {
			return nil, fmt.Errorf("invalid weekday %q", f)
		}
		wd, ok := weekdays[f[len(f)-2:]]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", f)
		}
		if prefix := f[:len(f)-2]; prefix != "" {
			n, err := strconv.Atoi(prefix)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("invalid weekday ordinal %q", f)
			}
			wd = wd.Nth(n)
		}
		res = append(res, wd)
	}
	return res, nil
}

var untilLayouts = []string{date.Layout, "20060102", "20060102T150405Z", "20060102T150405"}

func parseUntil(s string) (time.Time, error) {
	for _, l := range untilLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return date.Truncate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
