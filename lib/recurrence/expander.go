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

package recurrence

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"

	"github.com/briot/alere-sub000/lib/common/date"
)

// DefaultCacheSize is the number of compiled rules an Expander keeps.
const DefaultCacheSize = 256

type cacheKey struct {
	text   string
	anchor int64
}

type compiled struct {
	rule *rrule.RRule
	err  error
}

// Expander computes occurrences of recurrence rules. Compiled rules are
// kept in a bounded cache owned by the Expander. An Expander is not safe for
// concurrent use.
type Expander struct {
	armageddon time.Time
	cache      *lru.Cache[cacheKey, compiled]
	log        zerolog.Logger
}

// NewExpander creates an expander. Occurrences on or after armageddon are
// never produced. Diagnostics about malformed rules are written to log.
func NewExpander(armageddon time.Time, cacheSize int, log zerolog.Logger) *Expander {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, compiled](cacheSize)
	if err != nil {
		// only fails for non-positive sizes
		panic(err)
	}
	return &Expander{
		armageddon: armageddon,
		cache:      cache,
		log:        log,
	}
}

func (e *Expander) compile(text string, anchor time.Time) (*rrule.RRule, error) {
	key := cacheKey{text: text, anchor: anchor.Unix()}
	if c, ok := e.cache.Get(key); ok {
		return c.rule, c.err
	}
	r, err := e.build(text, anchor)
	if err != nil {
		e.log.Warn().Err(err).Str("rule", text).Time("anchor", anchor).Msg("ignoring malformed recurrence rule")
	}
	e.cache.Add(key, compiled{rule: r, err: err})
	return r, err
}

func (e *Expander) build(text string, anchor time.Time) (*rrule.RRule, error) {
	rule, err := Parse(text)
	if err != nil {
		return nil, err
	}
	for _, w := range rule.Warnings {
		e.log.Warn().Str("rule", text).Msg(w)
	}
	opt := rule.Option
	opt.Dtstart = date.Truncate(anchor)
	last := e.armageddon.AddDate(0, 0, -1)
	if opt.Until.IsZero() || opt.Until.After(last) {
		opt.Until = last
	}
	return rrule.NewRRule(opt)
}

// Next returns the first occurrence of the rule on or after anchor if
// previous is nil, or the first occurrence strictly after previous. It
// returns false if the rule is exhausted or malformed.
func (e *Expander) Next(text string, anchor time.Time, previous *time.Time) (time.Time, bool) {
	r, err := e.compile(text, anchor)
	if err != nil {
		return time.Time{}, false
	}
	var t time.Time
	if previous == nil {
		t = r.After(date.Truncate(anchor), true)
	} else {
		t = r.After(date.Truncate(*previous), false)
	}
	if t.IsZero() || !t.Before(e.armageddon) {
		return time.Time{}, false
	}
	return date.Truncate(t), true
}

// Expand returns up to max successive occurrences before end, starting
// after previous (or on or after anchor if previous is nil). The result is
// strictly increasing and equals feeding Next its own results.
func (e *Expander) Expand(text string, anchor time.Time, previous *time.Time, max int, end time.Time) []time.Time {
	if max <= 0 {
		return nil
	}
	r, err := e.compile(text, anchor)
	if err != nil {
		return nil
	}
	var (
		res  []time.Time
		next = r.Iterator()
	)
	for len(res) < max {
		t, ok := next()
		if !ok {
			break
		}
		t = date.Truncate(t)
		if !t.Before(end) || !t.Before(e.armageddon) {
			break
		}
		if t.Before(date.Truncate(anchor)) || previous != nil && !t.After(*previous) {
			continue
		}
		if n := len(res); n > 0 && !t.After(res[n-1]) {
			break
		}
		res = append(res, t)
	}
	return res
}

// Len returns the number of compiled rules in the cache.
func (e *Expander) Len() int {
	return e.cache.Len()
}
