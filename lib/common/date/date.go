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

package date

import (
	"fmt"
	"time"
)

// Layout is the textual representation of a date.
const Layout = "2006-01-02"

// Min is the earliest representable date. It opens the self-rate edges and
// any range which has no lower bound.
var Min = time.Time{}

// Date creates a new date in UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time-of-day of t, keeping its calendar date.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Today returns today's date.
func Today() time.Time {
	return Truncate(time.Now().Local())
}

// Parse parses a date in YYYY-MM-DD format.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Earlier returns the earlier of two dates.
func Earlier(t1, t2 time.Time) time.Time {
	if t2.Before(t1) {
		return t2
	}
	return t1
}

// Later returns the later of two dates.
func Later(t1, t2 time.Time) time.Time {
	if t2.After(t1) {
		return t2
	}
	return t1
}

// Range is a half-open date interval [Min, Max).
type Range struct {
	Min, Max time.Time
}

// NewRange creates a new range.
func NewRange(min, max time.Time) Range {
	return Range{Min: min, Max: max}
}

// Until returns the range covering everything before max.
func Until(max time.Time) Range {
	return Range{Min: Min, Max: max}
}

// Empty returns whether the range contains no date.
func (r Range) Empty() bool {
	return !r.Min.Before(r.Max)
}

// Contains returns whether t lies within the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Min) && t.Before(r.Max)
}

// Intersect returns the intersection of two ranges. The result
// may be empty.
func (r Range) Intersect(o Range) Range {
	return Range{Min: Later(r.Min, o.Min), Max: Earlier(r.Max, o.Max)}
}

// Overlaps returns whether the two ranges share at least one date.
func (r Range) Overlaps(o Range) bool {
	return !r.Intersect(o).Empty()
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Min.Format(Layout), r.Max.Format(Layout))
}

// Contiguous returns whether the ranges are non-empty, ordered and each
// one starts where its predecessor ends.
func Contiguous(rs []Range) bool {
	for i, r := range rs {
		if r.Empty() {
			return false
		}
		if i > 0 && !rs[i-1].Max.Equal(r.Min) {
			return false
		}
	}
	return true
}
