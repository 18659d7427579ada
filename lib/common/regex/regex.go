package regex

import "regexp"

// Regexes is a list of alternative patterns.
type Regexes []*regexp.Regexp

func (rxs *Regexes) Add(r *regexp.Regexp) {
	*rxs = append(*rxs, r)
}

// MatchString returns whether any of the patterns matches s.
func (rxs Regexes) MatchString(s string) bool {
	for _, r := range rxs {
		if r.MatchString(s) {
			return true
		}
	}
	return false
}
