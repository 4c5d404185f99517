package waf

// RuleMatch identifies the rule that fired during the fast pre-filter.
type RuleMatch struct {
	UUID    string
	Pattern string
}

// Match tests the Stage 1 input against the active rule snapshot. Rules are
// tried in insertion order and the first hit wins; no precedence is defined
// among multiple matching rules since only the outcome matters. Pure read.
func (s *RuleStore) Match(input string) (RuleMatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.compiled {
		if r.re.MatchString(input) {
			return RuleMatch{UUID: r.UUID, Pattern: r.Pattern}, true
		}
	}
	return RuleMatch{}, false
}
