package analyzer

import "strings"

// Predicate is a case-insensitive substring test. The zero value is inactive
// and matches everything.
type Predicate struct {
	term string
}

// NewPredicate returns a predicate for term. An empty term is inactive.
func NewPredicate(term string) Predicate {
	return Predicate{term: strings.ToLower(term)}
}

// Active reports whether the predicate filters anything.
func (p Predicate) Active() bool { return p.term != "" }

// Match reports whether s contains the term, ignoring case.
func (p Predicate) Match(s string) bool {
	return !p.Active() || strings.Contains(strings.ToLower(s), p.term)
}

// keep decides retention once a node's children are known.
func (p Predicate) keep(name string, keptChildren int) bool {
	return keptChildren > 0 || p.Match(name)
}
