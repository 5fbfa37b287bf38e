package sessions

import (
	"regexp"
	"time"
)

// Filter is a set of predicates applied to discovered records. The zero
// value matches everything.
//
// Search matches summaries only: a record without a summary never matches a
// content search, because discovery never loads message bodies. Callers
// presenting search results should say so.
type Filter struct {
	Since  time.Time
	Until  time.Time
	Search *regexp.Regexp
	Kind   Kind // empty matches both kinds
}

// Apply returns the records matching every set predicate, preserving input
// order. It never touches the filesystem.
func (f Filter) Apply(records []*Record) []*Record {
	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (f Filter) matches(rec *Record) bool {
	if !f.Since.IsZero() && rec.LastTimestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && rec.LastTimestamp.After(f.Until) {
		return false
	}
	if f.Kind != "" && rec.Kind != f.Kind {
		return false
	}
	if f.Search != nil {
		if rec.Summary == "" || !f.Search.MatchString(rec.Summary) {
			return false
		}
	}
	return true
}
