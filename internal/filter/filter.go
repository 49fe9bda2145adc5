// Package filter classifies raw listings against the operator's keyword
// rules. It is a pure function layer with no browser dependency so the rules
// can be tested in isolation.
package filter

import (
	"fmt"
	"strings"
)

// Result is the classification of a single listing title.
type Result struct {
	Included bool
	// Reason is set only when Included is false.
	Reason string
}

// Classify applies the keyword rules to a listing title.
//
// Matching is case-insensitive substring matching. Exclude keywords take
// precedence: if any exclude keyword matches, the listing is excluded with a
// reason naming the matches, regardless of the include list. Otherwise, when
// the include list is non-empty, at least one include keyword must match or
// the listing is excluded for missing required keywords.
func Classify(title string, include, exclude []string) Result {
	lower := strings.ToLower(title)

	var excludeHits []string
	for _, kw := range exclude {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			excludeHits = append(excludeHits, kw)
		}
	}
	if len(excludeHits) > 0 {
		return Result{
			Reason: fmt.Sprintf("Contains excluded keywords: %s", strings.Join(excludeHits, ", ")),
		}
	}

	// An include list holding only empty strings demands nothing, the same
	// as no include list at all.
	if required := nonEmpty(include); len(required) > 0 && !anyMatch(lower, required) {
		return Result{
			Reason: fmt.Sprintf("Missing required keywords: %s", strings.Join(required, ", ")),
		}
	}

	return Result{Included: true}
}

func nonEmpty(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func anyMatch(lowerTitle string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerTitle, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
