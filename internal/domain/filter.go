package domain

import (
	"fmt"
	"regexp"
)

// Filter is a compiled unit-name selector.
type Filter struct {
	re *regexp.Regexp
}

// NewFilter compiles a unit filter. Search semantics: an unanchored
// pattern matches anywhere in a name; authors anchor explicitly. An
// invalid pattern is a configuration error, caught before any emission
// starts.
func NewFilter(pattern string) (*Filter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}

	return &Filter{re: re}, nil
}

// Select returns the ordered sub-sequence of names matching the filter.
func (f *Filter) Select(names []string) []string {
	matched := make([]string, 0, len(names))

	for _, name := range names {
		if f.re.MatchString(name) {
			matched = append(matched, name)
		}
	}

	return matched
}
