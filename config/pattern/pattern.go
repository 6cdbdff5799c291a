// Package pattern selects proposer patterns by tag and matches validator keys
// against pattern regexes.
//
// Patterns use the Go regexp (RE2) syntax and match anywhere in the key unless
// anchored with ^ and $.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidPattern = errors.New("invalid pattern")

// Tagged is anything that carries a set of tags.
type Tagged interface {
	PatternTags() []string
}

// Compile compiles expr, rejecting an empty or malformed expression.
func Compile(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidPattern)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return re, nil
}

// Matches reports whether key matches pattern. An invalid pattern matches nothing.
func Matches(pattern, key string) bool {
	re, err := Compile(pattern)
	if err != nil {
		return false
	}

	return re.MatchString(key)
}

// MatchTags returns the entries of catalog sharing at least one tag with tags,
// in catalog order. No tags select nothing.
func MatchTags[T Tagged](catalog []T, tags []string) []T {
	if len(tags) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[tag] = struct{}{}
	}

	var matched []T
	for _, p := range catalog {
		for _, tag := range p.PatternTags() {
			if _, ok := wanted[tag]; ok {
				matched = append(matched, p)
				break
			}
		}
	}

	return matched
}

// ParseTags splits a comma separated tag list, dropping blanks and repeats.
func ParseTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

// NormalizeTags trims tags and drops blanks and repeats, keeping the first occurrence.
func NormalizeTags(tags []string) []string {
	var normalized []string
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}

	return normalized
}
