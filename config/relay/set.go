package relay

import (
	"sort"
	"strings"
)

// Set is a set of relay entries keyed by URL.
type Set map[string]Entry

// NewRelaySet creates a new instance of Set.
func NewRelaySet() Set {
	return make(Set)
}

// Add adds a new relay entry to the set, replacing any entry with the same URL.
func (s Set) Add(entry Entry) {
	s[entry.URL] = entry
}

// Clone returns a shallow copy of the set. A nil set clones to an empty one.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for u, entry := range s {
		c[u] = entry
	}

	return c
}

// Enabled returns the entries that are not disabled.
func (s Set) Enabled() Set {
	enabled := make(Set, len(s))
	for u, entry := range s {
		if entry.Disabled {
			continue
		}
		enabled[u] = entry
	}

	return enabled
}

// String returns a comma separated string of relay urls.
// Implements fmt.Stringer interface.
func (s Set) String() string {
	return strings.Join(s.ToStringSlice(), ",")
}

// ToStringSlice returns the relay urls in ascending order.
func (s Set) ToStringSlice() []string {
	urls := make([]string, 0, len(s))
	for u := range s {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	return urls
}

// ToList returns all relay entries ordered by URL.
func (s Set) ToList() []Entry {
	relayList := make([]Entry, 0, len(s))
	for _, u := range s.ToStringSlice() {
		relayList = append(relayList, s[u])
	}

	return relayList
}

// Merge returns a new set holding every base entry, with entries from overlay
// replacing base entries that share a URL and overlay-only entries added.
// Neither input is modified.
func Merge(base, overlay Set) Set {
	merged := base.Clone()
	for u, entry := range overlay {
		merged[u] = entry
	}

	return merged
}

// Reset returns a copy of overlay, discarding the base set entirely.
func Reset(overlay Set) Set {
	return overlay.Clone()
}

// Resolve combines base and overlay with reset semantics when reset is true
// and merge semantics otherwise. Disabled entries are not filtered here.
func Resolve(base, overlay Set, reset bool) Set {
	if reset {
		return Reset(overlay)
	}

	return Merge(base, overlay)
}
