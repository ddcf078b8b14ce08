// Package selection turns user selection criteria into an unambiguous
// execution plan: a mapping from toolchain to the artifact locations that
// must run under it.
package selection

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Selection is the resolved execution plan: toolchain -> set of artifact
// locations. The empty map is a valid, successful result distinct from
// "not yet resolved".
type Selection map[string]map[string]struct{}

// Add registers a location under a toolchain.
func (s Selection) Add(toolchain, location string) {
	locations, ok := s[toolchain]
	if !ok {
		locations = make(map[string]struct{})
		s[toolchain] = locations
	}
	locations[location] = struct{}{}
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool { return len(s) == 0 }

// Toolchains returns the selected toolchains in sorted order.
func (s Selection) Toolchains() []string {
	return slices.Sorted(maps.Keys(s))
}

// Locations returns the locations of one toolchain partition, sorted.
func (s Selection) Locations(toolchain string) []string {
	return slices.Sorted(maps.Keys(s[toolchain]))
}

// Candidate is one artifact considered during resolution.
type Candidate struct {
	Name      string
	Toolchain string
	Location  string
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s (toolchain %s, %s)", c.Name, c.Toolchain, c.Location)
}

// AmbiguousSelectionError reports a name that resolves to more than one
// (toolchain, location) candidate. It lists every candidate.
type AmbiguousSelectionError struct {
	Name       string
	Candidates []Candidate
}

func (e *AmbiguousSelectionError) Error() string {
	lines := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		lines = append(lines, "  "+c.String())
	}
	return fmt.Sprintf("library %q matches %d candidates:\n%s",
		e.Name, len(e.Candidates), strings.Join(lines, "\n"))
}

// EmptySelectionWarning is the message emitted when the resolved candidate
// set is empty. It never changes the exit code.
const EmptySelectionWarning = "nothing selected; pass --all to check every discoverable library"
