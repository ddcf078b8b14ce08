package selection

import (
	"context"
	"fmt"

	"github.com/gobwas/glob"

	"github.com/dynalint/dynalint/internal/artifact"
	"github.com/dynalint/dynalint/internal/index"
)

// Criteria is what the user asked for on one invocation.
type Criteria struct {
	// Names are explicit library names to select from the index.
	Names []string
	// Pattern is an informational glob over names, used for listing only.
	// It never resolves what would otherwise be ambiguous.
	Pattern string
	// Path restricts candidates to a single local source location,
	// bypassing the index.
	Path string
	// Remote restricts candidates to a single remote source location,
	// bypassing the index.
	Remote *artifact.RemoteSourceSpec
	// All selects every discoverable artifact.
	All bool
}

// Bypass reports whether an explicit path or remote location was given, in
// which case the index is not consulted and the empty-selection warning is
// waived.
func (c Criteria) Bypass() bool { return c.Path != "" || c.Remote != nil }

// Admits reports whether an artifact name passes the criteria once its
// location has been built. In bypass mode every artifact from the location
// is admitted; otherwise explicit names restrict, and --all admits all.
func (c Criteria) Admits(name string) bool {
	if c.Bypass() || c.All || len(c.Names) == 0 {
		return true
	}
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// MatchesPattern reports whether a name matches the informational pattern.
// An empty pattern matches everything. The pattern must have been validated
// with CompilePattern first; an invalid pattern matches nothing here.
func (c Criteria) MatchesPattern(name string) bool {
	if c.Pattern == "" {
		return true
	}
	g, err := glob.Compile(c.Pattern)
	if err != nil {
		return false
	}
	return g.Match(name)
}

// CompilePattern validates the informational pattern.
func (c Criteria) CompilePattern() error {
	if c.Pattern == "" {
		return nil
	}
	if _, err := glob.Compile(c.Pattern); err != nil {
		return fmt.Errorf("invalid name pattern %q: %w", c.Pattern, err)
	}
	return nil
}

// Result is the outcome of resolution: the selection so far, plus the
// still-unbuilt specs that must pass through the builder before their
// artifacts can be rediscovered and added to the selection.
type Result struct {
	Selection Selection
	Unbuilt   []artifact.Spec
	// Warn is set when the resolved candidate set is empty and the
	// empty-selection warning applies. Emptiness is success, not failure.
	Warn bool
}

// Resolver resolves criteria against a memoized index. The index is
// injected so each caller (and each test) can construct a fresh one.
type Resolver struct {
	Index *index.Index
}

// Resolve applies the resolution algorithm:
//
//  1. An explicit path or remote location restricts candidates to that
//     location only; the index is not consulted.
//  2. Otherwise each requested name is looked up. An absent name
//     contributes nothing. A name with exactly one (toolchain, location)
//     pair resolves cleanly; more than one candidate fails with
//     AmbiguousSelectionError, unless --all is set, in which case every
//     candidate is selected.
//  3. An empty resolved set is success with the warning flagged.
func (r *Resolver) Resolve(ctx context.Context, c Criteria) (*Result, error) {
	if err := c.CompilePattern(); err != nil {
		return nil, err
	}

	res := &Result{Selection: make(Selection)}

	if c.Path != "" {
		res.Unbuilt = append(res.Unbuilt, artifact.LocalSourceSpec{Dir: c.Path})
		return res, nil
	}
	if c.Remote != nil {
		res.Unbuilt = append(res.Unbuilt, *c.Remote)
		return res, nil
	}

	if c.All {
		names, byName, err := r.Index.All(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			for _, e := range byName[name] {
				res.Selection.Add(e.Toolchain, e.Location)
			}
		}
	} else {
		for _, name := range c.Names {
			entries, err := r.Index.Lookup(ctx, name)
			if err != nil {
				return nil, err
			}
			switch {
			case len(entries) == 0:
				// Absent names contribute nothing; the empty-set check
				// below decides whether that warrants a warning.
			case len(entries) == 1:
				res.Selection.Add(entries[0].Toolchain, entries[0].Location)
			default:
				ambiguous := &AmbiguousSelectionError{Name: name}
				for _, e := range entries {
					ambiguous.Candidates = append(ambiguous.Candidates, Candidate{
						Name:      name,
						Toolchain: e.Toolchain,
						Location:  e.Location,
					})
				}
				return nil, ambiguous
			}
		}
	}

	res.Warn = res.Selection.Empty()
	return res, nil
}
