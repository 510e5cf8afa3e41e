// Package resolve turns a raw user query into an ordered list of model
// key candidates and walks them against a caller-supplied lookup until
// one yields data.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rgclark/putterbase/pkg/canon"
	domain "github.com/rgclark/putterbase/pkg/types"
)

// minFuzzyLen gates the fuzzy fallback: needles shorter than this match
// half the catalog and resolve to noise.
const minFuzzyLen = 3

// ErrNotFound is the sentinel for "no candidate yielded data". A normal,
// expected outcome; callers render an empty/pending state, not an error.
var ErrNotFound = errors.New("resolve: no stats found")

// NotFoundError carries the normalized key alongside ErrNotFound so
// callers can show what was searched for.
type NotFoundError struct {
	NormalizedKey string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resolve: no stats found for %q", e.NormalizedKey)
}

// Is makes errors.Is(err, ErrNotFound) hold for NotFoundError values.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Candidate is one lookup key plus the method label reported to callers
// when it wins.
type Candidate struct {
	Key    string
	Method domain.MatchMethod
}

// Match is the winning candidate of a resolution.
type Match struct {
	Key       string
	MatchedBy domain.MatchMethod
}

// LookupFunc reports whether stats exist under the given key. The caller
// captures the fetched data in its closure; the resolver only needs the
// found bit.
type LookupFunc func(ctx context.Context, key string) (found bool, err error)

// FuzzyFunc performs a substring containment search against stored keys,
// returning the single best match by total sample size.
type FuzzyFunc func(ctx context.Context, needle string) (key string, found bool, err error)

// Candidates produces the ordered lookup candidates for a raw query:
// the canonical key, its known-bug degradation, and the raw lowercase
// input as a last resort. Each candidate is deduplicated against the
// ones before it; empty candidates are dropped.
func Candidates(raw string) []Candidate {
	normalized := canon.Canonicalize(raw)

	ordered := []Candidate{
		{Key: normalized, Method: domain.MatchExact},
		{Key: canon.DegradeForKnownBugs(normalized), Method: domain.MatchDegraded},
		{Key: strings.ToLower(strings.TrimSpace(raw)), Method: domain.MatchRaw},
	}

	seen := make(map[string]struct{}, len(ordered))
	out := ordered[:0]
	for _, c := range ordered {
		if c.Key == "" {
			continue
		}
		if _, dup := seen[c.Key]; dup {
			continue
		}
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ResolveWithFallback tries each candidate in order and returns the first
// that has data. When every candidate misses and the normalized key is
// long enough, the fuzzy fallback runs; fuzzy matches are labeled so
// callers can present them with lower confidence. A nil fuzzy func skips
// the fallback.
func ResolveWithFallback(
	ctx context.Context,
	rawQuery string,
	lookup LookupFunc,
	fuzzy FuzzyFunc,
) (*Match, error) {
	normalized := canon.Canonicalize(rawQuery)

	for _, c := range Candidates(rawQuery) {
		found, err := lookup(ctx, c.Key)
		if err != nil {
			return nil, fmt.Errorf("looking up %q: %w", c.Key, err)
		}
		if found {
			return &Match{Key: c.Key, MatchedBy: c.Method}, nil
		}
	}

	if fuzzy != nil && len(normalized) >= minFuzzyLen {
		key, found, err := fuzzy(ctx, normalized)
		if err != nil {
			return nil, fmt.Errorf("fuzzy search for %q: %w", normalized, err)
		}
		if found {
			return &Match{Key: key, MatchedBy: domain.MatchFuzzy}, nil
		}
	}

	return nil, &NotFoundError{NormalizedKey: normalized}
}
