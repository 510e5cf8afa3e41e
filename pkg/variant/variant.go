// Package variant detects special-edition and collectible signals in
// listing titles and builds variant keys for aggregation grouping.
//
// Detection is an ordered rule table evaluated top to bottom, in the same
// style as the canonicalizer: the ordering is part of the contract and is
// pinned by tests.
package variant

import (
	"regexp"
	"slices"
	"strings"

	domain "github.com/rgclark/putterbase/pkg/types"
)

// Tag is a lowercase identifier from the fixed variant vocabulary.
type Tag string

// Variant tag vocabulary. These feed the variant key and therefore the
// aggregation grouping; adding a tag splits existing groups.
const (
	TagCircleT    Tag = "circle_t"
	Tag009        Tag = "009"
	TagGSS        Tag = "gss"
	TagTourOnly   Tag = "tour_only"
	TagTourRat    Tag = "tour_rat"
	TagGarage     Tag = "garage"
	TagSmallBatch Tag = "small_batch"
	TagPLD        Tag = "pld"
	TagHive       Tag = "hive"
	TagButtonBack Tag = "button_back"
	TagPrototype  Tag = "prototype"
	TagLimited    Tag = "limited"
)

// Hint tag vocabulary: sub-model and child-line identifiers. Informative
// for display only and never part of the variant key.
const (
	HintSpiderTour  Tag = "spider_tour"
	HintPhantomX    Tag = "phantom_x"
	HintNewport     Tag = "newport"
	HintAnser       Tag = "anser"
	HintTwoBall     Tag = "two_ball"
	HintQueenB      Tag = "queen_b"
	HintJailbird    Tag = "jailbird"
	HintStudioStyle Tag = "studio_style"
)

// accessoryOnlyRegexes guard against attributing a collectible variant to
// a listing that sells an accessory rather than a putter. Checked before
// any tag rule; a hit short-circuits detection to the empty set.
var accessoryOnlyRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhead\s*covers?\s+only\b`),
	regexp.MustCompile(`(?i)\bcovers?\s+only\b`),
	regexp.MustCompile(`(?i)\bweights?\s+kit\b`),
	regexp.MustCompile(`(?i)\bshaft\s+only\b`),
	regexp.MustCompile(`(?i)\bhead\s+only\b`),
	regexp.MustCompile(`(?i)\bgrip\s+only\b`),
	regexp.MustCompile(`(?i)\bparts\s+only\b`),
	regexp.MustCompile(`(?i)\bdivot\s+tool\b`),
	regexp.MustCompile(`(?i)\bball\s+marker\b`),
}

type rule struct {
	tag      Tag
	patterns []*regexp.Regexp
}

// variantRules is evaluated top to bottom; a tag is added when any of its
// patterns match. Brand-specific literals sit above the generic catch-alls
// so a "Circle T Limited Release" picks up both tags deterministically.
var variantRules = []rule{
	{TagCircleT, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bcircle[\s-]*t\b`),
		regexp.MustCompile(`(?i)\bct\b`),
	}},
	{Tag009, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b009[ms]?\b`),
	}},
	{TagGSS, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bgss\b`),
		regexp.MustCompile(`(?i)\bgerman\s+stainless\b`),
	}},
	{TagTourRat, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btour\s+rat\b`),
	}},
	{TagTourOnly, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btour\s+use\s+only\b`),
		regexp.MustCompile(`(?i)\btour\s+only\b`),
		regexp.MustCompile(`(?i)\btour\s+issue\b`),
		regexp.MustCompile(`(?i)\btuo\b`),
	}},
	{TagGarage, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bcustom\s+shop\b`),
		regexp.MustCompile(`(?i)\bgarage\b`),
	}},
	{TagSmallBatch, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bsmall\s+batch\b`),
	}},
	{TagPLD, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpld\b`),
	}},
	{TagHive, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhive\b`),
	}},
	{TagButtonBack, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bbutton\s*back\b`),
	}},
	{TagPrototype, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bprototype\b`),
		regexp.MustCompile(`(?i)\bproto\b`),
	}},
	{TagLimited, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\blimited(?:\s+(?:edition|release|run))?\b`),
		regexp.MustCompile(`(?i)\b1st\s+of\s+500\b`),
	}},
}

// hintRules mirrors variantRules for sub-model lines. Kept as a separate
// table so it can drift without touching aggregation grouping.
var hintRules = []rule{
	{HintSpiderTour, []*regexp.Regexp{regexp.MustCompile(`(?i)\bspider\s+tour\b`)}},
	{HintPhantomX, []*regexp.Regexp{regexp.MustCompile(`(?i)\bphantom\s*x\b`)}},
	{HintNewport, []*regexp.Regexp{regexp.MustCompile(`(?i)\bnewport\b`)}},
	{HintAnser, []*regexp.Regexp{regexp.MustCompile(`(?i)\banser\b`)}},
	{HintTwoBall, []*regexp.Regexp{regexp.MustCompile(`(?i)\b(?:two|2)[\s-]*ball\b`)}},
	{HintQueenB, []*regexp.Regexp{regexp.MustCompile(`(?i)\bqueen\s*b\b`)}},
	{HintJailbird, []*regexp.Regexp{regexp.MustCompile(`(?i)\bjailbird\b`)}},
	{HintStudioStyle, []*regexp.Regexp{regexp.MustCompile(`(?i)\bstudio\s+style\b`)}},
}

// DetectTags scans a title plus optional structured aspects for variant
// signals. Accessory-only listings always yield an empty set, regardless
// of what else matches the tag rules.
func DetectTags(title string, aspects map[string]string) []Tag {
	haystack := buildHaystack(title, aspects)

	for _, re := range accessoryOnlyRegexes {
		if re.MatchString(haystack) {
			return nil
		}
	}

	return applyRules(variantRules, haystack)
}

// DetectHints scans a title for sub-model hint tags. Hints are display
// metadata only; they must never flow into BuildVariantKey.
func DetectHints(title string) []Tag {
	return applyRules(hintRules, title)
}

func applyRules(rules []rule, haystack string) []Tag {
	var tags []Tag
	for _, r := range rules {
		for _, re := range r.patterns {
			if re.MatchString(haystack) {
				tags = append(tags, r.tag)
				break
			}
		}
	}
	return tags
}

func buildHaystack(title string, aspects map[string]string) string {
	if len(aspects) == 0 {
		return title
	}

	// Aspect values are scanned in sorted key order so detection input is
	// deterministic regardless of map iteration.
	keys := make([]string, 0, len(aspects))
	for k := range aspects {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, title)
	for _, k := range keys {
		parts = append(parts, aspects[k])
	}
	return strings.Join(parts, " ")
}

// BuildVariantKey combines a model key with a tag set into a variant key.
// Tags are deduplicated and sorted lexicographically, so the same set
// always yields the same key regardless of detection order. An empty
// model key or empty tag set yields the empty key, meaning "base model,
// no special variant".
func BuildVariantKey(modelKey string, tags []Tag) string {
	if modelKey == "" || len(tags) == 0 {
		return ""
	}

	uniq := make([]string, 0, len(tags))
	seen := make(map[Tag]struct{}, len(tags))
	for _, t := range tags {
		if _, dup := seen[t]; dup || t == "" {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, string(t))
	}
	if len(uniq) == 0 {
		return ""
	}
	slices.Sort(uniq)

	return modelKey + "|" + strings.Join(uniq, "|")
}

// TagsOf extracts the tag portion of a variant key, inverse of
// BuildVariantKey for non-sentinel keys.
func TagsOf(variantKey string) []Tag {
	if variantKey == "" || variantKey == domain.AnyVariant {
		return nil
	}
	parts := strings.Split(variantKey, "|")
	if len(parts) < 2 {
		return nil
	}
	tags := make([]Tag, 0, len(parts)-1)
	for _, p := range parts[1:] {
		tags = append(tags, Tag(p))
	}
	return tags
}
