// Package canon normalizes raw marketplace listing titles into stable
// lowercase model keys. The pipeline is an explicit ordered rule list;
// later rules assume the cleanup done by earlier ones, so ordering is
// load-bearing and pinned by tests.
package canon

import (
	"regexp"
	"strings"
)

// quoteReplacer unifies typographic quote and inch-mark variants to a
// single ASCII representation before any pattern matching runs.
var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double quotation
	"”", `"`, // right double quotation
	"″", `"`, // double prime (inch mark)
	"‘", "'",
	"’", "'",
	"′", "'", // prime
	"´", "'",
)

// Putter lengths live in a narrow band; anything 32-40 next to a unit (or
// standing alone) is treated as a shaft length, not a model number.
var (
	yearRegex        = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	lengthRangeRegex = regexp.MustCompile(`\b(?:3[2-9]|40)(?:\.\d+)?\s*-\s*(?:3[2-9]|40)(?:\.\d+)?\s*(?:"|''|in\b\.?|inch(?:es)?\b)`)
	lengthUnitRegex  = regexp.MustCompile(`\b(?:3[2-9]|40)(?:\.\d+)?\s*(?:"|''|in\b\.?|inch(?:es)?\b)`)
	bareLengthRegex  = regexp.MustCompile(`\b(?:3[2-9]|40)\b`)
	handednessRegex  = regexp.MustCompile(`\b(?:left|right)[\s-]*hand(?:ed)?\b|\b[lr]h\b`)
	serialRegex      = regexp.MustCompile(`#\s*\d{5,}\b`)
	junkCharRegex    = regexp.MustCompile(`[^a-z0-9+#.\- ]+`)
	spaceRegex       = regexp.MustCompile(`\s+`)
)

// stoplist holds descriptive, condition, material, color, and brand words
// that never distinguish one model from another. Matched as whole tokens
// after lowercasing.
var stoplist = map[string]struct{}{
	// category noise
	"putter": {}, "putters": {}, "golf": {}, "club": {}, "clubs": {},
	"mallet": {}, "blade": {},
	// condition / seller fluff
	"mint": {}, "new": {}, "used": {}, "brand": {}, "nice": {}, "clean": {},
	"excellent": {}, "great": {}, "good": {}, "rare": {}, "beautiful": {},
	"condition": {}, "cond": {}, "w": {}, "with": {}, "free": {},
	"shipping": {}, "oem": {}, "original": {}, "authentic": {}, "genuine": {},
	// materials and parts
	"steel": {}, "stainless": {}, "graphite": {}, "carbon": {},
	"shaft": {}, "grip": {}, "headcover": {}, "cover": {}, "hc": {},
	"milled": {}, "insert": {},
	// colors and finishes
	"black": {}, "white": {}, "red": {}, "blue": {}, "green": {},
	"silver": {}, "gold": {}, "copper": {}, "bronze": {}, "chrome": {},
	"matte": {}, "satin": {},
	// brand noise; the model line is the key, not the maker
	"titleist": {}, "scotty": {}, "cameron": {}, "odyssey": {},
	"taylormade": {}, "ping": {}, "bettinardi": {}, "evnroll": {},
	"toulon": {}, "mizuno": {}, "cleveland": {}, "wilson": {},
	"callaway": {}, "nike": {},
}

// variantMarkerRegexes remove special-edition phrases from the model key.
// The variant tagger detects the same signals from the raw title, so the
// marker must not also leak into the base model key: "newport 2 circle t"
// and "newport 2" have to group under one model. Ordered longest-phrase
// first so partial matches cannot leave fragments behind.
var variantMarkerRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\btour\s+use\s+only\b`),
	regexp.MustCompile(`\btour\s+(?:only|issue|rat)\b`),
	regexp.MustCompile(`\blimited(?:\s+(?:edition|release|run))?\b`),
	regexp.MustCompile(`\bsmall\s+batch\b`),
	regexp.MustCompile(`\bcustom\s+shop\b`),
	regexp.MustCompile(`\bcircle[\s-]*t\b`),
	regexp.MustCompile(`\bproto(?:type)?\b`),
	regexp.MustCompile(`\b(?:ct|gss|009|pld|hive|garage)\b`),
}

// spellingFixes is a small post-hoc table for known ambiguous model names
// that survive the generic rules in an inconsistent shape. Applied last,
// in order, as plain substring replacements.
var spellingFixes = []struct {
	old string
	new string
}{
	{"squareback # 2", "squareback 2"},
	{"squareback #2", "squareback 2"},
	{"notchback # 2", "notchback 2"},
	{"notchback #2", "notchback 2"},
	{"square back", "squareback"},
	{"notch back", "notchback"},
	{"fast back", "fastback"},
	{"tei 3", "tei3"},
}

// Canonicalize maps a raw listing title to its model key. The result is
// idempotent: Canonicalize(Canonicalize(s)) == Canonicalize(s). Empty or
// whitespace-only input yields an empty key, which callers must treat as
// "unresolvable" rather than an error.
func Canonicalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = quoteReplacer.Replace(s)
	s = yearRegex.ReplaceAllString(s, " ")
	s = lengthRangeRegex.ReplaceAllString(s, " ")
	s = lengthUnitRegex.ReplaceAllString(s, " ")

	// Strip junk characters before any token-level pass runs. A stopword or
	// bare length glued to punctuation ("w/", "(new)", "(35)") must stand as
	// its own token here, or re-running the pipeline on its own output would
	// keep finding work and idempotence breaks. Unit-bearing lengths are
	// already gone, so dropping the quote marks is safe.
	s = junkCharRegex.ReplaceAllString(s, " ")

	s = bareLengthRegex.ReplaceAllString(s, " ")
	s = handednessRegex.ReplaceAllString(s, " ")
	s = dropStopwords(s)
	for _, re := range variantMarkerRegexes {
		s = re.ReplaceAllString(s, " ")
	}
	s = serialRegex.ReplaceAllString(s, " ")
	s = scrub(s)

	for _, fix := range spellingFixes {
		s = strings.ReplaceAll(s, fix.old, fix.new)
	}

	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

func dropStopwords(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if _, drop := stoplist[strings.Trim(f, ".,!-")]; drop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// scrub collapses hyphen fragments left by earlier removals and
// normalizes whitespace.
func scrub(s string) string {
	// Hyphens glued to a space on either side are separators, not part of
	// a model token ("flow - neck" vs "tei3-f").
	s = strings.ReplaceAll(s, " - ", " ")
	s = spaceRegex.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "-. ")
	return s
}
