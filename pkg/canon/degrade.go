package canon

// degradations maps today's canonical keys to the mis-normalized forms
// older pipeline versions wrote into the statistics store. The stored data
// was never backfilled, so lookups still need the legacy spelling as a
// fallback candidate. The table is read-time only: degraded keys must
// never be written forward.
//
// v2 of the table; bump the version comment when adding entries so the
// data migration that finally retires an entry can name it.
var degradations = map[string]string{
	// serial stripper used to keep the hash on sub-model numbers
	"squareback 2": "squareback # 2",
	"notchback 2":  "notchback # 2",
	// decimal points were stripped with the punctuation pass
	"phantom 11.5": "phantom 11 5",
	"newport 2.5":  "newport 2 5",
	// whitespace collapse once glued short model tokens together
	"tyne 4": "tyne4",
}

// DegradeForKnownBugs maps a canonical key to its historically stored
// form. Keys without a known degradation are returned unchanged; callers
// deduplicate candidates, so the no-op case costs nothing.
func DegradeForKnownBugs(key string) string {
	if legacy, ok := degradations[key]; ok {
		return legacy
	}
	return key
}
