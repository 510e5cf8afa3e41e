package ingest

import (
	"strings"

	domain "github.com/rgclark/putterbase/pkg/types"
)

// conditionTable maps raw marketplace condition strings, lowercased, to
// normalized bands. Collectors disagree on wording; the table carries
// every spelling seen in real feeds.
var conditionTable = map[string]domain.ConditionBand{
	"new":                   domain.ConditionNew,
	"brand new":             domain.ConditionNew,
	"new with tags":         domain.ConditionNew,
	"new in box":            domain.ConditionNew,
	"new other":             domain.ConditionLikeNew,
	"new without tags":      domain.ConditionLikeNew,
	"open box":              domain.ConditionLikeNew,
	"like new":              domain.ConditionLikeNew,
	"mint":                  domain.ConditionLikeNew,
	"certified refurbished": domain.ConditionLikeNew,
	"excellent":             domain.ConditionGood,
	"very good":             domain.ConditionGood,
	"good":                  domain.ConditionGood,
	"lightly used":          domain.ConditionGood,
	"fair":                  domain.ConditionFair,
	"acceptable":            domain.ConditionFair,
	"heavily used":          domain.ConditionFair,
	"used":                  domain.ConditionUsed,
	"pre-owned":             domain.ConditionUsed,
	"preowned":              domain.ConditionUsed,
	"seller refurbished":    domain.ConditionUsed,
}

// NormalizeCondition maps a raw condition string to a ConditionBand.
// Unknown or empty strings fall to ConditionUsed, the safest assumption
// for second-hand listings.
func NormalizeCondition(raw string) domain.ConditionBand {
	if band, ok := conditionTable[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return band
	}
	return domain.ConditionUsed
}
