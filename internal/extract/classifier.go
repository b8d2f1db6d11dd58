package extract

import (
	"regexp"
	"strings"
)

// BusinessType is the audience classification driving price resolution.
type BusinessType string

const (
	B2B BusinessType = "b2b"
	B2C BusinessType = "b2c"
)

// categoricalB2BPhrases force a b2b classification regardless of other
// signals. Category surveys (pet, liquor, automotive) are priced as trade
// interviews even when fielded to consumers.
var categoricalB2BPhrases = []string{
	"pet", "liquor", "b2b", "business-to-business", "business to business", "automotive",
}

// dmSynonyms are the decision-maker phrasings that flip a request to b2b
// unless the household exception applies.
var dmSynonyms = []string{"decision makers", "decision maker", "dms", "dm"}

// consumerPhrases mark a clearly consumer audience.
var consumerPhrases = []string{
	"general population", "gen-pop", "gen pop", "genpop", "consumer", "consumers",
	"grocery shoppers", "pet owners", "pet care buyers", "gamers", "online games",
	"streamers", "netflix", "movie", "watch tv", "travellers", "travelers",
	"music enthusiasts", "youtube", "spotify", "apple music", "vehicle owners",
	"buy a vehicle", "registered voters", "luxury product buyers", "credit card users",
	"credit card holders", "reward programs", "smart home device", "alexa",
	"google home", "tech enthusiasts", "new gadgets", "mobile app users",
	"finance app", "health app", "fitness app", "food delivery app", "uber eats",
	"parents of young children", "parents of kids", "chronic illness patients",
	"caregivers", "first-time parents", "pregnant women", "college students",
	"university students", "students", "homeowners", "smokers", "drinkers",
	"high net worth", "mobile phone users", "shoppers", "banked individuals",
	"males and females", "entertainment survey", "leisure",
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

func wordRe(phrase string) *regexp.Regexp {
	if re, ok := wordBoundaryCache[phrase]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
	wordBoundaryCache[phrase] = re
	return re
}

// All phrase matchers are compiled up front; the cache is read-only after
// init so concurrent classification needs no locking.
func init() {
	for _, set := range [][]string{
		categoricalB2BPhrases, dmSynonyms, consumerPhrases,
		directorKeywords, cLevelKeywords, industriesStopWords,
	} {
		for _, p := range set {
			wordRe(p)
		}
	}
}

// ClassifyBusinessType decides b2b vs b2c from the full normalized text.
// Priority order: categorical b2b exceptions, the household decision-maker
// exception, a decision-maker synonym alone, the consumer vocabulary, and
// finally a b2c default.
func ClassifyBusinessType(text string) BusinessType {
	bt, _ := classifyKeywords(strings.ToLower(text))
	return bt
}

// classifyKeywords runs the keyword priority chain. The bool reports whether
// any vocabulary actually matched; false means the b2c answer is only the
// default and a stronger classifier may overrule it.
func classifyKeywords(lower string) (BusinessType, bool) {
	for _, p := range categoricalB2BPhrases {
		if wordRe(p).MatchString(lower) {
			return B2B, true
		}
	}

	hasDM := false
	for _, p := range dmSynonyms {
		if wordRe(p).MatchString(lower) {
			hasDM = true
			break
		}
	}
	if hasDM {
		// Household decision makers are consumers; the household word
		// overrides the general decision-maker rule.
		if strings.Contains(lower, "household") || strings.Contains(lower, "house hold") {
			return B2C, true
		}
		return B2B, true
	}

	for _, p := range consumerPhrases {
		if wordRe(p).MatchString(lower) {
			return B2C, true
		}
	}

	return B2C, false
}

// Roles flags seniority levels detected in audience text. They select the
// premium components of client-specific b2b pricing.
type Roles struct {
	Director bool
	CLevel   bool
}

var directorKeywords = []string{"director", "vp", "vice president", "senior vice president", "dir"}

var cLevelKeywords = []string{"c-level", "clevel", "ceo", "cfo", "coo", "cto", "cio", "cmo", "chief"}

// ClassifyRoles detects director/VP and C-level mentions in audience text.
func ClassifyRoles(text string) Roles {
	lower := strings.ToLower(text)
	var r Roles
	for _, kw := range directorKeywords {
		if wordRe(kw).MatchString(lower) {
			r.Director = true
			break
		}
	}
	for _, kw := range cLevelKeywords {
		if wordRe(kw).MatchString(lower) {
			r.CLevel = true
			break
		}
	}
	return r
}
