package extract

import (
	"regexp"
	"sort"
	"strings"
)

// deviceKeywords in priority order, longest phrases first so a phrase match
// suppresses the device nouns it contains.
var deviceKeywords = []string{
	"not mobile friendly",
	"no device restrictions", "no device restriction", "desktop/laptop", "laptop/desktop",
	"any device", "any devices", "all device", "all devices", "all device/s",
	"agnostics", "agnostic", "tablets", "tablet", "mobiles", "mobile",
	"smartphones", "smartphone", "desktops", "desktop", "laptops", "laptop",
}

var deviceKeywordRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(deviceKeywords))
	for i, kw := range deviceKeywords {
		res[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return res
}()

// ExtractDevices scans text for device keywords. Matches are found with
// word-boundary regexes; a later keyword whose span overlaps an accepted
// match is discarded. Surviving matches are joined with " & " in
// lexicographic order.
func ExtractDevices(text string) string {
	lower := strings.ToLower(text)

	var found []string
	var spans [][2]int

	for i, kw := range deviceKeywords {
		loc := deviceKeywordRes[i].FindStringIndex(lower)
		if loc == nil {
			continue
		}
		overlaps := false
		for _, s := range spans {
			if loc[0] < s[1] && s[0] < loc[1] {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		found = append(found, kw)
		spans = append(spans, [2]int{loc[0], loc[1]})
	}

	sort.Strings(found)
	return strings.Join(found, " & ")
}
