package extract

import (
	"regexp"
	"strings"
)

// agreementKeywords mark lines that carry closing/agreement language; a
// currency amount on such a line is the final agreed CPI.
var agreementKeywords = []string{
	"close at", "close", "approved", "agreed", "go down to", "close this at",
	"try at", "match", "final offer", "offer", "at last", "is max", "at max",
	"is last", "cpi at", "cpi",
}

var (
	dollarAmountRe   = regexp.MustCompile(`\$\d{1,3}(?:\.\d{2})?`)
	currencyAmountRe = regexp.MustCompile(`(?i)(?:\$|usd\s*)\d{1,3}(?:\.\d{2})?`)
	fallbackAmountRe = regexp.MustCompile(`(?i)(?:^|\W)((?:\$|usd\s*)\d{1,3}(?:\.\d{2})?)(?:\W|$)`)
)

// ExtractFinalCPI scans top-down for a currency amount on a line containing
// agreement language, falling back to the first bare currency-looking token
// in the whole text. Returns "" when nothing matches.
func ExtractFinalCPI(text string) string {
	clean := strings.ReplaceAll(text, "\r\n", "\n")
	clean = strings.ReplaceAll(clean, "\n\n", "\n")

	for _, line := range strings.Split(clean, "\n") {
		lower := strings.ToLower(line)
		hasAgreement := false
		for _, kw := range agreementKeywords {
			if strings.Contains(lower, kw) {
				hasAgreement = true
				break
			}
		}
		if !hasAgreement {
			continue
		}
		if m := dollarAmountRe.FindString(line); m != "" {
			return m
		}
		if m := currencyAmountRe.FindString(line); m != "" {
			return m
		}
	}

	if m := fallbackAmountRe.FindStringSubmatch(clean); m != nil {
		return m[1]
	}
	return ""
}
