package extract

import (
	"regexp"
	"strings"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

var (
	allDevicesWordRe = regexp.MustCompile(`(?i)\ball\b`)
	nAtPriceRe       = regexp.MustCompile(`^(.+?)\s*@\s*([$€₹]?\d+(?:\.\d{1,2})?)`)
	digitRe          = regexp.MustCompile(`\d`)
	loiTextWideRe    = regexp.MustCompile(`(?i)\b(\d+(?:\s*-\s*\d+)?)\s*(?:minutes|minute|mins|min)\b`)
	acuityRe         = regexp.MustCompile(`(?i)\bacuity\b`)
)

// scalarFields are truncated at the first newline: multi-line buffered
// values are never valid for them.
var scalarFields = []string{
	alias.FieldFieldTime,
	alias.FieldMethodology,
	alias.FieldLOI,
	alias.FieldIR,
	alias.FieldN,
}

// industriesStopWords terminate the wide industries capture when they appear
// before the next real field boundary (sign-off and boilerplate language).
var industriesStopWords = []string{
	"thanks", "thank you", "regards", "disclaimer", "best", "kind", "cheers", "sincerely",
}

// PostProcess applies the fixed post-cascade normalization sequence to a raw
// cascade record. fullText is the normalized text the cascade ran against.
func (c *Cascade) PostProcess(extracted Record, fullText string) Record {
	lower := strings.ToLower(fullText)

	// Devices: "all device(s)" anywhere in the text wins over whatever the
	// cascade captured; then keyword scanning as a last resort.
	if strings.Contains(lower, "all device") && !extracted.Has(alias.FieldDevices) {
		extracted[alias.FieldDevices] = "all devices"
	}
	if v, ok := extracted[alias.FieldDevices]; ok && allDevicesWordRe.MatchString(v) {
		extracted[alias.FieldDevices] = "all devices"
	}
	if v, ok := extracted[alias.FieldDevices]; ok {
		if idx := strings.IndexByte(v, '\n'); idx >= 0 {
			extracted[alias.FieldDevices] = v[:idx]
		}
	}
	if !extracted.Has(alias.FieldDevices) {
		if devices := ExtractDevices(fullText); devices != "" {
			extracted[alias.FieldDevices] = devices
		}
	}

	// "N @ price" splits into the sample size and the requested CPI.
	if v := extracted.Get(alias.FieldN); strings.Contains(v, "@") {
		if m := nAtPriceRe.FindStringSubmatch(v); m != nil {
			extracted[alias.FieldN] = strings.TrimSpace(m[1])
			extracted[alias.FieldRequestedCPI] = m[2]
		}
	}

	for _, f := range scalarFields {
		if v, ok := extracted[f]; ok {
			if idx := strings.IndexByte(v, '\n'); idx >= 0 {
				extracted[f] = v[:idx]
			}
		}
	}

	// A captured IR with no digit is the alias word itself, not a value
	// ("Incidence rate - IR : 35%" binds "ir" to "IR").
	if v, ok := extracted[alias.FieldIR]; ok && !digitRe.MatchString(v) {
		delete(extracted, alias.FieldIR)
	}

	if !extracted.Has(alias.FieldLOI) {
		if m := loiTextWideRe.FindStringSubmatch(fullText); m != nil {
			extracted[alias.FieldLOI] = strings.TrimSpace(m[1])
		}
	}

	if !extracted.Has(alias.FieldQuotas) {
		if strings.Contains(lower, "no quota") {
			extracted[alias.FieldQuotas] = "no quotas"
		}
	}

	// Decision-maker fields are always computed, never sourced from aliases.
	bt := ClassifyBusinessType(fullText)
	extracted[alias.FieldDMType] = string(bt)
	if bt == B2B {
		extracted[alias.FieldDecisionMaker] = "Yes"
	} else {
		extracted[alias.FieldDecisionMaker] = "No"
	}

	// Wider boundary-delimited industries capture replaces the cascade's
	// value when strictly longer. Longer is treated as more complete; this
	// is a deliberate heuristic trade-off.
	if wide := c.extractIndustriesWide(fullText); len(wide) > len(extracted.Get(alias.FieldIndustries)) {
		extracted[alias.FieldIndustries] = wide
	}

	// Partner-specific override: any "acuity" mention fixes the client name,
	// superseding a sender-derived one.
	if acuityRe.MatchString(fullText) {
		extracted[alias.FieldClientName] = "Acuity"
	}

	return filterCanonical(c.registry, extracted)
}

// extractIndustriesWide collapses the text to a single line, finds an
// industries alias plus separator, and captures up to the next other-field
// alias boundary, a sign-off stop word, or end of string.
func (c *Cascade) extractIndustriesWide(fullText string) string {
	flat := strings.Join(strings.Fields(strings.ReplaceAll(fullText, "\n", " ")), " ")

	loc := c.industriesKeyRe().FindStringIndex(flat)
	if loc == nil {
		return ""
	}
	rest := flat[loc[1]:]

	end := len(rest)
	if b := c.otherFieldBoundaryRe().FindStringIndex(rest); b != nil && b[0] < end {
		end = b[0]
	}
	for _, stop := range industriesStopWords {
		if idx := wordRe(stop).FindStringIndex(strings.ToLower(rest)); idx != nil && idx[0] < end {
			end = idx[0]
		}
	}

	return strings.TrimRight(strings.TrimSpace(rest[:end]), ",;")
}

// industriesKeyRe matches any industries alias followed by a separator.
func (c *Cascade) industriesKeyRe() *regexp.Regexp {
	c.wideOnce.Do(c.compileWidePatterns)
	return c.industriesKey
}

// otherFieldBoundaryRe matches any non-industries alias followed by a
// separator: the union boundary that terminates the wide capture.
func (c *Cascade) otherFieldBoundaryRe() *regexp.Regexp {
	c.wideOnce.Do(c.compileWidePatterns)
	return c.otherBoundary
}

func (c *Cascade) compileWidePatterns() {
	var industriesAlts, otherAlts []string
	for _, a := range c.registry.AllAliases() {
		field, _ := c.registry.Resolve(a)
		quoted := regexp.QuoteMeta(a)
		if field == alias.FieldIndustries {
			industriesAlts = append(industriesAlts, quoted)
		} else {
			otherAlts = append(otherAlts, quoted)
		}
	}
	c.industriesKey = regexp.MustCompile(`(?i)\b(?:` + strings.Join(industriesAlts, "|") + `)\b\s*[\-:]\s*`)
	c.otherBoundary = regexp.MustCompile(`(?i)\b(?:` + strings.Join(otherAlts, "|") + `)\b\s*[\-:]`)
}
