package extract

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

// Strictness selects the key-recognition policy for one cascade pass.
type Strictness int

const (
	// Loose recognizes a key with or without a same-line value and buffers
	// following lines as the value when none is present.
	Loose Strictness = iota
	// Strict recognizes a key only when a non-empty value follows on the
	// same line (or on a bare-colon continuation line). Precision-oriented.
	Strict
	// Fuzzy matches aliases anywhere inside a line, tolerating surrounding
	// prose, and associates them with the trailing value.
	Fuzzy
)

// overrideFields are the fields for which the Strict pass is known to be
// more accurate than Loose; a non-empty Strict value replaces the Loose one.
var overrideFields = []string{
	alias.FieldLOI,
	alias.FieldIR,
	alias.FieldIndustries,
	alias.FieldMarket,
	alias.FieldFieldTime,
	alias.FieldQuotas,
	alias.FieldEligibility,
	alias.FieldTargetAudience,
}

var (
	// looseKeyRe splits "<key-ish prefix><separator><value>" with a greedy
	// key, so "LOI (min): 10" keeps the bracket in the key.
	looseKeyRe = regexp.MustCompile(`^([A-Za-z0-9\s&+/()%-]+)\s?[\-:]\s*(.*)$`)
	// strictKeyRe is the non-greedy variant requiring a same-line value,
	// so "target - manager of bank" splits at the first separator.
	strictKeyRe = regexp.MustCompile(`^([A-Za-z0-9\s&+/()%-]+?)\s?[\-:]\s*(.+)$`)
	// bufferStopRe detects a possible new key at the start of a buffered
	// continuation line.
	bufferStopRe = regexp.MustCompile(`^([A-Za-z0-9\s&+/]+)[\-:]`)
	// bareColonRe matches a continuation line carrying only ": value".
	bareColonRe = regexp.MustCompile(`^:\s*(.+)$`)
)

// Cascade runs the line-scanning extractors over normalized text. One
// Cascade is built per registry and reused across calls; it holds only
// immutable compiled state.
type Cascade struct {
	registry     *alias.Registry
	aliasWordRes map[string]*regexp.Regexp // alias -> whole-word matcher

	wideOnce      sync.Once
	industriesKey *regexp.Regexp
	otherBoundary *regexp.Regexp
}

// NewCascade compiles per-alias word matchers for the fuzzy pass.
func NewCascade(reg *alias.Registry) *Cascade {
	res := make(map[string]*regexp.Regexp, len(reg.AllAliases()))
	for _, a := range reg.AllAliases() {
		res[a] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(a) + `\b`)
	}
	return &Cascade{registry: reg, aliasWordRes: res}
}

// Run applies the three strategies in priority order: Loose first, Strict
// overriding the whitelisted fields, Fuzzy filling remaining gaps only.
// The result is not yet filtered or post-processed.
func (c *Cascade) Run(text string) Record {
	extracted := c.Extract(text, Loose)

	strict := c.Extract(text, Strict)
	for _, f := range overrideFields {
		if v := strict.Get(f); v != "" {
			extracted[f] = v
		}
	}

	fuzzy := c.Extract(text, Fuzzy)
	for f, v := range fuzzy {
		if !extracted.Has(f) {
			extracted[f] = v
		}
	}

	return extracted
}

// Extract runs a single strategy pass and returns the raw partial record.
func (c *Cascade) Extract(text string, policy Strictness) Record {
	if policy == Fuzzy {
		return c.extractFuzzy(text)
	}
	return c.extractLineKeys(text, policy)
}

// extractLineKeys is the shared line machine behind Loose and Strict. The
// two policies differ only in the key regex and in whether a value-less key
// opens a buffer.
func (c *Cascade) extractLineKeys(text string, policy Strictness) Record {
	keyRe := looseKeyRe
	if policy == Strict {
		keyRe = strictKeyRe
	}

	lines := strings.Split(text, "\n")
	extracted := Record{}
	currentKey := ""
	var buffer []string

	flush := func() {
		if currentKey != "" && len(buffer) > 0 {
			extracted[currentKey] = strings.TrimSpace(strings.Join(buffer, "\n"))
		}
		buffer = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if m := keyRe.FindStringSubmatch(line); m != nil {
			if field, ok := c.registry.Resolve(m[1]); ok {
				flush()
				value := strings.TrimSpace(m[2])
				if value != "" {
					extracted[field] = value
					currentKey = ""
				} else {
					// Loose only: open a buffer for the following lines.
					currentKey = field
				}
				continue
			}
		}

		// A line that is itself a known key, with the value on the next
		// line behind a bare colon.
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if vm := bareColonRe.FindStringSubmatch(next); vm != nil {
				if field, ok := c.registry.Resolve(line); ok {
					flush()
					extracted[field] = strings.TrimSpace(vm[1])
					currentKey = ""
					i++
					continue
				}
			}
		}

		if currentKey != "" {
			// Stop buffering when the line itself resolves through the
			// alias table; the main loop reprocesses it as a new key.
			if sm := bufferStopRe.FindStringSubmatch(line); sm != nil {
				if _, ok := c.registry.Resolve(sm[1]); ok {
					flush()
					currentKey = ""
					i--
					continue
				}
			}
			buffer = append(buffer, line)
		}
	}
	flush()

	return extracted
}

// extractFuzzy scans each line (and its successor) for any alias appearing
// anywhere in it, tolerating prefixed or suffixed prose around the key. All
// aliases matching within one line share that line's value. Earlier finds
// win; a field is never overwritten.
func (c *Cascade) extractFuzzy(text string) Record {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}

	extracted := Record{}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}

		var keyPart, value string
		skipNext := false

		switch {
		case next != "" && strings.HasSuffix(line, ":"):
			// key line ends at the separator, value on the next line
			keyPart, value = strings.TrimSuffix(line, ":"), strings.TrimSpace(next)
			skipNext = true
		case strings.Contains(line, ":"):
			// key(s) and value on the same line
			parts := strings.SplitN(line, ":", 2)
			keyPart, value = parts[0], strings.TrimSpace(parts[1])
		case next != "" && strings.HasPrefix(next, ":"):
			// key in this line, next line starts with the separator
			keyPart, value = line, strings.TrimSpace(next[1:])
			skipNext = true
		default:
			continue
		}

		if value == "" {
			continue
		}

		matched := false
		for _, a := range c.registry.AllAliases() {
			if !c.aliasWordRes[a].MatchString(keyPart) {
				continue
			}
			matched = true
			field, _ := c.registry.Resolve(a)
			if !extracted.Has(field) {
				extracted[field] = value
			}
		}
		if matched && skipNext {
			i++
		}
	}

	return extracted
}
