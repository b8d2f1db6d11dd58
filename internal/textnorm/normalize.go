// Package textnorm converts raw email bodies (HTML or plain text) into the
// normalized plain text the extraction cascade operates on.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

// dashVariants covers the Unicode dash family seen in Outlook-composed mail.
var dashVariants = []string{"–", "—", "−", "‑", "‒", "―", "‐"}

// skipElements are HTML elements whose text content is never visible.
var skipElements = map[string]bool{
	"script": true, "style": true, "head": true, "title": true, "meta": true,
}

// Normalizer is a pure text pipeline bound to an alias registry. Safe for
// concurrent use.
type Normalizer struct {
	registry   *alias.Registry
	afterAlias *regexp.Regexp
	asciiFold  transform.Transformer
}

// New builds a Normalizer for the given registry.
func New(reg *alias.Registry) *Normalizer {
	return &Normalizer{
		registry:   reg,
		afterAlias: compileAfterAliasPattern(reg),
		asciiFold: transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
		),
	}
}

// Normalize runs the full pipeline: HTML to text, dash/separator unification,
// broken key-line repair, bullet stripping, and ASCII folding.
func (n *Normalizer) Normalize(raw string) string {
	text := raw
	if looksLikeHTML(raw) {
		text = HTMLToText(raw)
	}
	return n.Clean(text)
}

// Clean normalizes already-plain text without HTML conversion.
func (n *Normalizer) Clean(text string) string {
	for _, d := range dashVariants {
		text = strings.ReplaceAll(text, d, "-")
	}
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.ReplaceAll(text, "\u200b", "")

	// Fold separator spellings onto a single colon semantic. Order matters:
	// ":=" must collapse before the bare "=" rewrite.
	text = strings.ReplaceAll(text, ":=", ":")
	text = strings.ReplaceAll(text, "=", ":")
	text = strings.ReplaceAll(text, "-:", ":")
	text = strings.ReplaceAll(text, ":-", ":")

	text = n.spliceBrokenKeyLines(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(strings.ReplaceAll(line, "•", ""), " \t")
	}
	text = strings.Join(lines, "\n")

	folded, _, err := transform.String(n.asciiFold, text)
	if err != nil {
		return text
	}
	return folded
}

// spliceBrokenKeyLines repairs the "Key\nvalue" mail-formatting pattern:
// a single newline directly after a known alias is replaced with a space.
// Two or more consecutive newlines are a paragraph break and are preserved.
func (n *Normalizer) spliceBrokenKeyLines(text string) string {
	return n.afterAlias.ReplaceAllString(text, "$1 $2")
}

// compileAfterAliasPattern builds one alternation over every registered
// alias, matched case-insensitively, followed by exactly one newline.
// RE2 has no lookahead, so the non-newline successor is captured and
// re-emitted instead.
func compileAfterAliasPattern(reg *alias.Registry) *regexp.Regexp {
	quoted := make([]string, 0, len(reg.AllAliases()))
	for _, a := range reg.AllAliases() {
		quoted = append(quoted, regexp.QuoteMeta(a))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b\n([^\n])`)
}

// HTMLToText extracts the visible text of an HTML document, one line per
// text node, mirroring how a mail client would render the body flow.
func HTMLToText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && skipElements[node.Data] {
			return
		}
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, "\n")
}

// looksLikeHTML reports whether the body appears to carry markup worth
// parsing. Plain-text mail passes through untouched.
func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<html") ||
		strings.Contains(lower, "<body") ||
		strings.Contains(lower, "<div") ||
		strings.Contains(lower, "<table") ||
		strings.Contains(lower, "<p>") ||
		strings.Contains(lower, "<br")
}
