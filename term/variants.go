package term

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// bracketHints are the bracketed quantity-kind suffixes seen in LOINC
// display names.
var bracketHints = []string{"[Length]", "[Diameter]", "[Circumference]", "[Mass]", "[Rate]"}

var titleCaser = cases.Title(language.English)

// Variants expands a term into an ordered, deduplicated list of query
// strings tuned to LOINC display phrasing. The order encodes gathering
// priority only; it never affects final ranking.
//
// Construction order: the normalized phrase with ultrasound suffixes,
// bracketed quantity hints, family templates, qualitative templates, ratio
// phrasings, then hand-curated hints.
func Variants(lx *Lexicon, raw, normalized string, in Intent) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(vs ...string) {
		for _, v := range vs {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}

	// Base phrase plus soft ultrasound context.
	add(normalized, normalized+" ultrasound", normalized+" US")

	for _, h := range bracketHints {
		add(normalized + " " + h)
	}

	ln := strings.ToLower(normalized)
	lu := strings.ToLower(raw)

	for _, fam := range lx.Families {
		matched := ""
		for _, m := range fam.Match {
			if strings.Contains(ln, m) || strings.Contains(lu, m) {
				matched = m
				break
			}
		}
		if matched == "" {
			continue
		}
		for _, p := range fam.Phrases {
			add(fillMatch(p, matched))
		}
	}

	for _, q := range lx.Qualitative {
		if strings.Contains(lu, q.Match) {
			add(q.Phrases...)
		}
	}

	if in.IsRatio {
		add(ratioVariants(lx, raw, ln)...)
	}

	key := strings.ToLower(StripUnits(raw))
	add(lx.Hints[key]...)
	add(lx.Hints[strings.ReplaceAll(key, " ", "")]...)

	return out
}

// fillMatch substitutes the matched family token into a phrase template.
func fillMatch(phrase, matched string) string {
	phrase = strings.ReplaceAll(phrase, "{Match}", titleCaser.String(matched))
	return strings.ReplaceAll(phrase, "{match}", matched)
}

// ratioVariants spells a ratio out both ways plus the literal shorthand.
// Operands come from the verbalized normalized form when present, otherwise
// from splitting the unit-stripped raw term.
func ratioVariants(lx *Lexicon, raw, normalizedLower string) []string {
	var a, b string
	if left, right, ok := strings.Cut(normalizedLower, " ratio "); ok {
		a, b = left, right
	} else {
		stripped := StripUnits(raw)
		left, right, ok := strings.Cut(stripped, "/")
		if !ok {
			return nil
		}
		a = strings.ToLower(lx.expand(left))
		b = strings.ToLower(lx.expand(right))
	}
	if a == "" || b == "" {
		return nil
	}

	rawLit := StripUnits(raw)
	return []string{
		a + "/" + b,
		a + "/" + b + " ratio",
		a + " to " + b + " ratio",
		"ratio of " + a + " to " + b,
		a + " divided by " + b,
		a + " over " + b,
		titleCaser.String(a) + " / " + titleCaser.String(b) + " derived by US",
		titleCaser.String(a) + " / " + titleCaser.String(b) + " derived by ultrasound",
		rawLit,
		strings.ToUpper(rawLit),
	}
}
