package term

import "strings"

// StripUnits removes a trailing "(unit)" hint, returning the clean base
// expression. "BPD (cm)" -> "BPD".
func StripUnits(raw string) string {
	t := strings.TrimSpace(raw)
	open := strings.Index(t, "(")
	close := strings.Index(t, ")")
	if open >= 0 && close > open {
		return strings.TrimSpace(t[:open])
	}
	return t
}

// Normalize canonicalizes a raw term: unit hints are stripped, exact
// abbreviations are expanded to plain words, and ratio shorthand is
// rewritten so free-text matching works.
//
//	"HC (cm)" -> "head circumference"
//	"HC/AC"   -> "head circumference ratio abdominal circumference"
func Normalize(lx *Lexicon, raw string) string {
	base := StripUnits(raw)
	upperNoSpace := strings.ReplaceAll(strings.ToUpper(base), " ", "")
	if words, ok := lx.Abbreviations[upperNoSpace]; ok {
		return words
	}
	if strings.Contains(base, "/") {
		left, right, _ := strings.Cut(base, "/")
		a := strings.ToLower(lx.expand(left))
		b := strings.ToLower(lx.expand(right))
		return a + " ratio " + b
	}
	return strings.ToLower(base)
}
