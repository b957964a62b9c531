// Package normalize deterministically rewrites job text toward the
// canonical form of the graph's language profile. The functions are pure;
// Autofix applies them across a graph through the repository write path.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/lang"
)

// Formulation rewrites a first-person statement to start with the
// language's canonical lead-in ("I want to " / "Я хочу "). Known
// non-canonical lead-ins are substituted first; if the text still does not
// start with the canonical prefix it is prepended, and mismatched casing of
// an existing prefix is corrected.
//
// Applying Formulation twice yields the same result as applying it once.
func Formulation(text string, profile *lang.Profile) string {
	canonical := profile.CanonicalPrefix
	canonicalBare := strings.TrimSpace(canonical)

	t := strings.TrimSpace(text)
	if t == "" {
		return canonicalBare
	}
	t = profile.ApplyRewrites(t)
	if strings.EqualFold(t, canonicalBare) {
		return canonicalBare
	}
	if end := profile.MatchCanonical(t); end >= 0 {
		return canonical + strings.TrimSpace(t[end:])
	}
	return canonical + t
}

// ExtractLabel derives the verb-phrase label from a formulation: normalize,
// strip the first-person lead-in, canonicalize as a label. The result is a
// fixed point of Label, so later label normalization leaves it untouched.
func ExtractLabel(formulation string, profile *lang.Profile) string {
	normalized := Formulation(formulation, profile)
	rest, _ := profile.StripFirstPersonPrefix(normalized)
	return Label(rest, profile)
}

// Label canonicalizes a label: trim, strip a first-person lead-in that
// should not be there, capitalize the first letter, drop trailing periods.
func Label(label string, profile *lang.Profile) string {
	t := strings.TrimSpace(label)
	if stripped, ok := profile.StripFirstPersonPrefix(t); ok {
		t = stripped
	}
	t = strings.TrimRight(t, ".")
	t = strings.TrimSpace(t)
	return capitalizeFirst(t)
}

// Phase maps a free-form or localized token to the canonical phase,
// defaulting to unknown.
func Phase(token string, profile *lang.Profile) jtbd.Phase {
	if canonical := profile.PhaseFor(token); canonical != "" {
		return jtbd.Phase(canonical)
	}
	return jtbd.PhaseUnknown
}

// Cadence maps a free-form or localized token to the canonical cadence,
// defaulting to once.
func Cadence(token string, profile *lang.Profile) jtbd.Cadence {
	if canonical := profile.CadenceFor(token); canonical != "" {
		return jtbd.Cadence(canonical)
	}
	return jtbd.CadenceOnce
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	upper := unicode.ToUpper(r)
	if upper == r {
		return s
	}
	return string(upper) + s[size:]
}
