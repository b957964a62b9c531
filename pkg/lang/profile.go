// Package lang holds the per-language rule tables the engine checks and
// normalizes text against: first-person prefixes, lead-in rewrites,
// conjunction markers and phase/cadence synonyms. Rules live in embedded
// YAML so a new language is a data change, not an engine change.
package lang

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

// Rewrite is one ordered lead-in substitution applied during formulation
// normalization. Patterns are anchored at the start of the text.
type Rewrite struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`

	re *regexp.Regexp
}

// Profile is the full rule table for one language.
type Profile struct {
	Language        string              `yaml:"language"`
	CanonicalPrefix string              `yaml:"canonicalPrefix"` // includes trailing space
	Prefixes        []string            `yaml:"prefixes"`        // lowercase first-person lead-ins
	Rewrites        []Rewrite           `yaml:"rewrites"`
	Conjunctions    []string            `yaml:"conjunctions"` // regex markers for bundled actions
	Phases          map[string][]string `yaml:"phases"`       // canonical phase -> synonyms
	Cadences        map[string][]string `yaml:"cadences"`     // canonical cadence -> synonyms

	conjunctionRes []*regexp.Regexp
	canonicalRe    *regexp.Regexp
}

var (
	loadOnce sync.Once
	loadErr  error
	profiles map[string]*Profile
)

func load() {
	profiles = make(map[string]*Profile)
	entries, err := profileFS.ReadDir("profiles")
	if err != nil {
		loadErr = fmt.Errorf("reading profiles: %w", err)
		return
	}
	for _, entry := range entries {
		data, err := profileFS.ReadFile("profiles/" + entry.Name())
		if err != nil {
			loadErr = fmt.Errorf("reading profile %s: %w", entry.Name(), err)
			return
		}
		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			loadErr = fmt.Errorf("parsing profile %s: %w", entry.Name(), err)
			return
		}
		if err := p.compile(); err != nil {
			loadErr = fmt.Errorf("compiling profile %s: %w", entry.Name(), err)
			return
		}
		profiles[p.Language] = &p
	}
}

func (p *Profile) compile() error {
	for i := range p.Rewrites {
		re, err := regexp.Compile(p.Rewrites[i].Pattern)
		if err != nil {
			return fmt.Errorf("rewrite %q: %w", p.Rewrites[i].Pattern, err)
		}
		p.Rewrites[i].re = re
	}
	for _, pattern := range p.Conjunctions {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("conjunction %q: %w", pattern, err)
		}
		p.conjunctionRes = append(p.conjunctionRes, re)
	}
	re, err := regexp.Compile(`(?i)^` + regexp.QuoteMeta(strings.TrimSpace(p.CanonicalPrefix)) + `\s+`)
	if err != nil {
		return fmt.Errorf("canonical prefix: %w", err)
	}
	p.canonicalRe = re
	return nil
}

// Get returns the profile for a language code ("en", "ru").
func Get(language string) (*Profile, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	p, ok := profiles[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", language)
	}
	return p, nil
}

// Supported lists the loaded language codes.
func Supported() []string {
	loadOnce.Do(load)
	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	return codes
}

// ApplyRewrites runs the ordered lead-in substitutions over text.
func (p *Profile) ApplyRewrites(text string) string {
	for i := range p.Rewrites {
		text = p.Rewrites[i].re.ReplaceAllString(text, p.Rewrites[i].Replace)
	}
	return text
}

// MatchCanonical reports the length of a case-insensitive canonical prefix
// match at the start of text, or -1 when text does not start with it.
func (p *Profile) MatchCanonical(text string) int {
	loc := p.canonicalRe.FindStringIndex(text)
	if loc == nil {
		return -1
	}
	return loc[1]
}

// HasFirstPersonPrefix reports whether text starts with any of the
// profile's first-person lead-ins, ignoring case.
func (p *Profile) HasFirstPersonPrefix(text string) bool {
	_, ok := p.StripFirstPersonPrefix(text)
	return ok
}

// StripFirstPersonPrefix removes the longest matching first-person lead-in
// from the start of text. The second result reports whether one matched.
func (p *Profile) StripFirstPersonPrefix(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	low := strings.ToLower(trimmed)

	best := -1
	for _, prefix := range p.Prefixes {
		if len(prefix) <= best {
			continue
		}
		if !strings.HasPrefix(low, prefix) {
			continue
		}
		rest := low[len(prefix):]
		if rest != "" && !strings.HasPrefix(rest, " ") {
			continue
		}
		best = len(prefix)
	}
	if best < 0 {
		return trimmed, false
	}
	return strings.TrimSpace(trimmed[best:]), true
}

// HasConjunction reports whether text contains a marker that signals two
// bundled actions in one formulation.
func (p *Profile) HasConjunction(text string) bool {
	for _, re := range p.conjunctionRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// PhaseFor maps a free-form or localized token to a canonical phase value.
// The empty string is returned when nothing matches.
func (p *Profile) PhaseFor(token string) string {
	return lookupSynonym(p.Phases, token)
}

// CadenceFor maps a free-form or localized token to a canonical cadence
// value. The empty string is returned when nothing matches.
func (p *Profile) CadenceFor(token string) string {
	return lookupSynonym(p.Cadences, token)
}

func lookupSynonym(table map[string][]string, token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return ""
	}
	if _, ok := table[token]; ok {
		return token
	}
	for canonical, synonyms := range table {
		for _, s := range synonyms {
			if token == s {
				return canonical
			}
		}
	}
	return ""
}
