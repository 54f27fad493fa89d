// Package vocab holds the declarative keyword tables that drive text matching
// across the pipeline. The default tables are embedded; a YAML file can replace
// any section.
package vocab

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
)

//go:embed default.yaml
var defaultYAML []byte

// Substitution replaces a vocabulary term during normalization.
type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Headers lists the header keywords per column role.
type Headers struct {
	Place   []string `yaml:"place"`
	People  []string `yaml:"people"`
	Amount  []string `yaml:"amount"`
	Name    []string `yaml:"name"`
	Address []string `yaml:"address"`
}

// CategoryRule maps a category segment containing Match onto Category.
type CategoryRule struct {
	Match    string `yaml:"match"`
	Category string `yaml:"category"`
}

// Vocabulary is the full set of keyword tables.
type Vocabulary struct {
	Substitutions          []Substitution `yaml:"substitutions"`
	EventKeywords          []string       `yaml:"event_keywords"`
	NonFoodKeywords        []string       `yaml:"non_food_keywords"`
	CorporateAffixes       []string       `yaml:"corporate_affixes"`
	BranchTails            []string       `yaml:"branch_tails"`
	AddressPenaltyKeywords []string       `yaml:"address_penalty_keywords"`
	Headers                Headers        `yaml:"headers"`
	Categories             []CategoryRule `yaml:"categories"`
	CategoryIgnore         []string       `yaml:"category_ignore"`
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default returns the embedded vocabulary. The returned value must not be mutated.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		v, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("vocab: embedded default.yaml: %v", err))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// ErrUnknownCategory is returned when a category rule targets a name outside
// the canonical category set.
var ErrUnknownCategory = errors.New("unknown category")

// Parse decodes a vocabulary document. Category rule targets must be canonical
// category names; they are rewritten to their canonical spelling.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	for i, rule := range v.Categories {
		cat, ok := constants.Canonicalize(rule.Category)
		if !ok {
			return nil, fmt.Errorf("parse vocabulary: rule %q -> %q: %w (want one of %s)",
				rule.Match, rule.Category, ErrUnknownCategory, strings.Join(constants.AsStringSlice(), ", "))
		}
		v.Categories[i].Category = string(cat)
	}
	return &v, nil
}

// Load reads a YAML override from path. Sections missing from the file keep
// the embedded defaults. An empty path returns Default().
func Load(path string) (*Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Default().merge(override), nil
}

func (v *Vocabulary) merge(o *Vocabulary) *Vocabulary {
	out := *v
	if o.Substitutions != nil {
		out.Substitutions = o.Substitutions
	}
	if o.EventKeywords != nil {
		out.EventKeywords = o.EventKeywords
	}
	if o.NonFoodKeywords != nil {
		out.NonFoodKeywords = o.NonFoodKeywords
	}
	if o.CorporateAffixes != nil {
		out.CorporateAffixes = o.CorporateAffixes
	}
	if o.BranchTails != nil {
		out.BranchTails = o.BranchTails
	}
	if o.AddressPenaltyKeywords != nil {
		out.AddressPenaltyKeywords = o.AddressPenaltyKeywords
	}
	if o.Headers.Place != nil {
		out.Headers.Place = o.Headers.Place
	}
	if o.Headers.People != nil {
		out.Headers.People = o.Headers.People
	}
	if o.Headers.Amount != nil {
		out.Headers.Amount = o.Headers.Amount
	}
	if o.Headers.Name != nil {
		out.Headers.Name = o.Headers.Name
	}
	if o.Headers.Address != nil {
		out.Headers.Address = o.Headers.Address
	}
	if o.Categories != nil {
		out.Categories = o.Categories
	}
	if o.CategoryIgnore != nil {
		out.CategoryIgnore = o.CategoryIgnore
	}
	return &out
}

// ContainsAny reports whether s contains any keyword.
func ContainsAny(s string, keywords []string) bool {
	return FirstMatch(s, keywords) != ""
}

// ContainsAnyFold is ContainsAny with case-insensitive comparison.
func ContainsAnyFold(s string, keywords []string) bool {
	ls := strings.ToLower(s)
	for _, k := range keywords {
		if k != "" && strings.Contains(ls, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// FirstMatch returns the first keyword contained in s, or "".
func FirstMatch(s string, keywords []string) string {
	if s == "" {
		return ""
	}
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return k
		}
	}
	return ""
}

// Substitute applies the substitution table to s.
func (v *Vocabulary) Substitute(s string) string {
	for _, sub := range v.Substitutions {
		if sub.From != "" {
			s = strings.ReplaceAll(s, sub.From, sub.To)
		}
	}
	return s
}

// CanonicalCategory maps a hierarchical provider category ("음식점>카페,디저트")
// onto a canonical category. Segments are split on '>' and then ','; the first
// rule whose match is contained in a segment wins. Without a rule match the
// first segment outside the ignore list is returned, capped at 10 runes.
func (v *Vocabulary) CanonicalCategory(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	parts := strings.Split(raw, ">")
	for _, part := range parts {
		for _, sub := range strings.Split(part, ",") {
			sub = strings.ToLower(strings.TrimSpace(sub))
			if sub == "" {
				continue
			}
			for _, rule := range v.Categories {
				if rule.Match != "" && strings.Contains(sub, strings.ToLower(rule.Match)) {
					return rule.Category, true
				}
			}
		}
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || v.ignored(part) {
			continue
		}
		if i := strings.Index(part, ","); i >= 0 {
			part = strings.TrimSpace(part[:i])
		}
		return truncateRunes(part, constants.MaxCategoryRunes), true
	}
	return "", false
}

func (v *Vocabulary) ignored(part string) bool {
	for _, ig := range v.CategoryIgnore {
		if part == ig {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
