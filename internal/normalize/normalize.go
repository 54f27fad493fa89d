// Package normalize canonicalizes raw cell and place text.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fullWidthSpace = "　"

// substitutions are re-applied until stable, bounded for rules that grow their input
const maxSubstitutionPasses = 4

var (
	reSpaces = regexp.MustCompile(`\s+`)
	// gaps that carry column structure: tabs and runs of two or more spaces
	reGaps      = regexp.MustCompile(`\t+| {2,}`)
	reInnerWS   = regexp.MustCompile(`[^\S\t]+`)
	reLineBreak = regexp.MustCompile(`\r\n|\r|\n`)

	brackets = strings.NewReplacer(
		"【", "[", "】", "]",
		"「", "[", "」", "]",
		"『", "[", "』", "]",
	)
)

// Substituter rewrites vocabulary terms once the text is cleaned.
type Substituter interface {
	Substitute(s string) string
}

// Normalizer applies the text cleanup rules with an optional vocabulary.
type Normalizer struct {
	subs Substituter
}

// New returns a Normalizer; subs may be nil.
func New(subs Substituter) *Normalizer {
	return &Normalizer{subs: subs}
}

// Text canonicalizes s: full-width space to ASCII, whitespace collapse, NFKC
// width folding, control-character stripping, bracket unification, then
// vocabulary substitution on the cleaned text. Text(Text(x)) == Text(x).
func (n *Normalizer) Text(s string) string {
	if s == "" {
		return ""
	}
	s = clean(s)
	if n == nil || n.subs == nil {
		return s
	}
	for range maxSubstitutionPasses {
		next := clean(n.subs.Substitute(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

// KeepGaps is Text without merging tab and multi-space gaps, so column
// structure survives for later splitting. Line breaks become double spaces.
func (n *Normalizer) KeepGaps(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, fullWidthSpace, " ")
	s = reLineBreak.ReplaceAllString(s, "  ")
	s = foldKeepTabs(s)
	s = brackets.Replace(s)
	if n != nil && n.subs != nil {
		s = n.subs.Substitute(s)
	}
	s = reGaps.ReplaceAllStringFunc(s, func(g string) string {
		if strings.Contains(g, "\t") {
			return "\t"
		}
		return "  "
	})
	return strings.TrimSpace(s)
}

var std = New(nil)

// Text normalizes s without vocabulary substitutions.
func Text(s string) string { return std.Text(s) }

// KeepGaps normalizes s without vocabulary substitutions, keeping gaps.
func KeepGaps(s string) string { return std.KeepGaps(s) }

// Spaces collapses whitespace runs and trims.
func Spaces(s string) string {
	return collapse(strings.ReplaceAll(s, fullWidthSpace, " "))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// SplitGaps splits s on tabs or on runs of two or more spaces, dropping empty parts.
func SplitGaps(s string) []string {
	var out []string
	for _, p := range reGaps.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clean(s string) string {
	s = strings.ReplaceAll(s, fullWidthSpace, " ")
	s = collapse(s)
	s = fold(s)
	s = brackets.Replace(s)
	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func fold(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFKC, runes.Remove(runes.Predicate(isOther))), s)
	if err != nil {
		return s
	}
	return out
}

func foldKeepTabs(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFKC, runes.Remove(runes.Predicate(func(r rune) bool {
		return r != '\t' && isOther(r)
	}))), s)
	if err != nil {
		return s
	}
	// non-tab whitespace other than gaps collapses to single spaces
	return reInnerWS.ReplaceAllStringFunc(out, func(ws string) string {
		if len(ws) >= 2 {
			return "  "
		}
		return " "
	})
}

// isOther matches Unicode category C plus non-printable runes, keeping the ASCII space.
func isOther(r rune) bool {
	if r == ' ' {
		return false
	}
	return unicode.Is(unicode.C, r) || !unicode.IsPrint(r)
}
