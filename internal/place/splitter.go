// Package place separates free-text place descriptions into a business name
// and an address using a scored address-recognition heuristic.
package place

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

var (
	reBracketed     = regexp.MustCompile(`^\[(.+?)\]\s*(.+)$`)
	reParenthetical = regexp.MustCompile(`^(.*?)\s*\((.+?)\)$`)
	separators      = []string{" / ", " · ", " - ", " – "}
)

// Splitter turns a place description into (name, address).
type Splitter struct {
	norm      *normalize.Normalizer
	scorer    *Scorer
	qualifier *Qualifier
}

// NewSplitter builds a Splitter over the given vocabulary (nil for defaults).
func NewSplitter(v *vocab.Vocabulary) *Splitter {
	if v == nil {
		v = vocab.Default()
	}
	return &Splitter{
		norm:      normalize.New(v),
		scorer:    NewScorer(v),
		qualifier: NewQualifier(v),
	}
}

// Qualifier exposes the name qualifier the splitter applies to name sides.
func (s *Splitter) Qualifier() *Qualifier { return s.qualifier }

// Scorer exposes the address scorer.
func (s *Splitter) Scorer() *Scorer { return s.scorer }

// Split returns a cleaned name guess and an address guess; either may be empty.
// An address is only returned when it scores as confident.
func (s *Splitter) Split(raw string) (name, address string) {
	p := s.norm.Text(raw)
	if p == "" || s.qualifier.IsEventBooth(p) {
		return "", ""
	}

	if m := reBracketed.FindStringSubmatch(p); m != nil {
		if n, a, ok := s.pick(m[1], m[2]); ok {
			return n, a
		}
	}
	if m := reParenthetical.FindStringSubmatch(p); m != nil {
		if n, a, ok := s.pick(m[1], m[2]); ok {
			return n, a
		}
	}
	if parts := normalize.SplitGaps(s.norm.KeepGaps(raw)); len(parts) == 2 {
		if n, a, ok := s.pick(parts[0], parts[1]); ok {
			return n, a
		}
	}
	for _, sep := range separators {
		if left, right, found := strings.Cut(p, sep); found {
			if n, a, ok := s.pick(left, right); ok {
				return n, a
			}
		}
	}
	if s.scorer.Confident(p) {
		return "", p
	}
	return s.qualifier.Clean(p), ""
}

// pick resolves a two-part split: exactly one confident side becomes the address.
func (s *Splitter) pick(a, b string) (name, address string, ok bool) {
	a, b = s.norm.Text(a), s.norm.Text(b)
	ca, cb := s.scorer.Confident(a), s.scorer.Confident(b)
	switch {
	case cb && !ca:
		return s.qualifier.Clean(a), b, true
	case ca && !cb:
		return s.qualifier.Clean(b), a, true
	default:
		return "", "", false
	}
}
