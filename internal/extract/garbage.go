package extract

import (
	"regexp"

	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
)

var (
	reTokenSep  = regexp.MustCompile(`[ ,\t/|]+`)
	reNumeric   = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	reLetter    = regexp.MustCompile(`[A-Za-z가-힣]`)
	reAnyDigit  = regexp.MustCompile(`\d`)
	numericRate = 0.7
)

// LooksLikeGarbage reports whether s is mostly numbers rather than a place:
// empty text, at least 70% numeric tokens, or at most one letter with four or more digits.
func LooksLikeGarbage(s string) bool {
	t := normalize.Text(s)
	if t == "" {
		return true
	}
	var tokens []string
	for _, tok := range reTokenSep.Split(t, -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return true
	}
	numeric := 0
	for _, tok := range tokens {
		if reNumeric.MatchString(tok) {
			numeric++
		}
	}
	if float64(numeric)/float64(len(tokens)) >= numericRate {
		return true
	}
	letters := len(reLetter.FindAllStringIndex(t, -1))
	digits := len(reAnyDigit.FindAllStringIndex(t, -1))
	return letters <= 1 && digits >= 4
}
