package place

import (
	"regexp"

	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

// ConfidentScore is the minimum score for a string to be treated as an address.
const ConfidentScore = 6

var (
	// administrative prefix + road + building number | neighborhood + lot number | number + unit suffix
	reAddressCore = regexp.MustCompile(
		`(?:(?:[가-힣]{1,10}(?:시|군|구))\s*)?(?:[가-힣0-9\-]{1,20}(?:로|길|대로|번길)\s*\d{1,4}(?:-\d{1,4})?)` +
			`|(?:[가-힣]{1,10}(?:동|리)\s*\d{1,4}(?:-\d{1,4})?(?:번지)?)` +
			`|(?:\d{1,5}(?:-\d{1,4})?(?:번지|호|층))`)
	reRoadNumber = regexp.MustCompile(`(?:로|길|대로|번길)\s*\d{1,4}(?:-\d{1,4})?`)
	reAdminUnit  = regexp.MustCompile(`특별시|광역시|자치시|도|시|군|구|읍|면|동|리`)
	reUnitSuffix = regexp.MustCompile(`(?:번지|호|층)(?:$|[^\p{L}\p{N}_])`)
	reDigit      = regexp.MustCompile(`\d`)
)

// Scorer computes address confidence scores.
type Scorer struct {
	norm    *normalize.Normalizer
	penalty []string
}

// NewScorer builds a Scorer from the vocabulary's penalty keywords.
func NewScorer(v *vocab.Vocabulary) *Scorer {
	if v == nil {
		v = vocab.Default()
	}
	return &Scorer{norm: normalize.New(v), penalty: v.AddressPenaltyKeywords}
}

// Score returns the heuristic address confidence of s.
func (sc *Scorer) Score(s string) int {
	s = sc.norm.Text(s)
	if s == "" {
		return 0
	}
	score := 0
	if reAddressCore.MatchString(s) {
		score += 4
	}
	if reRoadNumber.MatchString(s) {
		score += 3
	}
	if reAdminUnit.MatchString(s) {
		score += 2
	}
	if reUnitSuffix.MatchString(s) {
		score += 2
	}
	if reDigit.MatchString(s) {
		score++
	}
	if vocab.ContainsAny(s, sc.penalty) {
		score -= 2
	}
	return score
}

// Confident reports whether s scores at least ConfidentScore.
func (sc *Scorer) Confident(s string) bool {
	return sc.Score(s) >= ConfidentScore
}

var defaultScorer = NewScorer(nil)

// ScoreAddress scores s with the default vocabulary.
func ScoreAddress(s string) int { return defaultScorer.Score(s) }

// IsConfidentAddress reports whether s is a confident address under the default vocabulary.
func IsConfidentAddress(s string) bool { return defaultScorer.Confident(s) }
