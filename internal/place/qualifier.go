package place

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

var (
	reWrapped    = regexp.MustCompile(`^\((.+)\)$`)
	rePhoneLabel = regexp.MustCompile(`(?:Tel|TEL|전화)\s*[:：]?\s*\d[\d\-]{6,}`)
	rePhone      = regexp.MustCompile(`\b\d{2,4}[-\s]?\d{3,4}[-\s]?\d{3,4}\b`)
	reTrailingID = regexp.MustCompile(`[_\-]\d{6,8}$`)
	reVersionTag = regexp.MustCompile(`(?i)\bver\s*\d+(?:\.\d+)?\b`)
	reHasLetter  = regexp.MustCompile(`[A-Za-z가-힣]`)
)

type affix struct {
	head *regexp.Regexp
	tail *regexp.Regexp
}

// Qualifier cleans business names and applies the event-booth and non-food filters.
type Qualifier struct {
	norm           *normalize.Normalizer
	events         []string
	nonFood        []string
	affixes        []affix
	branchBracket  *regexp.Regexp
	branchDashTail *regexp.Regexp
}

// NewQualifier compiles the vocabulary's affix and branch-tail tables.
func NewQualifier(v *vocab.Vocabulary) *Qualifier {
	if v == nil {
		v = vocab.Default()
	}
	q := &Qualifier{
		norm:    normalize.New(v),
		events:  v.EventKeywords,
		nonFood: v.NonFoodKeywords,
	}
	for _, a := range v.CorporateAffixes {
		if a == "" {
			continue
		}
		lit := regexp.QuoteMeta(a)
		q.affixes = append(q.affixes, affix{
			head: regexp.MustCompile(`(?i)^\s*` + lit + `\s*`),
			tail: regexp.MustCompile(`(?i)\s*` + lit + `\s*$`),
		})
	}
	if tails := quoteAll(v.BranchTails); tails != "" {
		q.branchBracket = regexp.MustCompile(`(?i)[\(\[]\s*(?:` + tails + `)\s*[\)\]]$`)
		q.branchDashTail = regexp.MustCompile(`(?i)\s*[-–—]\s*(?:` + tails + `)\s*$`)
	}
	return q
}

// Clean strips legal-entity affixes, phone numbers, version tags, numeric ID
// suffixes and branch-tail annotations. It returns "" when no Latin or Hangul
// letter remains.
func (q *Qualifier) Clean(name string) string {
	n := q.norm.Text(name)
	if n == "" {
		return ""
	}
	if m := reWrapped.FindStringSubmatch(n); m != nil {
		n = q.norm.Text(m[1])
	}
	for _, a := range q.affixes {
		n = a.head.ReplaceAllString(n, "")
		n = a.tail.ReplaceAllString(n, "")
	}
	n = rePhoneLabel.ReplaceAllString(n, "")
	n = rePhone.ReplaceAllString(n, "")
	if q.branchBracket != nil {
		n = q.branchBracket.ReplaceAllString(n, "")
		n = q.branchDashTail.ReplaceAllString(n, "")
	}
	n = reTrailingID.ReplaceAllString(n, "")
	n = reVersionTag.ReplaceAllString(n, "")
	n = q.norm.Text(n)
	if !reHasLetter.MatchString(n) {
		return ""
	}
	return n
}

// IsEventBooth reports whether s denotes a temporary event presence.
func (q *Qualifier) IsEventBooth(s string) bool {
	s = q.norm.Text(s)
	return s != "" && vocab.ContainsAny(s, q.events)
}

// IsNonFood reports whether s contains a non-food business keyword.
func (q *Qualifier) IsNonFood(s string) bool {
	return vocab.ContainsAny(q.norm.Text(s), q.nonFood)
}

// LooksLikeFoodPlace reports whether name may be kept as a restaurant name.
func (q *Qualifier) LooksLikeFoodPlace(name string) bool {
	if name == "" {
		return false
	}
	return !q.IsEventBooth(name) && !q.IsNonFood(name)
}

func quoteAll(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	return strings.Join(quoted, "|")
}
