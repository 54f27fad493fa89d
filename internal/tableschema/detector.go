// Package tableschema locates the header row of a cell grid and maps column roles.
package tableschema

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

// ScanRows is the number of leading rows searched for a header.
const ScanRows = 30

// Schema is the detected header row and the column index of each role (-1 when absent).
type Schema struct {
	HeaderRow int
	Place     int
	People    int
	Amount    int
	Name      int
	Address   int
	Exploded  bool // matched against the exploded header cells
}

// HasExplicitNameAndAddress reports whether both explicit columns were found.
func (s Schema) HasExplicitNameAndAddress() bool {
	return s.Name >= 0 && s.Address >= 0
}

func (s Schema) hasPlaceRole() bool {
	return s.Place >= 0 || s.Name >= 0 || s.Address >= 0
}

// Detector matches header keywords against grid rows.
type Detector struct {
	norm    *normalize.Normalizer
	headers vocab.Headers
	logger  *slog.Logger
}

// NewDetector builds a Detector from the vocabulary header tables.
func NewDetector(v *vocab.Vocabulary, logger *slog.Logger) *Detector {
	if v == nil {
		v = vocab.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		norm:    normalize.New(v),
		headers: lowerHeaders(v.Headers),
		logger:  logger,
	}
}

// Detect scans the first ScanRows rows for a header. ok is false when none matched.
func (d *Detector) Detect(grid [][]string) (Schema, bool) {
	limit := min(ScanRows, len(grid))
	for i := 0; i < limit; i++ {
		raw := grid[i]

		cells := make([]string, len(raw))
		for j, c := range raw {
			cells[j] = d.norm.Text(c)
		}
		if s := d.match(cells); s.hasPlaceRole() {
			s.HeaderRow = i
			d.logger.Debug("schema.header.found", "row", i, "place", s.Place, "people", s.People,
				"amount", s.Amount, "name", s.Name, "address", s.Address)
			return s, true
		}

		exploded := d.Explode(raw)
		if s := d.match(exploded); s.hasPlaceRole() {
			s.HeaderRow = i
			s.Exploded = true
			d.logger.Debug("schema.header.found", "row", i, "exploded", true, "place", s.Place,
				"people", s.People, "amount", s.Amount, "name", s.Name, "address", s.Address)
			return s, true
		}
	}
	d.logger.Debug("schema.header.not_found", "scanned", limit)
	return Schema{HeaderRow: -1, Place: -1, People: -1, Amount: -1, Name: -1, Address: -1}, false
}

// Explode splits each raw cell on line breaks, then '/', then runs of two or
// more spaces, and returns the flattened normalized parts.
func (d *Detector) Explode(raw []string) []string {
	var out []string
	for _, c := range raw {
		out = append(out, d.explodeCell(c)...)
	}
	return out
}

func (d *Detector) explodeCell(c string) []string {
	if strings.ContainsAny(c, "\r\n") {
		if parts := d.nonEmpty(strings.FieldsFunc(c, func(r rune) bool { return r == '\n' || r == '\r' })); len(parts) > 1 {
			return parts
		}
	}
	if strings.Contains(c, "/") {
		if parts := d.nonEmpty(strings.Split(c, "/")); len(parts) > 1 {
			return parts
		}
	}
	if parts := d.nonEmpty(normalize.SplitGaps(d.norm.KeepGaps(c))); len(parts) > 0 {
		return parts
	}
	return []string{d.norm.Text(c)}
}

func (d *Detector) nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = d.norm.Text(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (d *Detector) match(cells []string) Schema {
	return Schema{
		Place:   columnOf(cells, d.headers.Place),
		People:  columnOf(cells, d.headers.People),
		Amount:  columnOf(cells, d.headers.Amount),
		Name:    columnOf(cells, d.headers.Name),
		Address: columnOf(cells, d.headers.Address),
	}
}

// columnOf returns the first cell containing any keyword (case-insensitive), or -1.
func columnOf(cells []string, keywords []string) int {
	for i, c := range cells {
		if c == "" {
			continue
		}
		if vocab.ContainsAny(strings.ToLower(c), keywords) {
			return i
		}
	}
	return -1
}

func lowerHeaders(h vocab.Headers) vocab.Headers {
	return vocab.Headers{
		Place:   lowerAll(h.Place),
		People:  lowerAll(h.People),
		Amount:  lowerAll(h.Amount),
		Name:    lowerAll(h.Name),
		Address: lowerAll(h.Address),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
