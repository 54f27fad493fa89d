// Package extract turns cell grids into candidate rows using a detected table schema.
package extract

import (
	"log/slog"
	"regexp"
	"strconv"

	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
	"github.com/joseph-ayodele/restaurant-seeder/internal/tableschema"
	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

var reNonDigit = regexp.MustCompile(`\D`)

// Strategy names the grid variant that produced rows.
type Strategy string

const (
	StrategyNone      Strategy = "none"
	StrategyDirect    Strategy = "direct"
	StrategyCellSplit Strategy = "cell_split"
	StrategyResegment Strategy = "resegment"
)

// Extractor emits candidate rows from grids.
type Extractor struct {
	norm     *normalize.Normalizer
	detector *tableschema.Detector
	logger   *slog.Logger
}

// NewExtractor builds an Extractor and its schema detector over v (nil for defaults).
func NewExtractor(v *vocab.Vocabulary, logger *slog.Logger) *Extractor {
	if v == nil {
		v = vocab.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		norm:     normalize.New(v),
		detector: tableschema.NewDetector(v, logger),
		logger:   logger,
	}
}

// Detector returns the schema detector used by the extractor.
func (e *Extractor) Detector() *tableschema.Detector { return e.detector }

// Rows emits one candidate row per data row below the header. Rows without
// any place text are skipped.
func (e *Extractor) Rows(grid [][]string, schema tableschema.Schema) []entity.CandidateRow {
	var out []entity.CandidateRow
	if schema.HeaderRow < 0 {
		return out
	}
	for i := schema.HeaderRow + 1; i < len(grid); i++ {
		row := grid[i]

		nameVal := e.norm.Text(cell(row, schema.Name))
		addrVal := e.norm.Text(cell(row, schema.Address))

		cand := entity.CandidateRow{
			Ordinal:     i,
			PersonCount: toInt(cell(row, schema.People)),
			AmountTotal: toInt64(cell(row, schema.Amount)),
			NameCell:    nameVal,
			AddressCell: addrVal,
		}
		switch {
		case nameVal != "" && addrVal != "":
			cand.PlaceRaw = nameVal + " (" + addrVal + ")"
			cand.FromAddressColumn = true
		case nameVal != "":
			cand.PlaceRaw = nameVal
		case addrVal != "":
			cand.PlaceRaw = addrVal
		default:
			cand.PlaceRaw = e.norm.KeepGaps(cell(row, schema.Place))
		}
		if cand.PlaceRaw == "" {
			continue
		}
		out = append(out, cand)
	}
	return out
}

// FromGrid detects the schema and extracts rows, falling back to a cell-split
// grid and then to a resegmented grid when the previous variant yields nothing.
func (e *Extractor) FromGrid(grid [][]string) ([]entity.CandidateRow, Strategy) {
	if len(grid) == 0 {
		return nil, StrategyNone
	}
	if rows := e.detectAndExtract(grid); len(rows) > 0 {
		return rows, StrategyDirect
	}
	if rows := e.detectAndExtract(e.SplitCells(grid)); len(rows) > 0 {
		return rows, StrategyCellSplit
	}
	if rows := e.detectAndExtract(e.Resegment(grid)); len(rows) > 0 {
		return rows, StrategyResegment
	}
	return nil, StrategyNone
}

func (e *Extractor) detectAndExtract(grid [][]string) []entity.CandidateRow {
	schema, ok := e.detector.Detect(grid)
	if !ok {
		return nil
	}
	return e.Rows(grid, schema)
}

// SplitCells explodes every cell of every row the way header cells are exploded.
func (e *Extractor) SplitCells(grid [][]string) [][]string {
	out := make([][]string, 0, len(grid))
	for _, row := range grid {
		out = append(out, e.detector.Explode(row))
	}
	return out
}

// Resegment joins each row's non-empty cells and splits the result on
// two-or-more-space gaps.
func (e *Extractor) Resegment(grid [][]string) [][]string {
	var out [][]string
	for _, row := range grid {
		var joined string
		for _, c := range row {
			c = e.norm.KeepGaps(c)
			if c == "" {
				continue
			}
			if joined != "" {
				joined += " "
			}
			joined += c
		}
		if joined == "" {
			continue
		}
		var parts []string
		for _, p := range normalize.SplitGaps(joined) {
			if p = e.norm.Text(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			out = append(out, parts)
		}
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// toInt64 keeps only the digits of s; nil when none remain or the value overflows.
func toInt64(s string) *int64 {
	digits := reNonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func toInt(s string) *int {
	n := toInt64(s)
	if n == nil || *n > int64(^uint32(0)>>1) {
		return nil
	}
	v := int(*n)
	return &v
}
