package readers

import (
	"context"
	"fmt"
	"strings"
)

// PDFReader extracts layout-preserving text with pdftotext and treats each
// page as a grid whose cells are separated by wide gaps.
type PDFReader struct {
	runner    Runner
	pdftotext string
}

func NewPDFReader(runner Runner, pdftotext string) *PDFReader {
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	return &PDFReader{runner: runner, pdftotext: pdftotext}
}

func (r *PDFReader) ReadGrids(ctx context.Context, path string) ([]Grid, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := r.runner.Run(ctx, r.pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(string(errb)))
	}

	// form feed separates pages
	var grids []Grid
	for i, page := range strings.Split(string(out), "\f") {
		rows := linesToRows(strings.Split(page, "\n"))
		if len(rows) == 0 {
			continue
		}
		grids = append(grids, Grid{Label: fmt.Sprintf("page-%d", i+1), Rows: rows})
	}
	return grids, nil
}
