// Package readers decodes source documents into cell grids.
package readers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
)

// Grid is one table of text cells (a worksheet, a page, or a whole document).
type Grid struct {
	Label string
	Rows  [][]string
}

// GridReader turns a document into cell grids.
type GridReader interface {
	ReadGrids(ctx context.Context, path string) ([]Grid, error)
}

// Registry dispatches to the reader registered for a file's format.
type Registry struct {
	readers map[constants.Format]GridReader
	logger  *slog.Logger
}

// NewRegistry wires the built-in readers using the converter settings in cfg.
func NewRegistry(cfg common.ReadersConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	runner := NewExecRunner(logger)
	xlsx := NewXLSXReader(logger)
	return &Registry{
		readers: map[constants.Format]GridReader{
			constants.CSV:  NewCSVReader(),
			constants.XLSX: xlsx,
			constants.XLS:  NewXLSReader(runner, cfg.Soffice, cfg.TempDir, xlsx),
			constants.PDF:  NewPDFReader(runner, cfg.PDFToText),
			constants.HWP:  NewHWPReader(),
			constants.HWPX: NewHWPXReader(),
		},
		logger: logger,
	}
}

// Register replaces the reader for a format.
func (r *Registry) Register(format constants.Format, reader GridReader) {
	r.readers[format] = reader
}

// ReadGrids reads path with the reader matching its extension. Decoder failures
// are reported as common.ErrMalformedDocument.
func (r *Registry) ReadGrids(ctx context.Context, path string) ([]Grid, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	reader, ok := r.readers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
	grids, err := reader.ReadGrids(ctx, path)
	if err != nil {
		r.logger.Warn("reader.parse_failed", "file", path, "format", format, "error", err)
		return nil, common.MalformedDocument(path, err)
	}
	return grids, nil
}

// linesToRows splits text lines into cells on tabs or runs of two or more spaces.
// Blank lines are dropped.
func linesToRows(lines []string) [][]string {
	var rows [][]string
	for _, ln := range lines {
		ln = strings.TrimRight(ln, "\r")
		if normalize.Text(ln) == "" {
			continue
		}
		var cells []string
		if strings.Contains(ln, "\t") {
			for _, c := range strings.Split(ln, "\t") {
				cells = append(cells, strings.TrimSpace(c))
			}
		} else {
			cells = normalize.SplitGaps(ln)
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// compact trims trailing empty cells and drops rows without content.
func compact(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		end := len(row)
		for end > 0 && normalize.Text(row[end-1]) == "" {
			end--
		}
		if end == 0 {
			continue
		}
		out = append(out, row[:end])
	}
	return out
}
