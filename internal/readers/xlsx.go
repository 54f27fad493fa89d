package readers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads every worksheet of a workbook, expanding merged ranges to
// their top-left value.
type XLSXReader struct {
	logger *slog.Logger
}

func NewXLSXReader(logger *slog.Logger) *XLSXReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXReader{logger: logger}
}

func (r *XLSXReader) ReadGrids(_ context.Context, path string) ([]Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func(f *excelize.File) {
		if err := f.Close(); err != nil {
			r.logger.Warn("xlsx close error", "file", path, "error", err)
		}
	}(f)

	var grids []Grid
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			r.logger.Warn("xlsx.sheet.read_failed", "file", path, "sheet", sheet, "error", err)
			continue
		}
		if merges, err := f.GetMergeCells(sheet); err == nil {
			rows = expandMerges(rows, merges)
		} else {
			r.logger.Debug("xlsx.sheet.merge_cells_failed", "file", path, "sheet", sheet, "error", err)
		}
		rows = compact(rows)
		if len(rows) == 0 {
			continue
		}
		grids = append(grids, Grid{Label: sheet, Rows: rows})
	}
	return grids, nil
}

func expandMerges(rows [][]string, merges []excelize.MergeCell) [][]string {
	for _, mc := range merges {
		c1, r1, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		val := mc.GetCellValue()
		for r := r1; r <= r2; r++ {
			for len(rows) < r {
				rows = append(rows, nil)
			}
			row := rows[r-1]
			for len(row) < c2 {
				row = append(row, "")
			}
			for c := c1; c <= c2; c++ {
				row[c-1] = val
			}
			rows[r-1] = row
		}
	}
	return rows
}
