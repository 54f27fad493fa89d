package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/pipeline"
	"github.com/joseph-ayodele/restaurant-seeder/internal/repository"
)

const (
	restaurantsSheet = "Restaurants"
	runSheet         = "Run"
	pageSize         = 500
)

// Records pages through stored restaurants.
type Records interface {
	List(ctx context.Context, opts repository.ListOptions) ([]*entity.Restaurant, error)
}

// Service produces XLSX workbooks of the restaurant store.
type Service struct {
	records Records
	logger  *slog.Logger
}

func NewService(records Records, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportRestaurantsXLSX returns a workbook (as bytes) with every restaurant in
// id order and, when run is non-nil, a sheet describing that run.
func (s *Service) ExportRestaurantsXLSX(ctx context.Context, run *pipeline.RunSummary) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", restaurantsSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(restaurantsSheet)
	f.SetActiveSheet(activeIndex)

	headers := []any{
		"id", "name", "address", "lat", "lng", "category", "phone",
		"price", "price_min", "price_max", "price_avg", "price_count", "score",
	}
	if err := f.SetSheetRow(restaurantsSheet, "A1", &headers); err != nil {
		return nil, err
	}

	row := 2
	var afterID int64
	for {
		page, err := s.records.List(ctx, repository.ListOptions{AfterID: afterID, Limit: pageSize})
		if err != nil {
			return nil, fmt.Errorf("query restaurants: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for _, r := range page {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := []any{
				r.ID, r.Name, r.Address, r.Lat, r.Lng, r.Category, r.Phone,
				r.Price, optional(r.PriceMin), optional(r.PriceMax), optional(r.PriceAvg), r.PriceCount, r.Score,
			}
			if err := f.SetSheetRow(restaurantsSheet, cell, &values); err != nil {
				return nil, err
			}
			row++
		}
		afterID = page[len(page)-1].ID
	}

	// Widen a few columns
	_ = f.SetColWidth(restaurantsSheet, "B", "B", 28) // name
	_ = f.SetColWidth(restaurantsSheet, "C", "C", 48) // address
	_ = f.SetColWidth(restaurantsSheet, "D", "E", 12) // coordinates
	_ = f.SetColWidth(restaurantsSheet, "F", "G", 16) // category, phone

	if run != nil {
		if err := writeRun(f, run); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", row-2,
		"with_run", run != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRun(f *excelize.File, run *pipeline.RunSummary) error {
	if _, err := f.NewSheet(runSheet); err != nil {
		return err
	}
	pairs := [][]any{
		{"run_id", run.RunID},
		{"status", string(run.Status)},
		{"base_dir", run.BaseDir},
		{"started_at", run.StartedAt.Format(time.RFC3339)},
		{"finished_at", run.FinishedAt.Format(time.RFC3339)},
		{"files_scanned", run.FilesScanned},
		{"files_parsed", run.FilesParsed},
		{"files_failed", run.FilesFailed},
		{"rows", run.Rows},
		{"candidates", run.Candidates},
		{"duplicates", run.Duplicates},
		{"created", run.Created},
		{"updated", run.Updated},
		{"skipped", run.Skipped},
		{"errors", run.Errors},
		{"commit_retries", run.CommitRetries},
		{"limit_reached", run.LimitReached},
	}
	for i, p := range pairs {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(runSheet, cell, &p); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(runSheet, "A", "A", 18)
	_ = f.SetColWidth(runSheet, "B", "B", 32)
	return nil
}

// optional renders a missing statistic as an empty cell.
func optional(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}
