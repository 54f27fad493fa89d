package readers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// XLSReader converts legacy BIFF workbooks to XLSX with an office converter
// and reads the result with the XLSX reader.
type XLSReader struct {
	runner  Runner
	soffice string
	tempDir string
	xlsx    GridReader
}

func NewXLSReader(runner Runner, soffice, tempDir string, xlsx GridReader) *XLSReader {
	if soffice == "" {
		soffice = "soffice"
	}
	return &XLSReader{runner: runner, soffice: soffice, tempDir: tempDir, xlsx: xlsx}
}

func (r *XLSReader) ReadGrids(ctx context.Context, path string) ([]Grid, error) {
	out, cleanup, err := r.convert(ctx, path)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return nil, err
	}
	return r.xlsx.ReadGrids(ctx, out)
}

// convert runs `soffice --headless --convert-to xlsx --outdir <tmp> <in>`.
// Call cleanup() to remove temp files.
func (r *XLSReader) convert(ctx context.Context, in string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp(r.tempDir, "seed-xls-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	if _, errb, err := r.runner.Run(ctx, r.soffice, "--headless", "--convert-to", "xlsx", "--outdir", tmpDir, in); err != nil {
		return "", cleanup, fmt.Errorf("xls convert failed: %w: %s", err, strings.TrimSpace(string(errb)))
	}

	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	out := filepath.Join(tmpDir, base+".xlsx")
	if _, statErr := os.Stat(out); statErr != nil {
		return "", cleanup, fmt.Errorf("xls conversion produced no output: %w", statErr)
	}
	return out, cleanup, nil
}
