package readers

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// HWPXReader reads HWPX (OWPML zip) documents. Table rows become grid rows;
// paragraph text outside tables becomes gap-split rows.
type HWPXReader struct{}

func NewHWPXReader() *HWPXReader { return &HWPXReader{} }

func (r *HWPXReader) ReadGrids(_ context.Context, path string) ([]Grid, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open hwpx: %w", err)
	}
	defer zr.Close()

	var members []*zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".xml") && strings.HasPrefix(f.Name, "Contents/section") {
			members = append(members, f)
		}
	}
	if len(members) == 0 {
		// older writers do not use the Contents/section naming
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
				members = append(members, f)
			}
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	var grids []Grid
	for _, m := range members {
		rows, err := readSection(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		rows = compact(rows)
		if len(rows) == 0 {
			continue
		}
		grids = append(grids, Grid{Label: filepath.Base(m.Name), Rows: rows})
	}
	return grids, nil
}

func readSection(f *zip.File) ([][]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		rows      [][]string
		row       []string
		cell      strings.Builder
		para      strings.Builder
		tableNest int
		inText    bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableNest++
			case "tr":
				row = nil
			case "tc":
				cell.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tableNest--
			case "tr":
				if tableNest > 0 {
					rows = append(rows, row)
				}
			case "tc":
				if tableNest > 0 {
					row = append(row, strings.TrimSpace(cell.String()))
				}
			case "p":
				if tableNest == 0 && para.Len() > 0 {
					rows = append(rows, linesToRows([]string{para.String()})...)
					para.Reset()
				} else if tableNest > 0 && cell.Len() > 0 {
					cell.WriteString("\n")
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if tableNest > 0 {
				cell.Write(t)
			} else {
				para.Write(t)
			}
		}
	}
	return rows, nil
}
